package render

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"snaudit/prism/internal/layout"
)

// Detail is how much of a node gets drawn.
type Detail string

const (
	DetailFull       Detail = "full"       // shape, label, badges
	DetailSimplified Detail = "simplified" // shape and label only
	DetailMinimal    Detail = "minimal"    // dot
)

// Priority orders drawing so the tables worth seeing land on top.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// VirtualizeOptions tunes culling and level of detail. Zero values fall back
// to defaults.
type VirtualizeOptions struct {
	NodeBuffer         float64 // screen-pixel margin around the viewport
	LinkBufferScale    float64 // link cull rect relative to the node buffer
	ImportantLinkScale float64 // same, for links touching important tables
	PreserveZoom       float64 // zoom at or above which important tables always render
	FullDetailZoom     float64 // zoom for full node detail
	SimplifiedZoom     float64 // zoom for simplified node detail
	ImportantDetail    float64 // threshold scale for important tables, below 1
	UltraCount         int     // node count where ordinary detail backs off
	UltraDetailScale   float64 // threshold scale applied past UltraCount
	HubDegree          int     // degree at which a table counts as a hub
}

func (o VirtualizeOptions) withDefaults() VirtualizeOptions {
	d := VirtualizeOptions{
		NodeBuffer:         80,
		LinkBufferScale:    2.0,
		ImportantLinkScale: 3.0,
		PreserveZoom:       0.3,
		FullDetailZoom:     0.8,
		SimplifiedZoom:     0.35,
		ImportantDetail:    0.6,
		UltraCount:         1500,
		UltraDetailScale:   1.5,
		HubDegree:          6,
	}
	if o.NodeBuffer > 0 {
		d.NodeBuffer = o.NodeBuffer
	}
	if o.LinkBufferScale > 0 {
		d.LinkBufferScale = o.LinkBufferScale
	}
	if o.ImportantLinkScale > 0 {
		d.ImportantLinkScale = o.ImportantLinkScale
	}
	if o.PreserveZoom > 0 {
		d.PreserveZoom = o.PreserveZoom
	}
	if o.FullDetailZoom > 0 {
		d.FullDetailZoom = o.FullDetailZoom
	}
	if o.SimplifiedZoom > 0 {
		d.SimplifiedZoom = o.SimplifiedZoom
	}
	if o.ImportantDetail > 0 && o.ImportantDetail < 1 {
		d.ImportantDetail = o.ImportantDetail
	}
	if o.UltraCount > 0 {
		d.UltraCount = o.UltraCount
	}
	if o.UltraDetailScale > 1 {
		d.UltraDetailScale = o.UltraDetailScale
	}
	if o.HubDegree > 0 {
		d.HubDegree = o.HubDegree
	}
	return d
}

// FrameNode is one table in a frame, its draw detail resolved.
type FrameNode struct {
	layout.PositionedNode
	Detail   Detail   `json:"detail"`
	Priority Priority `json:"-"`
}

// Frame is what one render pass should draw.
type Frame struct {
	Nodes        []FrameNode
	Links        []layout.PositionedLink
	VisibleCount int
	TotalCount   int
	Degraded     bool
	Notices      []layout.Notice
}

// Virtualizer culls a layout result against a viewport so render cost
// follows what is on screen, not dataset size. It never mutates the result.
type Virtualizer struct {
	opts      VirtualizeOptions
	nodes     []layout.PositionedNode
	links     []layout.PositionedLink
	index     map[string]uint32
	important *roaring.Bitmap
}

// NewVirtualizer indexes a layout result. Important tables are the canonical
// top of the hierarchy, hubs, and custom tables; they survive culling and
// keep more detail than the crowd.
func NewVirtualizer(res *layout.Result, opts VirtualizeOptions) *Virtualizer {
	v := &Virtualizer{
		opts:      opts.withDefaults(),
		nodes:     res.Nodes,
		links:     res.Links,
		index:     make(map[string]uint32, len(res.Nodes)),
		important: roaring.New(),
	}
	for i, n := range v.nodes {
		v.index[n.ID] = uint32(i)
		if n.Depth <= 1 || n.Custom || n.Degree >= v.opts.HubDegree {
			v.important.Add(uint32(i))
		}
	}
	return v
}

// TotalCount reports how many tables the virtualizer manages.
func (v *Virtualizer) TotalCount() int { return len(v.nodes) }

// Important reports whether a table survives culling by importance.
func (v *Virtualizer) Important(id string) bool {
	i, ok := v.index[id]
	return ok && v.important.Contains(i)
}

// detailFor resolves level of detail from zoom. Important tables use scaled-
// down thresholds and ordinary tables back off further on very large
// datasets, so an important table never draws with less detail than an
// ordinary one at the same zoom.
func (v *Virtualizer) detailFor(zoom float64, important bool) Detail {
	full, simplified := v.opts.FullDetailZoom, v.opts.SimplifiedZoom
	if important {
		full *= v.opts.ImportantDetail
		simplified *= v.opts.ImportantDetail
	} else if len(v.nodes) > v.opts.UltraCount {
		full *= v.opts.UltraDetailScale
		simplified *= v.opts.UltraDetailScale
	}
	switch {
	case zoom >= full:
		return DetailFull
	case zoom >= simplified:
		return DetailSimplified
	default:
		return DetailMinimal
	}
}

func (v *Virtualizer) priorityFor(i uint32, n *layout.PositionedNode) Priority {
	switch {
	case v.important.Contains(i):
		return PriorityHigh
	case n.Degree >= v.opts.HubDegree/2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// View computes the frame for a viewport: nodes inside the buffered view
// rect, important tables preserved once zoomed in past the threshold, links
// culled against a wider second buffer with a segment test for pass-through
// lines.
func (v *Virtualizer) View(vp Viewport) *Frame {
	zoom := vp.zoom()
	rect := vp.WorldRect(v.opts.NodeBuffer)

	visible := roaring.New()
	for i := range v.nodes {
		if rect.Contains(v.nodes[i].X, v.nodes[i].Y) {
			visible.Add(uint32(i))
		}
	}
	if zoom >= v.opts.PreserveZoom {
		visible.Or(v.important)
	}

	frame := &Frame{
		VisibleCount: int(visible.GetCardinality()),
		TotalCount:   len(v.nodes),
		Degraded:     len(v.nodes) > v.opts.UltraCount,
	}
	if frame.Degraded {
		frame.Notices = append(frame.Notices, layout.Notice{
			Code:   layout.NoticeDetailReduced,
			Detail: fmt.Sprintf("detail reduced across %d tables", len(v.nodes)),
		})
	}

	it := visible.Iterator()
	for it.HasNext() {
		i := it.Next()
		n := v.nodes[i]
		imp := v.important.Contains(i)
		frame.Nodes = append(frame.Nodes, FrameNode{
			PositionedNode: n,
			Detail:         v.detailFor(zoom, imp),
			Priority:       v.priorityFor(i, &n),
		})
	}
	sort.Slice(frame.Nodes, func(a, b int) bool {
		if frame.Nodes[a].Priority != frame.Nodes[b].Priority {
			return frame.Nodes[a].Priority > frame.Nodes[b].Priority
		}
		return frame.Nodes[a].ID < frame.Nodes[b].ID
	})

	linkRect := vp.WorldRect(v.opts.NodeBuffer * v.opts.LinkBufferScale)
	importantRect := vp.WorldRect(v.opts.NodeBuffer * v.opts.ImportantLinkScale)
	for _, l := range v.links {
		si, sok := v.index[l.Source]
		ti, tok := v.index[l.Target]
		if !sok || !tok {
			continue
		}
		if visible.Contains(si) || visible.Contains(ti) {
			frame.Links = append(frame.Links, l)
			continue
		}
		r := linkRect
		if v.important.Contains(si) || v.important.Contains(ti) {
			r = importantRect
		}
		if r.SegmentIntersects(l.X1, l.Y1, l.X2, l.Y2) {
			frame.Links = append(frame.Links, l)
		}
	}
	return frame
}
