package layout

import (
	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/schema"
)

// Hint tells an engine how much work it may spend. Auto escalates on its own
// when the graph is large.
type Hint string

const (
	HintAuto    Hint = "auto"
	HintHigh    Hint = "high"
	HintMaximum Hint = "maximum"
)

// AutoEscalateNodes is the node count above which HintAuto switches to the
// degraded high-performance path.
const AutoEscalateNodes = 500

type perfMode int

const (
	modeStandard perfMode = iota
	modeHigh
	modeMaximum
)

// resolveMode maps a hint and graph size to the execution mode. The second
// return reports that auto escalated, which callers surface as a notice.
func resolveMode(hint Hint, nodeCount int) (perfMode, bool) {
	switch hint {
	case HintHigh:
		return modeHigh, false
	case HintMaximum:
		return modeMaximum, false
	default:
		if nodeCount > AutoEscalateNodes {
			return modeHigh, true
		}
		return modeStandard, false
	}
}

// Size is a canvas extent in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds is the axis-aligned box around all positioned nodes.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b *Bounds) extend(x, y float64) {
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// Notice codes for advisory degradation reports.
const (
	NoticeLayoutDegraded = "layout_degraded"
	NoticeDetailReduced  = "detail_reduced"
)

// Notice is an advisory that output fidelity was reduced somewhere. Purely
// informational; nothing fails because of one.
type Notice struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Node is a layout engine's working view of one table. Engines mutate the
// coordinate fields; everything else is carried through to the output.
type Node struct {
	ID             string
	Label          string
	Category       schema.Category
	Custom         bool
	Dimmed         bool
	Depth          int
	Records        int
	SubtreeRecords int
	Degree         int

	Parent   *Node
	Children []*Node

	X, Y   float64
	vx, vy float64
	fx, fy *float64 // pinned position, nil when free
}

// Link is a typed connection between two layout nodes.
type Link struct {
	ID     string
	Source *Node
	Target *Node
	Kind   graph.EdgeKind
	Label  string
}

// Graph is the engine input: a node set with optional tree structure and
// typed links.
type Graph struct {
	Nodes []*Node
	Links []*Link
	Roots []*Node // tree traversal entry points, canonical first
	byID  map[string]*Node
}

// Node returns the layout node for a table name, or nil.
func (g *Graph) Node(id string) *Node {
	return g.byID[id]
}

// PositionedNode is one placed table in a layout result.
type PositionedNode struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	Category       string  `json:"category"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Depth          int     `json:"depth"`
	Records        int     `json:"records"`
	SubtreeRecords int     `json:"subtree_records,omitempty"`
	Degree         int     `json:"degree"`
	Custom         bool    `json:"custom,omitempty"`
	Dimmed         bool    `json:"dimmed,omitempty"`
}

// PositionedLink is one placed connection, endpoint coordinates resolved so
// consumers can cull against the segment directly.
type PositionedLink struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Kind   string  `json:"kind"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// Result is what every engine returns.
type Result struct {
	Engine          string           `json:"engine"`
	Nodes           []PositionedNode `json:"nodes"`
	Links           []PositionedLink `json:"links"`
	Bounds          Bounds           `json:"bounds"`
	NodeCount       int              `json:"node_count"`
	HighPerformance bool             `json:"high_performance"`
	Notices         []Notice         `json:"notices,omitempty"`
}

// Engine computes positions for a graph within a canvas.
type Engine interface {
	Name() string
	Calculate(g *Graph, canvas Size, hint Hint) (*Result, error)
}

// FromHierarchy converts a built (possibly filter-annotated) hierarchy into
// layout input with inheritance links.
func FromHierarchy(h *graph.Hierarchy) *Graph {
	g := &Graph{byID: make(map[string]*Node, h.NodeCount)}
	h.Walk(func(tn *graph.TableNode) {
		n := newNode(tn)
		n.Degree = len(tn.Children)
		g.byID[n.ID] = n
		g.Nodes = append(g.Nodes, n)
	})
	h.Walk(func(tn *graph.TableNode) {
		if tn.Parent == nil {
			return
		}
		child := g.byID[tn.Record.Name]
		parent := g.byID[tn.Parent.Record.Name]
		child.Parent = parent
		parent.Children = append(parent.Children, child)
		g.Links = append(g.Links, &Link{
			ID:     "inh:" + child.ID,
			Source: child,
			Target: parent,
			Kind:   graph.EdgeInheritance,
		})
	})
	for _, r := range h.Roots {
		if n := g.byID[r.Record.Name]; n != nil {
			g.Roots = append(g.Roots, n)
		}
	}
	return g
}

// FromGraphData converts the table graph into layout input, links typed per
// edge kind.
func FromGraphData(gd *graph.GraphData) *Graph {
	h := gd.Hierarchy
	g := &Graph{byID: make(map[string]*Node, h.NodeCount)}
	h.Walk(func(tn *graph.TableNode) {
		n := newNode(tn)
		n.Degree = gd.Degree(n.ID)
		g.byID[n.ID] = n
		g.Nodes = append(g.Nodes, n)
	})
	for i := range gd.Edges {
		e := &gd.Edges[i]
		src := g.byID[e.Source]
		dst := g.byID[e.Target]
		if src == nil || dst == nil {
			continue
		}
		g.Links = append(g.Links, &Link{
			ID:     e.ID,
			Source: src,
			Target: dst,
			Kind:   e.Kind,
			Label:  e.Label,
		})
	}
	for _, r := range h.Roots {
		if n := g.byID[r.Record.Name]; n != nil {
			g.Roots = append(g.Roots, n)
		}
	}
	return g
}

func newNode(tn *graph.TableNode) *Node {
	return &Node{
		ID:             tn.Record.Name,
		Label:          tn.Record.Label,
		Category:       tn.Record.Category,
		Custom:         tn.Record.IsCustom(),
		Dimmed:         tn.Dimmed,
		Depth:          tn.Depth,
		Records:        tn.Record.RecordCount,
		SubtreeRecords: tn.SubtreeRecords,
	}
}

// buildResult snapshots node coordinates into the output form shared by the
// engines.
func buildResult(engine string, g *Graph, mode perfMode, escalated bool) *Result {
	res := &Result{
		Engine:          engine,
		NodeCount:       len(g.Nodes),
		HighPerformance: mode != modeStandard,
	}
	if escalated {
		res.Notices = append(res.Notices, Notice{
			Code:   NoticeLayoutDegraded,
			Detail: "auto hint escalated to the high-performance path",
		})
	}
	if len(g.Nodes) == 0 {
		return res
	}
	res.Bounds = Bounds{MinX: g.Nodes[0].X, MinY: g.Nodes[0].Y, MaxX: g.Nodes[0].X, MaxY: g.Nodes[0].Y}
	for _, n := range g.Nodes {
		res.Nodes = append(res.Nodes, PositionedNode{
			ID:             n.ID,
			Label:          n.Label,
			Category:       string(n.Category),
			X:              n.X,
			Y:              n.Y,
			Depth:          n.Depth,
			Records:        n.Records,
			SubtreeRecords: n.SubtreeRecords,
			Degree:         n.Degree,
			Custom:         n.Custom,
			Dimmed:         n.Dimmed,
		})
		res.Bounds.extend(n.X, n.Y)
	}
	for _, l := range g.Links {
		res.Links = append(res.Links, PositionedLink{
			ID:     l.ID,
			Source: l.Source.ID,
			Target: l.Target.ID,
			Kind:   string(l.Kind),
			X1:     l.Source.X,
			Y1:     l.Source.Y,
			X2:     l.Target.X,
			Y2:     l.Target.Y,
		})
	}
	return res
}
