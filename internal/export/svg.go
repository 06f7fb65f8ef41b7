package export

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/layout"
	"snaudit/prism/internal/schema"
)

// SVGOptions tunes the exported drawing. Zero values fall back to defaults.
type SVGOptions struct {
	Padding    int // canvas margin around the layout bounds
	NodeRadius int // base node radius before record scaling
	MaxLabels  int // past this node count only shallow tables get labels
}

func (o SVGOptions) withDefaults() SVGOptions {
	d := SVGOptions{Padding: 40, NodeRadius: 6, MaxLabels: 150}
	if o.Padding > 0 {
		d.Padding = o.Padding
	}
	if o.NodeRadius > 0 {
		d.NodeRadius = o.NodeRadius
	}
	if o.MaxLabels > 0 {
		d.MaxLabels = o.MaxLabels
	}
	return d
}

func fillFor(category string, dimmed bool) string {
	if dimmed {
		return "fill:#c8c8c8;fill-opacity:0.35"
	}
	switch schema.Category(category) {
	case schema.CategoryBase:
		return "fill:#2a7fb8"
	case schema.CategoryCustom:
		return "fill:#e0a400"
	default:
		return "fill:#3fa45b"
	}
}

func strokeFor(kind string) string {
	switch graph.EdgeKind(kind) {
	case graph.EdgeReference:
		return "stroke:#4a90d2;stroke-width:1;stroke-dasharray:4,3;fill:none"
	case graph.EdgeRelationship:
		return "stroke:#b07ad2;stroke-width:1;stroke-dasharray:1,3;fill:none"
	default:
		return "stroke:#9a9a9a;stroke-width:1;fill:none"
	}
}

func radiusFor(base, records int) int {
	return base + int(math.Log10(1+float64(records)))
}

// WriteSVG renders a layout result as a standalone SVG document: links
// underneath, nodes colored by category, labels where they stay readable.
func WriteSVG(w io.Writer, res *layout.Result, opts SVGOptions) {
	o := opts.withDefaults()
	minX, minY := res.Bounds.MinX, res.Bounds.MinY
	width := int(res.Bounds.Width()) + 2*o.Padding
	height := int(res.Bounds.Height()) + 2*o.Padding
	if width < 2*o.Padding {
		width = 2 * o.Padding
	}
	if height < 2*o.Padding {
		height = 2 * o.Padding
	}
	px := func(x float64) int { return int(x-minX) + o.Padding }
	py := func(y float64) int { return int(y-minY) + o.Padding }

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title("schema map")
	canvas.Rect(0, 0, width, height, "fill:#ffffff")

	for _, l := range res.Links {
		canvas.Line(px(l.X1), py(l.Y1), px(l.X2), py(l.Y2), strokeFor(l.Kind))
	}

	labelAll := res.NodeCount <= o.MaxLabels
	for _, n := range res.Nodes {
		x, y := px(n.X), py(n.Y)
		r := radiusFor(o.NodeRadius, n.Records)
		canvas.Circle(x, y, r, fillFor(n.Category, n.Dimmed)+";stroke:#444444;stroke-width:1")
		if labelAll || n.Depth <= 1 || n.Custom {
			style := "font-family:monospace;font-size:10px;fill:#222222"
			if n.Dimmed {
				style = "font-family:monospace;font-size:10px;fill:#aaaaaa"
			}
			canvas.Text(x+r+3, y+3, n.ID, style)
		}
	}

	canvas.End()
}

// SaveSVG writes the drawing to a file.
func SaveSVG(path string, res *layout.Result, opts SVGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	WriteSVG(f, res, opts)
	return nil
}
