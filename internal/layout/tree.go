package layout

// TreeOptions tunes the deterministic tree layout. Zero values fall back to
// defaults.
type TreeOptions struct {
	LevelGap      float64 // distance between depth levels
	SiblingGap    float64 // distance between same-parent neighbors
	FamilyGap     float64 // multiplier applied between different-parent neighbors
	WideTreeNodes int     // node count where spacing scales up
	WideTreeScale float64 // spacing multiplier for wide trees
	Margin        float64
}

func (o TreeOptions) withDefaults() TreeOptions {
	d := TreeOptions{
		LevelGap:      110,
		SiblingGap:    70,
		FamilyGap:     1.8,
		WideTreeNodes: 400,
		WideTreeScale: 1.5,
		Margin:        40,
	}
	if o.LevelGap > 0 {
		d.LevelGap = o.LevelGap
	}
	if o.SiblingGap > 0 {
		d.SiblingGap = o.SiblingGap
	}
	if o.FamilyGap > 1 {
		d.FamilyGap = o.FamilyGap
	}
	if o.WideTreeNodes > 0 {
		d.WideTreeNodes = o.WideTreeNodes
	}
	if o.WideTreeScale > 1 {
		d.WideTreeScale = o.WideTreeScale
	}
	if o.Margin > 0 {
		d.Margin = o.Margin
	}
	return d
}

// TreeEngine lays the inheritance forest out on a depth axis and an in-order
// breadth axis. Same input, same output, always.
type TreeEngine struct {
	opts TreeOptions
}

// NewTreeEngine creates a tree engine with the given options.
func NewTreeEngine(opts TreeOptions) *TreeEngine {
	return &TreeEngine{opts: opts.withDefaults()}
}

func (e *TreeEngine) Name() string { return "tree" }

// Calculate positions every node: Y from inheritance depth, X from an
// in-order sweep where leaves advance a cursor and parents center over their
// children. Neighbors from different parents get extra separation. Wide
// trees scale both spacing and the resulting extent up rather than cramming
// into the canvas.
func (e *TreeEngine) Calculate(g *Graph, canvas Size, hint Hint) (*Result, error) {
	mode, escalated := resolveMode(hint, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return buildResult("tree", g, mode, escalated), nil
	}

	level := e.opts.LevelGap
	sibling := e.opts.SiblingGap
	if len(g.Nodes) > e.opts.WideTreeNodes {
		level *= e.opts.WideTreeScale
		sibling *= e.opts.WideTreeScale
	}

	cursor := e.opts.Margin
	var prevLeaf *Node
	var place func(n *Node)
	place = func(n *Node) {
		n.Y = e.opts.Margin + float64(n.Depth)*level
		if len(n.Children) == 0 {
			if prevLeaf != nil {
				gap := sibling
				if prevLeaf.Parent != n.Parent {
					gap *= e.opts.FamilyGap
				}
				cursor += gap
			}
			n.X = cursor
			prevLeaf = n
			return
		}
		for _, c := range n.Children {
			place(c)
		}
		first := n.Children[0]
		last := n.Children[len(n.Children)-1]
		n.X = (first.X + last.X) / 2
	}
	for _, root := range g.Roots {
		place(root)
	}

	// Standard mode centers a narrow tree in the canvas; the degraded path
	// leaves positions where the sweep put them.
	if mode == modeStandard && canvas.Width > 0 {
		minX, maxX := g.Nodes[0].X, g.Nodes[0].X
		for _, n := range g.Nodes {
			if n.X < minX {
				minX = n.X
			}
			if n.X > maxX {
				maxX = n.X
			}
		}
		extent := maxX - minX + 2*e.opts.Margin
		if extent < canvas.Width {
			shift := (canvas.Width-extent)/2 + e.opts.Margin - minX
			for _, n := range g.Nodes {
				n.X += shift
			}
		}
	}

	return buildResult("tree", g, mode, escalated), nil
}
