package layout

import (
	"math"

	"snaudit/prism/internal/graph"
)

// ForceOptions tunes the force simulation. Zero values fall back to
// defaults.
type ForceOptions struct {
	Iterations int     // standard-mode tick budget
	Alpha      float64 // starting temperature
	AlphaMin   float64 // settle threshold
	AlphaDecay float64 // per-tick cooling fraction
	Damping    float64 // velocity retained per tick

	Repulsion       float64 // pairwise push between nodes
	CustomRepulsion float64 // stronger push for custom tables
	Gravity         float64 // pull toward the canvas center

	InheritLength float64 // spring rest lengths per link kind
	RefLength     float64
	RelLength     float64
	InheritSpring float64 // spring stiffness per link kind
	RefSpring     float64
	RelSpring     float64

	CollidePadding float64 // extra clearance between node radii
	ReheatAlpha    float64 // temperature restored when a drag releases
}

func (o ForceOptions) withDefaults() ForceOptions {
	d := ForceOptions{
		Iterations:      300,
		Alpha:           1.0,
		AlphaMin:        0.001,
		AlphaDecay:      0.0228,
		Damping:         0.6,
		Repulsion:       1800,
		CustomRepulsion: 2600,
		Gravity:         0.03,
		InheritLength:   70,
		RefLength:       130,
		RelLength:       170,
		InheritSpring:   0.08,
		RefSpring:       0.04,
		RelSpring:       0.02,
		CollidePadding:  4,
		ReheatAlpha:     0.3,
	}
	if o.Iterations > 0 {
		d.Iterations = o.Iterations
	}
	if o.Alpha > 0 {
		d.Alpha = o.Alpha
	}
	if o.AlphaMin > 0 {
		d.AlphaMin = o.AlphaMin
	}
	if o.AlphaDecay > 0 {
		d.AlphaDecay = o.AlphaDecay
	}
	if o.Damping > 0 {
		d.Damping = o.Damping
	}
	if o.Repulsion > 0 {
		d.Repulsion = o.Repulsion
	}
	if o.CustomRepulsion > 0 {
		d.CustomRepulsion = o.CustomRepulsion
	}
	if o.Gravity > 0 {
		d.Gravity = o.Gravity
	}
	if o.InheritLength > 0 {
		d.InheritLength = o.InheritLength
	}
	if o.RefLength > 0 {
		d.RefLength = o.RefLength
	}
	if o.RelLength > 0 {
		d.RelLength = o.RelLength
	}
	if o.InheritSpring > 0 {
		d.InheritSpring = o.InheritSpring
	}
	if o.RefSpring > 0 {
		d.RefSpring = o.RefSpring
	}
	if o.RelSpring > 0 {
		d.RelSpring = o.RelSpring
	}
	if o.CollidePadding > 0 {
		d.CollidePadding = o.CollidePadding
	}
	if o.ReheatAlpha > 0 {
		d.ReheatAlpha = o.ReheatAlpha
	}
	return d
}

// repulsionCutoff is the interaction radius used by the gridded passes in
// the degraded modes.
const repulsionCutoff = 250.0

// goldenAngle spreads initial positions on a deterministic spiral, so runs
// are reproducible without a seed.
const goldenAngle = 2.39996322972865332

// ForceEngine runs a typed-spring force simulation. After Calculate it keeps
// the live simulation, so callers can pin tables, reheat and tick further
// for interactive dragging.
type ForceEngine struct {
	opts ForceOptions

	g         *Graph
	canvas    Size
	mode      perfMode
	escalated bool
	alpha     float64
}

// NewForceEngine creates a force engine with the given options.
func NewForceEngine(opts ForceOptions) *ForceEngine {
	return &ForceEngine{opts: opts.withDefaults()}
}

func (e *ForceEngine) Name() string { return "force" }

// Calculate seeds every free node on a spiral around the canvas center and
// runs the simulation until it settles or the tick budget runs out. Four
// forces apply each tick: typed springs (inheritance shortest and stiffest),
// repulsion (custom tables push harder), centering gravity, and collision
// with importance-scaled radii. Maximum mode skips collision.
func (e *ForceEngine) Calculate(g *Graph, canvas Size, hint Hint) (*Result, error) {
	mode, escalated := resolveMode(hint, len(g.Nodes))
	e.g = g
	e.canvas = canvas
	e.mode = mode
	e.escalated = escalated
	e.alpha = e.opts.Alpha

	if len(g.Nodes) == 0 {
		return buildResult("force", g, mode, escalated), nil
	}

	cx, cy := canvas.Width/2, canvas.Height/2
	for i, n := range g.Nodes {
		if n.fx != nil {
			n.X, n.Y = *n.fx, *n.fy
			continue
		}
		radius := 30 * math.Sqrt(float64(i))
		angle := float64(i) * goldenAngle
		n.X = cx + radius*math.Cos(angle)
		n.Y = cy + radius*math.Sin(angle)
		n.vx, n.vy = 0, 0
	}

	iterations := e.opts.Iterations
	switch mode {
	case modeHigh:
		iterations = e.opts.Iterations * 2 / 5
	case modeMaximum:
		iterations = e.opts.Iterations / 5
	}
	for i := 0; i < iterations && e.alpha > e.opts.AlphaMin; i++ {
		e.tick()
	}

	return buildResult("force", g, mode, escalated), nil
}

// Pin fixes a table at a position, as during a drag. No-op for unknown ids.
func (e *ForceEngine) Pin(id string, x, y float64) {
	if e.g == nil {
		return
	}
	n := e.g.Node(id)
	if n == nil {
		return
	}
	px, py := x, y
	n.fx, n.fy = &px, &py
	n.X, n.Y = x, y
	n.vx, n.vy = 0, 0
}

// Unpin releases a pinned table back to the simulation.
func (e *ForceEngine) Unpin(id string) {
	if e.g == nil {
		return
	}
	if n := e.g.Node(id); n != nil {
		n.fx, n.fy = nil, nil
	}
}

// Reheat restores a mild temperature so the neighborhood settles around
// moved tables without restarting the whole layout.
func (e *ForceEngine) Reheat() {
	if e.alpha < e.opts.ReheatAlpha {
		e.alpha = e.opts.ReheatAlpha
	}
}

// Alpha reports the current simulation temperature.
func (e *ForceEngine) Alpha() float64 { return e.alpha }

// Settled reports whether the simulation has cooled below its threshold.
func (e *ForceEngine) Settled() bool { return e.alpha <= e.opts.AlphaMin }

// Tick advances the live simulation up to n steps, stopping early once
// settled. Returns the steps actually run.
func (e *ForceEngine) Tick(n int) int {
	if e.g == nil {
		return 0
	}
	ran := 0
	for ; ran < n && e.alpha > e.opts.AlphaMin; ran++ {
		e.tick()
	}
	return ran
}

// Snapshot rebuilds a result from the live simulation state.
func (e *ForceEngine) Snapshot() *Result {
	if e.g == nil {
		return &Result{Engine: "force"}
	}
	return buildResult("force", e.g, e.mode, e.escalated)
}

func (e *ForceEngine) tick() {
	e.alpha *= 1 - e.opts.AlphaDecay

	e.applySprings()
	if e.mode == modeStandard {
		e.applyRepulsionFull()
	} else {
		e.applyRepulsionGrid()
	}
	e.applyGravity()
	if e.mode != modeMaximum {
		e.applyCollision()
	}

	for _, n := range e.g.Nodes {
		if n.fx != nil {
			n.X, n.Y = *n.fx, *n.fy
			n.vx, n.vy = 0, 0
			continue
		}
		n.vx *= e.opts.Damping
		n.vy *= e.opts.Damping
		n.X += n.vx
		n.Y += n.vy
	}
}

func (e *ForceEngine) springFor(kind graph.EdgeKind) (length, stiffness float64) {
	switch kind {
	case graph.EdgeInheritance:
		return e.opts.InheritLength, e.opts.InheritSpring
	case graph.EdgeReference:
		return e.opts.RefLength, e.opts.RefSpring
	default:
		return e.opts.RelLength, e.opts.RelSpring
	}
}

func (e *ForceEngine) applySprings() {
	for _, l := range e.g.Links {
		length, stiffness := e.springFor(l.Kind)
		dx := l.Target.X - l.Source.X
		dy := l.Target.Y - l.Source.Y
		dist := math.Hypot(dx, dy)
		if dist < 1e-6 {
			dist = 1e-6
		}
		f := (dist - length) * stiffness * e.alpha / dist
		fx, fy := dx*f, dy*f
		l.Source.vx += fx
		l.Source.vy += fy
		l.Target.vx -= fx
		l.Target.vy -= fy
	}
}

func (e *ForceEngine) repulsionOf(n *Node) float64 {
	if n.Custom {
		return e.opts.CustomRepulsion
	}
	return e.opts.Repulsion
}

func (e *ForceEngine) applyRepulsionFull() {
	nodes := e.g.Nodes
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			e.repel(nodes[i], nodes[j])
		}
	}
}

// applyRepulsionGrid buckets nodes into cutoff-sized cells and only repels
// within the 3x3 neighborhood. Far-field push is lost, which is the accepted
// degradation of the high-performance path.
func (e *ForceEngine) applyRepulsionGrid() {
	type cell struct{ cx, cy int }
	buckets := make(map[cell][]*Node, len(e.g.Nodes))
	at := func(n *Node) cell {
		return cell{int(math.Floor(n.X / repulsionCutoff)), int(math.Floor(n.Y / repulsionCutoff))}
	}
	for _, n := range e.g.Nodes {
		c := at(n)
		buckets[c] = append(buckets[c], n)
	}
	for _, n := range e.g.Nodes {
		c := at(n)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, m := range buckets[cell{c.cx + dx, c.cy + dy}] {
					if m == n {
						continue
					}
					e.repelOne(n, m)
				}
			}
		}
	}
}

// repel applies symmetric repulsion to both nodes.
func (e *ForceEngine) repel(a, b *Node) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	d2 := dx*dx + dy*dy
	if d2 < 1 {
		d2 = 1
	}
	d := math.Sqrt(d2)
	fa := e.repulsionOf(b) * e.alpha / d2
	fb := e.repulsionOf(a) * e.alpha / d2
	a.vx -= dx / d * fa
	a.vy -= dy / d * fa
	b.vx += dx / d * fb
	b.vy += dy / d * fb
}

// repelOne pushes only n; the grid pass visits each ordered pair once per
// side.
func (e *ForceEngine) repelOne(n, other *Node) {
	dx := other.X - n.X
	dy := other.Y - n.Y
	d2 := dx*dx + dy*dy
	if d2 < 1 {
		d2 = 1
	}
	if d2 > repulsionCutoff*repulsionCutoff {
		return
	}
	d := math.Sqrt(d2)
	f := e.repulsionOf(other) * e.alpha / d2
	n.vx -= dx / d * f
	n.vy -= dy / d * f
}

func (e *ForceEngine) applyGravity() {
	cx, cy := e.canvas.Width/2, e.canvas.Height/2
	for _, n := range e.g.Nodes {
		n.vx += (cx - n.X) * e.opts.Gravity * e.alpha
		n.vy += (cy - n.Y) * e.opts.Gravity * e.alpha
	}
}

// collideRadius grows with record volume, and important custom tables get a
// little extra clearance.
func (e *ForceEngine) collideRadius(n *Node) float64 {
	r := 12 + 3*math.Log10(1+float64(n.Records))
	if n.Custom {
		r += 3
	}
	return r + e.opts.CollidePadding
}

func (e *ForceEngine) applyCollision() {
	nodes := e.g.Nodes
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		ra := e.collideRadius(a)
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			minDist := ra + e.collideRadius(b)
			if dist >= minDist || dist < 1e-6 {
				continue
			}
			overlap := (minDist - dist) / dist / 2
			a.vx -= dx * overlap
			a.vy -= dy * overlap
			b.vx += dx * overlap
			b.vy += dy * overlap
		}
	}
}
