package view

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"snaudit/prism/internal/config"
	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/layout"
	"snaudit/prism/internal/render"
	"snaudit/prism/internal/schema"
)

const (
	zoomStep = 1.25
	panStep  = 4
	minZoom  = 0.02
	maxZoom  = 16
)

// Viewer is the interactive terminal view over a schema. All mutable state
// sits behind one mutex; the tcell screen is only touched from the event
// loop, with the frame scheduler waking it through interrupt events.
type Viewer struct {
	ds   *schema.Dataset
	hier *graph.Hierarchy
	cfg  *config.Config

	screen tcell.Screen
	sched  *render.FrameScheduler

	mu         sync.Mutex
	engineName string
	filter     graph.FilterState
	hint       layout.Hint
	res        *layout.Result
	virt       *render.Virtualizer
	force      *layout.ForceEngine // live simulation when the force view is up
	vp         render.Viewport
	frame      *render.Frame
	searching  bool
	dragging   string // table pinned under the mouse, empty when none
	escalated  bool

	quit chan struct{}
}

// Run opens the viewer over a built hierarchy and blocks until the user
// quits.
func Run(ds *schema.Dataset, h *graph.Hierarchy, cfg *config.Config, engineName string) error {
	if engineName == "" {
		engineName = cfg.Layout.Engine
	}
	if engineName != "force" {
		engineName = "tree"
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()

	v := &Viewer{
		ds:         ds,
		hier:       h,
		cfg:        cfg,
		screen:     screen,
		sched:      render.NewFrameScheduler(time.Duration(cfg.View.CoalesceMillis) * time.Millisecond),
		engineName: engineName,
		hint:       cfg.Hint(),
		quit:       make(chan struct{}),
	}

	w, hgt := screen.Size()
	v.vp = render.Viewport{Zoom: 1, Width: float64(w), Height: float64(hgt - 1)}
	v.relayout()
	v.mu.Lock()
	v.vp = fitViewport(v.res.Bounds, v.vp.Width, v.vp.Height)
	v.mu.Unlock()
	v.requestFrame()

	go v.simulate()
	defer close(v.quit)
	defer v.sched.Cancel()

	return v.loop()
}

// relayout recomputes positions for the current engine and filter and
// reindexes the virtualizer. The viewport is left alone so the view stays
// where the user put it.
func (v *Viewer) relayout() {
	v.mu.Lock()
	defer v.mu.Unlock()

	filtered := graph.ApplyFilter(v.hier, &v.filter)
	var g *layout.Graph
	if v.engineName == "force" {
		g = layout.FromGraphData(graph.BuildGraph(filtered, v.ds.References, v.ds.Relationships, true))
	} else {
		g = layout.FromHierarchy(filtered)
	}

	if v.engineName == "force" {
		v.force = layout.NewForceEngine(v.cfg.ForceOptions())
		v.res, _ = v.force.Calculate(g, v.cfg.Canvas(), v.hint)
	} else {
		v.force = nil
		engine := layout.NewTreeEngine(v.cfg.TreeOptions())
		v.res, _ = engine.Calculate(g, v.cfg.Canvas(), v.hint)
	}
	v.virt = render.NewVirtualizer(v.res, v.virtOptions())
}

func (v *Viewer) virtOptions() render.VirtualizeOptions {
	opts := v.cfg.VirtualizeOptions()
	if v.escalated {
		// Sustained low frame rate: back ordinary tables off to coarser
		// detail regardless of dataset size.
		opts.UltraCount = 1
	}
	return opts
}

// requestFrame schedules one virtualization pass. Bursts of pans and zooms
// coalesce into the last request; the computed frame is handed to the event
// loop through an interrupt event.
func (v *Viewer) requestFrame() {
	v.sched.Request(func() {
		v.mu.Lock()
		v.frame = v.virt.View(v.vp)
		v.mu.Unlock()
		v.maybeEscalate()
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// maybeEscalate trips the degraded-detail mode once the measured frame rate
// stays under budget. One-way for the life of the viewer.
func (v *Viewer) maybeEscalate() {
	if v.sched.Frames() < 30 || v.sched.Performant() {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.escalated {
		return
	}
	v.escalated = true
	v.hint = layout.HintHigh
	v.virt = render.NewVirtualizer(v.res, v.virtOptions())
}

// simulate advances the live force simulation while it is hot, keeping the
// tree view and settled layouts idle.
func (v *Viewer) simulate() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-v.quit:
			return
		case <-ticker.C:
			v.mu.Lock()
			f := v.force
			if f == nil || f.Settled() {
				v.mu.Unlock()
				continue
			}
			f.Tick(3)
			v.res = f.Snapshot()
			v.virt = render.NewVirtualizer(v.res, v.virtOptions())
			v.mu.Unlock()
			v.requestFrame()
		}
	}
}

func (v *Viewer) loop() error {
	for {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			v.draw()
		case *tcell.EventResize:
			w, h := ev.Size()
			v.mu.Lock()
			v.vp.Width, v.vp.Height = float64(w), float64(h-1)
			v.mu.Unlock()
			v.screen.Sync()
			v.requestFrame()
		case *tcell.EventMouse:
			v.handleMouse(ev)
		case *tcell.EventKey:
			if quit := v.handleKey(ev); quit {
				return nil
			}
		}
	}
}

func (v *Viewer) handleKey(ev *tcell.EventKey) (quit bool) {
	v.mu.Lock()
	searching := v.searching
	v.mu.Unlock()

	if searching {
		v.handleSearchKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.pan(0, -panStep)
	case tcell.KeyDown:
		v.pan(0, panStep)
	case tcell.KeyLeft:
		v.pan(-panStep, 0)
	case tcell.KeyRight:
		v.pan(panStep, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'h':
			v.pan(-panStep, 0)
		case 'l':
			v.pan(panStep, 0)
		case 'k':
			v.pan(0, -panStep)
		case 'j':
			v.pan(0, panStep)
		case '+', '=':
			v.zoom(zoomStep)
		case '-', '_':
			v.zoom(1 / zoomStep)
		case '0':
			v.fit()
		case '/':
			v.mu.Lock()
			v.searching = true
			v.mu.Unlock()
			v.requestFrame()
		case 'c':
			v.mu.Lock()
			v.filter.CustomOnly = !v.filter.CustomOnly
			v.mu.Unlock()
			v.relayout()
			v.requestFrame()
		case '2':
			v.toggleCategory(schema.CategoryExtended)
		case '3':
			v.toggleCategory(schema.CategoryCustom)
		case 't':
			v.switchEngine("tree")
		case 'f':
			v.switchEngine("force")
		case 'r':
			v.mu.Lock()
			if v.force != nil {
				v.force.Reheat()
			}
			v.mu.Unlock()
		}
	}
	return false
}

func (v *Viewer) handleSearchKey(ev *tcell.EventKey) {
	v.mu.Lock()
	switch ev.Key() {
	case tcell.KeyEscape:
		v.searching = false
		v.filter.Search = ""
	case tcell.KeyEnter:
		v.searching = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.filter.Search) > 0 {
			v.filter.Search = v.filter.Search[:len(v.filter.Search)-1]
		}
	case tcell.KeyRune:
		v.filter.Search += string(ev.Rune())
	}
	v.mu.Unlock()
	v.relayout()
	v.requestFrame()
}

// handleMouse drags tables in the force view: press pins the table under the
// cursor, motion follows it, release unpins and reheats so the neighborhood
// settles around the new position.
func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0

	v.mu.Lock()
	if v.force == nil {
		v.mu.Unlock()
		return
	}
	wx, wy := v.vp.ToWorld(float64(x), float64(y))
	changed := false
	switch {
	case pressed && v.dragging == "":
		if id := v.hitTest(wx, wy); id != "" {
			v.dragging = id
			v.force.Pin(id, wx, wy)
			changed = true
		}
	case pressed && v.dragging != "":
		v.force.Pin(v.dragging, wx, wy)
		changed = true
	case !pressed && v.dragging != "":
		v.force.Unpin(v.dragging)
		v.dragging = ""
		v.force.Reheat()
		changed = true
	}
	if changed {
		v.res = v.force.Snapshot()
		v.virt = render.NewVirtualizer(v.res, v.virtOptions())
	}
	v.mu.Unlock()
	if changed {
		v.requestFrame()
	}
}

// hitTest finds the table nearest a world point within a small pick radius.
// Caller holds the mutex.
func (v *Viewer) hitTest(wx, wy float64) string {
	pick := 3.0 / v.vp.Zoom
	best, bestDist := "", pick
	for i := range v.res.Nodes {
		n := &v.res.Nodes[i]
		d := math.Hypot(n.X-wx, n.Y-wy)
		if d < bestDist {
			best, bestDist = n.ID, d
		}
	}
	return best
}

func (v *Viewer) pan(dx, dy float64) {
	v.mu.Lock()
	v.vp.PanX += dx
	v.vp.PanY += dy
	v.mu.Unlock()
	v.requestFrame()
}

func (v *Viewer) zoom(factor float64) {
	v.mu.Lock()
	v.vp = zoomAt(v.vp, factor, v.vp.Width/2, v.vp.Height/2)
	v.mu.Unlock()
	v.requestFrame()
}

func (v *Viewer) fit() {
	v.mu.Lock()
	v.vp = fitViewport(v.res.Bounds, v.vp.Width, v.vp.Height)
	v.mu.Unlock()
	v.requestFrame()
}

func (v *Viewer) toggleCategory(cat schema.Category) {
	v.mu.Lock()
	if v.filter.Categories == nil {
		v.filter.Categories = make(map[schema.Category]bool)
	}
	if enabled, ok := v.filter.Categories[cat]; ok && !enabled {
		delete(v.filter.Categories, cat)
	} else {
		v.filter.Categories[cat] = false
	}
	v.mu.Unlock()
	v.relayout()
	v.requestFrame()
}

func (v *Viewer) switchEngine(name string) {
	v.mu.Lock()
	if v.engineName == name {
		v.mu.Unlock()
		return
	}
	v.engineName = name
	v.mu.Unlock()
	v.relayout()
	v.fit()
}

// zoomAt scales the viewport about a screen point, so what is under the
// cursor stays put.
func zoomAt(vp render.Viewport, factor, sx, sy float64) render.Viewport {
	wx, wy := vp.ToWorld(sx, sy)
	z := vp.Zoom * factor
	if z < minZoom {
		z = minZoom
	}
	if z > maxZoom {
		z = maxZoom
	}
	vp.Zoom = z
	vp.PanX = wx*z - sx
	vp.PanY = wy*z - sy
	return vp
}

// fitViewport frames the whole layout with a small margin.
func fitViewport(b layout.Bounds, w, h float64) render.Viewport {
	vp := render.Viewport{Zoom: 1, Width: w, Height: h}
	bw, bh := b.Width(), b.Height()
	if bw <= 0 && bh <= 0 {
		return vp
	}
	z := math.Min(w/math.Max(bw, 1), h/math.Max(bh, 1)) * 0.9
	if z < minZoom {
		z = minZoom
	}
	if z > maxZoom {
		z = maxZoom
	}
	vp.Zoom = z
	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	vp.PanX = cx*z - w/2
	vp.PanY = cy*z - h/2
	return vp
}

var (
	styleBase     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleExtended = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCustom   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDimmed   = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleLink     = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

func nodeStyle(n *render.FrameNode) tcell.Style {
	if n.Dimmed {
		return styleDimmed
	}
	switch schema.Category(n.Category) {
	case schema.CategoryBase:
		return styleBase
	case schema.CategoryCustom:
		return styleCustom
	default:
		return styleExtended
	}
}

// nodeRune picks the glyph for a table at a detail tier.
func nodeRune(detail render.Detail, custom bool) rune {
	switch detail {
	case render.DetailMinimal:
		return '·'
	default:
		if custom {
			return '◆'
		}
		return '●'
	}
}

// draw blits the latest computed frame. Runs only on the event loop
// goroutine.
func (v *Viewer) draw() {
	v.mu.Lock()
	frame := v.frame
	vp := v.vp
	status := v.statusLine()
	v.mu.Unlock()
	if frame == nil {
		return
	}

	v.screen.Clear()
	w, h := v.screen.Size()
	canvasH := h - 1

	for _, l := range frame.Links {
		x1, y1 := vp.ToScreen(l.X1, l.Y1)
		x2, y2 := vp.ToScreen(l.X2, l.Y2)
		v.drawLink(int(x1), int(y1), int(x2), int(y2), w, canvasH)
	}

	// Frame nodes arrive highest priority first; draw in reverse so the
	// important tables land on top of the crowd.
	for i := len(frame.Nodes) - 1; i >= 0; i-- {
		n := &frame.Nodes[i]
		sx, sy := vp.ToScreen(n.X, n.Y)
		x, y := int(sx), int(sy)
		if x < 0 || x >= w || y < 0 || y >= canvasH {
			continue
		}
		style := nodeStyle(n)
		v.screen.SetContent(x, y, nodeRune(n.Detail, n.Custom), nil, style)
		if n.Detail == render.DetailFull {
			v.drawLabel(x+2, y, n.ID, w, style)
		}
	}

	for x := 0; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, styleStatus)
	}
	col := 0
	for _, r := range status {
		if col >= w {
			break
		}
		v.screen.SetContent(col, h-1, r, nil, styleStatus)
		col++
	}
	v.screen.Show()
}

func (v *Viewer) drawLabel(x, y int, label string, w int, style tcell.Style) {
	for i, r := range label {
		if x+i >= w {
			return
		}
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

// drawLink samples the segment rather than drawing every cell, enough to
// read as a connection without flooding dense views.
func (v *Viewer) drawLink(x1, y1, x2, y2, w, h int) {
	dx, dy := x2-x1, y2-y1
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		return
	}
	stride := 1
	if steps > 24 {
		stride = steps / 24
	}
	for i := stride; i < steps; i += stride {
		x := x1 + dx*i/steps
		y := y1 + dy*i/steps
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		v.screen.SetContent(x, y, '·', nil, styleLink)
	}
}

// statusLine summarizes the view state. Caller holds the mutex.
func (v *Viewer) statusLine() string {
	if v.searching {
		return fmt.Sprintf(" search: %s▏ (enter to apply, esc to clear)", v.filter.Search)
	}
	s := fmt.Sprintf(" %s │ zoom %.2f │ fps %.0f", v.engineName, v.vp.Zoom, v.sched.FPS())
	if v.frame != nil {
		s += fmt.Sprintf(" │ %d/%d visible", v.frame.VisibleCount, v.frame.TotalCount)
	}
	if v.filter.Search != "" {
		s += fmt.Sprintf(" │ /%s", v.filter.Search)
	}
	if v.filter.CustomOnly {
		s += " │ custom-only"
	}
	if v.escalated {
		s += " │ degraded"
	}
	if v.force != nil && !v.force.Settled() {
		s += " │ settling"
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
