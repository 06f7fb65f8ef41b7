package render

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// --- Viewport Tests ---

func TestWorldRect_IdentityView(t *testing.T) {
	vp := Viewport{Zoom: 1, Width: 800, Height: 600}
	r := vp.WorldRect(0)
	approx(t, r.MinX, 0)
	approx(t, r.MinY, 0)
	approx(t, r.MaxX, 800)
	approx(t, r.MaxY, 600)
}

func TestWorldRect_PanAndZoom(t *testing.T) {
	vp := Viewport{PanX: 100, PanY: 50, Zoom: 2, Width: 800, Height: 600}
	r := vp.WorldRect(80)
	// 80 screen pixels is 40 world units at 2x zoom.
	approx(t, r.MinX, 100/2.0-40)
	approx(t, r.MaxX, (100+800)/2.0+40)
	approx(t, r.MinY, 50/2.0-40)
	approx(t, r.MaxY, (50+600)/2.0+40)
}

func TestWorldRect_BufferWidensZoomedOut(t *testing.T) {
	in := Viewport{Zoom: 2, Width: 800, Height: 600}.WorldRect(80)
	out := Viewport{Zoom: 0.5, Width: 800, Height: 600}.WorldRect(80)
	inPad := -in.MinX
	outPad := -out.MinX
	approx(t, inPad, 40)
	approx(t, outPad, 160)
}

func TestViewport_RoundTrip(t *testing.T) {
	vp := Viewport{PanX: 37, PanY: -12, Zoom: 1.7, Width: 800, Height: 600}
	sx, sy := vp.ToScreen(123.5, -88.25)
	wx, wy := vp.ToWorld(sx, sy)
	approx(t, wx, 123.5)
	approx(t, wy, -88.25)
}

func TestViewport_ZeroZoomFallsBackToIdentity(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	sx, sy := vp.ToScreen(10, 20)
	approx(t, sx, 10)
	approx(t, sy, 20)
}

// --- Rect Tests ---

func TestRect_Contains(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	cases := []struct {
		x, y float64
		in   bool
	}{
		{5, 5, true},
		{0, 0, true},
		{10, 10, true},
		{-0.1, 5, false},
		{5, 10.1, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.in {
			t.Fatalf("Contains(%v, %v) = %v, want %v", c.x, c.y, got, c.in)
		}
	}
}

func TestRect_Intersects(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if !r.Intersects(Rect{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}) {
		t.Fatal("overlapping rects should intersect")
	}
	if r.Intersects(Rect{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}) {
		t.Fatal("disjoint rects should not intersect")
	}
}

func TestRect_SegmentIntersects(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	cases := []struct {
		name           string
		x1, y1, x2, y2 float64
		hit            bool
	}{
		{"endpoint inside", 5, 5, 50, 50, true},
		{"pass through horizontally", -5, 5, 15, 5, true},
		{"pass through diagonally", -5, -5, 15, 15, true},
		{"entirely outside", 20, 0, 20, 10, false},
		{"parallel above", -5, 15, 15, 15, false},
	}
	for _, c := range cases {
		if got := r.SegmentIntersects(c.x1, c.y1, c.x2, c.y2); got != c.hit {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.hit)
		}
	}
}
