package render

// Rect is an axis-aligned region in world coordinates.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Contains reports whether the point lies inside the rect, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether two rects overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Expand grows the rect by the same margin on every side.
func (r Rect) Expand(by float64) Rect {
	return Rect{MinX: r.MinX - by, MinY: r.MinY - by, MaxX: r.MaxX + by, MaxY: r.MaxY + by}
}

func orient(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

func segmentsCross(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := orient(cx, cy, dx, dy, ax, ay)
	d2 := orient(cx, cy, dx, dy, bx, by)
	d3 := orient(ax, ay, bx, by, cx, cy)
	d4 := orient(ax, ay, bx, by, dx, dy)
	return d1*d2 < 0 && d3*d4 < 0
}

// SegmentIntersects reports whether the segment touches the rect: an
// endpoint inside, or a proper crossing of one of the four edges. Catches
// links whose both endpoints sit off-screen but whose line passes through
// the view.
func (r Rect) SegmentIntersects(x1, y1, x2, y2 float64) bool {
	if r.Contains(x1, y1) || r.Contains(x2, y2) {
		return true
	}
	return segmentsCross(x1, y1, x2, y2, r.MinX, r.MinY, r.MaxX, r.MinY) ||
		segmentsCross(x1, y1, x2, y2, r.MaxX, r.MinY, r.MaxX, r.MaxY) ||
		segmentsCross(x1, y1, x2, y2, r.MaxX, r.MaxY, r.MinX, r.MaxY) ||
		segmentsCross(x1, y1, x2, y2, r.MinX, r.MaxY, r.MinX, r.MinY)
}

// Viewport is the user's window onto the world plane. Pan is in screen
// pixels: a point at world (wx, wy) lands on screen at (wx*Zoom-PanX,
// wy*Zoom-PanY).
type Viewport struct {
	PanX, PanY    float64
	Zoom          float64
	Width, Height float64
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ToScreen projects a world point into screen pixels.
func (v Viewport) ToScreen(wx, wy float64) (float64, float64) {
	z := v.zoom()
	return wx*z - v.PanX, wy*z - v.PanY
}

// ToWorld inverts the projection.
func (v Viewport) ToWorld(sx, sy float64) (float64, float64) {
	z := v.zoom()
	return (sx + v.PanX) / z, (sy + v.PanY) / z
}

// WorldRect is the world-space region the screen shows, padded by a buffer
// given in screen pixels. The buffer widens in world units as the user zooms
// out, so pans reveal already-placed content instead of popping.
func (v Viewport) WorldRect(bufferPx float64) Rect {
	z := v.zoom()
	b := bufferPx / z
	return Rect{
		MinX: v.PanX/z - b,
		MinY: v.PanY/z - b,
		MaxX: (v.PanX+v.Width)/z + b,
		MaxY: (v.PanY+v.Height)/z + b,
	}
}
