// Package geom holds the canvas coordinate math: the pan/zoom viewport and
// the arrow outline.
package geom

// Zoom policy.
const (
	MinScale  = 0.2
	MaxScale  = 3.0
	ZoomSpeed = 0.001
)

// Point is a position in either screen or world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Viewport maps screen coordinates to world coordinates.
type Viewport struct {
	Pan   Point   `json:"pan"`
	Scale float64 `json:"scale"`
}

// DefaultViewport returns the viewport of a freshly created project.
func DefaultViewport() Viewport {
	return Viewport{Scale: 1}
}

// WorldFromScreen converts a screen position to world coordinates.
func (v Viewport) WorldFromScreen(sx, sy float64) Point {
	return Point{
		X: (sx - v.Pan.X) / v.Scale,
		Y: (sy - v.Pan.Y) / v.Scale,
	}
}

// ScreenFromWorld converts a world position to screen coordinates.
func (v Viewport) ScreenFromWorld(wx, wy float64) Point {
	return Point{
		X: wx*v.Scale + v.Pan.X,
		Y: wy*v.Scale + v.Pan.Y,
	}
}

// PanBy shifts the viewport. The canvas is infinite so there is no bound.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

// ZoomAt changes the scale by a raw wheel delta while keeping the world point
// under (sx, sy) at the same screen position.
func (v *Viewport) ZoomAt(sx, sy, rawDelta float64) {
	newScale := ClampScale(v.Scale - rawDelta*ZoomSpeed)
	w := v.WorldFromScreen(sx, sy)
	v.Pan.X = sx - w.X*newScale
	v.Pan.Y = sy - w.Y*newScale
	v.Scale = newScale
}

// ClampScale bounds s to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return min(max(s, MinScale), MaxScale)
}
