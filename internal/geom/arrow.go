package geom

// Arrow outline proportions.
const (
	maxHeadLen    = 40.0
	headLenRatio  = 0.4
	shaftThickPct = 0.4
)

// Polygon is a closed outline in item-local coordinates.
type Polygon []Point

// ArrowPath returns the seven-point outline of a right-pointing arrow that
// fills a w×h box: a shaft of 0.4h thickness ending in a full-height head.
func ArrowPath(w, h float64) Polygon {
	headLen := min(maxHeadLen, headLenRatio*w)
	shaft := shaftThickPct * h
	cy := h / 2
	neck := w - headLen

	return Polygon{
		{X: 0, Y: cy - shaft/2},
		{X: neck, Y: cy - shaft/2},
		{X: neck, Y: 0},
		{X: w, Y: cy},
		{X: neck, Y: h},
		{X: neck, Y: cy + shaft/2},
		{X: 0, Y: cy + shaft/2},
	}
}

// HeadLen reports the head length of p, the distance from the neck to the tip.
func (p Polygon) HeadLen() float64 {
	if len(p) < 4 {
		return 0
	}
	return p[3].X - p[1].X
}
