package scene

import (
	"math"

	"brainmap/internal/layout"
)

const (
	// CurveBow is the control point offset per unit of chord length.
	CurveBow = 0.1
	// MaxCurveOffset caps the control point offset.
	MaxCurveOffset = 30.0

	curveSamples = 24
)

// Curve is a quadratic bezier in canvas space.
type Curve struct {
	Start, Control, End layout.Point
}

// NewCurve bows the chord from (sx, sy) to (tx, ty) sideways by
// min(length*0.1, 30), so long edges arc gently and short ones stay straight.
func NewCurve(sx, sy, tx, ty float64) Curve {
	dx, dy := tx-sx, ty-sy
	d := math.Hypot(dx, dy)
	mid := layout.Point{X: (sx + tx) / 2, Y: (sy + ty) / 2}
	c := Curve{Start: layout.Point{X: sx, Y: sy}, Control: mid, End: layout.Point{X: tx, Y: ty}}
	if d == 0 {
		return c
	}
	offset := math.Min(d*CurveBow, MaxCurveOffset)
	c.Control = layout.Point{X: mid.X - dy/d*offset, Y: mid.Y + dx/d*offset}
	return c
}

// Offset returns the curve translated by (dx, dy).
func (c Curve) Offset(dx, dy float64) Curve {
	move := func(p layout.Point) layout.Point { return layout.Point{X: p.X + dx, Y: p.Y + dy} }
	return Curve{Start: move(c.Start), Control: move(c.Control), End: move(c.End)}
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) layout.Point {
	u := 1 - t
	return layout.Point{
		X: u*u*c.Start.X + 2*u*t*c.Control.X + t*t*c.End.X,
		Y: u*u*c.Start.Y + 2*u*t*c.Control.Y + t*t*c.End.Y,
	}
}

// Samples returns n+1 evenly spaced points along the curve.
func (c Curve) Samples(n int) []layout.Point {
	if n < 1 {
		n = 1
	}
	pts := make([]layout.Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = c.At(float64(i) / float64(n))
	}
	return pts
}

// Distance approximates the distance from (x, y) to the curve.
func (c Curve) Distance(x, y float64) float64 {
	pts := c.Samples(curveSamples)
	best := math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		best = math.Min(best, segmentDistance(pts[i], pts[i+1], x, y))
	}
	return best
}

func segmentDistance(a, b layout.Point, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}
