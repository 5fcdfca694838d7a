package scene

import (
	"math"

	"brainmap/internal/layout"
	"brainmap/internal/model"
)

// PathKind tells renderers how to trace a Path.
type PathKind int

const (
	PathCircle PathKind = iota
	PathPolygon
	PathRoundedRect
)

// Path is the outline of a node in canvas space.
type Path struct {
	Kind PathKind

	// Centre, shared by every kind.
	CX, CY float64
	// Radius of a circle.
	R float64
	// Vertices of a polygon.
	Points []layout.Point
	// Size and corner radius of a rounded rectangle.
	W, H, Corner float64
}

// ShapePath returns the outline of shape centred on (cx, cy) for radius r.
func ShapePath(shape model.Shape, cx, cy, r float64) Path {
	switch shape {
	case model.ShapeRectangle:
		return Path{Kind: PathRoundedRect, CX: cx, CY: cy, W: r * 2.4, H: r * 1.5, Corner: r * 0.2}
	case model.ShapeDiamond:
		d := r * 1.15
		return Path{Kind: PathPolygon, CX: cx, CY: cy, Points: []layout.Point{
			{X: cx, Y: cy - d},
			{X: cx + d, Y: cy},
			{X: cx, Y: cy + d},
			{X: cx - d, Y: cy},
		}}
	case model.ShapeHexagon:
		pts := make([]layout.Point, 6)
		for i := range pts {
			a := (float64(i)*60 - 30) * math.Pi / 180
			pts[i] = layout.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
		}
		return Path{Kind: PathPolygon, CX: cx, CY: cy, Points: pts}
	case model.ShapePill:
		h := r * 1.5
		return Path{Kind: PathRoundedRect, CX: cx, CY: cy, W: r * 3, H: h, Corner: h / 2}
	default:
		return Path{Kind: PathCircle, CX: cx, CY: cy, R: r}
	}
}

// Contains reports whether (x, y) lies inside the path.
func (p Path) Contains(x, y float64) bool {
	switch p.Kind {
	case PathPolygon:
		return polygonContains(p.Points, x, y)
	case PathRoundedRect:
		c := math.Min(p.Corner, math.Min(p.W, p.H)/2)
		dx := math.Max(math.Abs(x-p.CX)-(p.W/2-c), 0)
		dy := math.Max(math.Abs(y-p.CY)-(p.H/2-c), 0)
		return dx*dx+dy*dy <= c*c
	default:
		dx, dy := x-p.CX, y-p.CY
		return dx*dx+dy*dy <= p.R*p.R
	}
}

// polygonContains uses a cross product sign test; points must be convex.
func polygonContains(points []layout.Point, x, y float64) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	var positive, negative bool
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// Extent returns the half width and half height of the path.
func (p Path) Extent() (float64, float64) {
	switch p.Kind {
	case PathPolygon:
		var hw, hh float64
		for _, pt := range p.Points {
			hw = math.Max(hw, math.Abs(pt.X-p.CX))
			hh = math.Max(hh, math.Abs(pt.Y-p.CY))
		}
		return hw, hh
	case PathRoundedRect:
		return p.W / 2, p.H / 2
	default:
		return p.R, p.R
	}
}
