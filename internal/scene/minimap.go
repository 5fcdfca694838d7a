package scene

import (
	"math"

	"brainmap/internal/layout"
	"brainmap/internal/viewport"
)

const (
	MinimapWidth   = 160.0
	MinimapHeight  = 110.0
	MinimapMargin  = 16.0
	minimapPadding = 10.0
)

// MinimapDot is one node in minimap space.
type MinimapDot struct {
	ID      string
	X, Y    float64
	Color   string
	Opacity float64
}

// Minimap is an overview of every node plus the main viewport's extent.
// Dots and View are local to the minimap box; Left and Top place the box on
// screen.
type Minimap struct {
	Left, Top     float64
	Width, Height float64
	Dots          []MinimapDot
	View          layout.Rect
}

// MinimapPoint is a node position handed to BuildMinimap.
type MinimapPoint struct {
	ID    string
	X, Y  float64
	Color string
}

// BuildMinimap fits points into the minimap box with one uniform scale and
// maps the visible viewport bounds through the same transform.
func BuildMinimap(points []MinimapPoint, selectedID string, visible viewport.Bounds, screenW, screenH float64) *Minimap {
	m := &Minimap{
		Left:   screenW - MinimapWidth - MinimapMargin,
		Top:    screenH - MinimapHeight - MinimapMargin,
		Width:  MinimapWidth,
		Height: MinimapHeight,
	}
	if len(points) == 0 {
		return m
	}

	pts := make([]layout.Point, len(points))
	for i, p := range points {
		pts[i] = layout.Point{X: p.X, Y: p.Y}
	}
	bounds, _ := layout.Bounds(pts)
	bw := math.Max(bounds.Width(), 1)
	bh := math.Max(bounds.Height(), 1)

	innerW := MinimapWidth - 2*minimapPadding
	innerH := MinimapHeight - 2*minimapPadding
	scale := math.Min(innerW/bw, innerH/bh)
	offX := minimapPadding + (innerW-bounds.Width()*scale)/2
	offY := minimapPadding + (innerH-bounds.Height()*scale)/2

	project := func(x, y float64) (float64, float64) {
		return offX + (x-bounds.MinX)*scale, offY + (y-bounds.MinY)*scale
	}

	m.Dots = make([]MinimapDot, len(points))
	for i, p := range points {
		x, y := project(p.X, p.Y)
		opacity := 0.5
		if p.ID == selectedID {
			opacity = 1
		}
		m.Dots[i] = MinimapDot{ID: p.ID, X: x, Y: y, Color: p.Color, Opacity: opacity}
	}

	x0, y0 := project(visible.MinX, visible.MinY)
	x1, y1 := project(visible.MaxX, visible.MaxY)
	m.View = layout.Rect{
		MinX: clamp(x0, 0, MinimapWidth),
		MinY: clamp(y0, 0, MinimapHeight),
		MaxX: clamp(x1, 0, MinimapWidth),
		MaxY: clamp(y1, 0, MinimapHeight),
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
