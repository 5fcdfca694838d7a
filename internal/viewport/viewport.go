// Package viewport maps between screen pixels and canvas (model) coordinates.
package viewport

import "math"

const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 3.0

	// WheelFactor is applied per wheel tick.
	WheelFactor = 1.08
	// ButtonFactor is applied per zoom button press.
	ButtonFactor = 1.2
)

// Rect is the on-screen container of the canvas.
type Rect struct {
	Left, Top, Width, Height float64
}

// Bounds is an axis aligned rectangle in canvas space.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Viewport holds the pan offset and zoom factor.
type Viewport struct {
	PanX, PanY float64
	Zoom       float64
	MinZoom    float64
	MaxZoom    float64
	// WheelStep is the zoom factor of one wheel tick.
	WheelStep float64
	Rect      Rect
}

// New returns a viewport at zoom 1 with the default zoom limits.
func New() *Viewport {
	return &Viewport{Zoom: 1, MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom, WheelStep: WheelFactor}
}

// SetLimits changes the zoom limits and re-clamps the current zoom.
func (v *Viewport) SetLimits(minZoom, maxZoom float64) {
	if minZoom <= 0 {
		minZoom = DefaultMinZoom
	}
	if maxZoom <= 0 {
		maxZoom = DefaultMaxZoom
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	v.MinZoom, v.MaxZoom = minZoom, maxZoom
	v.Zoom = v.clamp(v.zoom())
}

// SetRect records the container geometry.
func (v *Viewport) SetRect(r Rect) {
	v.Rect = r
}

func (v *Viewport) zoom() float64 {
	if v.Zoom <= 0 || math.IsNaN(v.Zoom) || math.IsInf(v.Zoom, 0) {
		v.Zoom = 1
	}
	return v.Zoom
}

func (v *Viewport) clamp(z float64) float64 {
	lo, hi := v.MinZoom, v.MaxZoom
	if lo <= 0 {
		lo = DefaultMinZoom
	}
	if hi < lo {
		hi = DefaultMaxZoom
	}
	return math.Max(lo, math.Min(hi, z))
}

// ScreenToCanvas converts a screen point to canvas coordinates.
func (v *Viewport) ScreenToCanvas(sx, sy float64) (float64, float64) {
	z := v.zoom()
	return (sx - v.Rect.Left - v.PanX) / z, (sy - v.Rect.Top - v.PanY) / z
}

// CanvasToScreen converts a canvas point to screen coordinates.
func (v *Viewport) CanvasToScreen(x, y float64) (float64, float64) {
	z := v.zoom()
	return x*z + v.PanX + v.Rect.Left, y*z + v.PanY + v.Rect.Top
}

// ZoomAt scales the zoom by factor while keeping the canvas point under
// (sx, sy) fixed on screen.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	old := v.zoom()
	next := v.clamp(old * factor)
	ratio := next / old

	px := sx - v.Rect.Left
	py := sy - v.Rect.Top
	v.PanX = px - (px-v.PanX)*ratio
	v.PanY = py - (py-v.PanY)*ratio
	v.Zoom = next
}

// Wheel zooms about the cursor for one wheel tick. Scrolling down
// (positive delta) zooms out.
func (v *Viewport) Wheel(sx, sy, deltaY float64) {
	step := v.WheelStep
	if step <= 1 {
		step = WheelFactor
	}
	switch {
	case deltaY > 0:
		v.ZoomAt(sx, sy, 1/step)
	case deltaY < 0:
		v.ZoomAt(sx, sy, step)
	}
}

// ZoomStep zooms about the container centre.
func (v *Viewport) ZoomStep(factor float64) {
	cx, cy := v.center()
	v.ZoomAt(cx, cy, factor)
}

func (v *Viewport) center() (float64, float64) {
	return v.Rect.Left + v.Rect.Width/2, v.Rect.Top + v.Rect.Height/2
}

// CenterOn pans so (x, y) sits at the container midpoint. Zoom is kept.
func (v *Viewport) CenterOn(x, y float64) {
	z := v.zoom()
	v.PanX = v.Rect.Width/2 - x*z
	v.PanY = v.Rect.Height/2 - y*z
}

// Recenter resets zoom to 1 and centres on (x, y).
func (v *Viewport) Recenter(x, y float64) {
	v.Zoom = v.clamp(1)
	v.CenterOn(x, y)
}

// Fit zooms so b fits inside the container with margin pixels to spare,
// never zooming in past 1, and centres on it.
func (v *Viewport) Fit(b Bounds, margin float64) {
	w := v.Rect.Width - 2*margin
	h := v.Rect.Height - 2*margin
	z := 1.0
	if bw := b.MaxX - b.MinX; bw > 0 && w > 0 {
		z = math.Min(z, w/bw)
	}
	if bh := b.MaxY - b.MinY; bh > 0 && h > 0 {
		z = math.Min(z, h/bh)
	}
	v.Zoom = v.clamp(z)
	v.CenterOn((b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2)
}

// PanBy moves the pan offset by a screen delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// VisibleBounds returns the canvas-space rectangle covered by the container.
func (v *Viewport) VisibleBounds() Bounds {
	minX, minY := v.ScreenToCanvas(v.Rect.Left, v.Rect.Top)
	maxX, maxY := v.ScreenToCanvas(v.Rect.Left+v.Rect.Width, v.Rect.Top+v.Rect.Height)
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Percent is the zoom readout, rounded to the nearest percent.
func (v *Viewport) Percent() int {
	return int(math.Round(v.zoom() * 100))
}
