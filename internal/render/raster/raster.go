// Package raster draws scenes into PNG images with gg.
package raster

import (
	"fmt"
	"image"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"brainmap/internal/scene"
)

const (
	labelShadowOpacity = 0.55
	nodeShadowOpacity  = 0.35
	edgeShadowOpacity  = 0.25
	minFontSize        = 4.0
)

// Renderer rasterises scenes. It caches font faces per size and is not safe
// for concurrent use.
type Renderer struct {
	font  *truetype.Font
	faces map[int]font.Face
}

// New parses the embedded Go Mono font.
func New() (*Renderer, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{font: f, faces: make(map[int]font.Face)}, nil
}

var _ scene.Renderer = (*Renderer)(nil)

// Render encodes s as a PNG into w.
func (r *Renderer) Render(s *scene.Scene, w io.Writer) error {
	img, err := r.Image(s)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Image draws s and returns the image.
func (r *Renderer) Image(s *scene.Scene) (image.Image, error) {
	width, height := int(math.Round(s.Width)), int(math.Round(s.Height))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cannot render a %dx%d scene", width, height)
	}

	dc := gg.NewContext(width, height)
	d := &drawer{r: r, dc: dc, s: s, zoom: s.Viewport.Zoom}
	if d.zoom <= 0 {
		d.zoom = 1
	}

	// Background, then edges behind nodes, then overlays on top
	d.background()
	for i := range s.Edges {
		d.edge(&s.Edges[i])
	}
	for i := range s.Nodes {
		d.node(&s.Nodes[i])
	}
	if s.Minimap != nil {
		d.minimap(s.Minimap)
	}
	d.controls()
	return dc.Image(), nil
}

func (r *Renderer) face(size float64) font.Face {
	key := int(math.Round(math.Max(size, minFontSize)))
	if f, ok := r.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f
}

type drawer struct {
	r    *Renderer
	dc   *gg.Context
	s    *scene.Scene
	zoom float64
}

// pt maps a canvas point into image space.
func (d *drawer) pt(x, y float64) (float64, float64) {
	return x*d.zoom + d.s.Viewport.PanX, y*d.zoom + d.s.Viewport.PanY
}

func (d *drawer) setColor(hex string, opacity float64) {
	d.dc.SetColor(scene.RGBA(hex, opacity))
}

func (d *drawer) background() {
	d.setColor(d.s.Background, 1)
	d.dc.Clear()
	for _, dot := range d.s.Dots {
		d.setColor(scene.LabelColor, dot.Opacity)
		d.dc.DrawCircle(dot.X, dot.Y, dot.R)
		d.dc.Fill()
	}
}

func (d *drawer) curve(c scene.Curve) {
	x0, y0 := d.pt(c.Start.X, c.Start.Y)
	cx, cy := d.pt(c.Control.X, c.Control.Y)
	x1, y1 := d.pt(c.End.X, c.End.Y)
	d.dc.NewSubPath()
	d.dc.MoveTo(x0, y0)
	d.dc.QuadraticTo(cx, cy, x1, y1)
}

func (d *drawer) edge(e *scene.EdgeShape) {
	dc := d.dc
	width := e.Width * d.zoom

	// Drop shadow
	d.curve(e.Shadow)
	dc.SetDash()
	dc.SetLineWidth(width)
	d.setColor(scene.ShadowColor, edgeShadowOpacity)
	dc.Stroke()

	d.curve(e.Curve)
	dc.SetDash(scaled(e.Dash, d.zoom)...)
	dc.SetLineWidth(width)
	d.setColor(e.Color, e.Opacity)
	dc.Stroke()
	dc.SetDash()

	if e.Particle != nil {
		x, y := d.pt(e.Particle.X, e.Particle.Y)
		d.setColor(scene.Lighten(e.Color, 0.4), 1)
		dc.DrawCircle(x, y, 3*d.zoom)
		dc.Fill()
	}
	if e.Label != "" {
		mid := e.Curve.At(0.5)
		x, y := d.pt(mid.X, mid.Y)
		d.text(e.Label, x, y-8*d.zoom, 10*d.zoom, scene.LabelColor, false)
	}
	if h := e.DeleteHandle; h != nil {
		x, y := d.pt(h.X, h.Y)
		r := h.R * d.zoom
		d.setColor("#ef4444", 0.95)
		dc.DrawCircle(x, y, r)
		dc.Fill()
		d.text(h.Text, x, y, r*1.4, scene.LabelColor, false)
	}
}

func scaled(dash []float64, zoom float64) []float64 {
	if len(dash) == 0 {
		return nil
	}
	out := make([]float64, len(dash))
	for i, v := range dash {
		out[i] = v * zoom
	}
	return out
}

// trace adds the outline of p, shifted by (dx, dy) screen pixels, as a new
// sub path.
func (d *drawer) trace(p scene.Path, dx, dy float64) {
	dc := d.dc
	cx, cy := d.pt(p.CX, p.CY)
	cx, cy = cx+dx, cy+dy
	switch p.Kind {
	case scene.PathPolygon:
		dc.NewSubPath()
		for i, v := range p.Points {
			x, y := d.pt(v.X, v.Y)
			if i == 0 {
				dc.MoveTo(x+dx, y+dy)
			} else {
				dc.LineTo(x+dx, y+dy)
			}
		}
		dc.ClosePath()
	case scene.PathRoundedRect:
		w, h := p.W*d.zoom, p.H*d.zoom
		dc.DrawRoundedRectangle(cx-w/2, cy-h/2, w, h, p.Corner*d.zoom)
	default:
		dc.DrawCircle(cx, cy, p.R*d.zoom)
	}
}

func (d *drawer) node(n *scene.NodeShape) {
	dc := d.dc
	cx, cy := d.pt(n.X, n.Y)
	r := n.Spec.Radius * d.zoom

	if a := n.Aura; a != nil {
		for i := len(a.Radii) - 1; i >= 0; i-- {
			d.setColor(a.Color, a.Opacities[i])
			dc.DrawCircle(cx, cy, a.Radii[i]*d.zoom)
			dc.Fill()
		}
	}

	// Elevation shadow
	d.trace(n.Path, 0, 3*d.zoom)
	d.setColor(scene.ShadowColor, nodeShadowOpacity)
	dc.Fill()

	// Orb fill, lit from the upper left
	grad := gg.NewRadialGradient(cx-r*0.3, cy-r*0.3, 0, cx, cy, r*1.2)
	grad.AddColorStop(0, scene.RGBA(n.FillInner, 1))
	grad.AddColorStop(0.6, scene.RGBA(n.Accent, 1))
	grad.AddColorStop(1, scene.RGBA(n.FillOuter, 1))
	d.trace(n.Path, 0, 0)
	dc.SetFillStyle(grad)
	dc.FillPreserve()
	d.setColor(n.Accent, n.BorderOpac)
	width := n.Spec.StrokeWidth * d.zoom
	if n.Hovered || n.Dragging {
		width *= 1.6
	}
	dc.SetLineWidth(width)
	dc.Stroke()

	for _, ring := range []*scene.Ring{n.Select, n.Source} {
		if ring == nil {
			continue
		}
		d.trace(ring.Path, 0, 0)
		dc.SetDash(scaled(ring.Dash, d.zoom)...)
		dc.SetLineWidth(1.5 * d.zoom)
		d.setColor(ring.Color, 0.9)
		dc.Stroke()
		dc.SetDash()
	}

	if n.Editing != nil {
		d.editor(n, cx, cy)
	} else {
		d.text(n.Label, cx, cy, n.Spec.FontSize*d.zoom, scene.LabelColor, true)
	}

	for _, b := range []*scene.Badge{n.LinkBadge, n.ChildBadge} {
		if b == nil {
			continue
		}
		x, y := d.pt(b.X, b.Y)
		br := b.R * d.zoom
		d.setColor(scene.BadgeColor, 0.95)
		dc.DrawCircle(x, y, br)
		dc.FillPreserve()
		d.setColor(n.Accent, 1)
		dc.SetLineWidth(d.zoom)
		dc.Stroke()
		d.text(b.Text, x, y, br*1.3, scene.LabelColor, false)
	}
}

func (d *drawer) editor(n *scene.NodeShape, cx, cy float64) {
	dc := d.dc
	size := n.Spec.FontSize * d.zoom
	dc.SetFontFace(d.r.face(size))
	tw, _ := dc.MeasureString(n.Editing.Value)
	w := math.Max(tw+size, n.Spec.Radius*2*d.zoom)
	h := size * 1.8

	d.setColor(scene.BadgeColor, 0.95)
	dc.DrawRoundedRectangle(cx-w/2, cy-h/2, w, h, 4*d.zoom)
	dc.FillPreserve()
	d.setColor(n.Accent, 1)
	dc.SetLineWidth(d.zoom)
	dc.Stroke()

	if n.Editing.Selected && n.Editing.Value != "" {
		d.setColor(scene.SourceRingColor, 0.35)
		dc.DrawRectangle(cx-tw/2, cy-size/2, tw, size)
		dc.Fill()
	}
	d.setColor(scene.LabelColor, 1)
	dc.DrawStringAnchored(n.Editing.Value, cx, cy, 0.5, 0.5)

	// Caret after the text
	caret := cx + tw/2 + 1
	dc.SetLineWidth(math.Max(d.zoom, 1))
	dc.DrawLine(caret, cy-size/2, caret, cy+size/2)
	dc.Stroke()
}

// text draws s centred on (x, y). With halo set, dark copies are drawn
// around it first so it stays readable over any fill.
func (d *drawer) text(s string, x, y, size float64, hex string, halo bool) {
	if s == "" {
		return
	}
	dc := d.dc
	dc.SetFontFace(d.r.face(size))
	if halo {
		d.setColor(scene.ShadowColor, labelShadowOpacity/2)
		for _, off := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {1, 1}} {
			dc.DrawStringAnchored(s, x+off[0], y+off[1], 0.5, 0.5)
		}
	}
	d.setColor(hex, 1)
	dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
}

func (d *drawer) minimap(m *scene.Minimap) {
	dc := d.dc
	d.setColor(scene.MinimapColor, 0.85)
	dc.DrawRoundedRectangle(m.Left, m.Top, m.Width, m.Height, 6)
	dc.FillPreserve()
	d.setColor(scene.SelectColor, 0.2)
	dc.SetLineWidth(1)
	dc.Stroke()

	for _, dot := range m.Dots {
		d.setColor(dot.Color, dot.Opacity)
		dc.DrawCircle(m.Left+dot.X, m.Top+dot.Y, 2.5)
		dc.Fill()
	}

	v := m.View
	if v.Width() > 0 && v.Height() > 0 {
		d.setColor(scene.SelectColor, 0.8)
		dc.DrawRectangle(m.Left+v.MinX, m.Top+v.MinY, v.Width(), v.Height())
		dc.Stroke()
	}
}

func (d *drawer) controls() {
	dc := d.dc
	for _, c := range d.s.Controls {
		r := c.Rect
		d.setColor(scene.MinimapColor, 0.9)
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width, r.Height, 6)
		dc.Fill()
		d.text(c.Label, r.Left+r.Width/2, r.Top+r.Height/2, 14, scene.LabelColor, false)
	}
	ro := d.s.Readout
	d.text(strconv.Itoa(d.s.ZoomPercent)+"%", ro.Left+ro.Width/2, ro.Top+ro.Height/2, 12, scene.LabelColor, false)
}
