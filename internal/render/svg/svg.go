// Package svg writes scenes as standalone SVG documents.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"brainmap/internal/layout"
	"brainmap/internal/scene"
)

// Renderer writes SVG. The zero value is ready to use.
type Renderer struct{}

var _ scene.Renderer = Renderer{}

// Render writes s as an SVG document into w.
func (Renderer) Render(s *scene.Scene, w io.Writer) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("cannot render a %.0fx%.0f scene", s.Width, s.Height)
	}
	var svg bytes.Buffer
	writeDocument(&svg, s)
	if _, err := w.Write(svg.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func writeDocument(svg *bytes.Buffer, s *scene.Scene) {
	zoom := s.Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	fmt.Fprintf(svg, "<svg width=\"%.0f\" height=\"%.0f\" viewBox=\"0 0 %.0f %.0f\" xmlns=\"http://www.w3.org/2000/svg\">\n",
		s.Width, s.Height, s.Width, s.Height)
	svg.WriteString("  <style>\n")
	svg.WriteString("    .label { font-family: 'Go Mono', monospace; text-anchor: middle; dominant-baseline: central; }\n")
	svg.WriteString("    .edge { fill: none; stroke-linecap: round; }\n")
	svg.WriteString("  </style>\n")

	// Gradients and the label blur
	svg.WriteString("  <defs>\n")
	svg.WriteString("    <filter id=\"label-blur\" x=\"-20%\" y=\"-50%\" width=\"140%\" height=\"200%\">\n")
	svg.WriteString("      <feGaussianBlur stdDeviation=\"1.5\" />\n")
	svg.WriteString("    </filter>\n")
	svg.WriteString("    <filter id=\"soft-shadow\" x=\"-50%\" y=\"-50%\" width=\"200%\" height=\"200%\">\n")
	svg.WriteString("      <feGaussianBlur stdDeviation=\"3\" />\n")
	svg.WriteString("    </filter>\n")
	for i := range s.Nodes {
		n := &s.Nodes[i]
		fmt.Fprintf(svg, "    <radialGradient id=\"%s\" cx=\"50%%\" cy=\"50%%\" r=\"60%%\" fx=\"35%%\" fy=\"35%%\">\n", gradientID(i))
		fmt.Fprintf(svg, "      <stop offset=\"0%%\" stop-color=\"%s\" />\n", n.FillInner)
		fmt.Fprintf(svg, "      <stop offset=\"60%%\" stop-color=\"%s\" />\n", n.Accent)
		fmt.Fprintf(svg, "      <stop offset=\"100%%\" stop-color=\"%s\" />\n", n.FillOuter)
		svg.WriteString("    </radialGradient>\n")
	}
	svg.WriteString("  </defs>\n")

	fmt.Fprintf(svg, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\" />\n", s.Background)
	if len(s.Dots) > 0 {
		svg.WriteString("  <g class=\"dots\">\n")
		for _, d := range s.Dots {
			fmt.Fprintf(svg, "    <circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.2f\" fill=\"%s\" fill-opacity=\"%.2f\" />\n",
				d.X, d.Y, d.R, scene.LabelColor, d.Opacity)
		}
		svg.WriteString("  </g>\n")
	}

	fmt.Fprintf(svg, "  <g transform=\"translate(%.2f %.2f) scale(%.4f)\">\n", s.Viewport.PanX, s.Viewport.PanY, zoom)
	for i := range s.Edges {
		writeEdge(svg, &s.Edges[i])
	}
	for i := range s.Nodes {
		writeNode(svg, &s.Nodes[i], gradientID(i))
	}
	svg.WriteString("  </g>\n")

	if s.Minimap != nil {
		writeMinimap(svg, s.Minimap)
	}
	writeControls(svg, s)
	svg.WriteString("</svg>\n")
}

func gradientID(i int) string {
	return fmt.Sprintf("orb-%d", i)
}

func curvePath(c scene.Curve) string {
	return fmt.Sprintf("M %.2f %.2f Q %.2f %.2f %.2f %.2f",
		c.Start.X, c.Start.Y, c.Control.X, c.Control.Y, c.End.X, c.End.Y)
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, v := range dash {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf(" stroke-dasharray=\"%s\"", strings.Join(parts, " "))
}

func writeEdge(svg *bytes.Buffer, e *scene.EdgeShape) {
	fmt.Fprintf(svg, "    <g data-edge=\"%s\">\n", html.EscapeString(e.ID))
	fmt.Fprintf(svg, "      <path d=\"%s\" class=\"edge\" stroke=\"%s\" stroke-opacity=\"0.25\" stroke-width=\"%.2f\" />\n",
		curvePath(e.Shadow), scene.ShadowColor, e.Width)
	fmt.Fprintf(svg, "      <path d=\"%s\" class=\"edge\" stroke=\"%s\" stroke-opacity=\"%.2f\" stroke-width=\"%.2f\"%s />\n",
		curvePath(e.Curve), e.Color, e.Opacity, e.Width, dashAttr(e.Dash))
	if e.Particle != nil {
		fmt.Fprintf(svg, "      <circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\" />\n",
			e.Particle.X, e.Particle.Y, scene.Lighten(e.Color, 0.4))
	}
	if e.Label != "" {
		mid := e.Curve.At(0.5)
		fmt.Fprintf(svg, "      <text x=\"%.2f\" y=\"%.2f\" class=\"label\" font-size=\"10\" fill=\"%s\">%s</text>\n",
			mid.X, mid.Y-8, scene.LabelColor, html.EscapeString(e.Label))
	}
	if h := e.DeleteHandle; h != nil {
		fmt.Fprintf(svg, "      <circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.1f\" fill=\"#ef4444\" />\n", h.X, h.Y, h.R)
		fmt.Fprintf(svg, "      <text x=\"%.2f\" y=\"%.2f\" class=\"label\" font-size=\"%.1f\" fill=\"%s\">%s</text>\n",
			h.X, h.Y, h.R*1.4, scene.LabelColor, html.EscapeString(h.Text))
	}
	svg.WriteString("    </g>\n")
}

// pathElement returns the SVG element for p with the given extra attributes.
func pathElement(p scene.Path, attrs string) string {
	switch p.Kind {
	case scene.PathPolygon:
		pts := make([]string, len(p.Points))
		for i, v := range p.Points {
			pts[i] = fmt.Sprintf("%.2f,%.2f", v.X, v.Y)
		}
		return fmt.Sprintf("<polygon points=\"%s\"%s />", strings.Join(pts, " "), attrs)
	case scene.PathRoundedRect:
		return fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"%.2f\" ry=\"%.2f\"%s />",
			p.CX-p.W/2, p.CY-p.H/2, p.W, p.H, p.Corner, p.Corner, attrs)
	default:
		return fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\"%s />", p.CX, p.CY, p.R, attrs)
	}
}

func writeNode(svg *bytes.Buffer, n *scene.NodeShape, gradient string) {
	fmt.Fprintf(svg, "    <g data-node=\"%s\">\n", html.EscapeString(n.ID))
	if a := n.Aura; a != nil {
		for i := len(a.Radii) - 1; i >= 0; i-- {
			fmt.Fprintf(svg, "      <circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" fill-opacity=\"%.2f\" filter=\"url(#soft-shadow)\" />\n",
				a.X, a.Y, a.Radii[i], a.Color, a.Opacities[i])
		}
	}

	shadow := n.Path
	shadow.CY += 3
	shadow.Points = make([]layout.Point, len(n.Path.Points))
	for i, v := range n.Path.Points {
		shadow.Points[i] = layout.Point{X: v.X, Y: v.Y + 3}
	}
	fmt.Fprintf(svg, "      %s\n", pathElement(shadow, fmt.Sprintf(" fill=\"%s\" fill-opacity=\"0.35\" filter=\"url(#soft-shadow)\"", scene.ShadowColor)))

	width := n.Spec.StrokeWidth
	if n.Hovered || n.Dragging {
		width *= 1.6
	}
	fmt.Fprintf(svg, "      %s\n", pathElement(n.Path, fmt.Sprintf(" fill=\"url(#%s)\" stroke=\"%s\" stroke-opacity=\"%.2f\" stroke-width=\"%.2f\"",
		gradient, n.Accent, n.BorderOpac, width)))

	for _, ring := range []*scene.Ring{n.Select, n.Source} {
		if ring == nil {
			continue
		}
		fmt.Fprintf(svg, "      %s\n", pathElement(ring.Path, fmt.Sprintf(" fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\"%s", ring.Color, dashAttr(ring.Dash))))
	}

	if e := n.Editing; e != nil {
		w := max(float64(len([]rune(e.Value))+2)*n.Spec.FontSize*0.6, n.Spec.Radius*2)
		h := n.Spec.FontSize * 1.8
		fmt.Fprintf(svg, "      <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"4\" fill=\"%s\" stroke=\"%s\" />\n",
			n.X-w/2, n.Y-h/2, w, h, scene.BadgeColor, n.Accent)
		sel := ""
		if e.Selected {
			sel = ` text-decoration="underline" data-selected="true"`
		}
		fmt.Fprintf(svg, "      <text x=\"%.2f\" y=\"%.2f\" class=\"label\" font-size=\"%.1f\" fill=\"%s\"%s>%s</text>\n",
			n.X, n.Y, n.Spec.FontSize, scene.LabelColor, sel, html.EscapeString(e.Value))
	} else if n.Label != "" {
		label := html.EscapeString(n.Label)
		fmt.Fprintf(svg, "      <text x=\"%.2f\" y=\"%.2f\" class=\"label\" font-size=\"%.1f\" fill=\"%s\" fill-opacity=\"0.7\" filter=\"url(#label-blur)\">%s</text>\n",
			n.X, n.Y+1, n.Spec.FontSize, scene.ShadowColor, label)
		fmt.Fprintf(svg, "      <text x=\"%.2f\" y=\"%.2f\" class=\"label\" font-size=\"%.1f\" fill=\"%s\"><title>%s</title>%s</text>\n",
			n.X, n.Y, n.Spec.FontSize, scene.LabelColor, html.EscapeString(n.FullLabel), label)
	}

	for _, b := range []*scene.Badge{n.LinkBadge, n.ChildBadge} {
		if b == nil {
			continue
		}
		fmt.Fprintf(svg, "      <circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.1f\" fill=\"%s\" stroke=\"%s\" />\n",
			b.X, b.Y, b.R, scene.BadgeColor, n.Accent)
		fmt.Fprintf(svg, "      <text x=\"%.2f\" y=\"%.2f\" class=\"label\" font-size=\"%.1f\" fill=\"%s\">%s</text>\n",
			b.X, b.Y, b.R*1.3, scene.LabelColor, html.EscapeString(b.Text))
	}
	svg.WriteString("    </g>\n")
}

func writeMinimap(svg *bytes.Buffer, m *scene.Minimap) {
	fmt.Fprintf(svg, "  <g class=\"minimap\" transform=\"translate(%.1f %.1f)\">\n", m.Left, m.Top)
	fmt.Fprintf(svg, "    <rect width=\"%.0f\" height=\"%.0f\" rx=\"6\" fill=\"%s\" fill-opacity=\"0.85\" stroke=\"%s\" stroke-opacity=\"0.2\" />\n",
		m.Width, m.Height, scene.MinimapColor, scene.SelectColor)
	for _, d := range m.Dots {
		fmt.Fprintf(svg, "    <circle cx=\"%.2f\" cy=\"%.2f\" r=\"2.5\" fill=\"%s\" fill-opacity=\"%.2f\" />\n", d.X, d.Y, d.Color, d.Opacity)
	}
	v := m.View
	if v.Width() > 0 && v.Height() > 0 {
		fmt.Fprintf(svg, "    <rect class=\"view\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-opacity=\"0.8\" />\n",
			v.MinX, v.MinY, v.Width(), v.Height(), scene.SelectColor)
	}
	svg.WriteString("  </g>\n")
}

func writeControls(svg *bytes.Buffer, s *scene.Scene) {
	svg.WriteString("  <g class=\"controls\">\n")
	for _, c := range s.Controls {
		r := c.Rect
		fmt.Fprintf(svg, "    <rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"6\" fill=\"%s\" fill-opacity=\"0.9\" />\n",
			r.Left, r.Top, r.Width, r.Height, scene.MinimapColor)
		fmt.Fprintf(svg, "    <text x=\"%.1f\" y=\"%.1f\" class=\"label\" font-size=\"14\" fill=\"%s\">%s</text>\n",
			r.Left+r.Width/2, r.Top+r.Height/2, scene.LabelColor, html.EscapeString(c.Label))
	}
	ro := s.Readout
	fmt.Fprintf(svg, "    <text x=\"%.1f\" y=\"%.1f\" class=\"label zoom\" font-size=\"12\" fill=\"%s\">%d%%</text>\n",
		ro.Left+ro.Width/2, ro.Top+ro.Height/2, scene.LabelColor, s.ZoomPercent)
	svg.WriteString("  </g>\n")
}
