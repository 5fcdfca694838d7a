// Package scene turns the canvas state into renderer independent geometry.
//
// Node and edge geometry lives in canvas space; renderers map it through
// Scene.Viewport. Background dots, the minimap and the zoom controls are
// already in screen space.
package scene

import (
	"io"
	"strconv"

	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/viewport"
)

const (
	edgeWidth         = 2.0
	implicitEdgeWidth = 1.5
	hoverExtraWidth   = 1.5
	edgeOpacity       = 0.55
	hoverEdgeOpacity  = 0.95
	borderOpacity     = 0.6
	ringMargin        = 6.0
	badgeRadius       = 7.0
	deleteHandleR     = 8.0
	particlePeriod    = 90

	controlSize = 28.0
	controlGap  = 6.0
	readoutW    = 52.0
)

// Renderer draws a scene.
type Renderer interface {
	Render(s *Scene, w io.Writer) error
}

// Badge is a small circular marker next to a node.
type Badge struct {
	X, Y, R float64
	Text    string
}

// Ring is a dashed outline around a node.
type Ring struct {
	Path  Path
	Color string
	Dash  []float64
}

// Aura is the glow around the centre node.
type Aura struct {
	X, Y      float64
	Radii     [2]float64
	Opacities [2]float64
	Color     string
}

// EditOverlay replaces a node label while it is being edited.
type EditOverlay struct {
	Value    string
	Selected bool
}

// NodeShape is one drawable node.
type NodeShape struct {
	ID        string
	Label     string
	FullLabel string
	X, Y      float64
	Spec      model.SizeSpec
	Path      Path

	Accent     string
	FillInner  string
	FillOuter  string
	BorderOpac float64

	Select *Ring
	Source *Ring
	Aura   *Aura

	LinkBadge  *Badge
	ChildBadge *Badge
	Editing    *EditOverlay

	Hovered  bool
	Dragging bool
}

// EdgeShape is one drawable edge.
type EdgeShape struct {
	ID       string
	Curve    Curve
	Shadow   Curve
	Color    string
	Width    float64
	Opacity  float64
	Dash     []float64
	Label    string
	Implicit bool
	Hovered  bool
	Animated bool

	// Particle is the moving marker of an animated edge.
	Particle *layout.Point
	// DeleteHandle is shown at the midpoint of a hovered explicit edge.
	DeleteHandle *Badge
}

// ControlKind names a zoom control button.
type ControlKind int

const (
	ControlZoomOut ControlKind = iota
	ControlZoomIn
	ControlRecenter
)

// Control is a zoom control button in screen space.
type Control struct {
	Kind  ControlKind
	Rect  viewport.Rect
	Label string
}

// Scene is everything a renderer needs for one frame.
type Scene struct {
	Width, Height float64
	Viewport      viewport.Viewport

	Background string
	Dots       []Dot

	Edges []EdgeShape
	Nodes []NodeShape

	Minimap     *Minimap
	Controls    []Control
	ZoomPercent int
	Readout     viewport.Rect
	Cursor      string
}

// Input collects the state Build draws from.
type Input struct {
	Viewport viewport.Viewport
	Graph    *layout.Graph
	// Position returns the animated position of a node; nodes it does not
	// know are drawn at their model position.
	Position func(id string) (float64, float64, bool)

	CenterNodeID      string
	SelectedNodeID    string
	ConnectFromNodeID string
	Connecting        bool

	HoverNodeID string
	HoverEdgeID string
	DraggingID  string
	EditingID   string
	Editing     *EditOverlay

	ShowMinimap bool
	Field       *Field
	Cursor      string
	Frame       uint64
}

// Build assembles a scene from in.
func Build(in Input) *Scene {
	vp := in.Viewport
	s := &Scene{
		Width:       vp.Rect.Width,
		Height:      vp.Rect.Height,
		Viewport:    vp,
		Background:  BackgroundColor,
		Dots:        in.Field.Place(vp.Rect.Width, vp.Rect.Height, vp.PanX, vp.PanY),
		ZoomPercent: vp.Percent(),
		Cursor:      in.Cursor,
	}
	if s.Cursor == "" {
		s.Cursor = "default"
	}
	s.Controls, s.Readout = controls(s.Height)

	g := in.Graph
	if g == nil {
		g = layout.Build(nil, nil, layout.Options{})
	}

	pos := make(map[string]layout.Point, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		p := layout.Point{X: n.X, Y: n.Y}
		if in.Position != nil {
			if x, y, ok := in.Position(n.ID); ok {
				p = layout.Point{X: x, Y: y}
			}
		}
		pos[n.ID] = p
	}

	s.Edges = make([]EdgeShape, 0, len(g.Edges))
	for _, e := range g.Edges {
		a, b := pos[e.Source], pos[e.Target]
		s.Edges = append(s.Edges, edgeShape(e, a, b, e.ID == in.HoverEdgeID, in.Frame))
	}

	s.Nodes = make([]NodeShape, 0, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		s.Nodes = append(s.Nodes, nodeShape(n, pos[n.ID], g.Aux[n.ID], in))
	}

	if in.ShowMinimap {
		points := make([]MinimapPoint, len(g.Nodes))
		for i := range g.Nodes {
			n := &g.Nodes[i]
			points[i] = MinimapPoint{ID: n.ID, X: pos[n.ID].X, Y: pos[n.ID].Y, Color: n.AccentColor()}
		}
		s.Minimap = BuildMinimap(points, in.SelectedNodeID, vp.VisibleBounds(), s.Width, s.Height)
	}
	return s
}

func edgeShape(e layout.Edge, a, b layout.Point, hovered bool, frame uint64) EdgeShape {
	curve := NewCurve(a.X, a.Y, b.X, b.Y)
	es := EdgeShape{
		ID:       e.ID,
		Curve:    curve,
		Shadow:   curve.Offset(1, 2),
		Color:    e.Color,
		Width:    edgeWidth,
		Opacity:  edgeOpacity,
		Dash:     dashFor(e.Style),
		Label:    e.Label,
		Implicit: e.Implicit,
		Hovered:  hovered,
		Animated: e.Animated,
	}
	if es.Color == "" {
		es.Color = model.DefaultConnectionColor
	}
	if e.Implicit {
		es.Width = implicitEdgeWidth
	}
	if hovered {
		es.Width += hoverExtraWidth
		es.Opacity = hoverEdgeOpacity
		if !e.Implicit {
			mid := curve.At(0.5)
			es.DeleteHandle = &Badge{X: mid.X, Y: mid.Y, R: deleteHandleR, Text: "×"}
		}
	}
	if e.Animated {
		p := curve.At(float64(frame%particlePeriod) / particlePeriod)
		es.Particle = &p
	}
	return es
}

func dashFor(style model.ConnectionStyle) []float64 {
	switch style {
	case model.StyleDashed:
		return []float64{8, 6}
	case model.StyleDotted:
		return []float64{2, 4}
	default:
		return nil
	}
}

func nodeShape(n *model.Node, p layout.Point, aux layout.Aux, in Input) NodeShape {
	spec := n.Size.Spec()
	accent := n.AccentColor()
	path := ShapePath(n.Shape, p.X, p.Y, spec.Radius)
	ns := NodeShape{
		ID:         n.ID,
		Label:      model.DisplayLabel(n.Label),
		FullLabel:  n.Label,
		X:          p.X,
		Y:          p.Y,
		Spec:       spec,
		Path:       path,
		Accent:     accent,
		FillInner:  Lighten(accent, 0.35),
		FillOuter:  Darken(accent, 0.35),
		BorderOpac: borderOpacity,
		Hovered:    n.ID == in.HoverNodeID,
		Dragging:   n.ID == in.DraggingID,
	}
	if n.ID == in.SelectedNodeID {
		ns.Select = &Ring{Path: ShapePath(n.Shape, p.X, p.Y, spec.Radius+ringMargin), Color: SelectColor, Dash: []float64{6, 4}}
	}
	if in.Connecting && n.ID == in.ConnectFromNodeID {
		ns.Source = &Ring{Path: ShapePath(n.Shape, p.X, p.Y, spec.Radius+ringMargin*2), Color: SourceRingColor, Dash: []float64{4, 4}}
	}
	if n.ID == in.CenterNodeID {
		hw, hh := path.Extent()
		r := max(hw, hh)
		ns.Aura = &Aura{
			X: p.X, Y: p.Y,
			Radii:     [2]float64{r + 10, r + 22},
			Opacities: [2]float64{0.25, 0.1},
			Color:     accent,
		}
	}

	hw, hh := path.Extent()
	if aux.HasLink {
		ns.LinkBadge = &Badge{X: p.X + hw*0.8, Y: p.Y - hh*0.8, R: badgeRadius, Text: "∞"}
	}
	if aux.ChildCount > 0 {
		ns.ChildBadge = &Badge{X: p.X + hw*0.8, Y: p.Y + hh*0.8, R: badgeRadius, Text: strconv.Itoa(aux.ChildCount)}
	}
	if in.Editing != nil && n.ID == in.EditingID {
		edit := *in.Editing
		ns.Editing = &edit
	}
	return ns
}

// controls lays the zoom cluster out at the bottom left: minus, readout,
// plus, recenter.
func controls(height float64) ([]Control, viewport.Rect) {
	top := height - controlSize - MinimapMargin
	x := MinimapMargin
	out := make([]Control, 0, 3)
	out = append(out, Control{Kind: ControlZoomOut, Label: "-", Rect: viewport.Rect{Left: x, Top: top, Width: controlSize, Height: controlSize}})
	x += controlSize + controlGap
	readout := viewport.Rect{Left: x, Top: top, Width: readoutW, Height: controlSize}
	x += readoutW + controlGap
	out = append(out, Control{Kind: ControlZoomIn, Label: "+", Rect: viewport.Rect{Left: x, Top: top, Width: controlSize, Height: controlSize}})
	x += controlSize + controlGap
	out = append(out, Control{Kind: ControlRecenter, Label: "◎", Rect: viewport.Rect{Left: x, Top: top, Width: controlSize, Height: controlSize}})
	return out, readout
}

// NodeAt returns the topmost node whose outline contains the canvas point.
func (s *Scene) NodeAt(x, y float64) (string, bool) {
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		if s.Nodes[i].Path.Contains(x, y) {
			return s.Nodes[i].ID, true
		}
	}
	return "", false
}

// EdgeAt returns the topmost edge within tolerance of the canvas point.
func (s *Scene) EdgeAt(x, y, tolerance float64) (string, bool) {
	for i := len(s.Edges) - 1; i >= 0; i-- {
		if s.Edges[i].Curve.Distance(x, y) <= tolerance {
			return s.Edges[i].ID, true
		}
	}
	return "", false
}

// DeleteHandleAt returns the edge whose delete handle contains the canvas
// point.
func (s *Scene) DeleteHandleAt(x, y float64) (string, bool) {
	for i := range s.Edges {
		h := s.Edges[i].DeleteHandle
		if h == nil {
			continue
		}
		dx, dy := x-h.X, y-h.Y
		if dx*dx+dy*dy <= h.R*h.R {
			return s.Edges[i].ID, true
		}
	}
	return "", false
}

// ControlAt returns the zoom control under the screen point.
func (s *Scene) ControlAt(sx, sy float64) (ControlKind, bool) {
	for _, c := range s.Controls {
		r := c.Rect
		if sx >= r.Left && sx <= r.Left+r.Width && sy >= r.Top && sy <= r.Top+r.Height {
			return c.Kind, true
		}
	}
	return 0, false
}

// InMinimap reports whether the screen point falls on the minimap overlay.
func (s *Scene) InMinimap(sx, sy float64) bool {
	m := s.Minimap
	if m == nil {
		return false
	}
	return sx >= m.Left && sx <= m.Left+m.Width && sy >= m.Top && sy <= m.Top+m.Height
}

// HasNode reports whether id is drawn in the scene.
func (s *Scene) HasNode(id string) bool {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return true
		}
	}
	return false
}
