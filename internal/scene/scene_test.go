package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/viewport"
)

func TestShapePath(t *testing.T) {
	t.Run("hexagon vertices start at -30 degrees", func(t *testing.T) {
		p := ShapePath(model.ShapeHexagon, 0, 0, 10)
		require.Len(t, p.Points, 6)
		assert.InDelta(t, 10*math.Cos(-math.Pi/6), p.Points[0].X, 1e-9)
		assert.InDelta(t, -5, p.Points[0].Y, 1e-9)
		for i := 1; i < 6; i++ {
			a, b := p.Points[i-1], p.Points[i]
			assert.InDelta(t, 10, math.Hypot(b.X-a.X, b.Y-a.Y), 1e-9, "edge %d", i)
		}
	})

	t.Run("pill corner is half its height", func(t *testing.T) {
		p := ShapePath(model.ShapePill, 0, 0, 20)
		assert.Equal(t, PathRoundedRect, p.Kind)
		assert.Equal(t, p.H/2, p.Corner)
	})

	t.Run("unknown shape is a circle", func(t *testing.T) {
		p := ShapePath(model.Shape("blob"), 1, 2, 5)
		assert.Equal(t, PathCircle, p.Kind)
		assert.Equal(t, 5.0, p.R)
	})
}

func TestPathContains(t *testing.T) {
	tests := []struct {
		name  string
		shape model.Shape
		x, y  float64
		want  bool
	}{
		{"circle centre", model.ShapeCircle, 0, 0, true},
		{"circle outside", model.ShapeCircle, 11, 0, false},
		{"diamond tip", model.ShapeDiamond, 0, -11, true},
		{"diamond corner of bbox", model.ShapeDiamond, 10, 10, false},
		{"hexagon centre", model.ShapeHexagon, 0, 0, true},
		{"hexagon above top vertex", model.ShapeHexagon, 0, -10.5, false},
		{"rectangle wide point", model.ShapeRectangle, 11, 0, true},
		{"rectangle rounded corner", model.ShapeRectangle, 11.9, 7.4, false},
		{"pill end cap", model.ShapePill, 14, 0, true},
		{"pill corner outside cap", model.ShapePill, 14.5, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ShapePath(tt.shape, 0, 0, 10)
			assert.Equal(t, tt.want, p.Contains(tt.x, tt.y))
		})
	}
}

func TestCurve(t *testing.T) {
	t.Run("control offset is a tenth of the chord", func(t *testing.T) {
		c := NewCurve(0, 0, 100, 0)
		assert.InDelta(t, 50, c.Control.X, 1e-9)
		assert.InDelta(t, 10, c.Control.Y, 1e-9)
	})

	t.Run("control offset caps at 30", func(t *testing.T) {
		c := NewCurve(0, 0, 0, 1000)
		assert.InDelta(t, -30, c.Control.X, 1e-9)
		assert.InDelta(t, 500, c.Control.Y, 1e-9)
	})

	t.Run("zero length", func(t *testing.T) {
		c := NewCurve(5, 5, 5, 5)
		assert.Equal(t, c.Start, c.Control)
		assert.InDelta(t, 0, c.Distance(5, 5), 1e-9)
	})

	t.Run("distance", func(t *testing.T) {
		c := NewCurve(0, 0, 100, 0)
		mid := c.At(0.5)
		assert.InDelta(t, 5, mid.Y, 1e-9)
		assert.Less(t, c.Distance(mid.X, mid.Y), 0.01)
		assert.InDelta(t, 10, c.Distance(-10, 0), 1e-9)
	})

	t.Run("shadow offset", func(t *testing.T) {
		c := NewCurve(0, 0, 10, 10).Offset(1, 2)
		assert.Equal(t, layout.Point{X: 1, Y: 2}, c.Start)
	})
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#ffffff", Lighten("#000000", 1))
	assert.Equal(t, "#000000", Darken("#ffffff", 1))
	assert.Equal(t, Hex(fallbackColor), Hex("not a colour"))

	c := RGBA("#ff0000", 0.5)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.A)
}

func TestField(t *testing.T) {
	f := NewField(7)
	a := f.Place(200, 100, 0, 0)
	b := f.Place(200, 100, 50, 0)
	require.Len(t, a, backgroundDots)
	for i := range a {
		assert.InDelta(t, wrap(a[i].X+10, 200), b[i].X, 1e-9)
		assert.Equal(t, a[i].Y, b[i].Y)
	}
	assert.Equal(t, a, NewField(7).Place(200, 100, 0, 0))

	var none *Field
	assert.Nil(t, none.Place(10, 10, 0, 0))
}

func TestBuildMinimap(t *testing.T) {
	points := []MinimapPoint{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 100, Y: 50},
	}
	visible := viewport.Bounds{MinX: -1000, MinY: -1000, MaxX: 50, MaxY: 25}
	m := BuildMinimap(points, "b", visible, 800, 600)

	assert.Equal(t, 800-MinimapWidth-MinimapMargin, m.Left)
	assert.Equal(t, 600-MinimapHeight-MinimapMargin, m.Top)
	require.Len(t, m.Dots, 2)

	// 140/100 against 90/50: the x axis bounds the scale.
	assert.InDelta(t, minimapPadding, m.Dots[0].X, 1e-9)
	assert.InDelta(t, MinimapWidth-minimapPadding, m.Dots[1].X, 1e-9)
	assert.InDelta(t, MinimapHeight/2, (m.Dots[0].Y+m.Dots[1].Y)/2, 1e-9)

	assert.Equal(t, 0.5, m.Dots[0].Opacity)
	assert.Equal(t, 1.0, m.Dots[1].Opacity)

	assert.Equal(t, 0.0, m.View.MinX, "clamped to the box")
	assert.Equal(t, 0.0, m.View.MinY)
	assert.InDelta(t, MinimapWidth/2, m.View.MaxX, 1e-9)

	empty := BuildMinimap(nil, "", visible, 800, 600)
	assert.Empty(t, empty.Dots)
}

func testGraph() *layout.Graph {
	nodes := []model.Node{
		{ID: "root", Label: "Root of everything here", Shape: model.ShapeCircle, Layer: 0},
		{ID: "child", X: 200, ParentNodeID: "root", Layer: 1, LinkedNoteID: "n1", Shape: model.ShapeHexagon},
	}
	conns := []model.Connection{
		{ID: "k1", SourceNodeID: "root", TargetNodeID: "child", Style: model.StyleDashed, Animated: true},
	}
	return layout.Build(nodes, conns, layout.Options{})
}

func TestBuild(t *testing.T) {
	vp := viewport.New()
	vp.SetRect(viewport.Rect{Width: 800, Height: 600})

	s := Build(Input{
		Viewport:       *vp,
		Graph:          testGraph(),
		CenterNodeID:   "root",
		SelectedNodeID: "child",
		HoverEdgeID:    "k1",
		ShowMinimap:    true,
		Field:          NewField(1),
		Position: func(id string) (float64, float64, bool) {
			if id == "child" {
				return 150, 0, true
			}
			return 0, 0, false
		},
	})

	require.Len(t, s.Nodes, 2)
	require.Len(t, s.Edges, 2)
	assert.Equal(t, 100, s.ZoomPercent)
	assert.Equal(t, "default", s.Cursor)
	assert.NotNil(t, s.Minimap)
	assert.Len(t, s.Dots, backgroundDots)

	root, child := s.Nodes[0], s.Nodes[1]
	assert.Equal(t, "Root of everyth…", root.Label)
	assert.Equal(t, "Root of everything here", root.FullLabel)
	assert.NotNil(t, root.Aura)
	assert.NotNil(t, root.ChildBadge)
	assert.Equal(t, "1", root.ChildBadge.Text)
	assert.Nil(t, root.LinkBadge)

	assert.Equal(t, 150.0, child.X, "animated position wins")
	assert.NotNil(t, child.Select)
	assert.NotNil(t, child.LinkBadge)
	assert.Greater(t, child.LinkBadge.X, child.X)
	assert.Less(t, child.LinkBadge.Y, child.Y)

	implicit, explicit := s.Edges[0], s.Edges[1]
	assert.True(t, implicit.Implicit)
	assert.Nil(t, implicit.DeleteHandle)
	assert.Equal(t, implicitEdgeWidth, implicit.Width)

	assert.True(t, explicit.Hovered)
	assert.Equal(t, edgeWidth+hoverExtraWidth, explicit.Width)
	require.NotNil(t, explicit.DeleteHandle)
	assert.Equal(t, []float64{8, 6}, explicit.Dash)
	assert.NotNil(t, explicit.Particle)

	id, ok := s.DeleteHandleAt(explicit.DeleteHandle.X, explicit.DeleteHandle.Y)
	assert.True(t, ok)
	assert.Equal(t, "k1", id)
}

func TestSceneHitTesting(t *testing.T) {
	vp := viewport.New()
	vp.SetRect(viewport.Rect{Width: 800, Height: 600})
	nodes := []model.Node{
		{ID: "low", Layer: 0},
		{ID: "high", X: 10, Layer: 1},
		{ID: "far", X: 300, Layer: 0},
	}
	s := Build(Input{Viewport: *vp, Graph: layout.Build(nodes, nil, layout.Options{})})

	id, ok := s.NodeAt(5, 0)
	require.True(t, ok)
	assert.Equal(t, "high", id, "topmost layer wins")

	_, ok = s.NodeAt(150, 150)
	assert.False(t, ok)

	kind, ok := s.ControlAt(s.Controls[1].Rect.Left+1, s.Controls[1].Rect.Top+1)
	require.True(t, ok)
	assert.Equal(t, ControlZoomIn, kind)
	assert.False(t, s.InMinimap(790, 590))
}

func TestBuildNilGraph(t *testing.T) {
	s := Build(Input{})
	assert.Empty(t, s.Nodes)
	assert.Empty(t, s.Edges)
	assert.Nil(t, s.Minimap)
}
