package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainmap/internal/model"
)

func threeNodes() []model.Node {
	return []model.Node{
		{ID: "A", X: 0, Y: 0, Layer: 0},
		{ID: "B", X: 100, Y: 0, ParentNodeID: "A", Layer: 1},
		{ID: "C", X: -100, Y: 0, ParentNodeID: "A", Layer: 1},
	}
}

func TestImplicitEdgesScenario(t *testing.T) {
	g := Build(threeNodes(), nil, Options{})

	require.Len(t, g.Edges, 2)
	assert.Equal(t, Edge{ID: "parent-B", Source: "A", Target: "B", Implicit: true, Style: model.StyleSolid}, g.Edges[0])
	assert.Equal(t, Edge{ID: "parent-C", Source: "A", Target: "C", Implicit: true, Style: model.StyleSolid}, g.Edges[1])

	assert.Equal(t, 2, g.ChildCount("A"))
	assert.Equal(t, 0, g.ChildCount("B"))
	assert.Equal(t, 0, g.ChildCount("C"))
}

func TestDanglingConnectionTarget(t *testing.T) {
	conns := []model.Connection{{ID: "c1", SourceNodeID: "A", TargetNodeID: "ghost"}}

	var g *Graph
	require.NotPanics(t, func() { g = Build(threeNodes(), conns, Options{}) })
	for _, e := range g.Edges {
		assert.NotEqual(t, "c1", e.ID)
	}
	assert.Len(t, g.Edges, 2)
}

func TestDanglingParentIsDropped(t *testing.T) {
	nodes := []model.Node{{ID: "orphan", ParentNodeID: "gone"}}
	g := Build(nodes, nil, Options{})

	assert.Empty(t, g.Edges)
	assert.Equal(t, 1, g.Aux["orphan"].Depth, "depth still counts the declared parent hop")
}

func TestEdgeIntegrity(t *testing.T) {
	nodes := []model.Node{
		{ID: "r"},
		{ID: "a", ParentNodeID: "r"},
		{ID: "b", ParentNodeID: "a"},
		{ID: "c", ParentNodeID: "missing"},
		{ID: "d"},
	}
	conns := []model.Connection{
		{ID: "k1", SourceNodeID: "a", TargetNodeID: "d", Color: "#fff", Style: model.StyleDashed, Animated: true},
		{ID: "k2", SourceNodeID: "x", TargetNodeID: "d"},
		{ID: "k3", SourceNodeID: "d", TargetNodeID: "r"},
		{ID: "k4", SourceNodeID: "y", TargetNodeID: "z"},
	}

	g := Build(nodes, conns, Options{})

	ids := make([]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"parent-a", "parent-b", "k1", "k3"}, ids)

	k1 := g.Edges[2]
	assert.False(t, k1.Implicit)
	assert.Equal(t, "#fff", k1.Color)
	assert.Equal(t, model.StyleDashed, k1.Style)
	assert.True(t, k1.Animated)
	assert.Equal(t, model.DefaultConnectionColor, g.Edges[3].Color)
}

func TestAuxFacts(t *testing.T) {
	nodes := []model.Node{
		{ID: "r"},
		{ID: "a", ParentNodeID: "r", LinkedNoteID: "note-1"},
		{ID: "b", ParentNodeID: "a"},
		{ID: "c", ParentNodeID: "a", LinkedFolderID: "f"},
	}
	g := Build(nodes, nil, Options{})

	assert.Equal(t, Aux{ChildCount: 1, HasLink: false, Depth: 0}, g.Aux["r"])
	assert.Equal(t, Aux{ChildCount: 2, HasLink: true, Depth: 1}, g.Aux["a"])
	assert.Equal(t, Aux{ChildCount: 0, HasLink: false, Depth: 2}, g.Aux["b"])
	assert.True(t, g.Aux["c"].HasLink)
}

func TestDepthSurvivesCycles(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", ParentNodeID: "b"},
		{ID: "b", ParentNodeID: "a"},
	}
	var g *Graph
	require.NotPanics(t, func() { g = Build(nodes, nil, Options{}) })
	assert.Equal(t, 1, g.Aux["a"].Depth)
	assert.Len(t, g.Edges, 2)
}

func TestRenderOrderByLayerIsStable(t *testing.T) {
	nodes := []model.Node{
		{ID: "deep", Layer: 2},
		{ID: "root", Layer: 0},
		{ID: "mid1", Layer: 1},
		{ID: "mid2", Layer: 1},
	}
	g := Build(nodes, nil, Options{})

	var order []string
	for _, n := range g.Nodes {
		order = append(order, n.ID)
	}
	assert.Equal(t, []string{"root", "mid1", "mid2", "deep"}, order)
	assert.Equal(t, "deep", nodes[0].ID, "input is not reordered")
}

func TestCollapseIsInertByDefault(t *testing.T) {
	nodes := threeNodes()
	nodes[0].IsCollapsed = true

	g := Build(nodes, nil, Options{})
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)
}

func TestHideCollapsed(t *testing.T) {
	nodes := []model.Node{
		{ID: "r"},
		{ID: "a", ParentNodeID: "r", IsCollapsed: true},
		{ID: "b", ParentNodeID: "a"},
		{ID: "c", ParentNodeID: "b"},
		{ID: "d", ParentNodeID: "r"},
	}
	conns := []model.Connection{{ID: "k", SourceNodeID: "c", TargetNodeID: "d"}}

	g := Build(nodes, conns, Options{HideCollapsed: true})

	_, ok := g.Node("b")
	assert.False(t, ok)
	_, ok = g.Node("a")
	assert.True(t, ok)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)
	assert.Equal(t, 1, g.ChildCount("a"), "child count still reports hidden children")
}

func TestBoundsAndCentroid(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	pts := []Point{{X: -10, Y: 5}, {X: 30, Y: -15}, {X: 10, Y: 40}}
	r, ok := Bounds(pts)
	require.True(t, ok)
	assert.Equal(t, Rect{MinX: -10, MinY: -15, MaxX: 30, MaxY: 40}, r)
	assert.Equal(t, 40.0, r.Width())
	assert.Equal(t, 55.0, r.Height())

	c := Centroid(pts)
	assert.InDelta(t, 10, c.X, 1e-9)
	assert.InDelta(t, 10, c.Y, 1e-9)
	assert.Equal(t, Point{}, Centroid(nil))
}

func TestChildPosition(t *testing.T) {
	parent := model.Node{ID: "p", X: 10, Y: 20}
	tests := []struct {
		name  string
		nodes []model.Node
		x, y  float64
	}{
		{"first child", nil, 190, 20},
		{"below lowest", []model.Node{
			{ID: "a", ParentNodeID: "p", Y: 20},
			{ID: "b", ParentNodeID: "p", Y: 110},
			{ID: "c", ParentNodeID: "other", Y: 900},
		}, 190, 200},
		{"children above parent", []model.Node{{ID: "a", ParentNodeID: "p", Y: -300}}, 190, -210},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ChildPosition(parent, tt.nodes)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}
