package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainmap/internal/anim"
	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/scene"
	"brainmap/internal/viewport"
)

type fixture struct {
	vp    *viewport.Viewport
	anim  *anim.Animator
	m     *Machine
	nodes []model.Node
	conns []model.Connection
}

// newFixture places A at (0,0), B at (100,0) and C at (-100,0) with an
// identity viewport, so screen and canvas coordinates coincide.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vp:   viewport.New(),
		anim: anim.New(),
		nodes: []model.Node{
			{ID: "A", X: 0, Y: 0, Layer: 0},
			{ID: "B", X: 100, Y: 0, ParentNodeID: "A", Layer: 1},
			{ID: "C", X: -100, Y: 0, ParentNodeID: "A", Layer: 1},
		},
	}
	f.vp.SetRect(viewport.Rect{Width: 800, Height: 600})
	f.m = New(f.vp, f.anim)
	f.sync()
	return f
}

func (f *fixture) sync() {
	targets := make([]anim.Target, len(f.nodes))
	for i, n := range f.nodes {
		targets[i] = anim.Target{ID: n.ID, X: n.X, Y: n.Y}
	}
	f.anim.Sync(targets)
}

func (f *fixture) scene(hoverEdge string) *scene.Scene {
	return scene.Build(scene.Input{
		Viewport:    *f.vp,
		Graph:       layout.Build(f.nodes, f.conns, layout.Options{}),
		Position:    f.anim.Position,
		HoverEdgeID: hoverEdge,
	})
}

func TestDragEmitsOnceOnRelease(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")
	now := time.Now()

	assert.Empty(t, f.m.PointerDown(100, 0, s))
	assert.Equal(t, DraggingNode, f.m.State())

	for _, p := range [][2]float64{{110, 5}, {125, 12}, {140, 25}, {150, 30}} {
		f.m.PointerMove(p[0], p[1], s)
		x, y, _ := f.anim.Position("B")
		assert.Equal(t, p[0], x)
		assert.Equal(t, p[1], y)
	}

	events := f.m.PointerUp(150, 30, now, s)
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: NodeDrag, ID: "B", X: 150, Y: 30}, events[0])
	assert.Equal(t, Idle, f.m.State())
	_, dragging := f.anim.Dragging()
	assert.False(t, dragging)
}

func TestDragKeepsGrabOffset(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")

	f.m.PointerDown(110, 10, s)
	f.m.PointerMove(160, 40, s)
	x, y, _ := f.anim.Position("B")
	assert.Equal(t, 150.0, x)
	assert.Equal(t, 30.0, y)
}

func TestDragAtZoom(t *testing.T) {
	f := newFixture(t)
	f.vp.Zoom = 2
	f.vp.PanX, f.vp.PanY = 50, 20
	s := f.scene("")

	sx, sy := f.vp.CanvasToScreen(100, 0)
	f.m.PointerDown(sx, sy, s)
	f.m.PointerMove(sx+100, sy+60, s)
	events := f.m.PointerUp(sx+100, sy+60, time.Now(), s)
	require.Len(t, events, 1)
	assert.InDelta(t, 150, events[0].X, 1e-9)
	assert.InDelta(t, 30, events[0].Y, 1e-9)
}

func TestClickWithinSlop(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")

	f.m.PointerDown(100, 0, s)
	f.m.PointerMove(102, 1, s)
	events := f.m.PointerUp(102, 1, time.Now(), s)
	require.Len(t, events, 1)
	assert.Equal(t, NodeClick, events[0].Kind)
	assert.Equal(t, "B", events[0].ID)
}

func TestDoubleClick(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")
	now := time.Now()

	f.m.PointerDown(100, 0, s)
	first := f.m.PointerUp(100, 0, now, s)
	f.m.PointerDown(100, 0, s)
	second := f.m.PointerUp(100, 0, now.Add(200*time.Millisecond), s)
	f.m.PointerDown(100, 0, s)
	third := f.m.PointerUp(100, 0, now.Add(2*time.Second), s)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Len(t, third, 1)
	assert.Equal(t, NodeClick, first[0].Kind)
	assert.Equal(t, NodeDoubleClick, second[0].Kind)
	assert.Equal(t, NodeClick, third[0].Kind)
}

func TestDoubleClickIgnoresConnectingMode(t *testing.T) {
	f := newFixture(t)
	f.m.SetMode(Mode{Connecting: true, ConnectFrom: "A"})
	s := f.scene("")
	now := time.Now()

	f.m.PointerDown(100, 0, s)
	f.m.PointerUp(100, 0, now, s)
	f.m.PointerDown(100, 0, s)
	events := f.m.PointerUp(100, 0, now.Add(100*time.Millisecond), s)
	require.Len(t, events, 1)
	assert.Equal(t, NodeDoubleClick, events[0].Kind)
}

func TestConnecting(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want Event
	}{
		{"other node", Mode{Connecting: true, ConnectFrom: "A"}, Event{Kind: ConnectionRequest, ID: "A", Target: "B"}},
		{"source itself", Mode{Connecting: true, ConnectFrom: "B"}, Event{Kind: NodeClick, ID: "B"}},
		{"no source yet", Mode{Connecting: true}, Event{Kind: NodeClick, ID: "B"}},
		{"not connecting", Mode{ConnectFrom: "A"}, Event{Kind: NodeClick, ID: "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.m.SetMode(tt.mode)
			s := f.scene("")
			f.m.PointerDown(100, 0, s)
			events := f.m.PointerUp(100, 0, time.Now(), s)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
		})
	}
}

func TestConnectingToVanishedSource(t *testing.T) {
	f := newFixture(t)
	f.m.SetMode(Mode{Connecting: true, ConnectFrom: "gone"})
	s := f.scene("")
	f.m.PointerDown(100, 0, s)
	assert.Empty(t, f.m.PointerUp(100, 0, time.Now(), s))
}

func TestBackgroundClick(t *testing.T) {
	t.Run("deselects", func(t *testing.T) {
		f := newFixture(t)
		s := f.scene("")
		f.m.PointerDown(300, 300, s)
		assert.Equal(t, Panning, f.m.State())
		events := f.m.PointerUp(300, 300, time.Now(), s)
		assert.Equal(t, []Event{{Kind: Deselect}}, events)
	})

	t.Run("adds while adding", func(t *testing.T) {
		f := newFixture(t)
		f.vp.PanX = 100
		f.m.SetMode(Mode{Adding: true})
		s := f.scene("")
		f.m.PointerDown(300, 300, s)
		events := f.m.PointerUp(300, 300, time.Now(), s)
		assert.Equal(t, []Event{{Kind: CanvasClick, X: 200, Y: 300}}, events)
	})
}

func TestPanEmitsNothing(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")

	f.m.PointerDown(300, 300, s)
	f.m.PointerMove(320, 310, s)
	f.m.PointerMove(350, 340, s)
	events := f.m.PointerUp(350, 340, time.Now(), s)

	assert.Empty(t, events)
	assert.Equal(t, 50.0, f.vp.PanX)
	assert.Equal(t, 40.0, f.vp.PanY)
	x, y, _ := f.anim.Position("B")
	assert.Equal(t, 100.0, x, "nodes stay put while panning")
	assert.Equal(t, 0.0, y)
}

func TestWheelDuringDrag(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")

	f.m.PointerDown(100, 0, s)
	f.m.Wheel(400, 300, -1)
	assert.Greater(t, f.vp.Zoom, 1.0)
	assert.Equal(t, DraggingNode, f.m.State())
}

func TestDanglingDrag(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")

	f.m.PointerDown(100, 0, s)
	f.m.PointerMove(130, 0, s)

	f.nodes = f.nodes[:1]
	f.sync()
	f.m.PointerMove(150, 30, s)

	events := f.m.PointerUp(150, 30, time.Now(), s)
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: NodeDrag, ID: "B", X: 150, Y: 30}, events[0])
}

func TestConnectionHoverAndDelete(t *testing.T) {
	f := newFixture(t)
	f.conns = []model.Connection{{ID: "k1", SourceNodeID: "B", TargetNodeID: "C"}}
	s := f.scene("")

	// The curve midpoint sits inside A, so hover a quarter of the way along.
	p := s.Edges[len(s.Edges)-1].Curve.At(0.25)
	f.m.PointerMove(p.X, p.Y, s)
	_, edge := f.m.Hover()
	assert.Equal(t, "k1", edge)
	assert.Equal(t, CursorPointer, f.m.Cursor())

	s = f.scene(edge)
	h := s.Edges[len(s.Edges)-1].DeleteHandle
	require.NotNil(t, h)
	events := f.m.PointerDown(h.X, h.Y, s)
	assert.Equal(t, []Event{{Kind: ConnectionDelete, ID: "k1"}}, events)
	assert.Equal(t, Idle, f.m.State())
}

func TestHoverPrefersNodes(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")
	f.m.PointerMove(100, 0, s)
	node, edge := f.m.Hover()
	assert.Equal(t, "B", node)
	assert.Empty(t, edge)

	f.m.PointerMove(400, 400, s)
	node, _ = f.m.Hover()
	assert.Empty(t, node)
	assert.Equal(t, CursorGrab, f.m.Cursor())
}

func TestPointerLeave(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")

	f.m.PointerDown(100, 0, s)
	f.m.PointerMove(140, 0, s)
	events := f.m.PointerLeave()
	require.Len(t, events, 1)
	assert.Equal(t, NodeDrag, events[0].Kind)

	f.m.PointerDown(100, 0, s)
	assert.Empty(t, f.m.PointerLeave(), "no click without a release")
}

func TestCursor(t *testing.T) {
	f := newFixture(t)
	s := f.scene("")
	f.m.SetMode(Mode{Adding: true})
	assert.Equal(t, CursorCrosshair, f.m.Cursor())

	f.m.PointerDown(300, 300, s)
	assert.Equal(t, CursorGrabbing, f.m.Cursor())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "node-drag", NodeDrag.String())
	assert.Equal(t, "event(99)", EventKind(99).String())
	assert.Equal(t, "panning", Panning.String())
}
