// Package canvas is the embeddable brain map canvas. A host feeds it Props,
// forwards pointer input, ticks it once per frame while it asks for frames
// and receives user intents through Callbacks.
package canvas

import (
	"io"
	"time"

	"brainmap/internal/anim"
	"brainmap/internal/interact"
	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/scene"
	"brainmap/internal/viewport"
)

// Props is the state the host owns. The canvas never modifies it.
type Props struct {
	Nodes             []model.Node
	Connections       []model.Connection
	CenterNodeID      string
	SelectedNodeID    string
	EditingNodeID     string
	IsAddingNode      bool
	IsConnecting      bool
	ConnectFromNodeID string
	ShowMinimap       bool
}

// Callbacks receive user intents. Nil callbacks are skipped.
type Callbacks struct {
	OnNodeClick         func(id string)
	OnNodeDoubleClick   func(id string)
	OnNodeDrag          func(id string, x, y float64)
	OnCanvasClick       func(x, y float64)
	OnNodeLabelChange   func(id, label string)
	OnConnectionDelete  func(id string)
	OnConnectionRequest func(source, target string)
	OnDeselect          func()
}

// Options tune a canvas. Zero values take the defaults.
type Options struct {
	MinZoom       float64
	MaxZoom       float64
	WheelFactor   float64
	ButtonFactor  float64
	Stiffness     float64
	Damping       float64
	HideCollapsed bool
	DoubleClick   time.Duration
	// Seed fixes the background dot field.
	Seed uint64
	// RequestFrame is called when the canvas needs Tick to be called.
	RequestFrame func()
}

// Canvas composes the viewport, the animator, the interaction machine and
// the label editor around the host's props.
type Canvas struct {
	opts  Options
	props Props
	cb    Callbacks

	vp      *viewport.Viewport
	anim    *anim.Animator
	sched   *anim.Scheduler
	machine *interact.Machine
	field   *scene.Field
	graph   *layout.Graph
	editor  *LabelEditor

	// centredOn is the centre node the camera last auto-centred on.
	centredOn string
	// hit is the last drawn scene; pointer input is resolved against what
	// the user sees.
	hit *scene.Scene
}

// New returns a canvas with no nodes.
func New(opts Options, cb Callbacks) *Canvas {
	vp := viewport.New()
	vp.SetLimits(opts.MinZoom, opts.MaxZoom)
	if opts.WheelFactor > 1 {
		vp.WheelStep = opts.WheelFactor
	}
	if opts.ButtonFactor <= 1 {
		opts.ButtonFactor = viewport.ButtonFactor
	}

	a := anim.New()
	if opts.Stiffness > 0 {
		a.Stiffness = opts.Stiffness
	}
	if opts.Damping > 0 && opts.Damping < 1 {
		a.Damping = opts.Damping
	}

	m := interact.New(vp, a)
	if opts.DoubleClick > 0 {
		m.DoubleClick = opts.DoubleClick
	}

	c := &Canvas{
		opts:    opts,
		cb:      cb,
		vp:      vp,
		anim:    a,
		sched:   anim.NewScheduler(opts.RequestFrame),
		machine: m,
		field:   scene.NewField(opts.Seed),
		graph:   layout.Build(nil, nil, layout.Options{HideCollapsed: opts.HideCollapsed}),
		editor:  &LabelEditor{},
	}
	return c
}

// SetCallbacks replaces the callbacks.
func (c *Canvas) SetCallbacks(cb Callbacks) {
	c.cb = cb
}

// SetRequestFrame replaces the frame request hook.
func (c *Canvas) SetRequestFrame(fn func()) {
	c.sched.SetRequest(fn)
}

// SetSize records the container geometry in screen pixels.
func (c *Canvas) SetSize(left, top, width, height float64) {
	c.vp.SetRect(viewport.Rect{Left: left, Top: top, Width: width, Height: height})
	c.autoCentre()
	c.hit = nil
}

// Props returns the props last set.
func (c *Canvas) Props() Props {
	return c.props
}

// SetProps reconciles new host state. Added nodes appear in place, removed
// nodes are dropped and moved nodes spring toward their new position.
func (c *Canvas) SetProps(p Props) {
	prevEditing := c.props.EditingNodeID
	c.props = p
	c.graph = layout.Build(p.Nodes, p.Connections, layout.Options{HideCollapsed: c.opts.HideCollapsed})

	targets := make([]anim.Target, len(p.Nodes))
	for i := range p.Nodes {
		targets[i] = anim.Target{ID: p.Nodes[i].ID, X: p.Nodes[i].X, Y: p.Nodes[i].Y}
	}
	if c.anim.Sync(targets) {
		c.sched.Start()
	}

	c.machine.SetMode(interact.Mode{
		Adding:      p.IsAddingNode,
		Connecting:  p.IsConnecting,
		ConnectFrom: p.ConnectFromNodeID,
	})

	c.autoCentre()

	switch {
	case p.EditingNodeID == "":
		c.editor.reset()
	case p.EditingNodeID != prevEditing:
		if n, ok := c.graph.Node(p.EditingNodeID); ok {
			c.editor.begin(n.ID, n.Label)
		} else {
			c.editor.reset()
		}
	}
	c.hit = nil
}

// autoCentre centres on the centre node whenever it changes, keeping the
// zoom.
func (c *Canvas) autoCentre() {
	id := c.props.CenterNodeID
	if c.vp.Rect.Width == 0 || id == "" || id == c.centredOn {
		return
	}
	n, ok := c.graph.Node(id)
	if !ok {
		return
	}
	c.vp.CenterOn(n.X, n.Y)
	c.centredOn = id
}

// Tick advances the animation by one frame and reports whether another
// frame is wanted.
func (c *Canvas) Tick() bool {
	c.hit = nil
	return c.sched.Frame(c.anim.Step)
}

// Animating reports whether a frame is pending.
func (c *Canvas) Animating() bool {
	return c.sched.Pending()
}

// Viewport returns a copy of the viewport.
func (c *Canvas) Viewport() viewport.Viewport {
	return *c.vp
}

// Position returns the animated position of id.
func (c *Canvas) Position(id string) (float64, float64, bool) {
	return c.anim.Position(id)
}

// Graph returns the current layout model.
func (c *Canvas) Graph() *layout.Graph {
	return c.graph
}

// Editor returns the label editor.
func (c *Canvas) Editor() *LabelEditor {
	return c.editor
}

// Scene builds the scene for the current state.
func (c *Canvas) Scene() *scene.Scene {
	hoverNode, hoverEdge := c.machine.Hover()
	dragID, _ := c.machine.Dragging()
	in := scene.Input{
		Viewport:          *c.vp,
		Graph:             c.graph,
		Position:          c.anim.Position,
		CenterNodeID:      c.props.CenterNodeID,
		SelectedNodeID:    c.props.SelectedNodeID,
		ConnectFromNodeID: c.props.ConnectFromNodeID,
		Connecting:        c.props.IsConnecting,
		HoverNodeID:       hoverNode,
		HoverEdgeID:       hoverEdge,
		DraggingID:        dragID,
		ShowMinimap:       c.props.ShowMinimap,
		Field:             c.field,
		Cursor:            string(c.machine.Cursor()),
		Frame:             c.sched.Frames(),
	}
	if c.editor.Active() {
		in.EditingID = c.editor.NodeID()
		in.Editing = &scene.EditOverlay{Value: c.editor.Value(), Selected: c.editor.Selected()}
	}
	s := scene.Build(in)
	c.hit = s
	return s
}

func (c *Canvas) hitScene() *scene.Scene {
	if c.hit == nil {
		return c.Scene()
	}
	return c.hit
}

// Render draws the current scene with r.
func (c *Canvas) Render(r scene.Renderer, w io.Writer) error {
	return r.Render(c.Scene(), w)
}

// PointerDown forwards a press at screen point (sx, sy).
func (c *Canvas) PointerDown(sx, sy float64) {
	if c.editor.Active() {
		c.CommitLabel()
	}
	s := c.hitScene()
	lx, ly := sx-c.vp.Rect.Left, sy-c.vp.Rect.Top
	if kind, ok := s.ControlAt(lx, ly); ok {
		c.control(kind)
		return
	}
	if s.InMinimap(lx, ly) {
		return
	}
	c.dispatch(c.machine.PointerDown(sx, sy, s))
	c.hit = nil
}

// PointerMove forwards pointer motion.
func (c *Canvas) PointerMove(sx, sy float64) {
	c.machine.PointerMove(sx, sy, c.hitScene())
	c.hit = nil
}

// PointerUp forwards a release.
func (c *Canvas) PointerUp(sx, sy float64, at time.Time) {
	dragged := c.machine.State() == interact.DraggingNode
	c.dispatch(c.machine.PointerUp(sx, sy, at, c.hitScene()))
	if dragged {
		c.sched.Start()
	}
	c.hit = nil
}

// PointerLeave ends any gesture when the pointer leaves the container.
func (c *Canvas) PointerLeave() {
	dragged := c.machine.State() == interact.DraggingNode
	c.dispatch(c.machine.PointerLeave())
	if dragged {
		c.sched.Start()
	}
	c.hit = nil
}

// Wheel zooms at the pointer. Positive deltaY zooms out.
func (c *Canvas) Wheel(sx, sy, deltaY float64) {
	c.machine.Wheel(sx, sy, deltaY)
	c.hit = nil
}

// ZoomIn steps the zoom in about the container centre.
func (c *Canvas) ZoomIn() {
	c.vp.ZoomStep(c.opts.ButtonFactor)
	c.hit = nil
}

// ZoomOut steps the zoom out about the container centre.
func (c *Canvas) ZoomOut() {
	c.vp.ZoomStep(1 / c.opts.ButtonFactor)
	c.hit = nil
}

// PanBy moves the camera by a screen delta.
func (c *Canvas) PanBy(dx, dy float64) {
	c.vp.PanBy(dx, dy)
	c.hit = nil
}

// Recenter resets the zoom and centres on the centre node, or on the
// centroid of all nodes when there is none.
func (c *Canvas) Recenter() {
	if n, ok := c.graph.Node(c.props.CenterNodeID); ok {
		x, y := n.X, n.Y
		if ax, ay, ok := c.anim.Position(n.ID); ok {
			x, y = ax, ay
		}
		c.vp.Recenter(x, y)
		c.hit = nil
		return
	}
	points := make([]layout.Point, 0, len(c.graph.Nodes))
	for i := range c.graph.Nodes {
		n := &c.graph.Nodes[i]
		p := layout.Point{X: n.X, Y: n.Y}
		if ax, ay, ok := c.anim.Position(n.ID); ok {
			p = layout.Point{X: ax, Y: ay}
		}
		points = append(points, p)
	}
	centre := layout.Centroid(points)
	c.vp.Recenter(centre.X, centre.Y)
	c.hit = nil
}

// fitMargin is the screen padding Fit leaves around the nodes.
const fitMargin = 24

// Fit zooms and pans so every node is in view.
func (c *Canvas) Fit() {
	var b viewport.Bounds
	first := true
	for i := range c.graph.Nodes {
		n := &c.graph.Nodes[i]
		x, y := n.X, n.Y
		if ax, ay, ok := c.anim.Position(n.ID); ok {
			x, y = ax, ay
		}
		r := n.Size.Spec().Radius
		if first {
			b = viewport.Bounds{MinX: x - r, MinY: y - r, MaxX: x + r, MaxY: y + r}
			first = false
			continue
		}
		b.MinX = min(b.MinX, x-r)
		b.MinY = min(b.MinY, y-r)
		b.MaxX = max(b.MaxX, x+r)
		b.MaxY = max(b.MaxY, y+r)
	}
	if first {
		c.Recenter()
		return
	}
	c.vp.Fit(b, fitMargin)
	c.hit = nil
}

func (c *Canvas) control(kind scene.ControlKind) {
	switch kind {
	case scene.ControlZoomIn:
		c.ZoomIn()
	case scene.ControlZoomOut:
		c.ZoomOut()
	case scene.ControlRecenter:
		c.Recenter()
	}
}

// Hover returns the hovered node and connection.
func (c *Canvas) Hover() (node, edge string) {
	return c.machine.Hover()
}

// Cursor returns the pointer style to show.
func (c *Canvas) Cursor() interact.Cursor {
	return c.machine.Cursor()
}

// CommitLabel ends the edit session and reports the value once.
func (c *Canvas) CommitLabel() {
	id, value, ok := c.editor.commit()
	if ok && c.cb.OnNodeLabelChange != nil {
		c.cb.OnNodeLabelChange(id, value)
	}
}

// CancelLabel ends the edit session without reporting anything.
func (c *Canvas) CancelLabel() {
	c.editor.cancel()
}

func (c *Canvas) dispatch(events []interact.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case interact.NodeClick:
			if c.cb.OnNodeClick != nil {
				c.cb.OnNodeClick(ev.ID)
			}
		case interact.NodeDoubleClick:
			if c.cb.OnNodeDoubleClick != nil {
				c.cb.OnNodeDoubleClick(ev.ID)
			}
		case interact.NodeDrag:
			if c.cb.OnNodeDrag != nil {
				c.cb.OnNodeDrag(ev.ID, ev.X, ev.Y)
			}
		case interact.CanvasClick:
			if c.cb.OnCanvasClick != nil {
				c.cb.OnCanvasClick(ev.X, ev.Y)
			}
		case interact.Deselect:
			if c.cb.OnDeselect != nil {
				c.cb.OnDeselect()
			}
		case interact.ConnectionRequest:
			if c.cb.OnConnectionRequest != nil {
				c.cb.OnConnectionRequest(ev.ID, ev.Target)
			}
		case interact.ConnectionDelete:
			if c.cb.OnConnectionDelete != nil {
				c.cb.OnConnectionDelete(ev.ID)
			}
		}
	}
}
