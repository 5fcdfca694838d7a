// Package interact resolves raw pointer input into pans, node drags, clicks
// and hover state.
package interact

import (
	"math"
	"time"

	"brainmap/internal/anim"
	"brainmap/internal/viewport"
)

const (
	// DefaultClickSlop is how far, in screen pixels, the pointer may travel
	// between press and release and still count as a click.
	DefaultClickSlop = 4.0
	// DefaultDoubleClick is the window for a second click on the same node.
	DefaultDoubleClick = 400 * time.Millisecond
	// EdgeTolerance is the hover distance to a connection in screen pixels.
	EdgeTolerance = 6.0
)

// State is the gesture in progress.
type State int

const (
	Idle State = iota
	Panning
	DraggingNode
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case DraggingNode:
		return "dragging"
	default:
		return "idle"
	}
}

// Cursor is the pointer style the host should show.
type Cursor string

const (
	CursorGrab      Cursor = "grab"
	CursorGrabbing  Cursor = "grabbing"
	CursorPointer   Cursor = "pointer"
	CursorCrosshair Cursor = "crosshair"
)

// Hitter answers hit tests in canvas space.
type Hitter interface {
	NodeAt(x, y float64) (string, bool)
	EdgeAt(x, y, tolerance float64) (string, bool)
	DeleteHandleAt(x, y float64) (string, bool)
	HasNode(id string) bool
}

// Mode carries the externally driven modes.
type Mode struct {
	Adding      bool
	Connecting  bool
	ConnectFrom string
}

// Machine is the interaction state machine. It moves the viewport and the
// animator directly and reports host visible outcomes as events.
type Machine struct {
	ClickSlop   float64
	DoubleClick time.Duration

	vp   *viewport.Viewport
	anim *anim.Animator
	mode Mode

	state  State
	dragID string
	// offset between the pointer and the node centre at press time
	offX, offY float64
	// last computed drag position, kept even if the node disappears
	dragX, dragY float64
	moved        bool

	downX, downY float64
	lastX, lastY float64

	lastClickID string
	lastClickAt time.Time

	hoverNode string
	hoverEdge string
}

// New returns an idle machine driving vp and a.
func New(vp *viewport.Viewport, a *anim.Animator) *Machine {
	return &Machine{
		ClickSlop:   DefaultClickSlop,
		DoubleClick: DefaultDoubleClick,
		vp:          vp,
		anim:        a,
	}
}

// SetMode updates the externally driven modes.
func (m *Machine) SetMode(mode Mode) {
	m.mode = mode
}

// State returns the current gesture.
func (m *Machine) State() State {
	return m.state
}

// Dragging returns the id of the dragged node.
func (m *Machine) Dragging() (string, bool) {
	return m.dragID, m.state == DraggingNode
}

// Hover returns the hovered node and connection ids.
func (m *Machine) Hover() (node, edge string) {
	return m.hoverNode, m.hoverEdge
}

// Cursor returns the pointer style for the current state.
func (m *Machine) Cursor() Cursor {
	switch {
	case m.state != Idle:
		return CursorGrabbing
	case m.mode.Adding:
		return CursorCrosshair
	case m.hoverNode != "" && m.mode.Connecting:
		return CursorCrosshair
	case m.hoverNode != "" || m.hoverEdge != "":
		return CursorPointer
	default:
		return CursorGrab
	}
}

// PointerDown starts a gesture at screen point (sx, sy).
func (m *Machine) PointerDown(sx, sy float64, hit Hitter) []Event {
	if m.state == DraggingNode {
		return nil
	}
	x, y := m.vp.ScreenToCanvas(sx, sy)
	m.downX, m.downY = sx, sy
	m.lastX, m.lastY = sx, sy
	m.moved = false

	if id, ok := hit.DeleteHandleAt(x, y); ok {
		m.state = Idle
		m.hoverEdge = ""
		return []Event{{Kind: ConnectionDelete, ID: id}}
	}

	if id, ok := hit.NodeAt(x, y); ok {
		nx, ny, known := m.anim.Position(id)
		if !known {
			nx, ny = x, y
		}
		m.state = DraggingNode
		m.dragID = id
		m.offX, m.offY = x-nx, y-ny
		m.dragX, m.dragY = nx, ny
		m.anim.BeginDrag(id)
		return nil
	}

	m.state = Panning
	return nil
}

// PointerMove continues the gesture or updates hover.
func (m *Machine) PointerMove(sx, sy float64, hit Hitter) {
	if math.Hypot(sx-m.downX, sy-m.downY) >= m.ClickSlop {
		m.moved = true
	}
	switch m.state {
	case Panning:
		m.vp.PanBy(sx-m.lastX, sy-m.lastY)
	case DraggingNode:
		x, y := m.vp.ScreenToCanvas(sx, sy)
		m.dragX, m.dragY = x-m.offX, y-m.offY
		m.anim.DragTo(m.dragID, m.dragX, m.dragY)
	default:
		m.updateHover(sx, sy, hit)
	}
	m.lastX, m.lastY = sx, sy
}

func (m *Machine) updateHover(sx, sy float64, hit Hitter) {
	x, y := m.vp.ScreenToCanvas(sx, sy)
	m.hoverNode, m.hoverEdge = "", ""
	if id, ok := hit.NodeAt(x, y); ok {
		m.hoverNode = id
		return
	}
	if id, ok := hit.DeleteHandleAt(x, y); ok {
		m.hoverEdge = id
		return
	}
	zoom := m.vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	if id, ok := hit.EdgeAt(x, y, EdgeTolerance/zoom); ok {
		m.hoverEdge = id
	}
}

// PointerUp ends the gesture at (sx, sy) at time at.
func (m *Machine) PointerUp(sx, sy float64, at time.Time, hit Hitter) []Event {
	if math.Hypot(sx-m.downX, sy-m.downY) >= m.ClickSlop {
		m.moved = true
	}
	return m.finish(sx, sy, at, hit, true)
}

// PointerLeave ends the gesture when the pointer leaves the container. No
// click is synthesized.
func (m *Machine) PointerLeave() []Event {
	m.hoverNode, m.hoverEdge = "", ""
	return m.finish(m.lastX, m.lastY, time.Time{}, nil, false)
}

func (m *Machine) finish(sx, sy float64, at time.Time, hit Hitter, clicks bool) []Event {
	state := m.state
	m.state = Idle
	var events []Event

	switch state {
	case DraggingNode:
		id := m.dragID
		m.anim.EndDrag()
		m.dragID = ""
		if m.moved {
			events = append(events, Event{Kind: NodeDrag, ID: id, X: m.dragX, Y: m.dragY})
		} else if clicks {
			if ev := m.nodeClick(id, at, hit); ev.Kind != None {
				events = append(events, ev)
			}
		}
	case Panning:
		if !m.moved && clicks {
			x, y := m.vp.ScreenToCanvas(sx, sy)
			if m.mode.Adding {
				events = append(events, Event{Kind: CanvasClick, X: x, Y: y})
			} else {
				events = append(events, Event{Kind: Deselect})
			}
		}
	}
	m.moved = false
	return events
}

func (m *Machine) nodeClick(id string, at time.Time, hit Hitter) Event {
	if id == m.lastClickID && !m.lastClickAt.IsZero() && at.Sub(m.lastClickAt) <= m.DoubleClick {
		m.lastClickID = ""
		m.lastClickAt = time.Time{}
		return Event{Kind: NodeDoubleClick, ID: id}
	}
	m.lastClickID = id
	m.lastClickAt = at

	src := m.mode.ConnectFrom
	if m.mode.Connecting && src != "" && src != id {
		if hit.HasNode(src) && hit.HasNode(id) {
			return Event{Kind: ConnectionRequest, ID: src, Target: id}
		}
		return Event{Kind: None}
	}
	return Event{Kind: NodeClick, ID: id}
}

// Wheel zooms about the pointer whatever the current gesture.
func (m *Machine) Wheel(sx, sy, deltaY float64) {
	m.vp.Wheel(sx, sy, deltaY)
}
