// Package anim interpolates rendered node positions toward their model
// positions with a damped spring.
package anim

import "math"

const (
	DefaultStiffness = 0.1
	// DefaultDamping keeps the spring from overshooting its target with
	// DefaultStiffness; velocity is scaled by it every frame.
	DefaultDamping = 0.6

	// PositionEpsilon and VelocityEpsilon define convergence, in canvas
	// units and canvas units per frame.
	PositionEpsilon = 0.1
	VelocityEpsilon = 0.01
)

// Target is the authoritative position of a node.
type Target struct {
	ID   string
	X, Y float64
}

// State is the interpolated position and velocity of one node.
type State struct {
	X, Y   float64
	VX, VY float64
}

type entry struct {
	State
	targetX, targetY float64
	settled          bool
}

// Animator keeps one spring per node id.
type Animator struct {
	Stiffness float64
	Damping   float64

	entries  map[string]*entry
	dragID   string
	dragging bool
}

// New returns an animator with the default constants.
func New() *Animator {
	return &Animator{
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		entries:   make(map[string]*entry),
	}
}

// Sync reconciles the animator with the authoritative node list. New ids
// appear at their target, missing ids are dropped, and existing ids start
// moving toward their new target. It reports whether any node needs frames.
func (a *Animator) Sync(targets []Target) bool {
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		seen[t.ID] = struct{}{}
		e, ok := a.entries[t.ID]
		if !ok {
			a.entries[t.ID] = &entry{
				State:   State{X: t.X, Y: t.Y},
				targetX: t.X,
				targetY: t.Y,
				settled: true,
			}
			continue
		}
		if e.targetX != t.X || e.targetY != t.Y {
			e.targetX, e.targetY = t.X, t.Y
			e.settled = false
		}
	}
	for id := range a.entries {
		if _, ok := seen[id]; !ok {
			delete(a.entries, id)
		}
	}
	return a.Animating()
}

// Step advances every spring by one frame and reports whether any node is
// still moving afterwards.
func (a *Animator) Step() bool {
	animating := false
	for id, e := range a.entries {
		if a.dragging && id == a.dragID {
			e.VX, e.VY = 0, 0
			continue
		}
		if e.settled {
			continue
		}
		e.VX = (e.VX + (e.targetX-e.X)*a.Stiffness) * a.Damping
		e.VY = (e.VY + (e.targetY-e.Y)*a.Stiffness) * a.Damping
		e.X += e.VX
		e.Y += e.VY

		if converged(e) {
			e.X, e.Y = e.targetX, e.targetY
			e.VX, e.VY = 0, 0
			e.settled = true
			continue
		}
		animating = true
	}
	return animating
}

func converged(e *entry) bool {
	return math.Abs(e.targetX-e.X) < PositionEpsilon &&
		math.Abs(e.targetY-e.Y) < PositionEpsilon &&
		math.Abs(e.VX) < VelocityEpsilon &&
		math.Abs(e.VY) < VelocityEpsilon
}

// Animating reports whether any node has not reached its target.
func (a *Animator) Animating() bool {
	for id, e := range a.entries {
		if a.dragging && id == a.dragID {
			continue
		}
		if !e.settled {
			return true
		}
	}
	return false
}

// BeginDrag suspends spring integration for id.
func (a *Animator) BeginDrag(id string) {
	a.dragID = id
	a.dragging = true
	if e, ok := a.entries[id]; ok {
		e.VX, e.VY = 0, 0
	}
}

// DragTo places the dragged node at (x, y) directly.
func (a *Animator) DragTo(id string, x, y float64) {
	if !a.dragging || id != a.dragID {
		return
	}
	if e, ok := a.entries[id]; ok {
		e.X, e.Y = x, y
		e.VX, e.VY = 0, 0
	}
}

// EndDrag resumes spring integration. The released node springs toward its
// model position until the host commits the move.
func (a *Animator) EndDrag() {
	if e, ok := a.entries[a.dragID]; ok && a.dragging {
		e.settled = e.X == e.targetX && e.Y == e.targetY
	}
	a.dragID = ""
	a.dragging = false
}

// Dragging returns the id of the dragged node, if any.
func (a *Animator) Dragging() (string, bool) {
	return a.dragID, a.dragging
}

// Position returns the interpolated position of id.
func (a *Animator) Position(id string) (float64, float64, bool) {
	e, ok := a.entries[id]
	if !ok {
		return 0, 0, false
	}
	return e.X, e.Y, true
}

// State returns the full interpolated state of id.
func (a *Animator) State(id string) (State, bool) {
	e, ok := a.entries[id]
	if !ok {
		return State{}, false
	}
	return e.State, true
}

// Len returns the number of tracked nodes.
func (a *Animator) Len() int {
	return len(a.entries)
}
