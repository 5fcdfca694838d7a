package anim

// Scheduler owns the single "frame pending" flag of the animation loop.
// Start may be called from any trigger without double scheduling.
type Scheduler struct {
	pending bool
	request func()
	frames  uint64
}

// NewScheduler returns a scheduler that calls request whenever a frame must
// be scheduled by the host.
func NewScheduler(request func()) *Scheduler {
	return &Scheduler{request: request}
}

// SetRequest replaces the host hook.
func (s *Scheduler) SetRequest(request func()) {
	s.request = request
}

// Start asks the host for a frame unless one is already pending.
func (s *Scheduler) Start() {
	if s.pending {
		return
	}
	s.pending = true
	if s.request != nil {
		s.request()
	}
}

// Stop drops the pending flag. A frame callback calls Stop first and Start
// again only if more work remains.
func (s *Scheduler) Stop() {
	s.pending = false
}

// Pending reports whether a frame has been requested and not yet run.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Frame runs one frame through step and reschedules while step reports work.
func (s *Scheduler) Frame(step func() bool) bool {
	s.Stop()
	s.frames++
	if step() {
		s.Start()
		return true
	}
	return false
}

// Frames counts the frames run so far.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}
