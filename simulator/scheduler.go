package simulator

// Scheduler owns the simulation clock and the event queue. It is a
// pure single-threaded cooperative scheduler: exactly one continuation
// runs at a time, and all engine state is mutated from continuations
// it executes. Virtual time is in minutes.
type Scheduler struct {
	queue   *EventQueue
	now     float64
	nextSeq uint64
}

// NewScheduler creates a scheduler with time at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		queue: NewEventQueue(),
	}
}

// Now returns the current virtual time in minutes.
func (s *Scheduler) Now() float64 { return s.now }

// Pending returns the number of scheduled events.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// Schedule suspends the calling process for d minutes: fn resumes at
// now + d. Negative delays are clamped to zero (fires in the current
// event batch, after already-queued events at this timestamp).
func (s *Scheduler) Schedule(d float64, fn func()) {
	if d < 0 {
		d = 0
	}
	s.At(s.now+d, fn)
}

// At schedules fn at absolute virtual time t, clamped to be >= now.
func (s *Scheduler) At(t float64, fn func()) {
	if t < s.now {
		t = s.now
	}
	s.queue.Push(&Event{timestamp: t, seq: s.nextSeq, fn: fn})
	s.nextSeq++
}

// Run executes events in order until the queue drains or virtual time
// reaches the horizon. The horizon is a hard cutoff: events at or past
// it are left unexecuted, which abandons any process mid-journey.
func (s *Scheduler) Run(until float64) {
	for !s.queue.IsEmpty() {
		next := s.queue.Peek()
		if next.timestamp >= until {
			break
		}
		event := s.queue.Pop()
		// Time is monotonic: At() clamps, so this never goes backwards.
		s.now = event.timestamp
		event.fn()
	}
	if s.now < until {
		s.now = until
	}
}

// Step advances virtual time by dt, executing every event due in the
// window. Used by callers that pace the simulation themselves (the
// live server); Run is the batch equivalent.
func (s *Scheduler) Step(dt float64) {
	target := s.now + dt
	for !s.queue.IsEmpty() && s.queue.Peek().timestamp <= target {
		event := s.queue.Pop()
		s.now = event.timestamp
		event.fn()
	}
	s.now = target
}
