package clock

import "time"

// Clock reports elapsed monotonic time in milliseconds.
type Clock interface {
	Now() int64
}

// system measures elapsed time from its creation using the runtime's
// monotonic reading, so it is immune to wall-clock adjustments.
type system struct {
	start time.Time
}

// System returns a Clock anchored at the moment of the call.
func System() Clock {
	return &system{start: time.Now()}
}

func (s *system) Now() int64 {
	return time.Since(s.start).Milliseconds()
}

// Manual is a hand-driven Clock for tests. It only moves when told to.
type Manual struct {
	now int64
}

// NewManual returns a Manual clock starting at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the current manual time.
func (m *Manual) Now() int64 {
	return m.now
}

// Advance moves the clock forward by ms milliseconds.
func (m *Manual) Advance(ms int64) {
	m.now += ms
}

// Set jumps the clock to an absolute millisecond value.
func (m *Manual) Set(ms int64) {
	m.now = ms
}
