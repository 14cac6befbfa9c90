package clock

import "time"

// Clock supplies the current time to business logic so tests can freeze it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns a Clock backed by the wall clock, in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

// Frozen is a Clock pinned to a fixed instant, advanced manually.
type Frozen struct {
	current time.Time
}

func NewFrozen(t time.Time) *Frozen {
	return &Frozen{current: t}
}

func (f *Frozen) Now() time.Time {
	return f.current
}

// Advance moves the frozen clock forward by d.
func (f *Frozen) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// Set pins the frozen clock to t.
func (f *Frozen) Set(t time.Time) {
	f.current = t
}
