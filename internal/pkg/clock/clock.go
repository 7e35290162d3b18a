package clock

import "time"

// Clock abstracts wall-clock reads so reconciliation logic can be driven by
// a fixed time in tests.
type Clock interface {
	Now() time.Time
	// Today returns midnight of the current date in the given location.
	Today(loc *time.Location) time.Time
}

type realClock struct{}

// New returns a Clock backed by the system time in UTC.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func (realClock) Today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// Frozen is a Clock pinned to Current, for tests.
type Frozen struct {
	Current time.Time
}

func (f *Frozen) Now() time.Time {
	return f.Current
}

func (f *Frozen) Today(loc *time.Location) time.Time {
	now := f.Current.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// Advance moves the frozen clock forward.
func (f *Frozen) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
