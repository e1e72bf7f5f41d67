package clock

import "time"

// Clock abstracts time so the engine and reports stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
