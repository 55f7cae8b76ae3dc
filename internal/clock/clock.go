// Package clock abstracts the wall clock so persistence timestamps are
// deterministic under test.
package clock

import "time"

// Clock supplies the current time. Callers that persist timestamps must
// normalize to UTC themselves.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }
