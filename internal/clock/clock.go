// Package clock abstracts "now" so temporal validation is deterministic in
// tests.
package clock

import "time"

// Clock yields the current instant. Implementations must return UTC times.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
