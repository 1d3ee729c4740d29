// Package clock provides an injectable time source so that every
// time comparison in the scheduling core is deterministic under test.
package clock

import "time"

// Clock is the single time source for the scheduling engine. Components
// that compare against "now" (leave validation, slot queries, expiry
// sweeps) must take a Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Intended for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At is shorthand for a Fixed clock at t.
func At(t time.Time) Fixed { return Fixed{T: t} }
