package model

import (
	"time"

	"github.com/google/uuid"
)

// BusyType tags the source a busy interval was derived from.
type BusyType string

const (
	BusyAppointment BusyType = "APPOINTMENT"
	BusyHold        BusyType = "HOLD"
	BusyLeave       BusyType = "LEAVE"
)

// Priority orders busy types for slot reporting: when intervals of
// different types cover the same slot, the highest-priority type wins.
func (t BusyType) Priority() int {
	switch t {
	case BusyAppointment:
		return 3
	case BusyHold:
		return 2
	case BusyLeave:
		return 1
	}
	return 0
}

// BusyInterval is a derived, never-persisted time range during which a
// doctor is unavailable. It is recomputed from the three source entities
// on every query; its lifetime is one call.
type BusyInterval struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Type     BusyType  `json:"type"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Reason   *string   `json:"reason,omitempty"`
}

// Contains reports whether the half-open interval [Start, End) covers t.
func (b BusyInterval) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Overlaps reports whether [Start, End) intersects [from, to).
func (b BusyInterval) Overlaps(from, to time.Time) bool {
	return b.Start.Before(to) && from.Before(b.End)
}
