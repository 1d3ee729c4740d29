package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaveStatus is the decision state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveRequest is a doctor's request for time off. EndDate equals StartDate
// only for single-day requests. StartHour/EndHour are nil for whole-day
// leave; multi-day leave is always whole-day. Creation goes through the
// leave validator; the decision is made later by an approval authority.
type LeaveRequest struct {
	ID        uuid.UUID   `json:"id"`
	DoctorID  uuid.UUID   `json:"doctor_id"`
	StartDate time.Time   `json:"start_date"` // date-only, UTC midnight
	EndDate   time.Time   `json:"end_date"`   // inclusive
	StartHour *int        `json:"start_hour,omitempty"`
	EndHour   *int        `json:"end_hour,omitempty"`
	Reason    string      `json:"reason"`
	Status    LeaveStatus `json:"status"`
	DecidedBy *uuid.UUID  `json:"decided_by,omitempty"`
	DecidedAt *time.Time  `json:"decided_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// WholeDay reports whether the request covers full business days.
func (l *LeaveRequest) WholeDay() bool {
	return l.StartHour == nil || l.EndHour == nil
}
