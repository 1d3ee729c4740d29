package model

import (
	"time"

	"github.com/google/uuid"
)

// Hold is a temporary, unconfirmed reservation of a slot pending patient
// confirmation. It is never user-editable: it either converts into an
// appointment or expires. A hold is active while ConvertedAt is nil and
// ExpiresAt is in the future.
type Hold struct {
	ID          uuid.UUID  `json:"id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Active reports whether the hold still reserves its slot at now.
func (h *Hold) Active(now time.Time) bool {
	return h.ConvertedAt == nil && h.ExpiresAt.After(now)
}
