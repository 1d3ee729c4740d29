package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a patient's rating of a finished appointment. At most one
// review exists per appointment.
type Review struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	Rating        int       `json:"rating"`
	Comment       *string   `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
