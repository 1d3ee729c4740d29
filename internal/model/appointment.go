package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment. Statuses are
// only ever changed through the state machine in service/appointment.
type AppointmentStatus string

const (
	StatusPending            AppointmentStatus = "PENDING"
	StatusConfirmed          AppointmentStatus = "CONFIRMED"
	StatusCheckedIn          AppointmentStatus = "CHECKED_IN"
	StatusInProgress         AppointmentStatus = "IN_PROGRESS"
	StatusReview             AppointmentStatus = "REVIEW"
	StatusCompleted          AppointmentStatus = "COMPLETED"
	StatusCancelledByPatient AppointmentStatus = "CANCELLED_BY_PATIENT"
	StatusCancelledByDoctor  AppointmentStatus = "CANCELLED_BY_DOCTOR"
	StatusNoShow             AppointmentStatus = "NO_SHOW"
	StatusRejected           AppointmentStatus = "REJECTED"
	StatusExpired            AppointmentStatus = "EXPIRED"
)

// AppointmentStatuses lists every valid status value.
var AppointmentStatuses = []AppointmentStatus{
	StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
	StatusReview, StatusCompleted, StatusCancelledByPatient,
	StatusCancelledByDoctor, StatusNoShow, StatusRejected, StatusExpired,
}

// Valid reports whether s is one of the defined statuses.
func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelledByPatient, StatusCancelledByDoctor,
		StatusNoShow, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// Occupying reports whether an appointment in this status still reserves
// its time slot. The five non-occupying statuses release the slot.
func (s AppointmentStatus) Occupying() bool {
	switch s {
	case StatusCancelledByPatient, StatusCancelledByDoctor, StatusRejected,
		StatusExpired, StatusNoShow:
		return false
	}
	return true
}

// NonOccupyingStatuses lists statuses whose appointments no longer block
// their slot. Used by repositories to filter busy-window queries.
var NonOccupyingStatuses = []AppointmentStatus{
	StatusCancelledByPatient, StatusCancelledByDoctor, StatusRejected,
	StatusExpired, StatusNoShow,
}

// Appointment is a booked session between a doctor and a patient.
// StartTime/EndTime are immutable once status leaves PENDING.
type Appointment struct {
	ID                 uuid.UUID         `json:"id"`
	DoctorID           uuid.UUID         `json:"doctor_id"`
	PatientID          uuid.UUID         `json:"patient_id"`
	ClinicID           uuid.UUID         `json:"clinic_id"`
	StartTime          time.Time         `json:"start_time"`
	EndTime            time.Time         `json:"end_time"`
	Status             AppointmentStatus `json:"status"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	ConsultationNotes  *string           `json:"consultation_notes,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
