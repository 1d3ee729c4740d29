package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	if ite, ok := appointment.IsInvalidTransition(err); ok {
		return conflict(c, ite.Error())
	}
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrSlotConflict):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidInterval),
		errors.Is(err, appointment.ErrReasonRequired),
		errors.Is(err, appointment.ErrInvalidRating):
		return badRequest(c, err.Error())
	case errors.Is(err, appointment.ErrNotReviewable):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	var body struct {
		DoctorID  string    `json:"doctor_id"`
		PatientID string    `json:"patient_id"`
		ClinicID  string    `json:"clinic_id"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Notes     *string   `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	doctorID, err := uuid.Parse(body.DoctorID)
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}
	clinicID, err := uuid.Parse(body.ClinicID)
	if err != nil {
		return badRequest(c, "invalid clinic_id")
	}

	appt, err := h.svc.Book(c.Context(), appointment.BookRequest{
		DoctorID:  doctorID,
		PatientID: patientID,
		ClinicID:  clinicID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Notes:     body.Notes,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return created(c, appt)
}

// GET /appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.GetByID(c.Context(), apptID)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}

// PATCH /appointments/:id/transition
func (h *AppointmentHandler) Transition(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Event  string  `json:"event"`
		Reason *string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Event == "" {
		return badRequest(c, "event is required")
	}

	next, err := h.svc.Transition(c.Context(), apptID, appointment.TransitionRequest{
		Event:  appointment.Event(body.Event),
		Reason: body.Reason,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, fiber.Map{"status": next})
}

// GET /appointments/:id/reviewable
func (h *AppointmentHandler) Reviewable(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	reviewable, err := h.svc.Reviewable(c.Context(), apptID)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, fiber.Map{"reviewable": reviewable})
}

// POST /appointments/:id/review
func (h *AppointmentHandler) SubmitReview(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		PatientID string  `json:"patient_id"`
		Rating    int     `json:"rating"`
		Comment   *string `json:"comment"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}

	review, err := h.svc.SubmitReview(c.Context(), apptID, appointment.ReviewRequest{
		PatientID: patientID,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return created(c, review)
}
