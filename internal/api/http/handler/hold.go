package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/hold"
)

type HoldHandler struct {
	svc hold.Service
}

func NewHoldHandler(svc hold.Service) *HoldHandler {
	return &HoldHandler{svc: svc}
}

func mapHoldError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, hold.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, hold.ErrHoldInactive):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrSlotConflict):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidInterval):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /holds
func (h *HoldHandler) Place(c fiber.Ctx) error {
	var body struct {
		DoctorID  string    `json:"doctor_id"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	doctorID, err := uuid.Parse(body.DoctorID)
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}

	placed, err := h.svc.Place(c.Context(), doctorID, body.StartTime, body.EndTime)
	if err != nil {
		return mapHoldError(c, err)
	}

	return created(c, placed)
}

// POST /holds/:id/convert
func (h *HoldHandler) Convert(c fiber.Ctx) error {
	holdID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid hold id")
	}

	var body struct {
		PatientID string  `json:"patient_id"`
		ClinicID  string  `json:"clinic_id"`
		Notes     *string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}
	clinicID, err := uuid.Parse(body.ClinicID)
	if err != nil {
		return badRequest(c, "invalid clinic_id")
	}

	appt, err := h.svc.Convert(c.Context(), holdID, patientID, clinicID, body.Notes)
	if err != nil {
		return mapHoldError(c, err)
	}

	return created(c, appt)
}

// DELETE /holds/:id
func (h *HoldHandler) Release(c fiber.Ctx) error {
	holdID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid hold id")
	}

	if err := h.svc.Release(c.Context(), holdID); err != nil {
		return mapHoldError(c, err)
	}

	return noContent(c)
}
