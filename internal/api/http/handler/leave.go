package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/service/leave"
)

type LeaveHandler struct {
	svc leave.Service
}

func NewLeaveHandler(svc leave.Service) *LeaveHandler {
	return &LeaveHandler{svc: svc}
}

func mapLeaveError(c fiber.Ctx, err error) error {
	if ve, ok := leave.AsValidationError(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": ve.Message,
			"kind":  ve.Kind,
		})
	}
	switch {
	case errors.Is(err, leave.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, leave.ErrAlreadyDecided):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /leaves
func (h *LeaveHandler) Create(c fiber.Ctx) error {
	var body struct {
		DoctorID  string `json:"doctor_id"`
		MultiDay  bool   `json:"multi_day"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	doctorID, err := uuid.Parse(body.DoctorID)
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}

	req, err := h.svc.Create(c.Context(), doctorID, leave.Candidate{
		MultiDay:  body.MultiDay,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Reason:    body.Reason,
	})
	if err != nil {
		return mapLeaveError(c, err)
	}

	return created(c, req)
}

// GET /leaves/mine
func (h *LeaveHandler) Mine(c fiber.Ctx) error {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}

	leaves, err := h.svc.Mine(c.Context(), doctorID)
	if err != nil {
		return mapLeaveError(c, err)
	}

	return ok(c, leaves)
}

// PATCH /leaves/:id/decision
func (h *LeaveHandler) Decide(c fiber.Ctx) error {
	leaveID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid leave id")
	}

	var body struct {
		Approve   bool   `json:"approve"`
		DecidedBy string `json:"decided_by"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	decidedBy, err := uuid.Parse(body.DecidedBy)
	if err != nil {
		return badRequest(c, "invalid decided_by")
	}

	req, err := h.svc.Decide(c.Context(), leaveID, body.Approve, decidedBy)
	if err != nil {
		return mapLeaveError(c, err)
	}

	return ok(c, req)
}
