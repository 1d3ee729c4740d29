package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/service/availability"
)

type ScheduleHandler struct {
	svc availability.Service
}

func NewScheduleHandler(svc availability.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// GET /doctors/:id/busy
func (h *ScheduleHandler) BusyIntervals(c fiber.Ctx) error {
	doctorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid doctor id")
	}

	var q struct {
		From string `query:"from"`
		To   string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	from, err := time.Parse(time.RFC3339, q.From)
	if err != nil {
		return badRequest(c, "from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, q.To)
	if err != nil {
		return badRequest(c, "to must be RFC3339")
	}
	if !to.After(from) {
		return badRequest(c, "to must be after from")
	}

	intervals, err := h.svc.GetBusyIntervals(c.Context(), doctorID, from, to)
	if err != nil {
		return internalError(c)
	}

	return ok(c, intervals)
}

// GET /doctors/:id/schedule
func (h *ScheduleHandler) WeekGrid(c fiber.Ctx) error {
	doctorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid doctor id")
	}

	weekStart, err := time.ParseInLocation("2006-01-02", c.Query("week_start"), time.UTC)
	if err != nil {
		return badRequest(c, "week_start must be YYYY-MM-DD")
	}

	grid, err := h.svc.WeekGrid(c.Context(), doctorID, weekStart)
	if err != nil {
		return internalError(c)
	}

	return ok(c, grid)
}

// GET /doctors/:id/slots/free
func (h *ScheduleHandler) SlotFree(c fiber.Ctx) error {
	doctorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid doctor id")
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.UTC)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	hour := fiber.Query[int](c, "hour", -1)
	if hour < 0 || hour > 23 {
		return badRequest(c, "hour must be between 0 and 23")
	}

	free, err := h.svc.IsSlotFree(c.Context(), doctorID, date, hour)
	if err != nil {
		return internalError(c)
	}

	return ok(c, fiber.Map{"free": free})
}
