package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/avicenna-clinic/avicenna_backend/internal/api/http/handler"
)

func (r *Router) registerScheduleRoutes(api fiber.Router, sh *handler.ScheduleHandler) {
	doctors := api.Group("/doctors/:id")

	doctors.Get("/busy", sh.BusyIntervals)
	doctors.Get("/schedule", sh.WeekGrid)
	doctors.Get("/slots/free", sh.SlotFree)
}
