package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/avicenna-clinic/avicenna_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, ah *handler.AppointmentHandler) {
	appts := api.Group("/appointments")

	appts.Post("/", ah.Book)

	a := appts.Group("/:id")
	a.Get("/", ah.GetByID)
	a.Patch("/transition", ah.Transition)
	a.Get("/reviewable", ah.Reviewable)
	a.Post("/review", ah.SubmitReview)
}
