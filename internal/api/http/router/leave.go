package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/avicenna-clinic/avicenna_backend/internal/api/http/handler"
)

func (r *Router) registerLeaveRoutes(api fiber.Router, lh *handler.LeaveHandler) {
	leaves := api.Group("/leaves")

	leaves.Post("/", lh.Create)
	leaves.Get("/mine", lh.Mine)
	leaves.Patch("/:id/decision", lh.Decide)
}
