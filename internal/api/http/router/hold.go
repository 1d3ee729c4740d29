package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/avicenna-clinic/avicenna_backend/internal/api/http/handler"
)

func (r *Router) registerHoldRoutes(api fiber.Router, hh *handler.HoldHandler) {
	holds := api.Group("/holds")

	holds.Post("/", hh.Place)
	holds.Post("/:id/convert", hh.Convert)
	holds.Delete("/:id", hh.Release)
}
