package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/api/http/handler"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/availability"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/hold"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/leave"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	AppointmentSvc  appointment.Service
	AvailabilitySvc availability.Service
	LeaveSvc        leave.Service
	HoldSvc         hold.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	scheduleH := handler.NewScheduleHandler(r.p.AvailabilitySvc)
	leaveH := handler.NewLeaveHandler(r.p.LeaveSvc)
	holdH := handler.NewHoldHandler(r.p.HoldSvc)

	api := app.Group("/api/v1")

	r.registerAppointmentRoutes(api, appointmentH)
	r.registerScheduleRoutes(api, scheduleH)
	r.registerLeaveRoutes(api, leaveH)
	r.registerHoldRoutes(api, holdH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
