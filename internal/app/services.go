package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/repository"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/availability"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/hold"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/leave"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

// ServiceModule provides the scheduling repositories and services.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideClock,
		ProvideAppointmentRepository,
		ProvideHoldRepository,
		ProvideLeaveRepository,
		ProvideReviewRepository,
		ProvideAvailabilityService,
		ProvideAppointmentService,
		ProvideLeaveService,
		ProvideHoldService,
	),
)

func ProvideClock() clock.Clock {
	return clock.Real{}
}

func ProvideAppointmentRepository(pool *pgxpool.Pool) *repository.AppointmentRepository {
	return repository.NewAppointmentRepository(pool)
}

func ProvideHoldRepository(pool *pgxpool.Pool) *repository.HoldRepository {
	return repository.NewHoldRepository(pool)
}

func ProvideLeaveRepository(pool *pgxpool.Pool) *repository.LeaveRepository {
	return repository.NewLeaveRepository(pool)
}

func ProvideReviewRepository(pool *pgxpool.Pool) *repository.ReviewRepository {
	return repository.NewReviewRepository(pool)
}

func ProvideAvailabilityService(
	appts *repository.AppointmentRepository,
	holds *repository.HoldRepository,
	leaves *repository.LeaveRepository,
	clk clock.Clock,
	cfg *config.Config,
) availability.Service {
	return availability.New(appts, holds, leaves, clk, cfg)
}

func ProvideAppointmentService(
	appts *repository.AppointmentRepository,
	reviews *repository.ReviewRepository,
	slots availability.Service,
	clk clock.Clock,
	nc *nats.Conn,
) appointment.Service {
	return appointment.New(appts, reviews, slots, clk, nc)
}

func ProvideLeaveService(
	leaves *repository.LeaveRepository,
	appts *repository.AppointmentRepository,
	clk clock.Clock,
	cfg *config.Config,
	nc *nats.Conn,
) leave.Service {
	return leave.New(leaves, appts, leave.PolicyFromConfig(cfg), clk, nc)
}

func ProvideHoldService(
	holds *repository.HoldRepository,
	appts *repository.AppointmentRepository,
	slots availability.Service,
	clk clock.Clock,
	nc *nats.Conn,
	cfg *config.Config,
) hold.Service {
	return hold.New(holds, appts, slots, clk, nc, cfg)
}
