package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/repository"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/hold"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/leave"
)

// WorkerModule registers the expiry sweeper and the NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	NC       *nats.Conn
	Appts    appointment.Service
	Holds    hold.Service
	Leaves   *repository.LeaveRepository
	ApptRepo *repository.AppointmentRepository
}

func RegisterWorkers(p WorkerParams) {
	sweeper := &expirySweeper{
		appts:    p.Appts,
		holds:    p.Holds,
		interval: time.Duration(p.Cfg.Scheduling.SweepIntervalSeconds) * time.Second,
		done:     make(chan struct{}),
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sweeper.start()
			startAuditWorker(p.NC, p.ApptRepo, p.Leaves)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sweeper.stop()
			// NATS drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// expiry_sweeper
// ---------------------------------------------------------------------------

// expirySweeper periodically expires overdue PENDING appointments and
// purges lapsed holds. It is the external trigger for the time-based
// expire transition.
type expirySweeper struct {
	appts    appointment.Service
	holds    hold.Service
	interval time.Duration
	done     chan struct{}
}

func (s *expirySweeper) start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
	slog.Info("expiry_sweeper: started", "interval", s.interval)
}

func (s *expirySweeper) stop() {
	close(s.done)
}

func (s *expirySweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.appts.ExpireOverdue(ctx)
	if err != nil {
		slog.Warn("expiry_sweeper: expire appointments failed", "err", err)
	} else if len(expired) > 0 {
		slog.Info("expiry_sweeper: expired overdue appointments", "count", len(expired))
	}

	purged, err := s.holds.PurgeExpired(ctx)
	if err != nil {
		slog.Warn("expiry_sweeper: purge holds failed", "err", err)
	} else if purged > 0 {
		slog.Info("expiry_sweeper: purged lapsed holds", "count", purged)
	}
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

// startAuditWorker subscribes to the scheduling event subjects and writes
// a structured audit line per event, resolving the entity for context.
func startAuditWorker(nc *nats.Conn, appts *repository.AppointmentRepository, leaves *repository.LeaveRepository) {
	_, err := nc.Subscribe(appointment.SubjectTransitioned+".>", func(msg *nats.Msg) {
		parts := strings.Split(msg.Subject, ".")
		if len(parts) < 5 {
			return
		}
		event := parts[3]

		apptID, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}

		ctx := context.Background()
		appt, err := appts.GetByID(ctx, apptID)
		if err != nil || appt == nil {
			slog.Warn("audit_worker: appointment not found", "id", apptID, "err", err)
			return
		}

		slog.Info("audit_worker: appointment transitioned",
			"appointment_id", appt.ID,
			"doctor_id", appt.DoctorID,
			"event", event,
			"status", appt.Status,
		)
	})
	if err != nil {
		slog.Error("audit_worker: subscribe appointment.transitioned failed", "err", err)
	}

	_, err = nc.Subscribe(appointment.SubjectBooked+".*", func(msg *nats.Msg) {
		apptID, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}

		ctx := context.Background()
		appt, err := appts.GetByID(ctx, apptID)
		if err != nil || appt == nil {
			slog.Warn("audit_worker: appointment not found", "id", apptID, "err", err)
			return
		}

		slog.Info("audit_worker: appointment booked",
			"appointment_id", appt.ID,
			"doctor_id", appt.DoctorID,
			"start_time", appt.StartTime,
		)
	})
	if err != nil {
		slog.Error("audit_worker: subscribe appointment.booked failed", "err", err)
	}

	_, err = nc.Subscribe(leave.SubjectDecided+".*", func(msg *nats.Msg) {
		leaveID, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}

		ctx := context.Background()
		req, err := leaves.GetByID(ctx, leaveID)
		if err != nil || req == nil {
			slog.Warn("audit_worker: leave request not found", "id", leaveID, "err", err)
			return
		}

		slog.Info("audit_worker: leave request decided",
			"leave_id", req.ID,
			"doctor_id", req.DoctorID,
			"status", req.Status,
		)
	})
	if err != nil {
		slog.Error("audit_worker: subscribe leave.decided failed", "err", err)
	}

	slog.Info("audit_worker: started")
}
