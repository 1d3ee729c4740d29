// Package hold manages temporary slot reservations. A hold keeps a slot
// out of the bookable pool for a short TTL while the patient confirms;
// it then converts into a pending appointment or expires.
package hold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

var (
	ErrNotFound     = errors.New("hold not found")
	ErrHoldInactive = errors.New("hold has expired or was already converted")
)

// Store is the hold persistence the service needs. CreateIfSlotFree is
// the commit-time occupancy guard; MarkConverted and Expire are
// conditional so racing confirm and expiry resolve to one winner.
type Store interface {
	CreateIfSlotFree(ctx context.Context, h *model.Hold) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Hold, error)
	MarkConverted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Expire(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service interface {
	Place(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*model.Hold, error)
	Convert(ctx context.Context, id, patientID, clinicID uuid.UUID, notes *string) (*model.Appointment, error)
	Release(ctx context.Context, id uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type holdService struct {
	store        Store
	appointments appointment.Store
	slots        appointment.SlotQuery
	clk          clock.Clock
	events       appointment.EventPublisher
	ttl          time.Duration
}

func New(store Store, appointments appointment.Store, slots appointment.SlotQuery, clk clock.Clock, events appointment.EventPublisher, cfg *config.Config) Service {
	return &holdService{
		store:        store,
		appointments: appointments,
		slots:        slots,
		clk:          clk,
		events:       events,
		ttl:          time.Duration(cfg.Scheduling.HoldTTLMinutes) * time.Minute,
	}
}

// Place reserves a slot with a TTL. Same conditional-write discipline as
// booking: the insert only succeeds when the slot is free at commit time,
// with one bounded retry before surfacing the conflict.
func (s *holdService) Place(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*model.Hold, error) {
	if !end.After(start) {
		return nil, appointment.ErrInvalidInterval
	}

	free, err := s.checkSlot(ctx, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, appointment.ErrSlotConflict
	}

	h := &model.Hold{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
		ExpiresAt: s.clk.Now().Add(s.ttl),
	}

	inserted, err := s.store.CreateIfSlotFree(ctx, h)
	if err != nil {
		return nil, err
	}
	if !inserted {
		free, err = s.checkSlot(ctx, doctorID, start, end)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, appointment.ErrSlotConflict
		}
		inserted, err = s.store.CreateIfSlotFree(ctx, h)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return nil, appointment.ErrSlotConflict
		}
	}
	return h, nil
}

func (s *holdService) checkSlot(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	for slot := start.UTC().Truncate(time.Hour); slot.Before(end); slot = slot.Add(time.Hour) {
		date := time.Date(slot.Year(), slot.Month(), slot.Day(), 0, 0, 0, 0, time.UTC)
		free, err := s.slots.IsSlotFree(ctx, doctorID, date, slot.Hour())
		if err != nil {
			return false, err
		}
		if !free {
			return false, nil
		}
	}
	return true, nil
}

// Convert turns an active hold into a PENDING appointment for its slot.
// The conversion mark is conditional, so a hold that expired or already
// converted under a racing request fails with ErrHoldInactive. Marking
// first also releases the hold's own claim on the slot before the
// appointment insert re-checks occupancy.
func (s *holdService) Convert(ctx context.Context, id, patientID, clinicID uuid.UUID, notes *string) (*model.Appointment, error) {
	h, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get hold: %w", err)
	}
	if h == nil {
		return nil, ErrNotFound
	}

	now := s.clk.Now()
	if !h.Active(now) {
		return nil, ErrHoldInactive
	}

	ok, err := s.store.MarkConverted(ctx, id, now)
	if err != nil {
		return nil, fmt.Errorf("mark hold converted: %w", err)
	}
	if !ok {
		return nil, ErrHoldInactive
	}

	appt := &model.Appointment{
		ID:                uuid.New(),
		DoctorID:          h.DoctorID,
		PatientID:         patientID,
		ClinicID:          clinicID,
		StartTime:         h.StartTime,
		EndTime:           h.EndTime,
		Status:            model.StatusPending,
		ConsultationNotes: notes,
	}
	inserted, err := s.appointments.CreateIfSlotFree(ctx, appt)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, appointment.ErrSlotConflict
	}

	if s.events != nil {
		subject := appointment.SubjectBooked + "." + appt.ID.String()
		if err := s.events.Publish(subject, []byte(appt.ID.String())); err != nil {
			slog.Warn("publish booked event failed", "appointment_id", appt.ID, "err", err)
		}
	}
	return appt, nil
}

// Release expires a hold ahead of its TTL, freeing the slot immediately.
func (s *holdService) Release(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.Expire(ctx, id, s.clk.Now())
	if err != nil {
		return fmt.Errorf("expire hold: %w", err)
	}
	if !ok {
		return ErrHoldInactive
	}
	return nil
}

// PurgeExpired removes holds whose TTL has lapsed. Called by the sweep
// worker.
func (s *holdService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.PurgeExpired(ctx, s.clk.Now())
}
