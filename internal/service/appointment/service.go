package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	ClinicID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Notes     *string
}

type TransitionRequest struct {
	Event  Event
	Reason *string
}

type ReviewRequest struct {
	PatientID uuid.UUID
	Rating    int
	Comment   *string
}

// ---------------------------------------------------------------------------
// Collaborator contracts
// ---------------------------------------------------------------------------

// Store is the persistence the appointment service needs. Both writes are
// conditional: CreateIfSlotFree is the commit-time occupancy guard and
// UpdateStatusIf is the optimistic-concurrency status write.
type Store interface {
	CreateIfSlotFree(ctx context.Context, a *model.Appointment) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.AppointmentStatus, reason *string) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

type ReviewStore interface {
	ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
	Create(ctx context.Context, r *model.Review) error
}

// SlotQuery is the availability check consulted before booking. It is the
// single source of truth for slot freedom; no overlap logic lives here.
type SlotQuery interface {
	IsSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, hour int) (bool, error)
}

// EventPublisher pushes domain events to the message bus. Satisfied by
// *nats.Conn; may be nil when messaging is disabled.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// NATS subjects for appointment events. The entity id is appended as the
// final token.
const (
	SubjectBooked       = "avicenna.appointment.booked"
	SubjectTransitioned = "avicenna.appointment.transitioned"
	SubjectExpired      = "avicenna.appointment.expired"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, req BookRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (model.AppointmentStatus, error)
	Reviewable(ctx context.Context, id uuid.UUID) (bool, error)
	SubmitReview(ctx context.Context, id uuid.UUID, req ReviewRequest) (*model.Review, error)
	ExpireOverdue(ctx context.Context) ([]uuid.UUID, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	store   Store
	reviews ReviewStore
	slots   SlotQuery
	clk     clock.Clock
	events  EventPublisher
}

func New(store Store, reviews ReviewStore, slots SlotQuery, clk clock.Clock, events EventPublisher) Service {
	return &appointmentService{
		store:   store,
		reviews: reviews,
		slots:   slots,
		clk:     clk,
		events:  events,
	}
}

// Book reserves a slot by inserting a PENDING appointment. The insert is a
// conditional write that only succeeds when no overlapping occupying busy
// interval exists at commit time. On a lost race the service re-checks the
// slot and retries the insert exactly once before surfacing ErrSlotConflict.
func (s *appointmentService) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidInterval
	}

	free, err := s.checkSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotConflict
	}

	appt := &model.Appointment{
		ID:                uuid.New(),
		DoctorID:          req.DoctorID,
		PatientID:         req.PatientID,
		ClinicID:          req.ClinicID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Status:            model.StatusPending,
		ConsultationNotes: req.Notes,
	}

	inserted, err := s.store.CreateIfSlotFree(ctx, appt)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Lost a race between the pre-check and the insert. One bounded
		// retry: re-query, then give up so competing bookers can't live-lock.
		free, err = s.checkSlot(ctx, req)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, ErrSlotConflict
		}
		inserted, err = s.store.CreateIfSlotFree(ctx, appt)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return nil, ErrSlotConflict
		}
	}

	s.publish(SubjectBooked, appt.ID)
	return appt, nil
}

// checkSlot asks the availability service about every hour slot the
// requested interval touches. An unaligned interval spans two slots even
// when it is shorter than an hour.
func (s *appointmentService) checkSlot(ctx context.Context, req BookRequest) (bool, error) {
	for slot := req.StartTime.UTC().Truncate(time.Hour); slot.Before(req.EndTime); slot = slot.Add(time.Hour) {
		date := time.Date(slot.Year(), slot.Month(), slot.Day(), 0, 0, 0, 0, time.UTC)
		free, err := s.slots.IsSlotFree(ctx, req.DoctorID, date, slot.Hour())
		if err != nil {
			return false, err
		}
		if !free {
			return false, nil
		}
	}
	return true, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	return appt, nil
}

// Transition applies one state machine event. The status write is
// conditioned on the status read here, so a racing transition makes the
// write a no-op and the loser fails with the status it actually observed.
func (s *appointmentService) Transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (model.AppointmentStatus, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	next, err := Next(appt.Status, req.Event)
	if err != nil {
		return "", err
	}

	if req.Event == EventReject && (req.Reason == nil || *req.Reason == "") {
		return "", ErrReasonRequired
	}

	var reason *string
	switch req.Event {
	case EventReject, EventCancelByPatient, EventCancelByDoctor:
		reason = req.Reason
	}

	ok, err := s.store.UpdateStatusIf(ctx, id, appt.Status, next, reason)
	if err != nil {
		return "", err
	}
	if !ok {
		// The row changed between read and write. Re-read so the error
		// carries the status that actually won.
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return "", &InvalidTransitionError{From: current.Status, Event: req.Event}
	}

	s.publish(SubjectTransitioned+"."+string(req.Event), id)
	return next, nil
}

// Reviewable reports whether a patient may submit a review: the
// appointment reached REVIEW or COMPLETED and no review exists yet.
func (s *appointmentService) Reviewable(ctx context.Context, id uuid.UUID) (bool, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !reviewableStatus(appt.Status) {
		return false, nil
	}

	exists, err := s.reviews.ExistsForAppointment(ctx, id)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *appointmentService) SubmitReview(ctx context.Context, id uuid.UUID, req ReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != req.PatientID || !reviewableStatus(appt.Status) {
		return nil, ErrNotReviewable
	}

	exists, err := s.reviews.ExistsForAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNotReviewable
	}

	review := &model.Review{
		ID:            uuid.New(),
		AppointmentID: id,
		PatientID:     req.PatientID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ExpireOverdue moves PENDING appointments whose start time has passed to
// EXPIRED. Called by the sweep worker; this is the external trigger for
// the time-based expire event.
func (s *appointmentService) ExpireOverdue(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.store.ExpirePendingBefore(ctx, s.clk.Now())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.publish(SubjectExpired, id)
	}
	return ids, nil
}

func (s *appointmentService) publish(subject string, id uuid.UUID) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject+"."+id.String(), []byte(id.String())); err != nil {
		slog.Warn("publish appointment event failed", "subject", subject, "id", id, "err", err)
	}
}
