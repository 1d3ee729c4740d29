package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

// Store is the leave persistence the service needs.
type Store interface {
	Create(ctx context.Context, l *model.LeaveRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error)
	ListMine(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error)
	DecideIf(ctx context.Context, id uuid.UUID, next model.LeaveStatus, decidedBy uuid.UUID, at time.Time) (bool, error)
}

// AppointmentLookup is used only to warn about admitted leaves that overlap
// confirmed bookings. The overlap never blocks admission.
type AppointmentLookup interface {
	ListByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, from, to time.Time, onlyOccupying bool) ([]*model.Appointment, error)
}

type EventPublisher interface {
	Publish(subject string, data []byte) error
}

const (
	SubjectRequested = "avicenna.leave.requested"
	SubjectDecided   = "avicenna.leave.decided"
)

type Service interface {
	Create(ctx context.Context, doctorID uuid.UUID, c Candidate) (*model.LeaveRequest, error)
	Mine(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error)
	Decide(ctx context.Context, id uuid.UUID, approve bool, decidedBy uuid.UUID) (*model.LeaveRequest, error)
}

type leaveService struct {
	store        Store
	appointments AppointmentLookup
	policy       Policy
	clk          clock.Clock
	events       EventPublisher
}

func New(store Store, appointments AppointmentLookup, policy Policy, clk clock.Clock, events EventPublisher) Service {
	return &leaveService{
		store:        store,
		appointments: appointments,
		policy:       policy,
		clk:          clk,
		events:       events,
	}
}

// Create validates the candidate and persists it with status PENDING.
// A pending leave already blocks new bookings, so admission alone changes
// the doctor's visible availability.
func (s *leaveService) Create(ctx context.Context, doctorID uuid.UUID, c Candidate) (*model.LeaveRequest, error) {
	if err := Validate(c, s.clk.Now(), s.policy); err != nil {
		return nil, err
	}

	startDate, _ := parseDate(c.StartDate)
	endDate := startDate
	if c.MultiDay {
		endDate, _ = parseDate(c.EndDate)
	}

	req := &model.LeaveRequest{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    c.Reason,
		Status:    model.LeavePending,
	}
	if !c.WholeDay() {
		sh, _, _ := parseClock(c.StartTime)
		eh, _, _ := parseClock(c.EndTime)
		req.StartHour = &sh
		req.EndHour = &eh
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}

	s.warnOnConfirmedOverlap(ctx, req)
	s.publish(SubjectRequested, req.ID)
	return req, nil
}

// warnOnConfirmedOverlap logs admitted leaves that collide with occupying
// appointments. Reconciliation is an administrative action, not a rule here.
func (s *leaveService) warnOnConfirmedOverlap(ctx context.Context, req *model.LeaveRequest) {
	from := req.StartDate
	to := req.EndDate.Add(24 * time.Hour)
	appts, err := s.appointments.ListByDoctorAndWindow(ctx, req.DoctorID, from, to, true)
	if err != nil {
		slog.Warn("leave overlap check failed", "leave_id", req.ID, "err", err)
		return
	}
	for _, a := range appts {
		slog.Warn("admitted leave overlaps an occupying appointment",
			"leave_id", req.ID,
			"doctor_id", req.DoctorID,
			"appointment_id", a.ID,
			"appointment_status", a.Status,
			"appointment_start", a.StartTime,
		)
	}
}

func (s *leaveService) Mine(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error) {
	return s.store.ListMine(ctx, doctorID)
}

// Decide approves or rejects a pending leave. The write is conditioned on
// the request still being PENDING, so racing decisions resolve to one winner.
func (s *leaveService) Decide(ctx context.Context, id uuid.UUID, approve bool, decidedBy uuid.UUID) (*model.LeaveRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get leave request: %w", err)
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Status != model.LeavePending {
		return nil, ErrAlreadyDecided
	}

	next := model.LeaveRejected
	if approve {
		next = model.LeaveApproved
	}
	now := s.clk.Now()

	ok, err := s.store.DecideIf(ctx, id, next, decidedBy, now)
	if err != nil {
		return nil, fmt.Errorf("decide leave request: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyDecided
	}

	req.Status = next
	req.DecidedBy = &decidedBy
	req.DecidedAt = &now
	s.publish(SubjectDecided, id)
	return req, nil
}

func (s *leaveService) publish(subject string, id uuid.UUID) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject+"."+id.String(), []byte(id.String())); err != nil {
		slog.Warn("publish leave event failed", "subject", subject, "id", id, "err", err)
	}
}
