package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

type fakeLeaveStore struct {
	leaves map[uuid.UUID]*model.LeaveRequest
}

func newFakeLeaveStore() *fakeLeaveStore {
	return &fakeLeaveStore{leaves: make(map[uuid.UUID]*model.LeaveRequest)}
}

func (f *fakeLeaveStore) Create(_ context.Context, l *model.LeaveRequest) error {
	cp := *l
	f.leaves[l.ID] = &cp
	return nil
}

func (f *fakeLeaveStore) GetByID(_ context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	l, ok := f.leaves[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeaveStore) ListMine(_ context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error) {
	var out []*model.LeaveRequest
	for _, l := range f.leaves {
		if l.DoctorID == doctorID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeaveStore) DecideIf(_ context.Context, id uuid.UUID, next model.LeaveStatus, decidedBy uuid.UUID, at time.Time) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || l.Status != model.LeavePending {
		return false, nil
	}
	l.Status = next
	l.DecidedBy = &decidedBy
	l.DecidedAt = &at
	return true, nil
}

type fakeApptLookup struct {
	appts []*model.Appointment
}

func (f *fakeApptLookup) ListByDoctorAndWindow(_ context.Context, _ uuid.UUID, _, _ time.Time, _ bool) ([]*model.Appointment, error) {
	return f.appts, nil
}

func newTestService(store *fakeLeaveStore) Service {
	return New(store, &fakeApptLookup{}, DefaultPolicy(), clock.At(today), nil)
}

func TestCreate(t *testing.T) {
	doctorID := uuid.New()

	t.Run("whole day pending", func(t *testing.T) {
		store := newFakeLeaveStore()
		svc := newTestService(store)

		req, err := svc.Create(context.Background(), doctorID, singleDay(day(5)))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if req.Status != model.LeavePending {
			t.Errorf("Create() status = %s, want PENDING", req.Status)
		}
		if !req.WholeDay() {
			t.Error("Create() expected whole-day request")
		}
		if !req.EndDate.Equal(req.StartDate) {
			t.Errorf("Create() end date = %s, want start date %s", req.EndDate, req.StartDate)
		}
		if _, ok := store.leaves[req.ID]; !ok {
			t.Error("Create() did not persist the request")
		}
	})

	t.Run("timed leave stores hours", func(t *testing.T) {
		svc := newTestService(newFakeLeaveStore())

		c := Candidate{StartDate: day(5), StartTime: "09:00", EndTime: "12:00", Reason: "errand"}
		req, err := svc.Create(context.Background(), doctorID, c)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if req.StartHour == nil || *req.StartHour != 9 || req.EndHour == nil || *req.EndHour != 12 {
			t.Errorf("Create() hours = %v..%v, want 9..12", req.StartHour, req.EndHour)
		}
	})

	t.Run("validation failure does not persist", func(t *testing.T) {
		store := newFakeLeaveStore()
		svc := newTestService(store)

		_, err := svc.Create(context.Background(), doctorID, singleDay(day(1)))
		ve, ok := AsValidationError(err)
		if !ok || ve.Kind != KindLeadTimeViolation {
			t.Fatalf("Create() error = %v, want LeadTimeViolation", err)
		}
		if len(store.leaves) != 0 {
			t.Error("Create() persisted an invalid request")
		}
	})

	t.Run("overlap with confirmed appointment still admits", func(t *testing.T) {
		store := newFakeLeaveStore()
		appts := &fakeApptLookup{appts: []*model.Appointment{{
			ID:     uuid.New(),
			Status: model.StatusConfirmed,
		}}}
		svc := New(store, appts, DefaultPolicy(), clock.At(today), nil)

		if _, err := svc.Create(context.Background(), doctorID, singleDay(day(5))); err != nil {
			t.Fatalf("Create() error = %v, overlap must not block admission", err)
		}
	})
}

func TestDecide(t *testing.T) {
	doctorID := uuid.New()
	adminID := uuid.New()

	seed := func(store *fakeLeaveStore, status model.LeaveStatus) *model.LeaveRequest {
		l := &model.LeaveRequest{
			ID:        uuid.New(),
			DoctorID:  doctorID,
			StartDate: today.AddDate(0, 0, 5),
			EndDate:   today.AddDate(0, 0, 5),
			Reason:    "conference",
			Status:    status,
		}
		store.leaves[l.ID] = l
		return l
	}

	t.Run("approve pending", func(t *testing.T) {
		store := newFakeLeaveStore()
		l := seed(store, model.LeavePending)
		svc := newTestService(store)

		got, err := svc.Decide(context.Background(), l.ID, true, adminID)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if got.Status != model.LeaveApproved {
			t.Errorf("Decide() status = %s, want APPROVED", got.Status)
		}
		if got.DecidedBy == nil || *got.DecidedBy != adminID {
			t.Errorf("Decide() decided_by = %v, want %s", got.DecidedBy, adminID)
		}
	})

	t.Run("reject pending", func(t *testing.T) {
		store := newFakeLeaveStore()
		l := seed(store, model.LeavePending)
		svc := newTestService(store)

		got, err := svc.Decide(context.Background(), l.ID, false, adminID)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if got.Status != model.LeaveRejected {
			t.Errorf("Decide() status = %s, want REJECTED", got.Status)
		}
	})

	t.Run("already decided", func(t *testing.T) {
		store := newFakeLeaveStore()
		l := seed(store, model.LeaveApproved)
		svc := newTestService(store)

		if _, err := svc.Decide(context.Background(), l.ID, false, adminID); !errors.Is(err, ErrAlreadyDecided) {
			t.Fatalf("Decide() error = %v, want ErrAlreadyDecided", err)
		}
	})

	t.Run("unknown request", func(t *testing.T) {
		svc := newTestService(newFakeLeaveStore())

		if _, err := svc.Decide(context.Background(), uuid.New(), true, adminID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Decide() error = %v, want ErrNotFound", err)
		}
	})
}
