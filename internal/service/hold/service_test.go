package hold

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/internal/service/appointment"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

type fakeHoldStore struct {
	holds         map[uuid.UUID]*model.Hold
	rejectInserts int
}

func newFakeHoldStore() *fakeHoldStore {
	return &fakeHoldStore{holds: make(map[uuid.UUID]*model.Hold)}
}

func (f *fakeHoldStore) CreateIfSlotFree(_ context.Context, h *model.Hold) (bool, error) {
	if f.rejectInserts > 0 {
		f.rejectInserts--
		return false, nil
	}
	cp := *h
	f.holds[h.ID] = &cp
	return true, nil
}

func (f *fakeHoldStore) GetByID(_ context.Context, id uuid.UUID) (*model.Hold, error) {
	h, ok := f.holds[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHoldStore) MarkConverted(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	h, ok := f.holds[id]
	if !ok || !h.Active(at) {
		return false, nil
	}
	h.ConvertedAt = &at
	return true, nil
}

func (f *fakeHoldStore) Expire(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	h, ok := f.holds[id]
	if !ok || !h.Active(now) {
		return false, nil
	}
	h.ExpiresAt = now
	return true, nil
}

func (f *fakeHoldStore) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, h := range f.holds {
		if h.ConvertedAt == nil && !h.ExpiresAt.After(cutoff) {
			delete(f.holds, id)
			n++
		}
	}
	return n, nil
}

type fakeApptStore struct {
	appts         map[uuid.UUID]*model.Appointment
	rejectInserts int
}

func newFakeApptStore() *fakeApptStore {
	return &fakeApptStore{appts: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeApptStore) CreateIfSlotFree(_ context.Context, a *model.Appointment) (bool, error) {
	if f.rejectInserts > 0 {
		f.rejectInserts--
		return false, nil
	}
	cp := *a
	f.appts[a.ID] = &cp
	return true, nil
}

func (f *fakeApptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeApptStore) UpdateStatusIf(_ context.Context, _ uuid.UUID, _, _ model.AppointmentStatus, _ *string) (bool, error) {
	return false, nil
}

func (f *fakeApptStore) ExpirePendingBefore(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeSlots struct {
	free      bool
	busyHours []int
}

func (f *fakeSlots) IsSlotFree(_ context.Context, _ uuid.UUID, _ time.Time, hour int) (bool, error) {
	for _, h := range f.busyHours {
		if h == hour {
			return false, nil
		}
	}
	return f.free, nil
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeHoldStore, appts *fakeApptStore, slots *fakeSlots) Service {
	cfg := &config.Config{}
	cfg.Scheduling.HoldTTLMinutes = 15
	return New(store, appts, slots, clock.At(testNow), nil, cfg)
}

func TestPlace(t *testing.T) {
	start := testNow.Add(48 * time.Hour)

	t.Run("free slot places with ttl", func(t *testing.T) {
		store := newFakeHoldStore()
		svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

		h, err := svc.Place(context.Background(), uuid.New(), start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("Place() error = %v", err)
		}
		if want := testNow.Add(15 * time.Minute); !h.ExpiresAt.Equal(want) {
			t.Errorf("Place() expires at %s, want %s", h.ExpiresAt, want)
		}
		if _, ok := store.holds[h.ID]; !ok {
			t.Error("Place() did not persist the hold")
		}
	})

	t.Run("occupied slot conflicts", func(t *testing.T) {
		svc := newTestService(newFakeHoldStore(), newFakeApptStore(), &fakeSlots{free: false})

		_, err := svc.Place(context.Background(), uuid.New(), start, start.Add(time.Hour))
		if !errors.Is(err, appointment.ErrSlotConflict) {
			t.Fatalf("Place() error = %v, want ErrSlotConflict", err)
		}
	})

	t.Run("unaligned interval blocked by second slot", func(t *testing.T) {
		store := newFakeHoldStore()
		svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true, busyHours: []int{13}})

		_, err := svc.Place(context.Background(), uuid.New(), start.Add(30*time.Minute), start.Add(90*time.Minute))
		if !errors.Is(err, appointment.ErrSlotConflict) {
			t.Fatalf("Place() error = %v, want ErrSlotConflict", err)
		}
		if len(store.holds) != 0 {
			t.Error("Place() persisted a hold despite the conflict")
		}
	})

	t.Run("lost race retries once", func(t *testing.T) {
		store := newFakeHoldStore()
		store.rejectInserts = 1
		svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

		if _, err := svc.Place(context.Background(), uuid.New(), start, start.Add(time.Hour)); err != nil {
			t.Fatalf("Place() error = %v", err)
		}
	})

	t.Run("retry is bounded", func(t *testing.T) {
		store := newFakeHoldStore()
		store.rejectInserts = 2
		svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

		_, err := svc.Place(context.Background(), uuid.New(), start, start.Add(time.Hour))
		if !errors.Is(err, appointment.ErrSlotConflict) {
			t.Fatalf("Place() error = %v, want ErrSlotConflict", err)
		}
	})
}

func seedHold(store *fakeHoldStore, expiresAt time.Time) *model.Hold {
	h := &model.Hold{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		StartTime: testNow.Add(48 * time.Hour),
		EndTime:   testNow.Add(49 * time.Hour),
		ExpiresAt: expiresAt,
	}
	store.holds[h.ID] = h
	return h
}

func TestConvert(t *testing.T) {
	t.Run("active hold becomes pending appointment", func(t *testing.T) {
		store := newFakeHoldStore()
		appts := newFakeApptStore()
		h := seedHold(store, testNow.Add(10*time.Minute))
		svc := newTestService(store, appts, &fakeSlots{free: true})

		patientID, clinicID := uuid.New(), uuid.New()
		a, err := svc.Convert(context.Background(), h.ID, patientID, clinicID, nil)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if a.Status != model.StatusPending {
			t.Errorf("Convert() status = %s, want PENDING", a.Status)
		}
		if !a.StartTime.Equal(h.StartTime) || !a.EndTime.Equal(h.EndTime) {
			t.Errorf("Convert() slot = %s..%s, want the hold's slot", a.StartTime, a.EndTime)
		}
		if store.holds[h.ID].ConvertedAt == nil {
			t.Error("Convert() did not mark the hold converted")
		}
	})

	t.Run("expired hold", func(t *testing.T) {
		store := newFakeHoldStore()
		h := seedHold(store, testNow.Add(-time.Minute))
		svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

		_, err := svc.Convert(context.Background(), h.ID, uuid.New(), uuid.New(), nil)
		if !errors.Is(err, ErrHoldInactive) {
			t.Fatalf("Convert() error = %v, want ErrHoldInactive", err)
		}
	})

	t.Run("double convert", func(t *testing.T) {
		store := newFakeHoldStore()
		h := seedHold(store, testNow.Add(10*time.Minute))
		svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

		if _, err := svc.Convert(context.Background(), h.ID, uuid.New(), uuid.New(), nil); err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		_, err := svc.Convert(context.Background(), h.ID, uuid.New(), uuid.New(), nil)
		if !errors.Is(err, ErrHoldInactive) {
			t.Fatalf("second Convert() error = %v, want ErrHoldInactive", err)
		}
	})

	t.Run("unknown hold", func(t *testing.T) {
		svc := newTestService(newFakeHoldStore(), newFakeApptStore(), &fakeSlots{free: true})

		_, err := svc.Convert(context.Background(), uuid.New(), uuid.New(), uuid.New(), nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Convert() error = %v, want ErrNotFound", err)
		}
	})
}

func TestRelease(t *testing.T) {
	store := newFakeHoldStore()
	h := seedHold(store, testNow.Add(10*time.Minute))
	svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

	if err := svc.Release(context.Background(), h.ID); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if store.holds[h.ID].Active(testNow.Add(time.Second)) {
		t.Error("Release() left the hold active")
	}
	if err := svc.Release(context.Background(), h.ID); !errors.Is(err, ErrHoldInactive) {
		t.Errorf("second Release() error = %v, want ErrHoldInactive", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	store := newFakeHoldStore()
	seedHold(store, testNow.Add(-time.Minute))
	keep := seedHold(store, testNow.Add(10*time.Minute))
	converted := seedHold(store, testNow.Add(-time.Hour))
	at := testNow.Add(-2 * time.Hour)
	converted.ConvertedAt = &at

	svc := newTestService(store, newFakeApptStore(), &fakeSlots{free: true})

	n, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", n)
	}
	if _, ok := store.holds[keep.ID]; !ok {
		t.Error("PurgeExpired() removed an active hold")
	}
	if _, ok := store.holds[converted.ID]; !ok {
		t.Error("PurgeExpired() removed a converted hold")
	}
}
