package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

type fakeAppointments struct {
	appts []*model.Appointment
}

func (f *fakeAppointments) ListByDoctorAndWindow(_ context.Context, doctorID uuid.UUID, from, to time.Time, onlyOccupying bool) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appts {
		if a.DoctorID != doctorID {
			continue
		}
		if onlyOccupying && !a.Status.Occupying() {
			continue
		}
		if a.StartTime.Before(to) && from.Before(a.EndTime) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeHolds struct {
	holds []*model.Hold
}

func (f *fakeHolds) ListActiveByDoctorAndWindow(_ context.Context, doctorID uuid.UUID, from, to, now time.Time) ([]*model.Hold, error) {
	var out []*model.Hold
	for _, h := range f.holds {
		if h.DoctorID != doctorID || !h.Active(now) {
			continue
		}
		if h.StartTime.Before(to) && from.Before(h.EndTime) {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeLeaves struct {
	leaves []*model.LeaveRequest
}

func (f *fakeLeaves) ListByDoctorAndWindow(_ context.Context, doctorID uuid.UUID, fromDate, toDate time.Time) ([]*model.LeaveRequest, error) {
	var out []*model.LeaveRequest
	for _, l := range f.leaves {
		if l.DoctorID != doctorID {
			continue
		}
		if !l.StartDate.After(toDate) && !l.EndDate.Before(fromDate) {
			out = append(out, l)
		}
	}
	return out, nil
}

var (
	doctorID = uuid.New()
	now      = time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func newTestService(appts *fakeAppointments, holds *fakeHolds, leaves *fakeLeaves, clk clock.Clock) Service {
	cfg := &config.Config{}
	cfg.Scheduling.DayStartHour = 8
	cfg.Scheduling.DayEndHour = 18
	return New(appts, holds, leaves, clk, cfg)
}

func appt(status model.AppointmentStatus, start, end time.Time) *model.Appointment {
	return &model.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
}

func wholeDayLeave(status model.LeaveStatus, start, end time.Time) *model.LeaveRequest {
	return &model.LeaveRequest{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		StartDate: start,
		EndDate:   end,
		Reason:    "leave",
		Status:    status,
	}
}

func TestGetBusyIntervals(t *testing.T) {
	windowFrom := at(10, 0, 0)
	windowTo := at(11, 0, 0)

	t.Run("excludes non-occupying appointments", func(t *testing.T) {
		appts := &fakeAppointments{appts: []*model.Appointment{
			appt(model.StatusConfirmed, at(10, 10, 0), at(10, 11, 0)),
			appt(model.StatusCancelledByPatient, at(10, 11, 0), at(10, 12, 0)),
			appt(model.StatusRejected, at(10, 12, 0), at(10, 13, 0)),
			appt(model.StatusExpired, at(10, 13, 0), at(10, 14, 0)),
			appt(model.StatusNoShow, at(10, 14, 0), at(10, 15, 0)),
			appt(model.StatusCancelledByDoctor, at(10, 15, 0), at(10, 16, 0)),
		}}
		svc := newTestService(appts, &fakeHolds{}, &fakeLeaves{}, clock.At(now))

		got, err := svc.GetBusyIntervals(context.Background(), doctorID, windowFrom, windowTo)
		if err != nil {
			t.Fatalf("GetBusyIntervals() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("GetBusyIntervals() = %d intervals, want 1", len(got))
		}
		if got[0].Type != model.BusyAppointment || !got[0].Start.Equal(at(10, 10, 0)) {
			t.Errorf("GetBusyIntervals()[0] = %+v", got[0])
		}
	})

	t.Run("includes pending and checked-in appointments", func(t *testing.T) {
		appts := &fakeAppointments{appts: []*model.Appointment{
			appt(model.StatusPending, at(10, 9, 0), at(10, 10, 0)),
			appt(model.StatusCheckedIn, at(10, 10, 0), at(10, 11, 0)),
		}}
		svc := newTestService(appts, &fakeHolds{}, &fakeLeaves{}, clock.At(now))

		got, err := svc.GetBusyIntervals(context.Background(), doctorID, windowFrom, windowTo)
		if err != nil {
			t.Fatalf("GetBusyIntervals() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("GetBusyIntervals() = %d intervals, want 2", len(got))
		}
	})

	t.Run("expired holds dropped", func(t *testing.T) {
		holds := &fakeHolds{holds: []*model.Hold{
			{ID: uuid.New(), DoctorID: doctorID, StartTime: at(10, 9, 0), EndTime: at(10, 10, 0), ExpiresAt: now.Add(10 * time.Minute)},
			{ID: uuid.New(), DoctorID: doctorID, StartTime: at(10, 10, 0), EndTime: at(10, 11, 0), ExpiresAt: now.Add(-time.Minute)},
		}}
		svc := newTestService(&fakeAppointments{}, holds, &fakeLeaves{}, clock.At(now))

		got, err := svc.GetBusyIntervals(context.Background(), doctorID, windowFrom, windowTo)
		if err != nil {
			t.Fatalf("GetBusyIntervals() error = %v", err)
		}
		if len(got) != 1 || got[0].Type != model.BusyHold {
			t.Fatalf("GetBusyIntervals() = %+v, want the single active hold", got)
		}
	})

	t.Run("pending leave blocks like approved", func(t *testing.T) {
		for _, status := range []model.LeaveStatus{model.LeavePending, model.LeaveApproved, model.LeaveRejected} {
			leaves := &fakeLeaves{leaves: []*model.LeaveRequest{
				wholeDayLeave(status, at(10, 0, 0), at(10, 0, 0)),
			}}
			svc := newTestService(&fakeAppointments{}, &fakeHolds{}, leaves, clock.At(now))

			got, err := svc.GetBusyIntervals(context.Background(), doctorID, windowFrom, windowTo)
			if err != nil {
				t.Fatalf("GetBusyIntervals() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("GetBusyIntervals() with %s leave = %d intervals, want 1", status, len(got))
			}
			if got[0].Start.Hour() != 8 || got[0].End.Hour() != 18 {
				t.Errorf("whole-day leave covers %s..%s, want business hours", got[0].Start, got[0].End)
			}
		}
	})

	t.Run("multi-day leave expands per date", func(t *testing.T) {
		leaves := &fakeLeaves{leaves: []*model.LeaveRequest{
			wholeDayLeave(model.LeaveApproved, at(10, 0, 0), at(12, 0, 0)),
		}}
		svc := newTestService(&fakeAppointments{}, &fakeHolds{}, leaves, clock.At(now))

		got, err := svc.GetBusyIntervals(context.Background(), doctorID, at(9, 0, 0), at(14, 0, 0))
		if err != nil {
			t.Fatalf("GetBusyIntervals() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("GetBusyIntervals() = %d intervals, want one per leave day", len(got))
		}
	})

	t.Run("timed leave covers its hours only", func(t *testing.T) {
		sh, eh := 9, 12
		l := wholeDayLeave(model.LeaveApproved, at(10, 0, 0), at(10, 0, 0))
		l.StartHour, l.EndHour = &sh, &eh
		svc := newTestService(&fakeAppointments{}, &fakeHolds{}, &fakeLeaves{leaves: []*model.LeaveRequest{l}}, clock.At(now))

		got, err := svc.GetBusyIntervals(context.Background(), doctorID, windowFrom, windowTo)
		if err != nil {
			t.Fatalf("GetBusyIntervals() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("GetBusyIntervals() = %d intervals, want 1", len(got))
		}
		if !got[0].Start.Equal(at(10, 9, 0)) || !got[0].End.Equal(at(10, 12, 0)) {
			t.Errorf("timed leave = %s..%s, want 09:00..12:00", got[0].Start, got[0].End)
		}
	})

	t.Run("ordered by start, no merging", func(t *testing.T) {
		appts := &fakeAppointments{appts: []*model.Appointment{
			appt(model.StatusConfirmed, at(10, 14, 0), at(10, 15, 0)),
			appt(model.StatusConfirmed, at(10, 9, 0), at(10, 10, 0)),
		}}
		leaves := &fakeLeaves{leaves: []*model.LeaveRequest{
			wholeDayLeave(model.LeavePending, at(10, 0, 0), at(10, 0, 0)),
		}}
		svc := newTestService(appts, &fakeHolds{}, leaves, clock.At(now))

		got, err := svc.GetBusyIntervals(context.Background(), doctorID, windowFrom, windowTo)
		if err != nil {
			t.Fatalf("GetBusyIntervals() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("GetBusyIntervals() = %d intervals, want 3 (overlaps kept separate)", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Start.Before(got[i-1].Start) {
				t.Errorf("intervals out of order at %d: %s after %s", i, got[i-1].Start, got[i].Start)
			}
		}
	})
}

func TestIsSlotFree(t *testing.T) {
	day10 := at(10, 0, 0)

	t.Run("past slots never free", func(t *testing.T) {
		svc := newTestService(&fakeAppointments{}, &fakeHolds{}, &fakeLeaves{}, clock.At(now))

		free, err := svc.IsSlotFree(context.Background(), doctorID, at(1, 0, 0), 9)
		if err != nil {
			t.Fatalf("IsSlotFree() error = %v", err)
		}
		if free {
			t.Error("IsSlotFree() = true for a past slot")
		}
	})

	t.Run("empty calendar future slot free", func(t *testing.T) {
		svc := newTestService(&fakeAppointments{}, &fakeHolds{}, &fakeLeaves{}, clock.At(now))

		free, err := svc.IsSlotFree(context.Background(), doctorID, day10, 9)
		if err != nil {
			t.Fatalf("IsSlotFree() error = %v", err)
		}
		if !free {
			t.Error("IsSlotFree() = false for an empty future slot")
		}
	})

	// Confirmed appointment 10:00-10:30 plus approved whole-day leave on
	// the same date: 09:00 is blocked by the leave, 10:00 by the
	// appointment.
	t.Run("leave and appointment on same day", func(t *testing.T) {
		appts := &fakeAppointments{appts: []*model.Appointment{
			appt(model.StatusConfirmed, at(10, 10, 0), at(10, 10, 30)),
		}}
		leaves := &fakeLeaves{leaves: []*model.LeaveRequest{
			wholeDayLeave(model.LeaveApproved, day10, day10),
		}}
		svc := newTestService(appts, &fakeHolds{}, leaves, clock.At(now))

		for _, hour := range []int{9, 10} {
			free, err := svc.IsSlotFree(context.Background(), doctorID, day10, hour)
			if err != nil {
				t.Fatalf("IsSlotFree(%d) error = %v", hour, err)
			}
			if free {
				t.Errorf("IsSlotFree(%d) = true, want false", hour)
			}
		}
	})
}

func TestWeekGrid(t *testing.T) {
	weekStart := at(9, 0, 0) // Sunday 2024-06-09

	appts := &fakeAppointments{appts: []*model.Appointment{
		appt(model.StatusConfirmed, at(10, 10, 0), at(10, 10, 30)),
	}}
	holds := &fakeHolds{holds: []*model.Hold{
		{ID: uuid.New(), DoctorID: doctorID, StartTime: at(10, 10, 0), EndTime: at(10, 11, 0), ExpiresAt: now.Add(time.Hour)},
	}}
	leaves := &fakeLeaves{leaves: []*model.LeaveRequest{
		wholeDayLeave(model.LeaveApproved, at(10, 0, 0), at(10, 0, 0)),
	}}
	svc := newTestService(appts, holds, leaves, clock.At(now))

	grid, err := svc.WeekGrid(context.Background(), doctorID, weekStart)
	if err != nil {
		t.Fatalf("WeekGrid() error = %v", err)
	}
	if len(grid) != 7 {
		t.Fatalf("WeekGrid() = %d days, want 7", len(grid))
	}
	for d, cells := range grid {
		if len(cells) != 10 {
			t.Fatalf("WeekGrid() day %d has %d cells, want 10", d, len(cells))
		}
	}

	day10 := grid[1] // 2024-06-10

	// Appointment outranks the hold and the leave on the shared slot.
	if got := day10[2]; got.Free || got.BusyType != model.BusyAppointment {
		t.Errorf("10:00 cell = %+v, want busy APPOINTMENT", got)
	}
	// The rest of the leave day reports LEAVE.
	if got := day10[1]; got.Free || got.BusyType != model.BusyLeave {
		t.Errorf("09:00 cell = %+v, want busy LEAVE", got)
	}
	if got := day10[9]; got.Free || got.BusyType != model.BusyLeave {
		t.Errorf("17:00 cell = %+v, want busy LEAVE", got)
	}

	// The 9th has no busy sources and is after now, so its cells are free.
	day9 := grid[0]
	if got := day9[0]; !got.Free {
		t.Errorf("free day cell = %+v, want free", got)
	}
}

func TestWeekGridUnalignedInterval(t *testing.T) {
	// Appointment 09:30-12:30: every hour slot it touches, including the
	// final 12:00 cell, is busy, and the grid agrees with IsSlotFree.
	appts := &fakeAppointments{appts: []*model.Appointment{
		appt(model.StatusConfirmed, at(12, 9, 30), at(12, 12, 30)),
	}}
	svc := newTestService(appts, &fakeHolds{}, &fakeLeaves{}, clock.At(now))

	grid, err := svc.WeekGrid(context.Background(), doctorID, at(9, 0, 0))
	if err != nil {
		t.Fatalf("WeekGrid() error = %v", err)
	}

	day12 := grid[3]
	for _, hour := range []int{10, 11, 12} {
		if got := day12[hour-8]; got.Free || got.BusyType != model.BusyAppointment {
			t.Errorf("%02d:00 cell = %+v, want busy APPOINTMENT", hour, got)
		}
	}
	// 09:00 itself lies before the appointment starts, so the slot instant
	// is not covered.
	for _, hour := range []int{8, 9, 13} {
		if got := day12[hour-8]; !got.Free {
			t.Errorf("%02d:00 cell = %+v, want free", hour, got)
		}
	}

	for _, hour := range []int{9, 12} {
		free, err := svc.IsSlotFree(context.Background(), doctorID, at(12, 0, 0), hour)
		if err != nil {
			t.Fatalf("IsSlotFree(%d) error = %v", hour, err)
		}
		if cell := day12[hour-8]; free != cell.Free {
			t.Errorf("IsSlotFree(%d) = %v but grid cell free = %v", hour, free, cell.Free)
		}
	}
}

func TestWeekGridPastCellsNotFree(t *testing.T) {
	// Clock inside the displayed week: cells before now stay not-free
	// even with an empty calendar.
	midWeek := time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeAppointments{}, &fakeHolds{}, &fakeLeaves{}, clock.At(midWeek))

	grid, err := svc.WeekGrid(context.Background(), doctorID, at(9, 0, 0))
	if err != nil {
		t.Fatalf("WeekGrid() error = %v", err)
	}

	// 2024-06-10 09:00 is in the past relative to midWeek.
	if got := grid[1][1]; got.Free {
		t.Errorf("past cell = %+v, want not free", got)
	}
	// 2024-06-12 09:00 is in the future.
	if got := grid[3][1]; !got.Free {
		t.Errorf("future cell = %+v, want free", got)
	}
}
