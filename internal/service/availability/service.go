// Package availability merges a doctor's appointments, holds, and leave
// requests into a unified busy calendar and answers slot-level free/busy
// questions. It is the single source of truth for slot freedom; neither
// the booking flow nor the schedule grid carry their own overlap logic.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-clinic/avicenna_backend/config"
	"github.com/avicenna-clinic/avicenna_backend/internal/model"
	"github.com/avicenna-clinic/avicenna_backend/pkg/clock"
)

// ---------------------------------------------------------------------------
// Collaborator contracts
// ---------------------------------------------------------------------------

type AppointmentStore interface {
	ListByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, from, to time.Time, onlyOccupying bool) ([]*model.Appointment, error)
}

type HoldStore interface {
	ListActiveByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, from, to, now time.Time) ([]*model.Hold, error)
}

type LeaveStore interface {
	ListByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, fromDate, toDate time.Time) ([]*model.LeaveRequest, error)
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// SlotCell is one hour-wide cell of the weekly schedule grid. BusyType is
// empty when the cell is free; past cells are never free.
type SlotCell struct {
	Date     time.Time      `json:"date"`
	Hour     int            `json:"hour"`
	Free     bool           `json:"free"`
	BusyType model.BusyType `json:"busy_type,omitempty"`
}

type Service interface {
	GetBusyIntervals(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]model.BusyInterval, error)
	IsSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, hour int) (bool, error)
	WeekGrid(ctx context.Context, doctorID uuid.UUID, weekStart time.Time) ([][]SlotCell, error)
}

type availabilityService struct {
	appointments AppointmentStore
	holds        HoldStore
	leaves       LeaveStore
	clk          clock.Clock

	dayStartHour int
	dayEndHour   int
}

func New(appointments AppointmentStore, holds HoldStore, leaves LeaveStore, clk clock.Clock, cfg *config.Config) Service {
	return &availabilityService{
		appointments: appointments,
		holds:        holds,
		leaves:       leaves,
		clk:          clk,
		dayStartHour: cfg.Scheduling.DayStartHour,
		dayEndHour:   cfg.Scheduling.DayEndHour,
	}
}

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

// GetBusyIntervals recomputes the doctor's busy calendar for [from, to)
// from the three source entities. Nothing is cached and overlapping
// intervals of different types are not merged; the result is ordered by
// start, with APPOINTMENT before HOLD before LEAVE on equal starts.
//
// Leave requests count regardless of decision status: a pending leave
// blocks new bookings while it awaits a decision.
func (s *availabilityService) GetBusyIntervals(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]model.BusyInterval, error) {
	appts, err := s.appointments.ListByDoctorAndWindow(ctx, doctorID, from, to, true)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	holds, err := s.holds.ListActiveByDoctorAndWindow(ctx, doctorID, from, to, s.clk.Now())
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", err)
	}
	leaves, err := s.leaves.ListByDoctorAndWindow(ctx, doctorID, truncateToDay(from), truncateToDay(to.Add(-time.Nanosecond)))
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}

	intervals := make([]model.BusyInterval, 0, len(appts)+len(holds)+len(leaves))
	for _, a := range appts {
		intervals = append(intervals, model.BusyInterval{
			DoctorID: doctorID,
			Type:     model.BusyAppointment,
			Start:    a.StartTime,
			End:      a.EndTime,
		})
	}
	for _, h := range holds {
		intervals = append(intervals, model.BusyInterval{
			DoctorID: doctorID,
			Type:     model.BusyHold,
			Start:    h.StartTime,
			End:      h.EndTime,
		})
	}
	for _, l := range leaves {
		intervals = append(intervals, s.expandLeave(doctorID, l)...)
	}

	filtered := intervals[:0]
	for _, iv := range intervals {
		if iv.Overlaps(from, to) {
			filtered = append(filtered, iv)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].Start.Equal(filtered[j].Start) {
			return filtered[i].Start.Before(filtered[j].Start)
		}
		return filtered[i].Type.Priority() > filtered[j].Type.Priority()
	})
	return filtered, nil
}

// expandLeave turns one leave request into per-day intervals. Whole-day
// leave covers the business hours of every date in the range; timed leave
// covers [StartHour, EndHour) on each date.
func (s *availabilityService) expandLeave(doctorID uuid.UUID, l *model.LeaveRequest) []model.BusyInterval {
	startHour, endHour := s.dayStartHour, s.dayEndHour
	if !l.WholeDay() {
		startHour, endHour = *l.StartHour, *l.EndHour
	}

	var out []model.BusyInterval
	for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
		reason := l.Reason
		out = append(out, model.BusyInterval{
			DoctorID: doctorID,
			Type:     model.BusyLeave,
			Start:    d.Add(time.Duration(startHour) * time.Hour),
			End:      d.Add(time.Duration(endHour) * time.Hour),
			Reason:   &reason,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Slot queries
// ---------------------------------------------------------------------------

// IsSlotFree reports whether the hour slot at date@hour is bookable: no
// busy interval contains the instant and the instant is not in the past.
func (s *availabilityService) IsSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, hour int) (bool, error) {
	instant := truncateToDay(date).Add(time.Duration(hour) * time.Hour)
	if instant.Before(s.clk.Now()) {
		return false, nil
	}

	intervals, err := s.GetBusyIntervals(ctx, doctorID, instant, instant.Add(time.Hour))
	if err != nil {
		return false, err
	}
	for _, iv := range intervals {
		if iv.Contains(instant) {
			return false, nil
		}
	}
	return true, nil
}

// WeekGrid builds a 7-day schedule grid, one cell per business hour. All
// cells are answered from a single pass over the window's intervals; no
// per-slot rescan of the interval set.
func (s *availabilityService) WeekGrid(ctx context.Context, doctorID uuid.UUID, weekStart time.Time) ([][]SlotCell, error) {
	const days = 7
	weekStart = truncateToDay(weekStart)
	weekEnd := weekStart.AddDate(0, 0, days)
	hours := s.dayEndHour - s.dayStartHour

	intervals, err := s.GetBusyIntervals(ctx, doctorID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	// busy[d][h] holds the highest-priority type covering that cell.
	busy := make([][]model.BusyType, days)
	for d := range busy {
		busy[d] = make([]model.BusyType, hours)
	}
	for _, iv := range intervals {
		s.markCells(busy, weekStart, iv)
	}

	now := s.clk.Now()
	grid := make([][]SlotCell, days)
	for d := range grid {
		date := weekStart.AddDate(0, 0, d)
		grid[d] = make([]SlotCell, hours)
		for h := range grid[d] {
			hour := s.dayStartHour + h
			instant := date.Add(time.Duration(hour) * time.Hour)
			cell := SlotCell{Date: date, Hour: hour, BusyType: busy[d][h]}
			cell.Free = cell.BusyType == "" && !instant.Before(now)
			grid[d][h] = cell
		}
	}
	return grid, nil
}

// markCells stamps the interval's type onto every (day, hour) cell whose
// starting instant it contains, keeping the higher-priority type on overlap.
func (s *availabilityService) markCells(busy [][]model.BusyType, weekStart time.Time, iv model.BusyInterval) {
	hours := s.dayEndHour - s.dayStartHour
	for slot := iv.Start.Truncate(time.Hour); slot.Before(iv.End); slot = slot.Add(time.Hour) {
		if !iv.Contains(slot) {
			continue
		}
		day := int(truncateToDay(slot).Sub(weekStart) / (24 * time.Hour))
		hourIdx := slot.Hour() - s.dayStartHour
		if day < 0 || day >= len(busy) || hourIdx < 0 || hourIdx >= hours {
			continue
		}
		if busy[day][hourIdx] == "" || iv.Type.Priority() > busy[day][hourIdx].Priority() {
			busy[day][hourIdx] = iv.Type
		}
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
