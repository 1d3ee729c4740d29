package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/avicenna-clinic/avicenna_backend/config"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Policy carries the admission thresholds for leave requests.
type Policy struct {
	LeadDays     int
	MaxRangeDays int
	DayStartHour int
	DayEndHour   int
}

func DefaultPolicy() Policy {
	return Policy{LeadDays: 3, MaxRangeDays: 365, DayStartHour: 8, DayEndHour: 18}
}

func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		LeadDays:     cfg.Scheduling.LeaveLeadDays,
		MaxRangeDays: cfg.Scheduling.LeaveMaxRangeDays,
		DayStartHour: cfg.Scheduling.DayStartHour,
		DayEndHour:   cfg.Scheduling.DayEndHour,
	}
}

// Candidate is an unvalidated leave request as submitted. Dates use
// YYYY-MM-DD, times use HH:MM. Empty StartTime and EndTime means whole day.
type Candidate struct {
	MultiDay  bool
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
	Reason    string
}

// WholeDay reports whether the candidate requests full-day leave.
func (c Candidate) WholeDay() bool {
	return c.StartTime == "" && c.EndTime == ""
}

// Validate runs the admission checks for a leave candidate against a
// reference day. Checks run in order and the first failure wins. It is a
// pure function: no store access, no conflict check against existing
// appointments (reconciling an admitted leave that overlaps confirmed
// bookings is an administrative step outside this path).
func Validate(c Candidate, today time.Time, p Policy) error {
	today = truncateToDay(today)

	start, err := parseDate(c.StartDate)
	if err != nil {
		return &ValidationError{Kind: KindMissingStartDate, Message: "start date is required (YYYY-MM-DD)"}
	}
	if verr := checkDateNotice(start, today, p.LeadDays, "start date"); verr != nil {
		return verr
	}

	end := start
	if c.MultiDay {
		end, err = parseDate(c.EndDate)
		if err != nil {
			return &ValidationError{Kind: KindMissingEndDate, Message: "end date is required for multi-day leave (YYYY-MM-DD)"}
		}
		if verr := checkDateNotice(end, today, p.LeadDays, "end date"); verr != nil {
			return verr
		}
		if !end.After(start) {
			return &ValidationError{Kind: KindInvalidRange, Message: "end date must be after start date; use a single-day request for one date"}
		}
		if end.Sub(start) > time.Duration(p.MaxRangeDays)*24*time.Hour {
			return &ValidationError{Kind: KindRangeTooLong, Message: fmt.Sprintf("leave may span at most %d days", p.MaxRangeDays)}
		}
		if !c.WholeDay() {
			return &ValidationError{Kind: KindInvalidTimeRange, Message: "multi-day leave must be whole-day; remove the time range"}
		}
	}

	if !c.WholeDay() {
		if c.StartTime == "" || c.EndTime == "" {
			return &ValidationError{Kind: KindMissingTimeRange, Message: "both start time and end time are required for a timed leave"}
		}
		if verr := checkTimeRange(c.StartTime, c.EndTime, p); verr != nil {
			return verr
		}
	}

	if strings.TrimSpace(c.Reason) == "" {
		return &ValidationError{Kind: KindMissingReason, Message: "a reason is required"}
	}
	return nil
}

func checkDateNotice(d, today time.Time, leadDays int, field string) *ValidationError {
	if d.Before(today) {
		return &ValidationError{Kind: KindStartInPast, Message: field + " is in the past"}
	}
	notice := int(d.Sub(today) / (24 * time.Hour))
	if notice < leadDays {
		return &ValidationError{
			Kind:    KindLeadTimeViolation,
			Message: fmt.Sprintf("%s gives %d day(s) notice; at least %d days are required", field, notice, leadDays),
		}
	}
	return nil
}

func checkTimeRange(startTime, endTime string, p Policy) *ValidationError {
	sh, _, err := parseClock(startTime)
	if err != nil {
		return &ValidationError{Kind: KindInvalidTimeRange, Message: "start time must be HH:MM"}
	}
	eh, em, err := parseClock(endTime)
	if err != nil {
		return &ValidationError{Kind: KindInvalidTimeRange, Message: "end time must be HH:MM"}
	}
	if sh < p.DayStartHour || sh >= p.DayEndHour {
		return &ValidationError{
			Kind:    KindInvalidTimeRange,
			Message: fmt.Sprintf("start time must be between %02d:00 and %02d:00", p.DayStartHour, p.DayEndHour-1),
		}
	}
	if eh <= sh || eh > p.DayEndHour || (eh == p.DayEndHour && em != 0) {
		return &ValidationError{
			Kind:    KindInvalidTimeRange,
			Message: fmt.Sprintf("end time must be after the start hour and no later than %02d:00", p.DayEndHour),
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
