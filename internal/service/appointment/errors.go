package appointment

import (
	"errors"
	"fmt"

	"github.com/avicenna-clinic/avicenna_backend/internal/model"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrSlotConflict    = errors.New("slot is already occupied")
	ErrReasonRequired  = errors.New("a reason is required to reject an appointment")
	ErrNotReviewable   = errors.New("appointment is not eligible for review")
	ErrInvalidInterval = errors.New("end_time must be after start_time")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// InvalidTransitionError reports an event applied outside its allowed
// source set. It carries the status observed at failure time so callers
// can explain what actually happened.
type InvalidTransitionError struct {
	From  model.AppointmentStatus
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q not allowed from status %q", e.Event, e.From)
}

// IsInvalidTransition unwraps err into an InvalidTransitionError, if any.
func IsInvalidTransition(err error) (*InvalidTransitionError, bool) {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}
