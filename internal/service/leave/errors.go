package leave

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("leave request not found")
	ErrAlreadyDecided = errors.New("leave request has already been decided")
)

// Kind identifies which admission check a leave candidate failed.
type Kind string

const (
	KindMissingStartDate  Kind = "MissingStartDate"
	KindStartInPast       Kind = "StartInPast"
	KindLeadTimeViolation Kind = "LeadTimeViolation"
	KindMissingEndDate    Kind = "MissingEndDate"
	KindInvalidRange      Kind = "InvalidRange"
	KindRangeTooLong      Kind = "RangeTooLong"
	KindMissingTimeRange  Kind = "MissingTimeRange"
	KindInvalidTimeRange  Kind = "InvalidTimeRange"
	KindMissingReason     Kind = "MissingReason"
)

// ValidationError is the typed rejection produced by Validate. Checks run
// in a fixed order and the first failure wins, so a candidate yields at
// most one ValidationError.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsValidationError unwraps err into a ValidationError, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
