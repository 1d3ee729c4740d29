package appointment

import (
	"github.com/avicenna-clinic/avicenna_backend/internal/model"
)

// Event is a state machine input. Events are the only way an appointment
// status changes.
type Event string

const (
	EventConfirm         Event = "confirm"
	EventReject          Event = "reject"
	EventCheckIn         Event = "checkIn"
	EventStart           Event = "start"
	EventComplete        Event = "complete"
	EventCancelByPatient Event = "cancelByPatient"
	EventCancelByDoctor  Event = "cancelByDoctor"
	EventMarkNoShow      Event = "markNoShow"
	EventExpire          Event = "expire"
)

// transition defines one row of the state machine table.
type transition struct {
	sources []model.AppointmentStatus
	target  model.AppointmentStatus
}

// transitions is the full state machine. An event applied outside its
// allowed-source set fails; there are no silent no-ops, so a double
// submission on a terminal status surfaces as an error.
var transitions = map[Event]transition{
	EventConfirm: {
		sources: []model.AppointmentStatus{model.StatusPending},
		target:  model.StatusConfirmed,
	},
	EventReject: {
		sources: []model.AppointmentStatus{model.StatusPending},
		target:  model.StatusRejected,
	},
	EventCheckIn: {
		sources: []model.AppointmentStatus{model.StatusConfirmed},
		target:  model.StatusCheckedIn,
	},
	EventStart: {
		sources: []model.AppointmentStatus{model.StatusCheckedIn},
		target:  model.StatusInProgress,
	},
	EventComplete: {
		sources: []model.AppointmentStatus{model.StatusInProgress},
		target:  model.StatusReview,
	},
	EventCancelByPatient: {
		sources: []model.AppointmentStatus{model.StatusPending, model.StatusConfirmed},
		target:  model.StatusCancelledByPatient,
	},
	EventCancelByDoctor: {
		sources: []model.AppointmentStatus{model.StatusConfirmed},
		target:  model.StatusCancelledByDoctor,
	},
	EventMarkNoShow: {
		sources: []model.AppointmentStatus{model.StatusPending, model.StatusConfirmed, model.StatusCheckedIn},
		target:  model.StatusNoShow,
	},
	EventExpire: {
		sources: []model.AppointmentStatus{model.StatusPending},
		target:  model.StatusExpired,
	},
}

// Next returns the status the event moves current to, or InvalidTransition
// when the event is unknown or current is not in its allowed-source set.
func Next(current model.AppointmentStatus, event Event) (model.AppointmentStatus, error) {
	t, ok := transitions[event]
	if !ok {
		return "", &InvalidTransitionError{From: current, Event: event}
	}
	for _, s := range t.sources {
		if s == current {
			return t.target, nil
		}
	}
	return "", &InvalidTransitionError{From: current, Event: event}
}

// reviewableStatus reports whether an appointment in this status is
// eligible for a patient review, before the no-existing-review check.
func reviewableStatus(s model.AppointmentStatus) bool {
	return s == model.StatusReview || s == model.StatusCompleted
}

// CancellableByPatient reports whether a patient may still cancel an
// appointment in this status.
func CancellableByPatient(s model.AppointmentStatus) bool {
	return s == model.StatusPending || s == model.StatusConfirmed
}
