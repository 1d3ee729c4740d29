package appointment

import (
	"testing"

	"github.com/avicenna-clinic/avicenna_backend/internal/model"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		current model.AppointmentStatus
		event   Event
		want    model.AppointmentStatus
		wantErr bool
	}{
		{name: "confirm pending", current: model.StatusPending, event: EventConfirm, want: model.StatusConfirmed},
		{name: "reject pending", current: model.StatusPending, event: EventReject, want: model.StatusRejected},
		{name: "check in confirmed", current: model.StatusConfirmed, event: EventCheckIn, want: model.StatusCheckedIn},
		{name: "start checked in", current: model.StatusCheckedIn, event: EventStart, want: model.StatusInProgress},
		{name: "complete in progress", current: model.StatusInProgress, event: EventComplete, want: model.StatusReview},
		{name: "patient cancels pending", current: model.StatusPending, event: EventCancelByPatient, want: model.StatusCancelledByPatient},
		{name: "patient cancels confirmed", current: model.StatusConfirmed, event: EventCancelByPatient, want: model.StatusCancelledByPatient},
		{name: "doctor cancels confirmed", current: model.StatusConfirmed, event: EventCancelByDoctor, want: model.StatusCancelledByDoctor},
		{name: "no show from pending", current: model.StatusPending, event: EventMarkNoShow, want: model.StatusNoShow},
		{name: "no show from confirmed", current: model.StatusConfirmed, event: EventMarkNoShow, want: model.StatusNoShow},
		{name: "no show from checked in", current: model.StatusCheckedIn, event: EventMarkNoShow, want: model.StatusNoShow},
		{name: "expire pending", current: model.StatusPending, event: EventExpire, want: model.StatusExpired},

		{name: "check in pending", current: model.StatusPending, event: EventCheckIn, wantErr: true},
		{name: "confirm confirmed", current: model.StatusConfirmed, event: EventConfirm, wantErr: true},
		{name: "reject confirmed", current: model.StatusConfirmed, event: EventReject, wantErr: true},
		{name: "doctor cancels pending", current: model.StatusPending, event: EventCancelByDoctor, wantErr: true},
		{name: "start confirmed", current: model.StatusConfirmed, event: EventStart, wantErr: true},
		{name: "complete review", current: model.StatusReview, event: EventComplete, wantErr: true},
		{name: "expire confirmed", current: model.StatusConfirmed, event: EventExpire, wantErr: true},
		{name: "patient cancels in progress", current: model.StatusInProgress, event: EventCancelByPatient, wantErr: true},
		{name: "cancel already cancelled", current: model.StatusCancelledByPatient, event: EventCancelByPatient, wantErr: true},
		{name: "no show completed", current: model.StatusCompleted, event: EventMarkNoShow, wantErr: true},
		{name: "unknown event", current: model.StatusPending, event: Event("teleport"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.current, tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Next(%s, %s) expected error, got %s", tt.current, tt.event, got)
				}
				ite, ok := IsInvalidTransition(err)
				if !ok {
					t.Fatalf("Next(%s, %s) error = %v, want InvalidTransitionError", tt.current, tt.event, err)
				}
				if ite.From != tt.current || ite.Event != tt.event {
					t.Errorf("InvalidTransitionError carries (%s, %s), want (%s, %s)", ite.From, ite.Event, tt.current, tt.event)
				}
				return
			}
			if err != nil {
				t.Fatalf("Next(%s, %s) error = %v", tt.current, tt.event, err)
			}
			if got != tt.want {
				t.Errorf("Next(%s, %s) = %s, want %s", tt.current, tt.event, got, tt.want)
			}
		})
	}
}

func TestTerminalStatusesAcceptNoEvent(t *testing.T) {
	events := []Event{
		EventConfirm, EventReject, EventCheckIn, EventStart, EventComplete,
		EventCancelByPatient, EventCancelByDoctor, EventMarkNoShow, EventExpire,
	}
	for _, status := range model.AppointmentStatuses {
		if !status.Terminal() {
			continue
		}
		for _, ev := range events {
			if _, err := Next(status, ev); err == nil {
				t.Errorf("Next(%s, %s) succeeded, terminal statuses must reject every event", status, ev)
			}
		}
	}
}

func TestReviewableStatus(t *testing.T) {
	for _, status := range model.AppointmentStatuses {
		want := status == model.StatusReview || status == model.StatusCompleted
		if got := reviewableStatus(status); got != want {
			t.Errorf("reviewableStatus(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestCancellableByPatient(t *testing.T) {
	for _, status := range model.AppointmentStatuses {
		want := status == model.StatusPending || status == model.StatusConfirmed
		if got := CancellableByPatient(status); got != want {
			t.Errorf("CancellableByPatient(%s) = %v, want %v", status, got, want)
		}
	}
}
