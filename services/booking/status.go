package booking

import (
	"fmt"

	"petcare/models"
)

// Event drives a booking from one status to the next.
type Event string

const (
	EventPaymentVerified Event = "payment_verified"
	EventOrderFailed     Event = "order_failed"
	EventCancel          Event = "cancel"
	EventReschedule      Event = "reschedule"
	EventReconfirm       Event = "reconfirm"
	EventComplete        Event = "complete"
)

var transitions = map[models.BookingStatus]map[Event]models.BookingStatus{
	models.StatusPending: {
		EventPaymentVerified: models.StatusConfirmed,
		EventOrderFailed:     models.StatusFacingError,
		EventCancel:          models.StatusCancelled,
	},
	models.StatusConfirmed: {
		EventComplete:   models.StatusCompleted,
		EventCancel:     models.StatusCancelled,
		EventReschedule: models.StatusRescheduled,
	},
	models.StatusRescheduled: {
		EventReconfirm: models.StatusConfirmed,
		EventCancel:    models.StatusCancelled,
		EventComplete:  models.StatusCompleted,
	},
	// Cancelled, Completed and Facing Error accept no events.
}

// Transition is the pure state function shared by every path that mutates a booking.
func Transition(current models.BookingStatus, event Event) (models.BookingStatus, error) {
	if next, ok := transitions[current][event]; ok {
		return next, nil
	}
	return current, &BookingError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s a booking that is %s", event, current),
	}
}

// IsTerminal reports whether no event can leave the status.
func IsTerminal(s models.BookingStatus) bool {
	return len(transitions[s]) == 0
}
