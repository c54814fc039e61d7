package appointments

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrReasonRequired means a cancellation was attempted without its
	// mandatory free-text reason.
	ErrReasonRequired = errors.New("a reason is required for this decision")
)

// transitions is the forward-only lifecycle. Completed, cancelled and
// no_show are end states.
var transitions = map[Status][]Status{
	StatusBooked:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
