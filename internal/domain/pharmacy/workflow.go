package pharmacy

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid refill status transition")

	// ErrReasonRequired means a rejection was attempted without its
	// mandatory free-text reason.
	ErrReasonRequired = errors.New("a reason is required for this decision")
)

// refillTransitions is the forward-only decision graph. Rejected and
// completed are end states.
var refillTransitions = map[RefillStatus][]RefillStatus{
	RefillPending:   {RefillApproved, RefillRejected},
	RefillApproved:  {RefillCompleted},
	RefillRejected:  {},
	RefillCompleted: {},
}

func CanDecide(from, to RefillStatus) bool {
	for _, next := range refillTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Decide validates a status change and returns the new status.
func Decide(from, to RefillStatus) (RefillStatus, error) {
	if !CanDecide(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// ApplyApproval records an approval on the medication: one refill is
// consumed, floored at zero, and the fill time is stamped. Value
// semantics, so a failed persist leaves the caller's copy untouched.
func ApplyApproval(m Medication, at time.Time) Medication {
	if m.RefillsRemaining > 0 {
		m.RefillsRemaining--
	}
	m.LastFilled = &at
	return m
}
