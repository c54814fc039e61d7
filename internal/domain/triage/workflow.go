package triage

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition means the requested status change would move
	// the submission backward or out of an end state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrReasonRequired means a terminal or negative decision was
	// attempted without its mandatory free-text reason.
	ErrReasonRequired = errors.New("a reason is required for this decision")
)

// transitions is the forward-only status graph. Escalation is legal from
// every live status, including a freshly submitted case and one that
// already has a callback booked. Escalated is the only end state; nothing
// moves a submission backward.
var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview, StatusEscalated},
	StatusUnderReview: {StatusReviewed, StatusScheduled, StatusEscalated},
	StatusReviewed:    {StatusReviewed, StatusScheduled, StatusEscalated},
	StatusScheduled:   {StatusEscalated},
	StatusEscalated:   {},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Transition returns the new status or ErrInvalidTransition. A self
// transition listed in the graph (reviewed -> reviewed) is a no-op that
// succeeds, which keeps "mark reviewed" idempotent.
func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// Opened computes the status after a provider views the submission. The
// guard is status == submitted, so repeated opens are naturally
// idempotent: the first view advances to under_review, later views
// change nothing. The second return reports whether a transition fired.
func Opened(current Status) (Status, bool) {
	if current == StatusSubmitted {
		return StatusUnderReview, true
	}
	return current, false
}

// Replied computes the status after a patient-visible reply. Replying
// while under review completes the review; replying later leaves the
// status alone.
func Replied(current Status) Status {
	if current == StatusUnderReview {
		return StatusReviewed
	}
	return current
}
