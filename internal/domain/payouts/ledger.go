package payouts

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSign means an entry's amount disagrees with its kind.
	ErrInvalidSign = errors.New("amount sign does not match entry kind")

	// ErrInsufficientPending means a payout would drive the pending
	// balance negative.
	ErrInsufficientPending = errors.New("payout exceeds pending balance")
)

// ValidateSign checks the amount direction for a kind. Commissions are
// positive, payouts negative, adjustments go either way but not zero.
func ValidateSign(kind EntryKind, amountCents int64) error {
	switch kind {
	case KindCommission:
		if amountCents <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidSign, kind)
		}
	case KindPayout:
		if amountCents >= 0 {
			return fmt.Errorf("%w: %s must be negative", ErrInvalidSign, kind)
		}
	case KindAdjustment:
		if amountCents == 0 {
			return fmt.Errorf("%w: %s must not be zero", ErrInvalidSign, kind)
		}
	default:
		return fmt.Errorf("unknown entry kind: %s", kind)
	}
	return nil
}

// Apply folds one entry into an account snapshot. Value semantics: a
// rejected entry leaves the caller's copy untouched. Payout entries
// reduce pending and, once paid out, grow paid_total.
func Apply(a PayoutAccount, e PayoutEntry) (PayoutAccount, error) {
	if err := ValidateSign(e.Kind, e.AmountCents); err != nil {
		return a, err
	}
	next := a.PendingBalance + e.AmountCents
	if next < 0 {
		return a, fmt.Errorf("%w: pending %d, entry %d", ErrInsufficientPending, a.PendingBalance, e.AmountCents)
	}
	a.PendingBalance = next
	if e.Kind == KindPayout {
		a.PaidTotal += -e.AmountCents
	}
	return a, nil
}

// Reconcile folds an entry history into totals from a zero account.
// Deterministic for a given order; the first offending entry aborts.
func Reconcile(partnerID uuid.UUID, entries []PayoutEntry) (PayoutAccount, error) {
	a := PayoutAccount{PartnerID: partnerID}
	for i, e := range entries {
		next, err := Apply(a, e)
		if err != nil {
			return a, fmt.Errorf("entry %d: %w", i, err)
		}
		a = next
	}
	return a, nil
}
