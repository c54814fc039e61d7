package rewards

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSign means the transaction's signed delta does not match
	// its kind (redeem/expire must be negative, earn/bonus positive).
	ErrInvalidSign = errors.New("transaction sign does not match kind")

	// ErrInsufficientBalance means applying the transaction would drive
	// the balance negative. The transaction is rejected, never clamped.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ValidateSign checks the kind/sign convention without touching any state.
func ValidateSign(t PointsTransaction) error {
	if !validKinds[t.Kind] {
		return fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
	switch t.Kind {
	case KindEarn, KindBonus:
		if t.Points <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidSign, t.Kind, t.Points)
		}
	case KindRedeem, KindExpire:
		if t.Points >= 0 {
			return fmt.Errorf("%w: %s must be negative, got %d", ErrInvalidSign, t.Kind, t.Points)
		}
	case KindAdjustment:
		// either sign
	}
	return nil
}

// Apply folds one transaction into an account and returns the new account
// value. The input account is never mutated; on error it is returned
// unchanged so callers can't observe partial state.
func Apply(a PointsAccount, t PointsTransaction) (PointsAccount, error) {
	if err := ValidateSign(t); err != nil {
		return a, err
	}
	if a.CurrentBalance+t.Points < 0 {
		return a, fmt.Errorf("%w: balance %d, delta %d", ErrInsufficientBalance, a.CurrentBalance, t.Points)
	}

	a.CurrentBalance += t.Points
	if t.Points > 0 {
		a.LifetimeEarned += t.Points
	} else if t.Points < 0 {
		a.LifetimeRedeemed += -t.Points
	}
	at := t.CreatedAt
	a.LastActivityAt = &at
	return a, nil
}

// Replay folds an ordered transaction list into an account starting from
// zero. Replaying the same list always produces the same account; this is
// what keeps displayed balances from drifting away from the ledger.
// Transactions that fail to apply are returned as an error along with the
// index of the offender.
func Replay(ownerID uuid.UUID, txns []PointsTransaction) (PointsAccount, error) {
	acct := PointsAccount{OwnerID: ownerID}
	for i, t := range txns {
		next, err := Apply(acct, t)
		if err != nil {
			return acct, fmt.Errorf("transaction %d (%s): %w", i, t.ID, err)
		}
		acct = next
	}
	return acct, nil
}
