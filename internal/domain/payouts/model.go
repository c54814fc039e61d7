package payouts

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a ledger entry on a partner's payout account.
type EntryKind string

const (
	// KindCommission credits pending balance for referred business.
	KindCommission EntryKind = "commission"
	// KindAdjustment corrects pending balance in either direction.
	KindAdjustment EntryKind = "adjustment"
	// KindPayout moves money out; always negative against pending.
	KindPayout EntryKind = "payout"
)

// EntryStatus is a payout entry's settlement state.
type EntryStatus string

const (
	EntryPending EntryStatus = "pending"
	EntryPaid    EntryStatus = "paid"
)

// PayoutAccount is the running snapshot for one partner.
type PayoutAccount struct {
	PartnerID      uuid.UUID `db:"partner_id" json:"partner_id"`
	PendingBalance int64     `db:"pending_balance" json:"pending_balance"`
	PaidTotal      int64     `db:"paid_total" json:"paid_total"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PayoutEntry is one signed movement on a partner's payout account.
// Amounts are integer cents.
type PayoutEntry struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	PartnerID   uuid.UUID   `db:"partner_id" json:"partner_id"`
	Kind        EntryKind   `db:"kind" json:"kind"`
	AmountCents int64       `db:"amount_cents" json:"amount_cents"`
	Status      EntryStatus `db:"status" json:"status"`
	Description string      `db:"description" json:"description"`
	ReferenceID *uuid.UUID  `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}
