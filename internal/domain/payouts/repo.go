package payouts

import (
	"context"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Get(ctx context.Context, partnerID uuid.UUID) (*PayoutAccount, error)
	Upsert(ctx context.Context, a *PayoutAccount) error
}

type EntryRepository interface {
	Append(ctx context.Context, e *PayoutEntry) error
	MarkPaid(ctx context.Context, id uuid.UUID) error
	ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*PayoutEntry, int, error)
	// ListAllByPartner returns the full history oldest first, for
	// reconciliation.
	ListAllByPartner(ctx context.Context, partnerID uuid.UUID) ([]*PayoutEntry, error)
}
