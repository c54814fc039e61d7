package rewards

import (
	"context"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*PointsAccount, error)
	Upsert(ctx context.Context, a *PointsAccount) error
	List(ctx context.Context, limit, offset int) ([]*PointsAccount, int, error)
}

type TransactionRepository interface {
	Append(ctx context.Context, t *PointsTransaction) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*PointsTransaction, int, error)
	// ListAllByOwner returns the full ledger oldest first, for replay.
	ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*PointsTransaction, error)
}

type TierRepository interface {
	Create(ctx context.Context, t *RewardTier) error
	GetByID(ctx context.Context, id uuid.UUID) (*RewardTier, error)
	Update(ctx context.Context, t *RewardTier) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]RewardTier, error)
}
