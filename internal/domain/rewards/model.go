package rewards

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind classifies a points transaction.
type TransactionKind string

const (
	KindEarn       TransactionKind = "earn"
	KindRedeem     TransactionKind = "redeem"
	KindExpire     TransactionKind = "expire"
	KindBonus      TransactionKind = "bonus"
	KindAdjustment TransactionKind = "adjustment"
)

var validKinds = map[TransactionKind]bool{
	KindEarn: true, KindRedeem: true, KindExpire: true,
	KindBonus: true, KindAdjustment: true,
}

// PointsAccount is the projection of a member's transaction history.
// CurrentBalance never goes negative; the lifetime totals only grow.
type PointsAccount struct {
	OwnerID         uuid.UUID  `db:"owner_id" json:"owner_id"`
	CurrentBalance  int64      `db:"current_balance" json:"current_balance"`
	LifetimeEarned  int64      `db:"lifetime_earned" json:"lifetime_earned"`
	LifetimeRedeemed int64     `db:"lifetime_redeemed" json:"lifetime_redeemed"`
	LastActivityAt  *time.Time `db:"last_activity_at" json:"last_activity_at,omitempty"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// PointsTransaction is one immutable entry in a member's points ledger.
// Points carries the signed delta; redeem/expire are negative, earn/bonus
// positive, adjustment either way.
type PointsTransaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     uuid.UUID       `db:"owner_id" json:"owner_id"`
	Points      int64           `db:"points" json:"points"`
	Kind        TransactionKind `db:"kind" json:"kind"`
	Source      string          `db:"source" json:"source"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// RewardTier is a named point-range bracket conferring a multiplier and
// perks. MaxPoints nil means the tier is open-ended.
type RewardTier struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	MinPoints  int64     `db:"min_points" json:"min_points"`
	MaxPoints  *int64    `db:"max_points" json:"max_points,omitempty"`
	Multiplier float64   `db:"multiplier" json:"multiplier"`
	Benefits   []string  `db:"benefits" json:"benefits"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AccountSummary is the read model the dashboard renders: the account plus
// its derived tier position.
type AccountSummary struct {
	Account      PointsAccount `json:"account"`
	Tier         *RewardTier   `json:"tier,omitempty"`
	NextTier     *RewardTier   `json:"next_tier,omitempty"`
	PointsNeeded int64         `json:"points_needed,omitempty"`
}
