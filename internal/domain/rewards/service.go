package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TxRunner runs fn atomically. The production runner wraps fn in a
// database transaction; tests use a pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn directly, with no transaction.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	accounts     AccountRepository
	transactions TransactionRepository
	tiers        TierRepository
	inTx         TxRunner
}

func NewService(accounts AccountRepository, transactions TransactionRepository, tiers TierRepository, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = PassthroughTx
	}
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		tiers:        tiers,
		inTx:         inTx,
	}
}

// RecordTransaction validates and applies a new ledger entry. The account
// snapshot and the appended transaction are persisted together; on any
// rule violation nothing is written and the typed error is returned.
func (s *Service) RecordTransaction(ctx context.Context, t *PointsTransaction) (*PointsAccount, error) {
	if t.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("owner_id is required")
	}
	if t.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if err := ValidateSign(*t); err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	var updated PointsAccount
	err := s.inTx(ctx, func(ctx context.Context) error {
		acct, err := s.accounts.Get(ctx, t.OwnerID)
		if err != nil {
			// First transaction for this owner opens the account.
			acct = &PointsAccount{OwnerID: t.OwnerID}
		}
		next, err := Apply(*acct, *t)
		if err != nil {
			return err
		}
		if err := s.transactions.Append(ctx, t); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
		if err := s.accounts.Upsert(ctx, &next); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) GetAccount(ctx context.Context, ownerID uuid.UUID) (*PointsAccount, error) {
	return s.accounts.Get(ctx, ownerID)
}

func (s *Service) ListAccounts(ctx context.Context, limit, offset int) ([]*PointsAccount, int, error) {
	return s.accounts.List(ctx, limit, offset)
}

func (s *Service) ListTransactions(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*PointsTransaction, int, error) {
	return s.transactions.ListByOwner(ctx, ownerID, limit, offset)
}

// Summary returns the account together with its tier position.
func (s *Service) Summary(ctx context.Context, ownerID uuid.UUID) (*AccountSummary, error) {
	acct, err := s.accounts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tiers: %w", err)
	}

	summary := &AccountSummary{Account: *acct}
	summary.Tier = TierFor(acct.CurrentBalance, tiers)
	if next, needed := NextTier(acct.CurrentBalance, tiers); next != nil {
		summary.NextTier = next
		summary.PointsNeeded = needed
	}
	return summary, nil
}

// RebuildAccount replays the full ledger for an owner and overwrites the
// stored snapshot. Used when a snapshot is suspected to have drifted.
func (s *Service) RebuildAccount(ctx context.Context, ownerID uuid.UUID) (*PointsAccount, error) {
	var rebuilt PointsAccount
	err := s.inTx(ctx, func(ctx context.Context) error {
		txns, err := s.transactions.ListAllByOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		ordered := make([]PointsTransaction, len(txns))
		for i, t := range txns {
			ordered[i] = *t
		}
		acct, err := Replay(ownerID, ordered)
		if err != nil {
			return fmt.Errorf("replay ledger: %w", err)
		}
		if err := s.accounts.Upsert(ctx, &acct); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		rebuilt = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rebuilt, nil
}

// -- Tier administration --

func (s *Service) CreateTier(ctx context.Context, t *RewardTier) error {
	if err := validateTier(t); err != nil {
		return err
	}
	return s.tiers.Create(ctx, t)
}

func (s *Service) GetTier(ctx context.Context, id uuid.UUID) (*RewardTier, error) {
	return s.tiers.GetByID(ctx, id)
}

func (s *Service) UpdateTier(ctx context.Context, t *RewardTier) error {
	if err := validateTier(t); err != nil {
		return err
	}
	return s.tiers.Update(ctx, t)
}

func (s *Service) DeleteTier(ctx context.Context, id uuid.UUID) error {
	return s.tiers.Delete(ctx, id)
}

func (s *Service) ListTiers(ctx context.Context) ([]RewardTier, error) {
	return s.tiers.List(ctx)
}

// CheckCatalog validates the stored tier table as a whole.
func (s *Service) CheckCatalog(ctx context.Context) error {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return fmt.Errorf("load tiers: %w", err)
	}
	return ValidateCatalog(tiers)
}

func validateTier(t *RewardTier) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.MinPoints < 0 {
		return fmt.Errorf("min_points must not be negative")
	}
	if t.MaxPoints != nil && *t.MaxPoints < t.MinPoints {
		return fmt.Errorf("max_points %d is below min_points %d", *t.MaxPoints, t.MinPoints)
	}
	if t.Multiplier < 1.0 {
		return fmt.Errorf("multiplier must be at least 1.0")
	}
	return nil
}
