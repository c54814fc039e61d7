package payouts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PartnerGate answers whether a partner may be paid. The partners
// domain's RequireActive satisfies it; suspended partners fail.
type PartnerGate interface {
	CheckPayable(ctx context.Context, partnerID uuid.UUID) error
}

// TxRunner runs fn atomically. The production runner wraps fn in a
// database transaction; tests pass PassthroughTx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn directly, with no transaction.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	accounts AccountRepository
	entries  EntryRepository
	gate     PartnerGate
	inTx     TxRunner
}

func NewService(accounts AccountRepository, entries EntryRepository, gate PartnerGate, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = PassthroughTx
	}
	return &Service{accounts: accounts, entries: entries, gate: gate, inTx: inTx}
}

// RecordEntry validates and applies one signed movement. The entry and
// the refreshed account snapshot land in one transaction. Payout-kind
// entries additionally require the partner to be payable.
func (s *Service) RecordEntry(ctx context.Context, e *PayoutEntry) (*PayoutAccount, error) {
	if e.PartnerID == uuid.Nil {
		return nil, fmt.Errorf("partner_id is required")
	}
	if err := ValidateSign(e.Kind, e.AmountCents); err != nil {
		return nil, err
	}
	if e.Kind == KindPayout && s.gate != nil {
		if err := s.gate.CheckPayable(ctx, e.PartnerID); err != nil {
			return nil, fmt.Errorf("partner not payable: %w", err)
		}
	}
	if e.Status == "" {
		e.Status = EntryPending
	}

	var out PayoutAccount
	err := s.inTx(ctx, func(ctx context.Context) error {
		acct, err := s.accounts.Get(ctx, e.PartnerID)
		if err != nil {
			acct = &PayoutAccount{PartnerID: e.PartnerID}
		}
		next, err := Apply(*acct, *e)
		if err != nil {
			return err
		}
		if err := s.entries.Append(ctx, e); err != nil {
			return fmt.Errorf("append entry: %w", err)
		}
		if err := s.accounts.Upsert(ctx, &next); err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) MarkPaid(ctx context.Context, entryID uuid.UUID) error {
	return s.entries.MarkPaid(ctx, entryID)
}

func (s *Service) Account(ctx context.Context, partnerID uuid.UUID) (*PayoutAccount, error) {
	return s.accounts.Get(ctx, partnerID)
}

func (s *Service) Entries(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*PayoutEntry, int, error) {
	return s.entries.ListByPartner(ctx, partnerID, limit, offset)
}

// RebuildAccount replays the full entry history and overwrites the
// snapshot, repairing drift.
func (s *Service) RebuildAccount(ctx context.Context, partnerID uuid.UUID) (*PayoutAccount, error) {
	history, err := s.entries.ListAllByPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	entries := make([]PayoutEntry, len(history))
	for i, e := range history {
		entries[i] = *e
	}
	acct, err := Reconcile(partnerID, entries)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	if err := s.accounts.Upsert(ctx, &acct); err != nil {
		return nil, fmt.Errorf("store account: %w", err)
	}
	return &acct, nil
}
