package payouts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockAccountRepo struct {
	items map[uuid.UUID]*PayoutAccount
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{items: make(map[uuid.UUID]*PayoutAccount)}
}

func (m *mockAccountRepo) Get(_ context.Context, partnerID uuid.UUID) (*PayoutAccount, error) {
	a, ok := m.items[partnerID]
	if !ok {
		return nil, fmt.Errorf("payout account not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) Upsert(_ context.Context, a *PayoutAccount) error {
	cp := *a
	m.items[a.PartnerID] = &cp
	return nil
}

type mockEntryRepo struct {
	items     []*PayoutEntry
	appendErr error
}

func (m *mockEntryRepo) Append(_ context.Context, e *PayoutEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	cp := *e
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockEntryRepo) MarkPaid(_ context.Context, id uuid.UUID) error {
	for _, e := range m.items {
		if e.ID == id {
			e.Status = EntryPaid
			return nil
		}
	}
	return fmt.Errorf("entry not found")
}

func (m *mockEntryRepo) ListByPartner(_ context.Context, partnerID uuid.UUID, limit, offset int) ([]*PayoutEntry, int, error) {
	var out []*PayoutEntry
	for _, e := range m.items {
		if e.PartnerID == partnerID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *mockEntryRepo) ListAllByPartner(_ context.Context, partnerID uuid.UUID) ([]*PayoutEntry, error) {
	var out []*PayoutEntry
	for _, e := range m.items {
		if e.PartnerID == partnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockGate struct {
	suspended map[uuid.UUID]bool
}

func (m *mockGate) CheckPayable(_ context.Context, partnerID uuid.UUID) error {
	if m.suspended[partnerID] {
		return errors.New("partner is suspended")
	}
	return nil
}

func newTestService() (*Service, *mockAccountRepo, *mockEntryRepo, *mockGate) {
	accounts := newMockAccountRepo()
	entries := &mockEntryRepo{}
	gate := &mockGate{suspended: make(map[uuid.UUID]bool)}
	return NewService(accounts, entries, gate, nil), accounts, entries, gate
}

func TestRecordEntryOpensAccount(t *testing.T) {
	svc, accounts, _, _ := newTestService()
	partnerID := uuid.New()

	acct, err := svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindCommission, AmountCents: 15000,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if acct.PendingBalance != 15000 {
		t.Errorf("pending = %d, want 15000", acct.PendingBalance)
	}
	stored, err := accounts.Get(context.Background(), partnerID)
	if err != nil || stored.PendingBalance != 15000 {
		t.Error("snapshot not persisted")
	}
}

func TestRecordEntryRejectsOverdraw(t *testing.T) {
	svc, accounts, entries, _ := newTestService()
	partnerID := uuid.New()
	svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindCommission, AmountCents: 1000,
	})

	_, err := svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindPayout, AmountCents: -5000,
	})
	if !errors.Is(err, ErrInsufficientPending) {
		t.Fatalf("expected ErrInsufficientPending, got %v", err)
	}

	// Nothing was persisted for the rejected payout.
	acct, _ := accounts.Get(context.Background(), partnerID)
	if acct.PendingBalance != 1000 {
		t.Errorf("pending = %d, want 1000 unchanged", acct.PendingBalance)
	}
	if len(entries.items) != 1 {
		t.Errorf("entries = %d, want 1", len(entries.items))
	}
}

func TestRecordEntrySuspendedPartner(t *testing.T) {
	svc, _, _, gate := newTestService()
	partnerID := uuid.New()
	svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindCommission, AmountCents: 9000,
	})
	gate.suspended[partnerID] = true

	// Commissions still accrue while suspended.
	if _, err := svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindCommission, AmountCents: 500,
	}); err != nil {
		t.Fatalf("commission while suspended: %v", err)
	}

	// Payouts do not.
	if _, err := svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindPayout, AmountCents: -1000,
	}); err == nil {
		t.Fatal("expected error paying a suspended partner")
	}
}

func TestRebuildAccountRepairsDrift(t *testing.T) {
	svc, accounts, _, _ := newTestService()
	partnerID := uuid.New()
	ctx := context.Background()

	svc.RecordEntry(ctx, &PayoutEntry{PartnerID: partnerID, Kind: KindCommission, AmountCents: 20000})
	svc.RecordEntry(ctx, &PayoutEntry{PartnerID: partnerID, Kind: KindPayout, AmountCents: -5000})

	// Corrupt the snapshot.
	accounts.Upsert(ctx, &PayoutAccount{PartnerID: partnerID, PendingBalance: 1, PaidTotal: 2})

	acct, err := svc.RebuildAccount(ctx, partnerID)
	if err != nil {
		t.Fatalf("RebuildAccount: %v", err)
	}
	if acct.PendingBalance != 15000 || acct.PaidTotal != 5000 {
		t.Errorf("rebuilt pending=%d paid=%d, want 15000/5000", acct.PendingBalance, acct.PaidTotal)
	}
}

func TestAppendFailureLeavesNoSnapshot(t *testing.T) {
	svc, accounts, entries, _ := newTestService()
	partnerID := uuid.New()
	entries.appendErr = errors.New("write failed")

	if _, err := svc.RecordEntry(context.Background(), &PayoutEntry{
		PartnerID: partnerID, Kind: KindCommission, AmountCents: 100,
	}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := accounts.Get(context.Background(), partnerID); err == nil {
		t.Error("snapshot must not exist after failed append")
	}
}
