package rewards

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func txn(kind TransactionKind, points int64) PointsTransaction {
	return PointsTransaction{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Points:    points,
		Kind:      kind,
		Source:    "test",
		CreatedAt: time.Now().UTC(),
	}
}

func TestApplySignConvention(t *testing.T) {
	cases := []struct {
		kind   TransactionKind
		points int64
		ok     bool
	}{
		{KindEarn, 100, true},
		{KindEarn, -100, false},
		{KindEarn, 0, false},
		{KindBonus, 50, true},
		{KindBonus, -50, false},
		{KindRedeem, -30, true},
		{KindRedeem, 30, false},
		{KindRedeem, 0, false},
		{KindExpire, -10, true},
		{KindExpire, 10, false},
		{KindAdjustment, 5, true},
		{KindAdjustment, -5, false}, // would go negative from zero balance
		{KindAdjustment, 0, true},
	}
	for _, tc := range cases {
		acct := PointsAccount{}
		_, err := Apply(acct, txn(tc.kind, tc.points))
		if tc.ok && err != nil {
			t.Errorf("Apply(%s %d): unexpected error %v", tc.kind, tc.points, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("Apply(%s %d): expected error", tc.kind, tc.points)
		}
	}
}

func TestApplyUnknownKind(t *testing.T) {
	_, err := Apply(PointsAccount{}, txn("transfer", 10))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestApplyWorkedExample(t *testing.T) {
	// earn +100 -> {100,100,0}; redeem -30 -> {70,100,30};
	// redeem -100 -> rejected, state unchanged.
	acct := PointsAccount{}

	acct, err := Apply(acct, txn(KindEarn, 100))
	if err != nil {
		t.Fatalf("earn: %v", err)
	}
	if acct.CurrentBalance != 100 || acct.LifetimeEarned != 100 || acct.LifetimeRedeemed != 0 {
		t.Fatalf("after earn: %+v", acct)
	}

	acct, err = Apply(acct, txn(KindRedeem, -30))
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if acct.CurrentBalance != 70 || acct.LifetimeEarned != 100 || acct.LifetimeRedeemed != 30 {
		t.Fatalf("after redeem: %+v", acct)
	}

	rejected, err := Apply(acct, txn(KindRedeem, -100))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if rejected != acct {
		t.Fatalf("account changed on rejected transaction: %+v", rejected)
	}
}

func TestApplyStampsLastActivity(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := txn(KindEarn, 10)
	tx.CreatedAt = at
	acct, err := Apply(PointsAccount{}, tx)
	if err != nil {
		t.Fatal(err)
	}
	if acct.LastActivityAt == nil || !acct.LastActivityAt.Equal(at) {
		t.Errorf("LastActivityAt = %v, want %v", acct.LastActivityAt, at)
	}
}

func TestReplayDeterminism(t *testing.T) {
	owner := uuid.New()
	txns := []PointsTransaction{
		txn(KindEarn, 500),
		txn(KindBonus, 120),
		txn(KindRedeem, -200),
		txn(KindExpire, -50),
		txn(KindAdjustment, 30),
	}

	first, err := Replay(owner, txns)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	second, err := Replay(owner, txns)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first != second {
		t.Errorf("replay not deterministic:\n%+v\n%+v", first, second)
	}
	if first.CurrentBalance != 400 || first.LifetimeEarned != 650 || first.LifetimeRedeemed != 250 {
		t.Errorf("unexpected totals: %+v", first)
	}
}

func TestReplayInvariants(t *testing.T) {
	owner := uuid.New()
	txns := []PointsTransaction{
		txn(KindEarn, 100),
		txn(KindRedeem, -40),
		txn(KindEarn, 10),
		txn(KindRedeem, -70),
	}

	acct := PointsAccount{OwnerID: owner}
	for _, tx := range txns {
		next, err := Apply(acct, tx)
		if err != nil {
			continue // rejected transactions leave state untouched
		}
		acct = next
		if acct.CurrentBalance < 0 {
			t.Fatalf("balance went negative: %+v", acct)
		}
		if acct.LifetimeRedeemed > acct.LifetimeEarned {
			t.Fatalf("redeemed exceeds earned: %+v", acct)
		}
	}
	if acct.CurrentBalance != 70 {
		t.Errorf("final balance = %d, want 70 (last redeem rejected)", acct.CurrentBalance)
	}
}

func TestReplayReportsOffendingIndex(t *testing.T) {
	owner := uuid.New()
	txns := []PointsTransaction{
		txn(KindEarn, 10),
		txn(KindRedeem, -50),
	}
	_, err := Replay(owner, txns)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}
