package rewards

import (
	"testing"
)

func ptr(v int64) *int64 { return &v }

func testTiers() []RewardTier {
	return []RewardTier{
		{Name: "Bronze", MinPoints: 0, MaxPoints: ptr(499), Multiplier: 1.0},
		{Name: "Silver", MinPoints: 500, MaxPoints: ptr(1999), Multiplier: 1.25},
		{Name: "Gold", MinPoints: 2000, Multiplier: 1.5},
	}
}

func TestTierForBoundaries(t *testing.T) {
	tiers := testTiers()
	cases := []struct {
		points int64
		want   string
	}{
		{0, "Bronze"},
		{499, "Bronze"},
		{500, "Silver"},
		{1999, "Silver"},
		{2000, "Gold"},
		{1_000_000, "Gold"},
	}
	for _, tc := range cases {
		got := TierFor(tc.points, tiers)
		if got == nil || got.Name != tc.want {
			t.Errorf("TierFor(%d) = %v, want %s", tc.points, got, tc.want)
		}
	}
}

func TestTierForUnsortedInput(t *testing.T) {
	tiers := []RewardTier{
		{Name: "Gold", MinPoints: 2000, Multiplier: 1.5},
		{Name: "Bronze", MinPoints: 0, MaxPoints: ptr(499), Multiplier: 1.0},
		{Name: "Silver", MinPoints: 500, MaxPoints: ptr(1999), Multiplier: 1.25},
	}
	if got := TierFor(300, tiers); got == nil || got.Name != "Bronze" {
		t.Errorf("TierFor(300) = %v, want Bronze", got)
	}
}

func TestTierForOverlapLowestWins(t *testing.T) {
	// Overlapping catalog: the lowest min_points match takes precedence.
	tiers := []RewardTier{
		{Name: "A", MinPoints: 0, MaxPoints: ptr(1000), Multiplier: 1.0},
		{Name: "B", MinPoints: 500, MaxPoints: ptr(2000), Multiplier: 1.2},
	}
	if got := TierFor(700, tiers); got == nil || got.Name != "A" {
		t.Errorf("TierFor(700) = %v, want A", got)
	}
}

func TestTierForGap(t *testing.T) {
	tiers := []RewardTier{
		{Name: "A", MinPoints: 0, MaxPoints: ptr(99), Multiplier: 1.0},
		{Name: "B", MinPoints: 200, Multiplier: 1.2},
	}
	if got := TierFor(150, tiers); got != nil {
		t.Errorf("TierFor(150) = %v, want nil for gapped catalog", got)
	}
}

func TestNextTier(t *testing.T) {
	tiers := testTiers()

	next, needed := NextTier(1999, tiers)
	if next == nil || next.Name != "Gold" || needed != 1 {
		t.Errorf("NextTier(1999) = %v/%d, want Gold/1", next, needed)
	}

	next, needed = NextTier(0, tiers)
	if next == nil || next.Name != "Silver" || needed != 500 {
		t.Errorf("NextTier(0) = %v/%d, want Silver/500", next, needed)
	}

	if next, _ = NextTier(2000, tiers); next != nil {
		t.Errorf("NextTier(2000) = %v, want nil at top tier", next)
	}
	if next, _ = NextTier(5000, tiers); next != nil {
		t.Errorf("NextTier(5000) = %v, want nil above top tier", next)
	}
}

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog(testTiers()); err != nil {
		t.Errorf("valid catalog rejected: %v", err)
	}

	cases := []struct {
		name  string
		tiers []RewardTier
	}{
		{"empty", nil},
		{"nonzero start", []RewardTier{
			{Name: "A", MinPoints: 100, Multiplier: 1.0},
		}},
		{"gap", []RewardTier{
			{Name: "A", MinPoints: 0, MaxPoints: ptr(99), Multiplier: 1.0},
			{Name: "B", MinPoints: 200, Multiplier: 1.2},
		}},
		{"overlap", []RewardTier{
			{Name: "A", MinPoints: 0, MaxPoints: ptr(100), Multiplier: 1.0},
			{Name: "B", MinPoints: 50, Multiplier: 1.2},
		}},
		{"bounded top", []RewardTier{
			{Name: "A", MinPoints: 0, MaxPoints: ptr(100), Multiplier: 1.0},
			{Name: "B", MinPoints: 101, MaxPoints: ptr(200), Multiplier: 1.2},
		}},
		{"multiplier below one", []RewardTier{
			{Name: "A", MinPoints: 0, Multiplier: 0.5},
		}},
		{"open-ended middle", []RewardTier{
			{Name: "A", MinPoints: 0, Multiplier: 1.0},
			{Name: "B", MinPoints: 100, Multiplier: 1.2},
		}},
	}
	for _, tc := range cases {
		if err := ValidateCatalog(tc.tiers); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
