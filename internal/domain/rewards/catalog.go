package rewards

import (
	"fmt"
	"sort"
)

// TierFor resolves the tier a points total falls in. Tiers are considered
// in ascending min_points order and the first match wins, so on an
// overlapping catalog the lowest min_points tier takes precedence. Returns
// nil when no tier matches (a catalog with gaps).
func TierFor(points int64, tiers []RewardTier) *RewardTier {
	sorted := sortedByMin(tiers)
	for i := range sorted {
		t := &sorted[i]
		if points >= t.MinPoints && (t.MaxPoints == nil || points <= *t.MaxPoints) {
			return t
		}
	}
	return nil
}

// NextTier returns the lowest tier whose min_points exceeds the given
// total, and how many points away it is. Returns (nil, 0) when the total
// is already at or above the highest tier's floor.
func NextTier(points int64, tiers []RewardTier) (*RewardTier, int64) {
	sorted := sortedByMin(tiers)
	for i := range sorted {
		t := &sorted[i]
		if t.MinPoints > points {
			return t, t.MinPoints - points
		}
	}
	return nil, 0
}

// ValidateCatalog checks that a tier table is usable for total lookup:
// non-empty, starting at zero, contiguous, and open-ended at the top.
func ValidateCatalog(tiers []RewardTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("tier catalog is empty")
	}
	sorted := sortedByMin(tiers)

	if sorted[0].MinPoints != 0 {
		return fmt.Errorf("lowest tier %q starts at %d, must start at 0", sorted[0].Name, sorted[0].MinPoints)
	}
	for i := range sorted {
		t := sorted[i]
		if t.Multiplier < 1.0 {
			return fmt.Errorf("tier %q multiplier %g is below 1.0", t.Name, t.Multiplier)
		}
		if t.MaxPoints != nil && *t.MaxPoints < t.MinPoints {
			return fmt.Errorf("tier %q range [%d,%d] is inverted", t.Name, t.MinPoints, *t.MaxPoints)
		}
		last := i == len(sorted)-1
		if last {
			if t.MaxPoints != nil {
				return fmt.Errorf("highest tier %q must be open-ended", t.Name)
			}
			continue
		}
		if t.MaxPoints == nil {
			return fmt.Errorf("tier %q is open-ended but not the highest tier", t.Name)
		}
		next := sorted[i+1]
		if next.MinPoints != *t.MaxPoints+1 {
			return fmt.Errorf("gap or overlap between %q (max %d) and %q (min %d)",
				t.Name, *t.MaxPoints, next.Name, next.MinPoints)
		}
	}
	return nil
}

func sortedByMin(tiers []RewardTier) []RewardTier {
	out := make([]RewardTier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinPoints < out[j].MinPoints })
	return out
}
