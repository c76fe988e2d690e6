package engagement

import (
	"math"

	"github.com/logicalx/logicalx/internal/domain"
)

// awardXP returns the XP a correct answer earns under the given plan.
// Pro plans earn 1.5x, rounded half away from zero.
func awardXP(reward int64, plan domain.Plan) int64 {
	if reward <= 0 {
		return 0
	}
	return int64(math.Round(float64(reward) * plan.XPMultiplier()))
}

// levelUp advances stats by at most one level when XP has reached the
// threshold for the current level. Returns true if the level changed.
func levelUp(stats *domain.UserStats) bool {
	threshold, ok := domain.NextLevelXP(stats.Level)
	if !ok || stats.XP < threshold {
		return false
	}
	stats.Level++
	return true
}

// XPToNextLevel returns XP remaining until the next level (0 at max level).
func XPToNextLevel(stats domain.UserStats) int64 {
	threshold, ok := domain.NextLevelXP(stats.Level)
	if !ok {
		return 0
	}
	remaining := threshold - stats.XP
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
