package engagement

import (
	"github.com/logicalx/logicalx/internal/domain"
)

// CheckAccess enforces the plan gate before a puzzle is requested.
// Free users may only play Beginner puzzles.
func CheckAccess(plan domain.Plan, difficulty domain.Difficulty) error {
	if !plan.IsPro() && difficulty != domain.Beginner {
		return domain.ErrUpgradeRequired
	}
	return nil
}

// PracticeDifficulty picks the tier for a freeform practice puzzle.
// Free users always get Beginner; paid users are matched to their level.
func PracticeDifficulty(stats domain.UserStats) domain.Difficulty {
	if !stats.Plan().IsPro() {
		return domain.Beginner
	}
	switch {
	case stats.Level > 5:
		return domain.Expert
	case stats.Level > 2:
		return domain.Intermediate
	default:
		return domain.Beginner
	}
}
