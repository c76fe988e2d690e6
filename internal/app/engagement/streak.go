// Package engagement implements the LogicalX progression engine.
// Stats are plain values: every transition takes the current record and
// returns the next one, and the caller persists it.
package engagement

import (
	"github.com/logicalx/logicalx/internal/domain"
)

// StreakGraceDays is how many whole days may pass between sessions before
// the streak breaks. A gap larger than this resets the streak to zero.
const StreakGraceDays = 2

// SessionStart applies the once-per-day login bookkeeping.
// Same day: no-op. Gap above StreakGraceDays: streak resets silently.
// An unparseable stored date leaves the streak alone.
func SessionStart(stats domain.UserStats, today string) domain.UserStats {
	next := stats.Clone()
	if next.LastLoginDate == today {
		return next
	}

	if next.LastLoginDate != "" {
		gap, err := domain.DaysBetween(next.LastLoginDate, today)
		if err == nil && gap > StreakGraceDays {
			next.Streak = 0
		}
	}

	next.LastLoginDate = today
	return next
}

// completeTask marks the task with the given id as completed in place.
// newlyDone is true only when the task was not completed before; the
// streak extends only when that transition finished the whole day.
func completeTask(tasks []domain.DailyTask, taskID, puzzleID string) (newlyDone, dayFinished bool) {
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		if tasks[i].Completed {
			return false, false
		}
		tasks[i].Completed = true
		tasks[i].PuzzleID = puzzleID
		return true, domain.AllCompleted(tasks)
	}
	return false, false
}
