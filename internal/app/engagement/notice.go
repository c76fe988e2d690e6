package engagement

import (
	"fmt"
	"time"
)

// NoticeKind categorizes user-facing notices.
type NoticeKind string

const (
	NoticeLevelUp         NoticeKind = "level_up"
	NoticeBadge           NoticeKind = "badge"
	NoticeStreak          NoticeKind = "streak"
	NoticeUpgradeRequired NoticeKind = "upgrade_required"
	NoticePuzzleFailed    NoticeKind = "puzzle_failed"
	NoticeSubscribed      NoticeKind = "subscribed"
)

// Notice is a message the presentation layer shows once.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

// maxPendingNotices bounds the queue; the oldest notice is dropped first.
const maxPendingNotices = 20

// noticeQueue holds notices until the presentation layer takes them.
type noticeQueue struct {
	items []Notice
}

func (q *noticeQueue) push(n Notice) {
	q.items = append(q.items, n)
	if over := len(q.items) - maxPendingNotices; over > 0 {
		q.items = append([]Notice(nil), q.items[over:]...)
	}
}

func (q *noticeQueue) pending() []Notice {
	return append([]Notice(nil), q.items...)
}

func (q *noticeQueue) take() []Notice {
	out := q.items
	q.items = nil
	return out
}

// outcomeNotices builds the notices for a completion outcome.
func outcomeNotices(out Outcome, streak int, at time.Time) []Notice {
	var notices []Notice
	if out.LeveledUp {
		notices = append(notices, Notice{
			Kind: NoticeLevelUp, Title: "Level up!",
			Body:      fmt.Sprintf("You reached level %d.", out.Level),
			CreatedAt: at,
		})
	}
	if out.StreakExtended {
		notices = append(notices, Notice{
			Kind: NoticeStreak, Title: "All daily tasks done",
			Body:      fmt.Sprintf("Streak: %d day(s).", streak),
			CreatedAt: at,
		})
	}
	for _, id := range out.NewBadges {
		b, ok := BadgeByID(id)
		if !ok {
			continue
		}
		notices = append(notices, Notice{
			Kind: NoticeBadge, Title: b.Icon + " " + b.Name,
			Body:      b.Description,
			CreatedAt: at,
		})
	}
	return notices
}
