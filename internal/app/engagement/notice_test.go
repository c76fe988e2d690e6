package engagement

import (
	"fmt"
	"testing"
	"time"

	"github.com/logicalx/logicalx/internal/domain"
)

func TestNoticeQueue_DropsOldest(t *testing.T) {
	var q noticeQueue
	for i := 0; i < maxPendingNotices+5; i++ {
		q.push(Notice{Title: fmt.Sprintf("n%d", i)})
	}

	pending := q.pending()
	if len(pending) != maxPendingNotices {
		t.Fatalf("expected %d pending, got %d", maxPendingNotices, len(pending))
	}
	if pending[0].Title != "n5" {
		t.Errorf("expected oldest kept to be n5, got %s", pending[0].Title)
	}

	taken := q.take()
	if len(taken) != maxPendingNotices || len(q.pending()) != 0 {
		t.Errorf("take did not drain the queue")
	}
}

func TestOutcomeNotices(t *testing.T) {
	at := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	out := Outcome{Success: true, LeveledUp: true, Level: 3, StreakExtended: true, NewBadges: []string{"streak_3", "unknown"}}

	notices := outcomeNotices(out, 3, at)
	if len(notices) != 3 {
		t.Fatalf("expected 3 notices, got %d: %+v", len(notices), notices)
	}
	if notices[0].Kind != NoticeLevelUp || notices[0].Body != "You reached level 3." {
		t.Errorf("unexpected level notice: %+v", notices[0])
	}
	if notices[1].Kind != NoticeStreak {
		t.Errorf("expected streak notice, got %s", notices[1].Kind)
	}
	if notices[2].Kind != NoticeBadge || notices[2].Title != "🔥 On Fire" {
		t.Errorf("unexpected badge notice: %+v", notices[2])
	}
	for _, n := range notices {
		if !n.CreatedAt.Equal(at) {
			t.Errorf("notice %s has wrong timestamp", n.Kind)
		}
	}
}

func TestAwardXP(t *testing.T) {
	tests := []struct {
		reward int64
		plan   domain.Plan
		want   int64
	}{
		{25, "free", 25},
		{25, "pro_monthly", 38},
		{50, "pro_yearly", 75},
		{100, "pro_monthly", 150},
		{0, "pro_monthly", 0},
		{-5, "free", 0},
	}
	for _, tc := range tests {
		if got := awardXP(tc.reward, tc.plan); got != tc.want {
			t.Errorf("awardXP(%d, %s) = %d, want %d", tc.reward, tc.plan, got, tc.want)
		}
	}
}
