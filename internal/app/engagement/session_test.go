package engagement_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicalx/logicalx/internal/app/engagement"
	"github.com/logicalx/logicalx/internal/domain"
	"github.com/logicalx/logicalx/internal/infra/sqlite"
)

// fakeProvider serves testPuzzle for the requested tier.
type fakeProvider struct {
	mu    sync.Mutex
	calls int
	err   error

	// When set, RequestPuzzle signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeProvider) RequestPuzzle(ctx context.Context, d domain.Difficulty, _ domain.PuzzleType) (*domain.Puzzle, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return testPuzzle(d), nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeBoard records the last score per name.
type fakeBoard struct {
	mu     sync.Mutex
	scores map[string]int64
}

func (b *fakeBoard) Top(context.Context, int) ([]domain.LeaderboardEntry, error) { return nil, nil }

func (b *fakeBoard) Record(_ context.Context, name string, xp int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scores == nil {
		b.scores = map[string]int64{}
	}
	b.scores[name] = xp
	return nil
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sessionFixture struct {
	db       *sqlite.DB
	provider *fakeProvider
	board    *fakeBoard
	clock    *clock
	session  *engagement.Session
}

func newFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		db:       testDB(t),
		provider: &fakeProvider{},
		board:    &fakeBoard{},
		clock:    &clock{t: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.session = f.open(t)
	return f
}

// open starts a fresh session over the fixture's database.
func (f *sessionFixture) open(t *testing.T) *engagement.Session {
	t.Helper()
	s := engagement.NewSession(f.db, engagement.SessionOptions{
		Provider:    f.provider,
		Leaderboard: f.board,
		Now:         f.clock.Now,
	})
	require.NoError(t, s.Start())
	return s
}

func (f *sessionFixture) raw(t *testing.T, key string) []byte {
	t.Helper()
	v, ok, err := f.db.Load(key)
	require.NoError(t, err)
	require.True(t, ok, "missing key %s", key)
	return v
}

func (f *sessionFixture) play(t *testing.T, taskID string, selected int) engagement.Outcome {
	t.Helper()
	_, err := f.session.StartTask(context.Background(), taskID)
	require.NoError(t, err)
	out, err := f.session.Submit(selected)
	require.NoError(t, err)
	require.NoError(t, f.session.Acknowledge())
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Lifecycle Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSession_FirstRun(t *testing.T) {
	f := newFixture(t)
	st := f.session.Snapshot()

	assert.False(t, st.Authenticated)
	assert.Equal(t, domain.ViewDashboard, st.View)
	assert.Equal(t, "2025-07-01", st.Today)
	assert.Equal(t, 1, st.Stats.Level)
	assert.Equal(t, "2025-07-01", st.Stats.LastLoginDate)
	assert.Len(t, st.Tasks, 3)
	assert.Equal(t, int64(100), st.XPToNext)
	assert.Nil(t, st.Puzzle)

	// Both documents are persisted on start.
	f.raw(t, engagement.StatsKey)
	f.raw(t, engagement.TasksKey("2025-07-01"))
}

func TestSession_RequiresStart(t *testing.T) {
	s := engagement.NewSession(testDB(t), engagement.SessionOptions{Provider: &fakeProvider{}})
	assert.ErrorIs(t, s.Login(), engagement.ErrSessionNotStarted)
}

func TestSession_MalformedStoreFallsBack(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save(engagement.StatsKey, []byte(`{"xp": "lots"`)))
	require.NoError(t, db.Save(engagement.TasksKey("2025-07-01"), []byte(`[{]`)))

	s := engagement.NewSession(db, engagement.SessionOptions{
		Provider: &fakeProvider{},
		Now:      func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, s.Start())

	st := s.Snapshot()
	assert.Equal(t, int64(0), st.Stats.XP)
	assert.Equal(t, 1, st.Stats.Level)
	assert.Len(t, st.Tasks, 3)
}

func TestSession_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.StartTask(context.Background(), "daily_beg")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = f.session.PlayNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Zero(t, f.provider.Calls())
}

func TestSession_LoginRecordsScore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())

	st := f.session.Snapshot()
	assert.True(t, st.Authenticated)
	assert.Equal(t, engagement.DemoName, st.Stats.Name)

	f.board.mu.Lock()
	_, ok := f.board.scores[engagement.DemoName]
	f.board.mu.Unlock()
	assert.True(t, ok, "leaderboard not updated on login")

	// A stored identity survives a restart.
	again := f.open(t)
	assert.True(t, again.Snapshot().Authenticated)
}

// ═══════════════════════════════════════════════════════════════════════════
// Puzzle Flow Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSession_CorrectAnswerPersists(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())

	pv, err := f.session.StartTask(context.Background(), "daily_beg")
	require.NoError(t, err)
	assert.Nil(t, pv.CorrectAnswerIndex, "answer leaked before submit")
	assert.Empty(t, pv.Explanation)
	assert.Equal(t, domain.ViewGame, f.session.Snapshot().View)

	out, err := f.session.Submit(1)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, int64(25), out.XPGained)
	assert.True(t, out.TaskCompleted)

	st := f.session.Snapshot()
	require.NotNil(t, st.Puzzle)
	require.NotNil(t, st.Puzzle.CorrectAnswerIndex)
	assert.Equal(t, 1, *st.Puzzle.CorrectAnswerIndex)
	assert.Equal(t, "Addition.", st.Puzzle.Explanation)

	require.NoError(t, f.session.Acknowledge())
	assert.Equal(t, domain.ViewDashboard, f.session.Snapshot().View)

	// A new session over the same store sees the same progress.
	restored := f.open(t).Snapshot()
	if diff := cmp.Diff(st.Stats, restored.Stats); diff != "" {
		t.Errorf("stats mismatch after restart (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(st.Tasks, restored.Tasks); diff != "" {
		t.Errorf("tasks mismatch after restart (-want +got):\n%s", diff)
	}
}

func TestSession_SubmitGuards(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())

	_, err := f.session.Submit(0)
	assert.ErrorIs(t, err, domain.ErrNoActivePuzzle)

	_, err = f.session.StartTask(context.Background(), "daily_beg")
	require.NoError(t, err)

	assert.ErrorIs(t, f.session.Acknowledge(), domain.ErrPuzzleUnanswered)
	_, err = f.session.Submit(7)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
	_, err = f.session.Submit(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	_, err = f.session.Submit(0)
	require.NoError(t, err)
	_, err = f.session.Submit(1)
	assert.ErrorIs(t, err, domain.ErrPuzzleAnswered)

	assert.Equal(t, 1, f.session.Snapshot().Stats.SolvedCount)
}

func TestSession_UnknownTask(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	_, err := f.session.StartTask(context.Background(), "daily_none")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestSession_FreeUserGated(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	before := f.raw(t, engagement.StatsKey)

	_, err := f.session.StartTask(context.Background(), "daily_int")
	require.ErrorIs(t, err, domain.ErrUpgradeRequired)

	assert.Zero(t, f.provider.Calls(), "provider called for a gated tier")
	st := f.session.Snapshot()
	assert.Equal(t, domain.ViewSubscription, st.View)
	assert.Nil(t, st.Puzzle)
	assert.Equal(t, before, f.raw(t, engagement.StatsKey))

	notices := f.session.TakeNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, engagement.NoticeUpgradeRequired, notices[0].Kind)
	assert.Empty(t, f.session.TakeNotices())
}

func TestSession_ProviderFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	statsBefore := f.raw(t, engagement.StatsKey)
	tasksBefore := f.raw(t, engagement.TasksKey("2025-07-01"))
	snapBefore := f.session.Snapshot()

	f.provider.err = errors.New("quota exceeded")
	_, err := f.session.StartTask(context.Background(), "daily_beg")
	require.ErrorIs(t, err, domain.ErrPuzzleUnavailable)

	assert.Equal(t, statsBefore, f.raw(t, engagement.StatsKey))
	assert.Equal(t, tasksBefore, f.raw(t, engagement.TasksKey("2025-07-01")))

	snapAfter := f.session.Snapshot()
	assert.Nil(t, snapAfter.Puzzle)
	assert.Equal(t, snapBefore.View, snapAfter.View)
	assert.Equal(t, snapBefore.Stats, snapAfter.Stats)

	// The failure leaves nothing half-active: a submit has no target.
	_, err = f.session.Submit(1)
	assert.ErrorIs(t, err, domain.ErrNoActivePuzzle)
}

func TestSession_InvalidPuzzleRejected(t *testing.T) {
	db := testDB(t)
	s := engagement.NewSession(db, engagement.SessionOptions{
		Provider: providerFunc(func(context.Context, domain.Difficulty, domain.PuzzleType) (*domain.Puzzle, error) {
			return &domain.Puzzle{ID: "bad", Question: "?", Options: []string{"only"}}, nil
		}),
	})
	require.NoError(t, s.Start())
	require.NoError(t, s.Login())

	_, err := s.StartTask(context.Background(), "daily_beg")
	assert.ErrorIs(t, err, domain.ErrPuzzleUnavailable)
	assert.ErrorIs(t, err, domain.ErrInvalidPuzzle)
}

type providerFunc func(context.Context, domain.Difficulty, domain.PuzzleType) (*domain.Puzzle, error)

func (f providerFunc) RequestPuzzle(ctx context.Context, d domain.Difficulty, k domain.PuzzleType) (*domain.Puzzle, error) {
	return f(ctx, d, k)
}

func TestSession_LogoutDiscardsInFlightPuzzle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	f.provider.started = make(chan struct{})
	f.provider.release = make(chan struct{})

	errc := make(chan error, 1)
	go func() {
		_, err := f.session.StartTask(context.Background(), "daily_beg")
		errc <- err
	}()

	<-f.provider.started
	require.NoError(t, f.session.Logout())
	close(f.provider.release)

	err := <-errc
	assert.ErrorIs(t, err, domain.ErrPuzzleUnavailable)
	st := f.session.Snapshot()
	assert.Nil(t, st.Puzzle)
	assert.False(t, st.Authenticated)
	assert.Equal(t, domain.ViewDashboard, st.View)
}

func TestSession_AllTasksExtendStreak(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	celebrate, err := f.session.Subscribe(domain.PlanProMonthly)
	require.NoError(t, err)
	assert.True(t, celebrate)

	f.play(t, "daily_beg", 1)
	f.play(t, "daily_int", 1)
	out := f.play(t, "daily_exp", 1)

	assert.True(t, out.StreakExtended)
	st := f.session.Snapshot()
	assert.Equal(t, 1, st.Stats.Streak)
	assert.True(t, domain.AllCompleted(st.Tasks))

	// Replaying a finished task awards XP but not another streak day.
	out = f.play(t, "daily_exp", 1)
	assert.False(t, out.StreakExtended)
	assert.Equal(t, 1, f.session.Snapshot().Stats.Streak)
}

func TestSession_PlayNow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())

	pv, err := f.session.PlayNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Beginner, pv.Difficulty)
	assert.Empty(t, pv.TaskID)

	out, err := f.session.Submit(1)
	require.NoError(t, err)
	assert.False(t, out.TaskCompleted)
	for _, task := range f.session.Snapshot().Tasks {
		assert.False(t, task.Completed)
	}
}

func TestSession_Abandon(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	assert.ErrorIs(t, f.session.Abandon(), domain.ErrNoActivePuzzle)

	_, err := f.session.StartTask(context.Background(), "daily_beg")
	require.NoError(t, err)
	require.NoError(t, f.session.Abandon())

	st := f.session.Snapshot()
	assert.Nil(t, st.Puzzle)
	assert.Equal(t, 0, st.Stats.SolvedCount)
}

// ═══════════════════════════════════════════════════════════════════════════
// Navigation, Plans & Day Rollover Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSession_Navigate(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.session.Navigate(domain.ViewProfile), domain.ErrNotAuthenticated)

	require.NoError(t, f.session.Login())
	require.NoError(t, f.session.Navigate(domain.ViewLeaderboard))
	assert.Equal(t, domain.ViewLeaderboard, f.session.Snapshot().View)

	assert.ErrorIs(t, f.session.Navigate(domain.ViewGame), domain.ErrNoActivePuzzle)
	assert.ErrorIs(t, f.session.Navigate("settings"), domain.ErrInvalidView)
}

func TestSession_SubscribeRejectsUnknownPlan(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	_, err := f.session.Subscribe("enterprise")
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
}

func TestSession_LogoutResetsPlanKeepsProgress(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	_, err := f.session.Subscribe(domain.PlanProYearly)
	require.NoError(t, err)
	f.play(t, "daily_exp", 1)

	require.NoError(t, f.session.Logout())
	st := f.session.Snapshot()
	assert.Equal(t, domain.PlanFree, st.Stats.SubscriptionPlan)
	assert.Equal(t, int64(150), st.Stats.XP)
}

func TestSession_DayRollover(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	f.play(t, "daily_beg", 1)

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.session.Navigate(domain.ViewDashboard))

	st := f.session.Snapshot()
	assert.Equal(t, "2025-07-02", st.Today)
	assert.Equal(t, "2025-07-02", st.Stats.LastLoginDate)
	for _, task := range st.Tasks {
		assert.False(t, task.Completed, "task %s carried over", task.ID)
	}
}

func TestSession_AnswerAfterMidnightLeavesNewDayUntouched(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	f.clock.Advance(14*time.Hour + 30*time.Minute) // 23:30

	_, err := f.session.StartTask(context.Background(), "daily_beg")
	require.NoError(t, err)
	f.clock.Advance(time.Hour) // 00:30 the next day

	out, err := f.session.Submit(1)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, int64(25), out.XPGained)
	assert.False(t, out.TaskCompleted)
	assert.False(t, out.StreakExtended)

	st := f.session.Snapshot()
	assert.Equal(t, "2025-07-02", st.Today)
	assert.Equal(t, int64(25), st.Stats.XP)
	assert.Equal(t, 0, st.Stats.Streak)
	for _, task := range st.Tasks {
		assert.False(t, task.Completed, "task %s completed by a previous day's puzzle", task.ID)
		assert.Empty(t, task.PuzzleID)
	}

	require.NoError(t, f.session.Acknowledge())
	reopened := f.open(t).Snapshot()
	for _, task := range reopened.Tasks {
		assert.False(t, task.Completed, "stored task %s completed", task.ID)
	}
}

func TestSession_SnapshotRollsOverDay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	f.play(t, "daily_beg", 1)

	f.clock.Advance(24 * time.Hour)
	st := f.session.Snapshot()
	assert.Equal(t, "2025-07-02", st.Today)
	assert.Equal(t, "2025-07-02", st.Stats.LastLoginDate)
	for _, task := range st.Tasks {
		assert.False(t, task.Completed, "task %s carried over", task.ID)
	}
	f.raw(t, engagement.TasksKey("2025-07-02"))
}

func TestSession_EmptyStoredTaskSetRegenerated(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save(engagement.TasksKey("2025-07-01"), []byte(`[]`)))

	f := &sessionFixture{
		db:       db,
		provider: &fakeProvider{},
		board:    &fakeBoard{},
		clock:    &clock{t: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.session = f.open(t)
	require.NoError(t, f.session.Login())

	assert.Len(t, f.session.Snapshot().Tasks, 3)
	_, err := f.session.StartTask(context.Background(), "daily_beg")
	assert.NoError(t, err)
}

func TestSession_DowngradeDuringFetchDropsPuzzle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	_, err := f.session.Subscribe(domain.PlanProMonthly)
	require.NoError(t, err)

	f.provider.started = make(chan struct{})
	f.provider.release = make(chan struct{})

	errc := make(chan error, 1)
	go func() {
		_, err := f.session.StartTask(context.Background(), "daily_exp")
		errc <- err
	}()

	<-f.provider.started
	_, err = f.session.Subscribe(domain.PlanFree)
	require.NoError(t, err)
	close(f.provider.release)

	err = <-errc
	assert.ErrorIs(t, err, domain.ErrUpgradeRequired)
	st := f.session.Snapshot()
	assert.Nil(t, st.Puzzle)
	assert.NotEqual(t, domain.ViewGame, st.View)
}

func TestSession_StreakResetAfterLongGap(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	_, err := f.session.Subscribe(domain.PlanProMonthly)
	require.NoError(t, err)
	f.play(t, "daily_beg", 1)
	f.play(t, "daily_int", 1)
	f.play(t, "daily_exp", 1)
	require.Equal(t, 1, f.session.Snapshot().Stats.Streak)

	f.clock.Advance(2 * 24 * time.Hour)
	assert.Equal(t, 1, f.open(t).Snapshot().Stats.Streak)

	f.clock.Advance(3 * 24 * time.Hour)
	assert.Equal(t, 0, f.open(t).Snapshot().Stats.Streak)
}

func TestSession_PrunesOldTaskSets(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save(engagement.TasksKey("2025-06-01"), []byte(`[]`)))
	require.NoError(t, db.Save(engagement.TasksKey("2025-06-30"), []byte(`[]`)))

	s := engagement.NewSession(db, engagement.SessionOptions{
		Provider:   &fakeProvider{},
		Now:        func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) },
		RetainDays: 7,
	})
	require.NoError(t, s.Start())

	_, ok, err := db.Load(engagement.TasksKey("2025-06-01"))
	require.NoError(t, err)
	assert.False(t, ok, "old task set not pruned")
	_, ok, err = db.Load(engagement.TasksKey("2025-06-30"))
	require.NoError(t, err)
	assert.True(t, ok, "recent task set pruned")
}

func TestSession_NoticesOnLevelUp(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Login())
	for i := 0; i < 4; i++ {
		f.play(t, "daily_beg", 1)
	}

	var kinds []engagement.NoticeKind
	for _, n := range f.session.TakeNotices() {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, engagement.NoticeLevelUp)
	assert.Contains(t, kinds, engagement.NoticeBadge)
	assert.Equal(t, 2, f.session.Snapshot().Stats.Level)
}
