package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/domain"
	"github.com/logicalx/logicalx/internal/infra/metrics"
)

// ErrSessionNotStarted is returned when an event arrives before Start.
var ErrSessionNotStarted = errors.New("session not started")

// SessionOptions configures a Session.
type SessionOptions struct {
	Provider    domain.PuzzleProvider
	Leaderboard domain.Leaderboard // optional; receives the user's XP after changes
	Logger      *zap.Logger
	Now         func() time.Time
	RetainDays  int // 0 keeps every day's task set
}

// Session sequences the presentation events for the local user.
// It owns the view state and the active puzzle, feeds completion events
// into the progression functions and persists the result after every
// transition. Safe for concurrent use; the lock is not held while a
// puzzle is being fetched.
type Session struct {
	mu         sync.Mutex
	repo       *Repository
	daily      *DailyTaskService
	provider   domain.PuzzleProvider
	board      domain.Leaderboard
	logger     *zap.Logger
	now        func() time.Time
	retainDays int

	started       bool
	today         string
	stats         domain.UserStats
	tasks         []domain.DailyTask
	authenticated bool
	view          domain.View
	notices       noticeQueue

	// Active puzzle state. gen is bumped whenever an in-flight fetch
	// must be discarded.
	puzzle    *domain.Puzzle
	taskID    string
	puzzleDay string
	answered  bool
	selected  int
	outcome   *Outcome
	gen       uint64
}

// NewSession creates a session over store.
func NewSession(store domain.Store, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	repo := NewRepository(store, logger)
	return &Session{
		repo:       repo,
		daily:      NewDailyTaskService(repo, logger),
		provider:   opts.Provider,
		board:      opts.Leaderboard,
		logger:     logger.Named("session"),
		now:        now,
		retainDays: opts.RetainDays,
		view:       domain.ViewDashboard,
		selected:   -1,
	}
}

// ─── Session Lifecycle ──────────────────────────────────────────────────────

// Start loads the stored record, applies the daily login bookkeeping and
// loads today's tasks. A record with an email counts as signed in.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.repo.LoadStats()
	if err != nil {
		return err
	}
	s.stats = stats
	if err := s.beginDay(); err != nil {
		return err
	}

	s.authenticated = s.stats.Email != ""
	s.view = domain.ViewDashboard
	s.started = true
	s.logger.Info("session started",
		zap.String("date", s.today),
		zap.Bool("authenticated", s.authenticated),
		zap.Int("level", s.stats.Level),
		zap.Int("streak", s.stats.Streak))
	return nil
}

// beginDay runs SessionStart for the current date and loads its tasks.
func (s *Session) beginDay() error {
	today := domain.DateKey(s.now())
	next := SessionStart(s.stats, today)
	if err := s.repo.SaveStats(next); err != nil {
		return err
	}
	tasks, err := s.daily.ForDate(today)
	if err != nil {
		return err
	}
	s.stats, s.tasks, s.today = next, tasks, today

	if s.retainDays > 0 {
		cutoff := domain.DateKey(s.now().AddDate(0, 0, -s.retainDays))
		if _, err := s.daily.Prune(cutoff); err != nil {
			s.logger.Warn("prune failed", zap.Error(err))
		}
	}

	metrics.CurrentStreak.Set(float64(s.stats.Streak))
	metrics.CurrentLevel.Set(float64(s.stats.Level))
	return nil
}

// ensureDay picks up a calendar-day rollover in a long-running session.
func (s *Session) ensureDay() error {
	if !s.started {
		return ErrSessionNotStarted
	}
	if domain.DateKey(s.now()) == s.today {
		return nil
	}
	s.logger.Info("day rolled over", zap.String("previous", s.today))
	return s.beginDay()
}

func (s *Session) requireAuth() error {
	if err := s.ensureDay(); err != nil {
		return err
	}
	if !s.authenticated {
		return domain.ErrNotAuthenticated
	}
	return nil
}

// ─── Identity ───────────────────────────────────────────────────────────────

// Login attaches the demo identity and marks the session authenticated.
func (s *Session) Login() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDay(); err != nil {
		return err
	}
	next := Login(s.stats, s.today)
	if err := s.repo.SaveStats(next); err != nil {
		return err
	}
	s.stats = next
	s.authenticated = true
	s.recordScore()
	s.logger.Info("signed in", zap.String("name", next.Name))
	return nil
}

// Logout clears the identity, abandons any active puzzle and returns to
// the dashboard. Progress is kept.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDay(); err != nil {
		return err
	}
	next := Logout(s.stats)
	if err := s.repo.SaveStats(next); err != nil {
		return err
	}
	s.stats = next
	s.authenticated = false
	s.clearPuzzle()
	s.view = domain.ViewDashboard
	s.logger.Info("signed out")
	return nil
}

// ─── Puzzle Flow ────────────────────────────────────────────────────────────

// StartTask requests a puzzle for one of today's tasks. A free user
// asking for a non-Beginner task gets domain.ErrUpgradeRequired and the
// session moves to the subscription view; nothing else changes.
func (s *Session) StartTask(ctx context.Context, taskID string) (PuzzleView, error) {
	s.mu.Lock()
	if err := s.requireAuth(); err != nil {
		s.mu.Unlock()
		return PuzzleView{}, err
	}
	task, err := FindTask(s.tasks, taskID)
	if err != nil {
		s.mu.Unlock()
		return PuzzleView{}, err
	}
	if err := CheckAccess(s.stats.Plan(), task.Difficulty); err != nil {
		s.view = domain.ViewSubscription
		s.notices.push(Notice{
			Kind:      NoticeUpgradeRequired,
			Title:     "Pro required",
			Body:      "Upgrade to Pro to access Intermediate and Expert challenges!",
			CreatedAt: s.now(),
		})
		metrics.AccessDenied.WithLabelValues(string(task.Difficulty)).Inc()
		s.mu.Unlock()
		return PuzzleView{}, err
	}
	s.mu.Unlock()

	return s.loadPuzzle(ctx, task.Difficulty, task.ID)
}

// PlayNow requests a freeform practice puzzle matched to the user's plan
// and level. It is not tied to a daily task.
func (s *Session) PlayNow(ctx context.Context) (PuzzleView, error) {
	s.mu.Lock()
	if err := s.requireAuth(); err != nil {
		s.mu.Unlock()
		return PuzzleView{}, err
	}
	difficulty := PracticeDifficulty(s.stats)
	s.mu.Unlock()

	return s.loadPuzzle(ctx, difficulty, "")
}

// loadPuzzle fetches a puzzle without holding the lock. The session is
// only touched once a valid puzzle has arrived; a failed or superseded
// fetch leaves every piece of state as it was.
func (s *Session) loadPuzzle(ctx context.Context, difficulty domain.Difficulty, taskID string) (PuzzleView, error) {
	if s.provider == nil {
		return PuzzleView{}, fmt.Errorf("%w: no puzzle provider configured", domain.ErrPuzzleUnavailable)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	start := time.Now()
	p, err := s.provider.RequestPuzzle(ctx, difficulty, "")
	metrics.PuzzleRequestLatency.WithLabelValues(string(difficulty)).Observe(time.Since(start).Seconds())
	if err == nil {
		err = p.Validate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		metrics.PuzzleRequestsFailed.WithLabelValues(string(difficulty)).Inc()
		s.logger.Warn("puzzle request failed",
			zap.String("difficulty", string(difficulty)),
			zap.String("task", taskID),
			zap.Error(err))
		s.notices.push(Notice{
			Kind:      NoticePuzzleFailed,
			Title:     "Failed to load puzzle",
			Body:      "Please check your API key.",
			CreatedAt: s.now(),
		})
		return PuzzleView{}, fmt.Errorf("%w: %w", domain.ErrPuzzleUnavailable, err)
	}
	if gen != s.gen || !s.authenticated {
		return PuzzleView{}, fmt.Errorf("%w: superseded by a newer request", domain.ErrPuzzleUnavailable)
	}
	// The plan may have changed while the lock was released.
	if err := CheckAccess(s.stats.Plan(), difficulty); err != nil {
		return PuzzleView{}, err
	}

	s.puzzle = p
	s.taskID = taskID
	s.puzzleDay = s.today
	s.answered = false
	s.selected = -1
	s.outcome = nil
	s.view = domain.ViewGame
	s.logger.Debug("puzzle loaded",
		zap.String("id", p.ID),
		zap.String("difficulty", string(p.Difficulty)),
		zap.String("task", taskID))
	return s.puzzleView(), nil
}

// Submit answers the active puzzle. A puzzle can be answered once; the
// session stays on the game view until Acknowledge.
func (s *Session) Submit(selected int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDay(); err != nil {
		return Outcome{}, err
	}
	if s.puzzle == nil {
		return Outcome{}, domain.ErrNoActivePuzzle
	}
	if s.answered {
		return Outcome{}, domain.ErrPuzzleAnswered
	}
	if selected < 0 || selected >= len(s.puzzle.Options) {
		return Outcome{}, fmt.Errorf("%w: %d", domain.ErrInvalidOption, selected)
	}

	// A task puzzle answered after midnight belongs to a day whose set is
	// gone; it still scores but completes nothing in today's set.
	taskID := s.taskID
	if s.puzzleDay != s.today {
		taskID = ""
	}
	stats, tasks, out := CompletePuzzle(s.stats, s.tasks, s.puzzle, taskID, selected)
	if out.TaskCompleted {
		if err := s.daily.Save(s.today, tasks); err != nil {
			return Outcome{}, err
		}
	}
	if err := s.repo.SaveStats(stats); err != nil {
		return Outcome{}, err
	}
	s.stats, s.tasks = stats, tasks
	s.answered = true
	s.selected = selected
	s.outcome = &out

	result := "incorrect"
	if out.Success {
		result = "correct"
	}
	metrics.PuzzlesCompleted.WithLabelValues(string(s.puzzle.Difficulty), result).Inc()
	metrics.XPAwarded.Add(float64(out.XPGained))
	if out.LeveledUp {
		metrics.LevelUps.Inc()
	}
	for _, b := range out.NewBadges {
		metrics.BadgesAwarded.WithLabelValues(b).Inc()
	}
	metrics.CurrentStreak.Set(float64(s.stats.Streak))
	metrics.CurrentLevel.Set(float64(s.stats.Level))

	for _, n := range outcomeNotices(out, s.stats.Streak, s.now()) {
		s.notices.push(n)
	}
	s.recordScore()

	s.logger.Info("puzzle answered",
		zap.String("id", s.puzzle.ID),
		zap.Bool("success", out.Success),
		zap.Int64("xp_gained", out.XPGained),
		zap.Int("level", out.Level),
		zap.Bool("task_completed", out.TaskCompleted))
	return out, nil
}

// Acknowledge closes an answered puzzle and returns to the dashboard.
func (s *Session) Acknowledge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.puzzle == nil {
		return domain.ErrNoActivePuzzle
	}
	if !s.answered {
		return domain.ErrPuzzleUnanswered
	}
	s.clearPuzzle()
	s.view = domain.ViewDashboard
	return nil
}

// Abandon drops the active puzzle without recording an answer.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.puzzle == nil {
		return domain.ErrNoActivePuzzle
	}
	s.clearPuzzle()
	s.view = domain.ViewDashboard
	return nil
}

func (s *Session) clearPuzzle() {
	s.gen++
	s.puzzle = nil
	s.taskID = ""
	s.puzzleDay = ""
	s.answered = false
	s.selected = -1
	s.outcome = nil
}

// ─── Plan & Navigation ──────────────────────────────────────────────────────

// Subscribe switches the plan. celebrate is true for paid plans.
func (s *Session) Subscribe(plan domain.Plan) (celebrate bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAuth(); err != nil {
		return false, err
	}
	if _, err := domain.ParsePlan(string(plan)); err != nil {
		return false, err
	}
	next, celebrate := Subscribe(s.stats, plan)
	if err := s.repo.SaveStats(next); err != nil {
		return false, err
	}
	s.stats = next
	metrics.Subscriptions.WithLabelValues(string(plan)).Inc()
	if celebrate {
		s.notices.push(Notice{
			Kind:      NoticeSubscribed,
			Title:     "Welcome to Pro",
			Body:      "All levels unlocked and a 1.5x XP boost.",
			CreatedAt: s.now(),
		})
	}
	s.logger.Info("plan changed", zap.String("plan", string(plan)))
	return celebrate, nil
}

// Navigate switches the current view. The game view needs an active puzzle.
func (s *Session) Navigate(v domain.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAuth(); err != nil {
		return err
	}
	if _, err := domain.ParseView(string(v)); err != nil {
		return err
	}
	if v == domain.ViewGame && s.puzzle == nil {
		return domain.ErrNoActivePuzzle
	}
	s.view = v
	return nil
}

// TakeNotices returns pending notices and clears the queue.
func (s *Session) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notices.take()
}

// recordScore pushes the user's XP to the leaderboard, if one is wired.
// Failures are logged; the leaderboard is not part of the progress record.
func (s *Session) recordScore() {
	if s.board == nil || !s.authenticated {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.board.Record(ctx, s.stats.Name, s.stats.XP); err != nil {
		s.logger.Warn("leaderboard update failed", zap.Error(err))
	}
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// State is a read-only view of the session.
type State struct {
	Authenticated bool               `json:"authenticated"`
	View          domain.View        `json:"view"`
	Today         string             `json:"today"`
	Stats         domain.UserStats   `json:"stats"`
	Tasks         []domain.DailyTask `json:"tasks"`
	XPToNext      int64              `json:"xp_to_next_level"`
	ProgressPct   float64            `json:"progress_pct"`
	Puzzle        *PuzzleView        `json:"puzzle,omitempty"`
	Outcome       *Outcome           `json:"outcome,omitempty"`
	Notices       []Notice           `json:"notices,omitempty"`
}

// PuzzleView is the active puzzle as shown to the player. The answer and
// explanation stay hidden until the puzzle has been answered.
type PuzzleView struct {
	ID                 string            `json:"id"`
	TaskID             string            `json:"task_id,omitempty"`
	Question           string            `json:"question"`
	CodeSnippet        string            `json:"code_snippet,omitempty"`
	Options            []string          `json:"options"`
	Difficulty         domain.Difficulty `json:"difficulty"`
	Type               domain.PuzzleType `json:"type"`
	XPReward           int64             `json:"xp_reward"`
	Answered           bool              `json:"answered"`
	Selected           *int              `json:"selected,omitempty"`
	CorrectAnswerIndex *int              `json:"correct_answer_index,omitempty"`
	Explanation        string            `json:"explanation,omitempty"`
}

// Snapshot returns a copy of the current state, rolling over to a new
// calendar day first when one has begun.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		if err := s.ensureDay(); err != nil {
			s.logger.Warn("day rollover failed", zap.Error(err))
		}
	}

	st := State{
		Authenticated: s.authenticated,
		View:          s.view,
		Today:         s.today,
		Stats:         s.stats.Clone(),
		Tasks:         append([]domain.DailyTask(nil), s.tasks...),
		XPToNext:      XPToNextLevel(s.stats),
		ProgressPct:   s.stats.ProgressPct(),
		Notices:       s.notices.pending(),
	}
	if s.puzzle != nil {
		pv := s.puzzleView()
		st.Puzzle = &pv
	}
	if s.outcome != nil {
		out := *s.outcome
		st.Outcome = &out
	}
	return st
}

func (s *Session) puzzleView() PuzzleView {
	p := s.puzzle
	pv := PuzzleView{
		ID:          p.ID,
		TaskID:      s.taskID,
		Question:    p.Question,
		CodeSnippet: p.CodeSnippet,
		Options:     append([]string(nil), p.Options...),
		Difficulty:  p.Difficulty,
		Type:        p.Type,
		XPReward:    p.XPReward,
		Answered:    s.answered,
	}
	if s.answered {
		selected, correct := s.selected, p.CorrectAnswerIndex
		pv.Selected = &selected
		pv.CorrectAnswerIndex = &correct
		pv.Explanation = p.Explanation
	}
	return pv
}
