package engagement

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/domain"
)

// Storage keys. The user record lives under one fixed key; each day's task
// list lives under the tasks prefix followed by the date.
const (
	StatsKey       = "logicalX_user"
	TasksKeyPrefix = "logicalX_tasks_"
)

// TasksKey returns the storage key for a day's task list.
func TasksKey(date string) string {
	return TasksKeyPrefix + date
}

// Repository reads and writes progress documents on a domain.Store.
// Absent or malformed documents fall back to defaults.
type Repository struct {
	store  domain.Store
	logger *zap.Logger
}

// NewRepository creates a repository. A nil logger discards output.
func NewRepository(store domain.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, logger: logger}
}

// LoadStats returns the stored user record, or defaults if none exists or
// the stored document cannot be decoded.
func (r *Repository) LoadStats() (domain.UserStats, error) {
	raw, ok, err := r.store.Load(StatsKey)
	if err != nil {
		return domain.DefaultUserStats(), fmt.Errorf("load stats: %w", err)
	}
	if !ok {
		return domain.DefaultUserStats(), nil
	}

	stats := domain.DefaultUserStats()
	if err := json.Unmarshal(raw, &stats); err != nil {
		r.logger.Warn("stored stats unreadable, using defaults", zap.Error(err))
		return domain.DefaultUserStats(), nil
	}
	return normalizeStats(stats), nil
}

// SaveStats persists the user record.
func (r *Repository) SaveStats(stats domain.UserStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := r.store.Save(StatsKey, raw); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// LoadTasks returns the task list stored for date. ok is false when none
// exists or the stored document cannot be decoded.
func (r *Repository) LoadTasks(date string) ([]domain.DailyTask, bool, error) {
	raw, ok, err := r.store.Load(TasksKey(date))
	if err != nil {
		return nil, false, fmt.Errorf("load tasks %s: %w", date, err)
	}
	if !ok {
		return nil, false, nil
	}

	var tasks []domain.DailyTask
	if err := json.Unmarshal(raw, &tasks); err != nil || tasks == nil {
		r.logger.Warn("stored tasks unreadable, regenerating",
			zap.String("date", date), zap.Error(err))
		return nil, false, nil
	}
	if err := validTaskSet(tasks); err != nil {
		r.logger.Warn("stored tasks invalid, regenerating",
			zap.String("date", date), zap.Error(err))
		return nil, false, nil
	}
	return tasks, true, nil
}

// SaveTasks persists the task list for date.
func (r *Repository) SaveTasks(date string, tasks []domain.DailyTask) error {
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := r.store.Save(TasksKey(date), raw); err != nil {
		return fmt.Errorf("save tasks %s: %w", date, err)
	}
	return nil
}

// normalizeStats repairs records written by older or hand-edited clients.
func normalizeStats(s domain.UserStats) domain.UserStats {
	if s.Level < 1 {
		s.Level = 1
	}
	if s.XP < 0 {
		s.XP = 0
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.SolvedCount < 0 {
		s.SolvedCount = 0
	}
	if s.CorrectCount < 0 {
		s.CorrectCount = 0
	}
	if s.CorrectCount > s.SolvedCount {
		s.SolvedCount = s.CorrectCount
	}
	if s.Badges == nil {
		s.Badges = []string{}
	}
	return s
}
