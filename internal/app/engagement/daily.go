package engagement

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/domain"
)

// DailyTaskService manages the per-day task sets.
// One task per difficulty tier, generated fresh for each calendar day and
// never carried across days.
type DailyTaskService struct {
	repo   *Repository
	logger *zap.Logger
}

// NewDailyTaskService creates a daily task service.
func NewDailyTaskService(repo *Repository, logger *zap.Logger) *DailyTaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTaskService{repo: repo, logger: logger}
}

// taskIDs maps each tier to its stable task id.
var taskIDs = map[domain.Difficulty]string{
	domain.Beginner:     "daily_beg",
	domain.Intermediate: "daily_int",
	domain.Expert:       "daily_exp",
}

// NewDailyTasks returns a fresh, uncompleted set: one task per tier.
func NewDailyTasks() []domain.DailyTask {
	tasks := make([]domain.DailyTask, 0, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		tasks = append(tasks, domain.DailyTask{ID: taskIDs[d], Difficulty: d})
	}
	return tasks
}

// validTaskSet checks that tasks holds exactly one task per tier, each
// under its stable id.
func validTaskSet(tasks []domain.DailyTask) error {
	if len(tasks) != len(domain.Difficulties) {
		return fmt.Errorf("want %d tasks, got %d", len(domain.Difficulties), len(tasks))
	}
	seen := make(map[domain.Difficulty]bool, len(tasks))
	for _, t := range tasks {
		id, ok := taskIDs[t.Difficulty]
		if !ok {
			return fmt.Errorf("task %q: unknown difficulty %q", t.ID, t.Difficulty)
		}
		if t.ID != id {
			return fmt.Errorf("task %q: want id %q for %s", t.ID, id, t.Difficulty)
		}
		if seen[t.Difficulty] {
			return fmt.Errorf("duplicate %s task", t.Difficulty)
		}
		seen[t.Difficulty] = true
	}
	return nil
}

// ForDate returns the task set for date.
// If a set already exists for that day it is returned unchanged.
func (s *DailyTaskService) ForDate(date string) ([]domain.DailyTask, error) {
	tasks, ok, err := s.repo.LoadTasks(date)
	if err != nil {
		return nil, err
	}
	if ok {
		return tasks, nil
	}

	tasks = NewDailyTasks()
	if err := s.repo.SaveTasks(date, tasks); err != nil {
		return nil, fmt.Errorf("persist daily tasks: %w", err)
	}
	s.logger.Debug("generated daily tasks", zap.String("date", date))
	return tasks, nil
}

// Save persists an updated task set for date.
func (s *DailyTaskService) Save(date string, tasks []domain.DailyTask) error {
	return s.repo.SaveTasks(date, tasks)
}

// Prune removes task sets stored for days strictly before date.
func (s *DailyTaskService) Prune(before string) (int64, error) {
	n, err := s.repo.store.DeleteBefore(TasksKeyPrefix, before)
	if err != nil {
		return 0, fmt.Errorf("prune daily tasks: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned old daily tasks", zap.Int64("removed", n), zap.String("before", before))
	}
	return n, nil
}

// FindTask returns the task with the given id.
func FindTask(tasks []domain.DailyTask, id string) (domain.DailyTask, error) {
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.DailyTask{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
}
