// Package health runs periodic probes against the progress store, the
// data directory and the leaderboard backend.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/domain"
	"github.com/logicalx/logicalx/internal/infra/metrics"
)

// DefaultInterval is the time between probe rounds.
const DefaultInterval = 60 * time.Second

// probeTimeout bounds a single probe.
const probeTimeout = 5 * time.Second

// Pinger is implemented by the progress store.
type Pinger interface {
	Ping() error
}

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	logger   *zap.Logger
}

// NewChecker creates a checker with the store, data_dir and leaderboard
// probes. A nil board skips the leaderboard probe.
func NewChecker(store Pinger, dataDir string, board domain.Leaderboard, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	checks := []Check{
		{
			Name: "store",
			CheckFn: func(ctx context.Context) error {
				return store.Ping()
			},
		},
		{
			Name: "data_dir",
			CheckFn: func(ctx context.Context) error {
				return checkWritableDir(dataDir)
			},
			RecoverFn: func(ctx context.Context) error {
				return os.MkdirAll(dataDir, 0700)
			},
		},
	}
	if board != nil {
		checks = append(checks, Check{
			Name: "leaderboard",
			CheckFn: func(ctx context.Context) error {
				_, err := board.Top(ctx, 1)
				return err
			},
		})
	}
	return &Checker{
		interval: DefaultInterval,
		checks:   checks,
		logger:   logger.Named("health"),
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce executes every check and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := check.CheckFn(pctx)
		cancel()
		if err != nil {
			s.Error = err.Error()
			metrics.HealthCheckFailures.WithLabelValues(check.Name).Inc()
			c.logger.Warn("health check failed", zap.String("check", check.Name), zap.Error(err))
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.logger.Warn("recovery failed", zap.String("check", check.Name), zap.Error(rerr))
				}
			}
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
