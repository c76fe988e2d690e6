package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logicalx/logicalx/internal/api"
	"github.com/logicalx/logicalx/internal/app/engagement"
	"github.com/logicalx/logicalx/internal/domain"
	"github.com/logicalx/logicalx/internal/health"
	"github.com/logicalx/logicalx/internal/infra/leaderboard"
	"github.com/logicalx/logicalx/internal/infra/puzzle"
	"github.com/logicalx/logicalx/internal/infra/sqlite"
)

// Daemon is the core LogicalX runtime. It wires together all services.
type Daemon struct {
	Config   Config
	Logger   *zap.Logger
	DB       *sqlite.DB
	Provider domain.PuzzleProvider
	Board    domain.Leaderboard
	Session  *engagement.Session
	Health   *health.Checker
	Server   *api.Server

	closers []func() error
}

// New loads the configuration and creates a Daemon.
func New(ctx context.Context, logger *zap.Logger) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg, logger)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(ctx context.Context, cfg Config, logger *zap.Logger) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Daemon{Config: cfg, Logger: logger}

	if err := os.MkdirAll(cfg.Storage.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.DB = db
	d.closers = append(d.closers, db.Close)

	d.Provider, err = newProvider(ctx, cfg.Puzzles, logger)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.Board, err = d.newLeaderboard(ctx, cfg.Leaderboard)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.Session = engagement.NewSession(db, engagement.SessionOptions{
		Provider:    d.Provider,
		Leaderboard: d.Board,
		Logger:      logger,
		RetainDays:  cfg.Tasks.RetainDays,
	})
	if err := d.Session.Start(); err != nil {
		d.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}

	d.Health = health.NewChecker(db, cfg.Storage.Dir, d.Board, logger)

	d.Server = api.NewServer(d.Session, d.Board, logger)
	d.Server.SetHealth(d.Health)
	d.Server.SetAllowedOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// newProvider builds the configured puzzle provider.
func newProvider(ctx context.Context, cfg PuzzlesConfig, logger *zap.Logger) (domain.PuzzleProvider, error) {
	var provider domain.PuzzleProvider
	switch name := cfg.PuzzleProvider(); name {
	case ProviderGemini:
		p, err := puzzle.NewGeminiProvider(ctx, puzzle.GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     parseDuration(cfg.Timeout, puzzle.DefaultTimeout),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		provider = p
	default:
		provider = puzzle.NewOfflineProvider()
	}
	logger.Info("puzzle provider ready",
		zap.String("provider", cfg.PuzzleProvider()),
		zap.Bool("fallback", cfg.Fallback))

	if cfg.Fallback {
		provider = puzzle.NewFallbackProvider(provider, logger)
	}
	return provider, nil
}

// newLeaderboard builds the configured leaderboard backend.
func (d *Daemon) newLeaderboard(ctx context.Context, cfg LeaderboardConfig) (domain.Leaderboard, error) {
	var seed []leaderboard.Seed
	if cfg.SeedFile != "" {
		s, err := leaderboard.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("leaderboard seed: %w", err)
		}
		seed = s
	}

	if cfg.Backend != BoardRedis {
		return leaderboard.NewStaticBoard(seed), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	board, err := leaderboard.NewRedisBoard(ctx, leaderboard.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Key:      cfg.Redis.Key,
	}, seed, d.Logger)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, board.Close)
	return board, nil
}

// Serve starts the HTTP server and blocks until ctx is cancelled or a
// termination signal arrives.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Health.Run(gctx)
		return nil
	})
	g.Go(func() error {
		d.Logger.Info("serving",
			zap.String("addr", "http://"+addr),
			zap.Bool("metrics", d.Config.Telemetry.Prometheus))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		d.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Warn("close failed", zap.Error(err))
		}
	}
	d.closers = nil
}
