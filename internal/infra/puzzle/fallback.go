package puzzle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/domain"
	"github.com/logicalx/logicalx/internal/infra/metrics"
)

// FallbackPuzzle returns the fixed puzzle served when generation fails.
func FallbackPuzzle() *domain.Puzzle {
	return &domain.Puzzle{
		ID:                 "fallback-1",
		Difficulty:         domain.Beginner,
		Type:               domain.PuzzleLogic,
		Question:           "The API seems tired. What is 2 + 2 in JavaScript string concatenation '2' + '2'?",
		Options:            []string{"4", "22", "NaN", "Error"},
		CorrectAnswerIndex: 1,
		Explanation:        "In JS, the + operator concatenates strings.",
		XPReward:           10,
	}
}

// FallbackProvider wraps a provider and serves FallbackPuzzle whenever the
// wrapped provider fails. Cancellation by the caller is still returned as
// an error.
type FallbackProvider struct {
	inner  domain.PuzzleProvider
	logger *zap.Logger
}

// NewFallbackProvider wraps inner.
func NewFallbackProvider(inner domain.PuzzleProvider, logger *zap.Logger) *FallbackProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackProvider{inner: inner, logger: logger.Named("fallback")}
}

// RequestPuzzle implements domain.PuzzleProvider.
func (f *FallbackProvider) RequestPuzzle(ctx context.Context, difficulty domain.Difficulty, kind domain.PuzzleType) (*domain.Puzzle, error) {
	p, err := f.inner.RequestPuzzle(ctx, difficulty, kind)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil, err
	}

	f.logger.Warn("puzzle generation failed, serving fallback",
		zap.String("difficulty", string(difficulty)),
		zap.Error(err))
	metrics.PuzzleFallbacks.Inc()
	return FallbackPuzzle(), nil
}
