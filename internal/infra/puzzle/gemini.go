// Package puzzle provides domain.PuzzleProvider implementations: a Gemini
// client that generates fresh puzzles, a built-in offline bank and a
// wrapper that degrades to a fixed fallback puzzle on errors.
package puzzle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/logicalx/logicalx/internal/domain"
)

// Defaults for the Gemini provider.
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.8
	DefaultTimeout     = 30 * time.Second
)

const systemInstruction = "You are a senior computer science professor creating curriculum for developers. " +
	"Focus on clarity, accuracy, and educational value."

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// textGenerator returns a JSON document for a prompt.
type textGenerator interface {
	generateJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiProvider generates puzzles with the Gemini API.
type GeminiProvider struct {
	gen     textGenerator
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiProvider creates a provider backed by a genai client.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiProvider(&genaiGenerator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, cfg.Timeout, logger), nil
}

func newGeminiProvider(gen textGenerator, timeout time.Duration, logger *zap.Logger) *GeminiProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiProvider{
		gen:     gen,
		timeout: timeout,
		logger:  logger.Named("gemini"),
	}
}

// RequestPuzzle asks the model for one puzzle. An empty kind picks a
// random puzzle type.
func (p *GeminiProvider) RequestPuzzle(ctx context.Context, difficulty domain.Difficulty, kind domain.PuzzleType) (*domain.Puzzle, error) {
	if kind == "" {
		kind = domain.PuzzleTypes[rand.IntN(len(domain.PuzzleTypes))]
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	raw, err := p.gen.generateJSON(ctx, buildPrompt(difficulty, kind))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	puzzle, err := parsePuzzle(raw, difficulty, kind)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("puzzle generated",
		zap.String("id", puzzle.ID),
		zap.String("difficulty", string(difficulty)),
		zap.String("type", string(kind)),
		zap.Duration("took", time.Since(start)))
	return puzzle, nil
}

// buildPrompt renders the generation prompt for a tier and type.
func buildPrompt(difficulty domain.Difficulty, kind domain.PuzzleType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a unique %s level logic puzzle for a programmer.\n", difficulty)
	fmt.Fprintf(&b, "The type of puzzle is: %s.\n\n", kind)
	b.WriteString("Context:\n")
	b.WriteString("- Beginner: Basic logic, simple loops, basic pattern recognition.\n")
	b.WriteString("- Intermediate: Data structures, recursion logic, complex patterns, boolean algebra.\n")
	b.WriteString("- Expert: Algorithm optimization logic, race conditions, complex system design riddles, obscure language quirks.\n\n")
	b.WriteString("Output strictly valid JSON.")
	return b.String()
}

// generatedPuzzle is the model's JSON payload.
type generatedPuzzle struct {
	Question           string   `json:"question"`
	CodeSnippet        string   `json:"codeSnippet"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// parsePuzzle decodes a model response and stamps id, tier, type and
// reward. Responses that break the puzzle shape are rejected.
func parsePuzzle(raw string, difficulty domain.Difficulty, kind domain.PuzzleType) (*domain.Puzzle, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrInvalidPuzzle)
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var g generatedPuzzle
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &g); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrInvalidPuzzle, err)
	}
	if g.CorrectAnswerIndex == nil {
		return nil, fmt.Errorf("%w: missing correctAnswerIndex", domain.ErrInvalidPuzzle)
	}

	p := &domain.Puzzle{
		ID:                 uuid.NewString(),
		Question:           g.Question,
		CodeSnippet:        g.CodeSnippet,
		Options:            g.Options,
		CorrectAnswerIndex: *g.CorrectAnswerIndex,
		Explanation:        g.Explanation,
		Difficulty:         difficulty,
		Type:               kind,
		XPReward:           difficulty.XPReward(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ─── genai Transport ────────────────────────────────────────────────────────

type genaiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// puzzleSchema constrains the model output to the puzzle payload.
var puzzleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"question": {Type: genai.TypeString, Description: "The puzzle question text."},
		"codeSnippet": {
			Type:        genai.TypeString,
			Description: "Optional code snippet if relevant (e.g. for CodeSnippet type).",
		},
		"options": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Array of 4 possible answers.",
		},
		"correctAnswerIndex": {Type: genai.TypeInteger, Description: "The index (0-3) of the correct answer."},
		"explanation":        {Type: genai.TypeString, Description: "A detailed explanation of why the answer is correct."},
	},
	Required: []string{"question", "options", "correctAnswerIndex", "explanation"},
}

func (g *genaiGenerator) generateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		ResponseSchema:    puzzleSchema,
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("no response from gemini")
	}
	return text, nil
}
