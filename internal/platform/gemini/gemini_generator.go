package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/summarizer-api/internal/config"
	"github.com/phrazzld/summarizer-api/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the adapter uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Observer receives the duration and outcome of each API call.
type Observer interface {
	GenerationObserved(elapsed time.Duration, err error)
}

// GeminiGenerator implements generation.Generator using the Gemini API.
type GeminiGenerator struct {
	logger   *slog.Logger
	models   contentGenerator
	model    string
	observer Observer
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator with a live Gemini client.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg.ModelName), nil
}

func newGenerator(logger *slog.Logger, models contentGenerator, model string) *GeminiGenerator {
	return &GeminiGenerator{
		logger: logger.With("component", "gemini_generator", "model", model),
		models: models,
		model:  model,
	}
}

// SetObserver installs a call observer, typically for metrics.
func (g *GeminiGenerator) SetObserver(o Observer) {
	g.observer = o
}

// Generate sends prompt to the model and returns the concatenated text of
// the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts generation.Options) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", generation.ErrEmptyPrompt
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxOutputTokens)
	}

	g.logger.DebugContext(ctx, "calling Gemini API",
		"prompt_length", len(prompt),
		"temperature", opts.Temperature,
		"max_output_tokens", opts.MaxOutputTokens)

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		cfg,
	)
	text, err := extractText(resp, err)
	elapsed := time.Since(start)

	if g.observer != nil {
		g.observer.GenerationObserved(elapsed, err)
	}

	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"error", err,
			"elapsed", elapsed)
		return "", err
	}

	g.logger.InfoContext(ctx, "Gemini API call successful",
		"response_length", len(text),
		"elapsed", elapsed)
	return text, nil
}

// extractText maps an API call outcome to text or a generation error.
func extractText(resp *genai.GenerateContentResponse, err error) (string, error) {
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return text, nil
}
