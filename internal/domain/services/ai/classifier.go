// Package ai provides message classifiers backed by hosted language models,
// a rule-based equivalent, and a wrapper that normalizes every failure into
// a deterministic default.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// ErrMalformedResponse is returned when a model reply cannot be parsed into
// a classification.
var ErrMalformedResponse = errors.New("malformed classification response")

// Classifier labels a single message. Implementations may fail; wrap them
// in Fallback before handing them to the rest of the pipeline.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, req models.ClassificationRequest) (models.ClassificationResult, error)
}

// Config selects and configures a classifier backend
type Config struct {
	Mode         string // rules or ai
	Provider     string // gemini, claude or openai
	GeminiAPIKey string
	ClaudeAPIKey string
	OpenAIAPIKey string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// New builds the classifier selected by cfg.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Classifier, error) {
	if !strings.EqualFold(cfg.Mode, "ai") {
		return NewRuleClassifier(), nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiClassifier(ctx, GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}, log)
	case "claude", "openai":
		model := cfg.Model
		if strings.HasPrefix(model, "gemini") {
			model = ""
		}
		return NewLLMClassifier(LLMConfig{
			Provider:     strings.ToLower(cfg.Provider),
			ClaudeAPIKey: cfg.ClaudeAPIKey,
			OpenAIAPIKey: cfg.OpenAIAPIKey,
			Model:        model,
			Temperature:  cfg.Temperature,
			MaxTokens:    cfg.MaxTokens,
			Timeout:      cfg.Timeout,
		}, log), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
}
