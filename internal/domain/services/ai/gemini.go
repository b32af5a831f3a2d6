package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// GeminiConfig configures the Gemini backed classifier
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// GeminiClassifier classifies messages with Google Gemini.
type GeminiClassifier struct {
	client *genai.Client
	config GeminiConfig
	logger *logger.Logger
}

// NewGeminiClassifier creates a Gemini API client.
func NewGeminiClassifier(ctx context.Context, cfg GeminiConfig, log *logger.Logger) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash-exp"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		config: cfg,
		logger: log.WithComponent("gemini-classifier"),
	}, nil
}

// Name implements Classifier.
func (g *GeminiClassifier) Name() string { return "gemini" }

// Classify implements Classifier.
func (g *GeminiClassifier) Classify(ctx context.Context, req models.ClassificationRequest) (models.ClassificationResult, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.config.Temperature)),
		MaxOutputTokens:   int32(g.config.MaxTokens),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(buildPrompt(req)), config)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("gemini request failed: %w", err)
	}

	return parseResponse(resp.Text())
}
