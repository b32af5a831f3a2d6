package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// LLMConfig holds configuration for the Claude and OpenAI classifiers
type LLMConfig struct {
	Provider     string // claude, openai
	ClaudeAPIKey string
	OpenAIAPIKey string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	ClaudeURL    string
	OpenAIURL    string
}

// LLMClassifier classifies messages through the Claude or OpenAI HTTP APIs
type LLMClassifier struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     LLMConfig
}

// NewLLMClassifier creates a new LLM backed classifier
func NewLLMClassifier(cfg LLMConfig, log *logger.Logger) *LLMClassifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3 // Low temperature for stable labels
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Model == "" {
		if cfg.Provider == "claude" {
			cfg.Model = "claude-3-5-haiku-latest"
		} else {
			cfg.Model = "gpt-4o-mini"
		}
	}
	if cfg.ClaudeURL == "" {
		cfg.ClaudeURL = "https://api.anthropic.com/v1/messages"
	}
	if cfg.OpenAIURL == "" {
		cfg.OpenAIURL = "https://api.openai.com/v1/chat/completions"
	}

	return &LLMClassifier{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("llm-classifier"),
		config: cfg,
	}
}

// Name implements Classifier.
func (c *LLMClassifier) Name() string { return c.config.Provider }

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, req models.ClassificationRequest) (models.ClassificationResult, error) {
	var (
		content string
		err     error
	)

	prompt := buildPrompt(req)
	switch c.config.Provider {
	case "claude":
		content, err = c.callClaude(ctx, prompt)
	case "openai":
		content, err = c.callOpenAI(ctx, prompt)
	default:
		return models.ClassificationResult{}, fmt.Errorf("unsupported LLM provider: %s", c.config.Provider)
	}
	if err != nil {
		return models.ClassificationResult{}, err
	}

	return parseResponse(content)
}

// callClaude makes a request to the Claude messages API
func (c *LLMClassifier) callClaude(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"system":      systemPrompt,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
	}

	body, err := c.post(ctx, c.config.ClaudeURL, reqBody, map[string]string{
		"x-api-key":         c.config.ClaudeAPIKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}

	var claudeResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var content string
	for _, part := range claudeResp.Content {
		if part.Type == "text" {
			content += part.Text
		}
	}
	return content, nil
}

// callOpenAI makes a request to the OpenAI chat completions API
func (c *LLMClassifier) callOpenAI(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
	}

	body, err := c.post(ctx, c.config.OpenAIURL, reqBody, map[string]string{
		"Authorization": "Bearer " + c.config.OpenAIAPIKey,
	})
	if err != nil {
		return "", fmt.Errorf("openai api: %w", err)
	}

	var openAIResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in OpenAI response", ErrMalformedResponse)
	}
	return openAIResp.Choices[0].Message.Content, nil
}

func (c *LLMClassifier) post(ctx context.Context, url string, payload interface{}, headers map[string]string) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
