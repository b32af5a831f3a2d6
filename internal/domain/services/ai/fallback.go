package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/classifier"
	"shadowcleaner/pkg/logger"
)

var _ classifier.Advisor = (*Fallback)(nil)

// UnavailableIndicator marks results produced by the fallback path.
const UnavailableIndicator = "classification unavailable"

// Fallback wraps a Classifier so that callers always get a result. Calls
// are paced by a shared limiter.
type Fallback struct {
	inner   Classifier
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewFallback allows one inner call per interval. A zero interval disables pacing.
func NewFallback(inner Classifier, interval time.Duration, log *logger.Logger) *Fallback {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Fallback{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log.WithComponent("ai-fallback"),
	}
}

// Name returns the wrapped classifier's name.
func (f *Fallback) Name() string { return f.inner.Name() }

// Classify never fails. Transport failures yield spam at 0.5 and
// unparsable replies yield spam at 0.3, both marked Degraded.
func (f *Fallback) Classify(ctx context.Context, req models.ClassificationRequest) models.ClassificationResult {
	if err := f.limiter.Wait(ctx); err != nil {
		return transportDefault()
	}

	result, err := f.inner.Classify(ctx, req)
	switch {
	case err == nil:
		return result
	case errors.Is(err, ErrMalformedResponse):
		f.logger.Warn().Err(err).Str("classifier", f.inner.Name()).Msg("failed to parse classification")
		return parseDefault()
	default:
		f.logger.WithError(err).Error().Str("classifier", f.inner.Name()).Msg("classification failed")
		return transportDefault()
	}
}

// ClassifyBatch classifies each request in order. A failed item gets its
// default and the batch continues.
func (f *Fallback) ClassifyBatch(ctx context.Context, reqs []models.ClassificationRequest) []models.ClassificationResult {
	results := make([]models.ClassificationResult, len(reqs))
	for i, req := range reqs {
		results[i] = f.Classify(ctx, req)
	}
	return results
}

func transportDefault() models.ClassificationResult {
	return models.ClassificationResult{
		Classification: models.ClassSpam,
		Confidence:     0.5,
		Indicators:     []string{UnavailableIndicator},
		Reasoning:      "Using fallback classification due to AI error",
		Degraded:       true,
	}
}

func parseDefault() models.ClassificationResult {
	return models.ClassificationResult{
		Classification: models.ClassSpam,
		Confidence:     0.3,
		Indicators:     []string{UnavailableIndicator},
		Reasoning:      "Classification failed, defaulting to spam",
		Degraded:       true,
	}
}
