package exposure

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"shadowcleaner/internal/domain/models"
)

// PacedProvider spaces consecutive provider calls so a burst of lookups
// stays under the upstream quota.
type PacedProvider struct {
	inner   BreachProvider
	limiter *rate.Limiter
}

// NewPacedProvider allows one call per interval. A zero interval disables pacing.
func NewPacedProvider(inner BreachProvider, interval time.Duration) *PacedProvider {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &PacedProvider{inner: inner, limiter: rate.NewLimiter(limit, 1)}
}

// Name returns the wrapped provider's name.
func (p *PacedProvider) Name() string { return p.inner.Name() }

// Lookup waits for a pacing slot, then delegates.
func (p *PacedProvider) Lookup(ctx context.Context, kind models.ExposureKind, value string) ([]models.Breach, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Lookup(ctx, kind, value)
}
