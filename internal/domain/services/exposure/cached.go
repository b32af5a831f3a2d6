package exposure

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// JSONCache is the subset of the redis cache used for breach results.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedProvider memoizes successful lookups. Failures are never cached.
type CachedProvider struct {
	inner  BreachProvider
	cache  JSONCache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps inner with a JSON cache.
func NewCachedProvider(inner BreachProvider, cache JSONCache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("exposure-cache"),
	}
}

// Name returns the wrapped provider's name.
func (c *CachedProvider) Name() string { return c.inner.Name() }

// Lookup implements BreachProvider.
func (c *CachedProvider) Lookup(ctx context.Context, kind models.ExposureKind, value string) ([]models.Breach, error) {
	key := c.cacheKey(kind, value)

	var cached []models.Breach
	if err := c.cache.GetJSON(ctx, key, &cached); err == nil && cached != nil {
		c.logger.Debug().Str("kind", string(kind)).Msg("exposure cache hit")
		return cached, nil
	}

	breaches, err := c.inner.Lookup(ctx, kind, value)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, breaches, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache exposure result")
	}
	return breaches, nil
}

// cacheKey hashes the identifier so raw emails and phone numbers never
// appear in cache keys.
func (c *CachedProvider) cacheKey(kind models.ExposureKind, value string) string {
	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("exposure:%s:%s:%s", c.inner.Name(), kind, hex.EncodeToString(sum[:])[:32])
}
