// Package cache wraps the redis client used for exposure caching, scan
// history and API rate limiting.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shadowcleaner/internal/config"
	"shadowcleaner/pkg/logger"
)

// ErrMiss is returned by the typed getters when a key does not exist.
var ErrMiss = errors.New("cache miss")

// Key namespaces
const (
	KeyRateLimitPrefix = "rate_limit:"
	KeyHistory         = "history:scans"
)

// RedisCache wraps the Redis client with typed operations
type RedisCache struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Client returns the underlying Redis client
func (c *RedisCache) Client() redis.UniversalClient {
	return c.client
}

// Ping checks connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// GetJSON retrieves and unmarshals a JSON value from cache
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Set stores a value in cache with optional TTL
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// SetJSON marshals and stores a value in cache
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, string(data), ttl)
}

// Delete removes keys from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixedKeys := make([]string, len(keys))
	for i, k := range keys {
		prefixedKeys[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixedKeys...).Err()
}

// PushCapped prepends value to a list and trims it to max entries in one
// transaction.
func (c *RedisCache) PushCapped(ctx context.Context, key, value string, max int64) error {
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, c.key(key), value)
	pipe.LTrim(ctx, c.key(key), 0, max-1)
	_, err := pipe.Exec(ctx)
	return err
}

// ListAll returns every element of a list, head first.
func (c *RedisCache) ListAll(ctx context.Context, key string) ([]string, error) {
	return c.client.LRange(ctx, c.key(key), 0, -1).Result()
}

// ListRemove removes the first occurrence of value and reports how many
// elements were removed.
func (c *RedisCache) ListRemove(ctx context.Context, key, value string) (int64, error) {
	return c.client.LRem(ctx, c.key(key), 1, value).Result()
}

// CheckRateLimit checks and increments a fixed-window counter.
// Returns (allowed, remaining, resetTime, error)
func (c *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	windowSecs := int64(window.Seconds())
	if windowSecs < 1 {
		windowSecs = 1
	}
	bucket := now.Unix() / windowSecs
	windowKey := fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, key, bucket)

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, c.key(windowKey))
	pipe.Expire(ctx, c.key(windowKey), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := time.Unix((bucket+1)*windowSecs, 0)

	return count <= limit, remaining, resetTime, nil
}
