package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/infrastructure/cache"
)

// listStore is the subset of cache.RedisCache the backend needs.
type listStore interface {
	PushCapped(ctx context.Context, key, value string, max int64) error
	ListAll(ctx context.Context, key string) ([]string, error)
	ListRemove(ctx context.Context, key, value string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
}

// RedisBackend stores history as a capped redis list of JSON entries.
type RedisBackend struct {
	cache listStore
	key   string
	mu    sync.Mutex
}

// NewRedisBackend creates a backend under the shared history key.
func NewRedisBackend(c *cache.RedisCache) *RedisBackend {
	return &RedisBackend{cache: c, key: cache.KeyHistory}
}

func (r *RedisBackend) Prepend(ctx context.Context, entry models.ScanHistoryEntry, max int) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.PushCapped(ctx, r.key, string(data), int64(max))
}

func (r *RedisBackend) List(ctx context.Context) ([]models.ScanHistoryEntry, error) {
	raw, err := r.cache.ListAll(ctx, r.key)
	if err != nil {
		return nil, err
	}
	entries := make([]models.ScanHistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e models.ScanHistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *RedisBackend) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.cache.ListAll(ctx, r.key)
	if err != nil {
		return err
	}
	for _, item := range raw {
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal([]byte(item), &head) != nil || head.ID != id {
			continue
		}
		removed, err := r.cache.ListRemove(ctx, r.key, item)
		if err != nil {
			return err
		}
		// Another instance may have evicted it since ListAll.
		if removed == 0 {
			return ErrNotFound
		}
		return nil
	}
	return ErrNotFound
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	return r.cache.Delete(ctx, r.key)
}
