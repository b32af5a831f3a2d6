package history

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/domain/models"
)

// fakeList mimics the redis list commands the backend issues. evictOnRemove
// drops the whole list right before LREM runs.
type fakeList struct {
	mu            sync.Mutex
	items         []string
	evictOnRemove bool
}

func (f *fakeList) PushCapped(_ context.Context, _, value string, max int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]string{value}, f.items...)
	if int64(len(f.items)) > max {
		f.items = f.items[:max]
	}
	return nil
}

func (f *fakeList) ListAll(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.items...), nil
}

func (f *fakeList) ListRemove(_ context.Context, _, value string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.evictOnRemove {
		f.items = nil
	}
	for i, item := range f.items {
		if item == value {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeList) Delete(_ context.Context, _ ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	return nil
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	list := &fakeList{}
	b := &RedisBackend{cache: list, key: "history"}

	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, b.Prepend(ctx, models.ScanHistoryEntry{ID: id}, 2))
	}

	entries, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e3", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)

	assert.ErrorIs(t, b.Delete(ctx, "e1"), ErrNotFound)
	require.NoError(t, b.Delete(ctx, "e2"))

	entries, err = b.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, b.Clear(ctx))
	entries, err = b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRedisBackendDeleteAfterConcurrentEviction(t *testing.T) {
	ctx := context.Background()
	list := &fakeList{}
	b := &RedisBackend{cache: list, key: "history"}
	require.NoError(t, b.Prepend(ctx, models.ScanHistoryEntry{ID: "e1"}, 10))

	list.evictOnRemove = true
	assert.ErrorIs(t, b.Delete(ctx, "e1"), ErrNotFound)
}
