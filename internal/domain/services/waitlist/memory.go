package waitlist

import (
	"context"
	"sync"

	"shadowcleaner/internal/domain/models"
)

// MemoryRepository keeps sign-ups in process memory. It is owned by the
// process that creates it; there is no package-level state.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []models.WaitlistEntry
	byEmail map[string]int
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]int)}
}

func (m *MemoryRepository) Add(_ context.Context, entry models.WaitlistEntry) (models.WaitlistEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.byEmail[entry.Email]; ok {
		return m.entries[i], false, nil
	}
	entry.Position = len(m.entries) + 1
	m.byEmail[entry.Email] = len(m.entries)
	m.entries = append(m.entries, entry)
	return entry, true, nil
}

func (m *MemoryRepository) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
