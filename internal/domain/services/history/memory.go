package history

import (
	"context"
	"sync"

	"shadowcleaner/internal/domain/models"
)

// MemoryBackend keeps history in process memory. Writes are serialized.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries []models.ScanHistoryEntry
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Prepend(_ context.Context, entry models.ScanHistoryEntry, max int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]models.ScanHistoryEntry, 0, len(m.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, m.entries...)
	if len(entries) > max {
		entries = entries[:max]
	}
	m.entries = entries
	return nil
}

func (m *MemoryBackend) List(_ context.Context) ([]models.ScanHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ScanHistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}
