// Package history keeps a bounded, newest-first list of saved scans and
// derives comparisons between them.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// DefaultMaxEntries is how many scans are kept when no limit is configured.
const DefaultMaxEntries = 10

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("scan history entry not found")

// Backend persists entries. Prepend must keep at most max entries, newest
// first, evicting the oldest.
type Backend interface {
	Prepend(ctx context.Context, entry models.ScanHistoryEntry, max int) error
	List(ctx context.Context) ([]models.ScanHistoryEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Store is the scan history service.
type Store struct {
	backend    Backend
	maxEntries int
	now        func() time.Time
	newID      func() string
	logger     *logger.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates a history store. maxEntries below one falls back to
// DefaultMaxEntries.
func NewStore(backend Backend, maxEntries int, log *logger.Logger, opts ...Option) *Store {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	s := &Store{
		backend:    backend,
		maxEntries: maxEntries,
		now:        time.Now,
		newID:      func() string { return "scan-" + uuid.NewString() },
		logger:     log.WithComponent("scan-history"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxEntries returns the retention limit.
func (s *Store) MaxEntries() int { return s.maxEntries }

// Save stores scan as the newest entry. Eviction of the oldest entry is
// silent.
func (s *Store) Save(ctx context.Context, scan models.ScanResponse) (models.ScanHistoryEntry, error) {
	entry := models.ScanHistoryEntry{
		ScanResponse: scan,
		ID:           s.newID(),
		SavedAt:      s.now(),
	}
	if err := s.backend.Prepend(ctx, entry, s.maxEntries); err != nil {
		return models.ScanHistoryEntry{}, fmt.Errorf("failed to save scan: %w", err)
	}
	s.logger.Debug().Str("entry_id", entry.ID).Str("scan_id", scan.ScanID).Msg("scan saved to history")
	return entry, nil
}

// List returns saved entries, newest first.
func (s *Store) List(ctx context.Context) ([]models.ScanHistoryEntry, error) {
	entries, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if entries == nil {
		entries = []models.ScanHistoryEntry{}
	}
	return entries, nil
}

// Latest returns the newest entry.
func (s *Store) Latest(ctx context.Context) (models.ScanHistoryEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return models.ScanHistoryEntry{}, err
	}
	if len(entries) == 0 {
		return models.ScanHistoryEntry{}, ErrNotFound
	}
	return entries[0], nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (models.ScanHistoryEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return models.ScanHistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.ScanHistoryEntry{}, ErrNotFound
}

// Compare diffs current against the most recent other entry in the store.
func (s *Store) Compare(ctx context.Context, current models.ScanHistoryEntry) (models.ScanComparison, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return models.ScanComparison{}, err
	}
	return Compare(current, entries), nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, id)
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Compare diffs current against the first entry in history (newest first)
// whose id differs. Threats match by contact name and exposures by value.
// With no previous entry everything in current counts as new.
func Compare(current models.ScanHistoryEntry, history []models.ScanHistoryEntry) models.ScanComparison {
	cur := current
	cmp := models.ScanComparison{Current: &cur}

	var previous *models.ScanHistoryEntry
	for i := range history {
		if history[i].ID != current.ID {
			prev := history[i]
			previous = &prev
			break
		}
	}

	if previous == nil {
		cmp.NewThreats = len(current.Threats)
		cmp.NewExposures = len(current.Exposures)
		return cmp
	}

	cmp.Previous = previous
	cmp.ScoreDelta = current.ShadowScore.Score - previous.ShadowScore.Score

	prevContacts := contactNames(previous.Threats)
	curContacts := contactNames(current.Threats)
	for _, t := range current.Threats {
		if !prevContacts[t.ContactName] {
			cmp.NewThreats++
		}
	}
	for _, t := range previous.Threats {
		if !curContacts[t.ContactName] {
			cmp.ResolvedThreats++
		}
	}

	prevValues := make(map[string]bool, len(previous.Exposures))
	for _, e := range previous.Exposures {
		prevValues[e.Value] = true
	}
	for _, e := range current.Exposures {
		if !prevValues[e.Value] {
			cmp.NewExposures++
		}
	}

	return cmp
}

func contactNames(threats []models.ThreatDetection) map[string]bool {
	names := make(map[string]bool, len(threats))
	for _, t := range threats {
		names[t.ContactName] = true
	}
	return names
}
