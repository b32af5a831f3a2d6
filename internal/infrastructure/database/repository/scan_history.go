package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/history"
	"shadowcleaner/internal/infrastructure/database"
)

// ScanHistoryRepository handles saved scan persistence
type ScanHistoryRepository struct {
	db *database.PostgresDB
}

// NewScanHistoryRepository creates a new scan history repository
func NewScanHistoryRepository(db *database.PostgresDB) *ScanHistoryRepository {
	return &ScanHistoryRepository{db: db}
}

var _ history.Backend = (*ScanHistoryRepository)(nil)

// Prepend inserts entry and evicts everything beyond the newest max rows.
// The table lock serializes writers so eviction sees a stable order.
func (r *ScanHistoryRepository) Prepend(ctx context.Context, entry models.ScanHistoryEntry, max int) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal scan history entry: %w", err)
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE scan_history IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock scan history: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO scan_history (id, scan_id, score, saved_at, payload)
			VALUES ($1, $2, $3, $4, $5)`,
			entry.ID, entry.ScanID, entry.ShadowScore.Score, entry.SavedAt, payload,
		)
		if err != nil {
			return fmt.Errorf("failed to insert scan history entry: %w", err)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM scan_history
			WHERE seq NOT IN (
				SELECT seq FROM scan_history ORDER BY seq DESC LIMIT $1
			)`, max)
		if err != nil {
			return fmt.Errorf("failed to evict scan history: %w", err)
		}
		return nil
	})
}

// List returns entries newest first
func (r *ScanHistoryRepository) List(ctx context.Context) ([]models.ScanHistoryEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT payload FROM scan_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan history: %w", err)
	}
	defer rows.Close()

	entries := []models.ScanHistoryEntry{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan scan history row: %w", err)
		}
		var e models.ScanHistoryEntry
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to decode scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan history: %w", err)
	}

	return entries, nil
}

// Delete removes an entry by id
func (r *ScanHistoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM scan_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return history.ErrNotFound
	}
	return nil
}

// Clear removes every entry
func (r *ScanHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM scan_history`); err != nil {
		return fmt.Errorf("failed to clear scan history: %w", err)
	}
	return nil
}
