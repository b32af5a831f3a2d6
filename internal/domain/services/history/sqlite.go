package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"shadowcleaner/internal/domain/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scan_history (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	id       TEXT NOT NULL UNIQUE,
	scan_id  TEXT NOT NULL,
	saved_at TEXT NOT NULL,
	payload  TEXT NOT NULL
)`

// SQLiteBackend keeps history in a local SQLite file, so the CLI can compare
// against scans from earlier runs.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens or creates the history database at path.
func OpenSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// one writer keeps Prepend's insert and eviction atomic
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

func (s *SQLiteBackend) Prepend(ctx context.Context, entry models.ScanHistoryEntry, max int) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_history (id, scan_id, saved_at, payload) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.ScanID, entry.SavedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"), string(payload),
	); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scan_history WHERE seq NOT IN (SELECT seq FROM scan_history ORDER BY seq DESC LIMIT ?)`,
		max,
	); err != nil {
		return fmt.Errorf("failed to evict old entries: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteBackend) List(ctx context.Context) ([]models.ScanHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM scan_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ScanHistoryEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		var e models.ScanHistoryEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteBackend) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scan_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scan_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
