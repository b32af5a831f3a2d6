package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/waitlist"
	"shadowcleaner/internal/infrastructure/database"
)

// WaitlistRepository handles waitlist persistence
type WaitlistRepository struct {
	db *database.PostgresDB
}

// NewWaitlistRepository creates a new waitlist repository
func NewWaitlistRepository(db *database.PostgresDB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

var _ waitlist.Repository = (*WaitlistRepository)(nil)

// Add inserts entry unless the email already exists. Positions are the
// 1-based insertion order, so the insert and the position lookup share a
// table lock.
func (r *WaitlistRepository) Add(ctx context.Context, entry models.WaitlistEntry) (models.WaitlistEntry, bool, error) {
	var (
		stored  models.WaitlistEntry
		created bool
	)

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE waitlist IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock waitlist: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO waitlist (id, email, source, referral_code, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			entry.ID, entry.Email, string(entry.Source), entry.ReferralCode, entry.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert waitlist entry: %w", err)
		}
		created = tag.RowsAffected() == 1

		var source string
		err = tx.QueryRow(ctx, `
			SELECT w.id::text, w.email, w.source, w.referral_code, w.created_at,
			       (SELECT count(*) FROM waitlist p WHERE p.seq <= w.seq)
			FROM waitlist w
			WHERE w.email = $1`, entry.Email,
		).Scan(&stored.ID, &stored.Email, &source, &stored.ReferralCode, &stored.Timestamp, &stored.Position)
		if err != nil {
			return fmt.Errorf("failed to get waitlist entry: %w", err)
		}
		stored.Source = models.WaitlistSource(source)
		return nil
	})
	if err != nil {
		return models.WaitlistEntry{}, false, err
	}

	return stored, created, nil
}

// Count returns the number of sign-ups
func (r *WaitlistRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM waitlist`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count waitlist: %w", err)
	}
	return n, nil
}
