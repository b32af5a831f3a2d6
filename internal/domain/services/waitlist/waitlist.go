// Package waitlist manages early-access sign-ups.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

var (
	// ErrInvalidEmail is returned for empty or malformed addresses.
	ErrInvalidEmail = errors.New("valid email is required")
	// ErrInvalidSource is returned for an unknown sign-up source.
	ErrInvalidSource = errors.New("invalid waitlist source")
)

// Repository persists sign-ups.
type Repository interface {
	// Add stores entry unless its email is already present. It returns the
	// stored entry with Position set and whether it was newly created.
	Add(ctx context.Context, entry models.WaitlistEntry) (models.WaitlistEntry, bool, error)
	Count(ctx context.Context) (int, error)
}

// Store is the waitlist service.
type Store struct {
	repo   Repository
	now    func() time.Time
	logger *logger.Logger
}

// NewStore creates a waitlist over repo. A nil clock uses time.Now.
func NewStore(repo Repository, now func() time.Time, log *logger.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		repo:   repo,
		now:    now,
		logger: log.WithComponent("waitlist"),
	}
}

// Join adds email to the waitlist. Joining twice is not an error; the
// original position is reported.
func (s *Store) Join(ctx context.Context, email string, source models.WaitlistSource) (models.WaitlistJoinResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return models.WaitlistJoinResult{}, ErrInvalidEmail
	}
	if source == "" {
		source = models.WaitlistShadowCleaner
	}
	if !source.IsValid() {
		return models.WaitlistJoinResult{}, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	stored, created, err := s.repo.Add(ctx, models.WaitlistEntry{
		ID:           uuid.NewString(),
		Email:        email,
		Timestamp:    s.now(),
		Source:       source,
		ReferralCode: ReferralCode(email),
	})
	if err != nil {
		return models.WaitlistJoinResult{}, fmt.Errorf("failed to join waitlist: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return models.WaitlistJoinResult{}, fmt.Errorf("failed to count waitlist: %w", err)
	}

	result := models.WaitlistJoinResult{
		Success:       true,
		Position:      stored.Position,
		TotalWaitlist: total,
		ReferralCode:  stored.ReferralCode,
		AlreadyJoined: !created,
	}
	if created {
		result.Message = fmt.Sprintf("You're #%d on the waitlist!", stored.Position)
		s.logger.Info().Int("position", stored.Position).Str("source", string(source)).Msg("waitlist sign-up")
	} else {
		result.Message = "You're already on the waitlist!"
	}
	return result, nil
}

// Total returns the number of sign-ups.
func (s *Store) Total(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// ReferralCode derives a short code from an email with the 31-multiplier
// string hash over UTF-16 code units. The left shift wraps to 32 bits while
// the running sum does not.
func ReferralCode(email string) string {
	var acc int64
	for _, unit := range utf16.Encode([]rune(email)) {
		shifted := int32(int32(uint32(acc)) << 5)
		acc = int64(unit) + int64(shifted) - acc
	}
	if acc < 0 {
		acc = -acc
	}
	code := strings.ToUpper(strconv.FormatInt(acc, 36))
	if len(code) > 6 {
		code = code[:6]
	}
	return code
}
