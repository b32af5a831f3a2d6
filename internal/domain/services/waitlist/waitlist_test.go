package waitlist

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

func newTestStore() *Store {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewStore(NewMemoryRepository(), func() time.Time { return fixed }, logger.NewNop())
}

func TestJoin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	first, err := s.Join(ctx, "alice@example.com", "")
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 1, first.TotalWaitlist)
	assert.Equal(t, "You're #1 on the waitlist!", first.Message)
	assert.False(t, first.AlreadyJoined)
	assert.Equal(t, ReferralCode("alice@example.com"), first.ReferralCode)

	second, err := s.Join(ctx, "bob@example.com", models.WaitlistPostScan)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, 2, second.TotalWaitlist)
}

func TestJoinTwiceIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.Join(ctx, "alice@example.com", models.WaitlistHomepage)
	require.NoError(t, err)
	_, err = s.Join(ctx, "bob@example.com", models.WaitlistHomepage)
	require.NoError(t, err)

	again, err := s.Join(ctx, "  ALICE@Example.com ", models.WaitlistHomepage)
	require.NoError(t, err)
	assert.True(t, again.Success)
	assert.True(t, again.AlreadyJoined)
	assert.Equal(t, 1, again.Position)
	assert.Equal(t, 2, again.TotalWaitlist)
	assert.Equal(t, "You're already on the waitlist!", again.Message)

	total, err := s.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestJoinRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := s.Join(ctx, email, "")
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}

	_, err := s.Join(ctx, "a@b.c", "billboard")
	assert.ErrorIs(t, err, ErrInvalidSource)

	total, err := s.Total(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConcurrentJoinsGetDistinctPositions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	const n = 50
	positions := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.Join(ctx, fmt.Sprintf("user%d@example.com", i), "")
			assert.NoError(t, err)
			positions[i] = res.Position
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, p := range positions {
		assert.False(t, seen[p], "duplicate position %d", p)
		seen[p] = true
		assert.True(t, p >= 1 && p <= n)
	}
}

func TestReferralCode(t *testing.T) {
	assert.Equal(t, "21J7", ReferralCode("a@b"))
	assert.Equal(t, ReferralCode("someone.long@example.com"), ReferralCode("someone.long@example.com"))

	code := ReferralCode("someone.with.a.really.long.address@example.com")
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{1,6}$`), code)
	assert.NotEqual(t, ReferralCode("alice@example.com"), ReferralCode("bob@example.com"))
}
