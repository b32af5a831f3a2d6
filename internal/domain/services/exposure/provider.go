// Package exposure checks emails, phone numbers and passwords against
// breach-record providers and normalizes what they return.
package exposure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shadowcleaner/internal/domain/models"
)

var (
	// ErrRateLimited is returned when a provider signals throttling. It is
	// never retried internally so that callers can back off.
	ErrRateLimited = errors.New("breach provider rate limited")
	// ErrProviderUnavailable covers transport failures, auth failures and
	// unexpected responses.
	ErrProviderUnavailable = errors.New("breach provider unavailable")
	// ErrNotConfigured means the provider has no credentials.
	ErrNotConfigured = errors.New("breach provider credentials not configured")
)

// BreachProvider looks up breach records for a normalized identifier.
type BreachProvider interface {
	Name() string
	Lookup(ctx context.Context, kind models.ExposureKind, value string) ([]models.Breach, error)
}

// statusError maps a non-success HTTP status onto the provider error taxonomy.
func statusError(provider string, code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", provider, ErrRateLimited)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: invalid API key: %w", provider, ErrProviderUnavailable)
	default:
		return fmt.Errorf("%s: API returned status %d: %w", provider, code, ErrProviderUnavailable)
	}
}
