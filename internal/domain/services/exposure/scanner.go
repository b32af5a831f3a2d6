package exposure

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

var phoneSeparators = regexp.MustCompile(`[\s\-\(\)]`)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips whitespace, dashes and parentheses.
func NormalizePhone(phone string) string {
	return phoneSeparators.ReplaceAllString(phone, "")
}

// Scanner produces exposure reports for emails and phone numbers.
type Scanner struct {
	provider BreachProvider
	logger   *logger.Logger
}

// NewScanner creates a scanner over the given provider chain.
func NewScanner(provider BreachProvider, log *logger.Logger) *Scanner {
	return &Scanner{
		provider: provider,
		logger:   log.WithComponent("exposure-scanner"),
	}
}

// CheckEmail looks up a normalized email.
//
// A nil report with a nil error means the exposure is unknown: the provider
// failed and the email is left out of the scan. Missing credentials degrade
// to an empty low-severity report. ErrRateLimited is returned as an error.
func (s *Scanner) CheckEmail(ctx context.Context, email string) (*models.ExposureReport, error) {
	normalized := NormalizeEmail(email)

	breaches, err := s.provider.Lookup(ctx, models.ExposureEmail, normalized)
	switch {
	case err == nil:
	case errors.Is(err, ErrRateLimited):
		return nil, err
	case errors.Is(err, ErrNotConfigured):
		s.logger.Warn().Msg("breach provider not configured, reporting email as clean")
		breaches = nil
	default:
		s.logger.Error().Err(err).Str("email", MaskEmail(normalized)).Msg("email exposure check failed")
		return nil, nil
	}

	report := models.NewExposureReport(models.ExposureEmail, normalized, breaches)
	s.logger.Debug().
		Str("email", MaskEmail(normalized)).
		Int("breaches", report.TotalBreaches).
		Str("severity", string(report.Severity)).
		Msg("email exposure checked")
	return report, nil
}

// CheckPhone looks up a normalized phone number. Every provider failure
// except throttling degrades to an empty low-severity report, so a phone
// input always produces a report.
func (s *Scanner) CheckPhone(ctx context.Context, phone string) (*models.ExposureReport, error) {
	normalized := NormalizePhone(phone)

	breaches, err := s.provider.Lookup(ctx, models.ExposurePhone, normalized)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		s.logger.Warn().Err(err).Str("phone", MaskPhone(normalized)).Msg("phone exposure check degraded")
		breaches = nil
	}

	report := models.NewExposureReport(models.ExposurePhone, normalized, breaches)
	report.Region = PhoneRegion(normalized)
	return report, nil
}

// Check dispatches on kind.
func (s *Scanner) Check(ctx context.Context, kind models.ExposureKind, value string) (*models.ExposureReport, error) {
	if kind == models.ExposurePhone {
		return s.CheckPhone(ctx, value)
	}
	return s.CheckEmail(ctx, value)
}

// PhoneRegion returns the ISO region of an E.164 number, or "" when the
// number carries no country code or does not parse.
func PhoneRegion(phone string) string {
	if !strings.HasPrefix(phone, "+") {
		return ""
	}
	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return ""
	}
	region := phonenumbers.GetRegionCodeForNumber(num)
	if region == "ZZ" {
		return ""
	}
	return region
}
