// Package darkweb reports where a checked identifier has surfaced in leaked
// data sets.
package darkweb

import (
	"context"
	"sync"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/pkg/logger"
)

// Checker derives dark web findings from breach provider records.
type Checker struct {
	provider exposure.BreachProvider
	logger   *logger.Logger

	// Stats
	totalChecks   int64
	findingsFound int64
	failedChecks  int64
	statsMu       sync.RWMutex
}

// Stats summarizes checker activity since start
type Stats struct {
	TotalChecks   int64 `json:"totalChecks"`
	FindingsFound int64 `json:"findingsFound"`
	FailedChecks  int64 `json:"failedChecks"`
}

// NewChecker creates a dark web checker over a breach provider
func NewChecker(provider exposure.BreachProvider, log *logger.Logger) *Checker {
	return &Checker{
		provider: provider,
		logger:   log.WithComponent("darkweb-checker"),
	}
}

// Check looks up email and phone, skipping empty values. Provider failures
// drop that identifier's findings and are never returned.
func (c *Checker) Check(ctx context.Context, email, phone string) []models.DarkWebResult {
	results := []models.DarkWebResult{}

	if email != "" {
		results = append(results, c.lookup(ctx, models.ExposureEmail, exposure.NormalizeEmail(email))...)
	}
	if phone != "" {
		results = append(results, c.lookup(ctx, models.ExposurePhone, exposure.NormalizePhone(phone))...)
	}

	return results
}

func (c *Checker) lookup(ctx context.Context, kind models.ExposureKind, value string) []models.DarkWebResult {
	breaches, err := c.provider.Lookup(ctx, kind, value)

	c.statsMu.Lock()
	c.totalChecks++
	if err != nil {
		c.failedChecks++
	} else {
		c.findingsFound += int64(len(breaches))
	}
	c.statsMu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Str("kind", string(kind)).Msg("dark web lookup failed")
		return nil
	}

	results := make([]models.DarkWebResult, 0, len(breaches))
	for _, b := range breaches {
		results = append(results, fromBreach(b))
	}
	return results
}

// fromBreach converts a breach record. Leaked passwords or card data make
// a finding critical.
func fromBreach(b models.Breach) models.DarkWebResult {
	severity := models.SeverityMedium
	if b.HasDataClass("Passwords") || b.HasDataClass("Credit cards") {
		severity = models.SeverityCritical
	}

	source := b.Title
	if source == "" {
		source = b.Name
	}

	r := models.DarkWebResult{
		Source:    source,
		Type:      models.DarkWebBreach,
		DataFound: b.DataClasses,
		Severity:  severity,
	}
	if r.DataFound == nil {
		r.DataFound = []string{}
	}
	if t, ok := models.ParseBreachDate(b.BreachDate); ok {
		r.FirstSeen = &t
	}
	if b.Domain != "" {
		r.URL = "https://" + b.Domain
	}
	return r
}

// GetStats returns checker statistics
func (c *Checker) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return Stats{
		TotalChecks:   c.totalChecks,
		FindingsFound: c.findingsFound,
		FailedChecks:  c.failedChecks,
	}
}

// Recommendations returns guidance for a set of findings.
func Recommendations(results []models.DarkWebResult) []string {
	if len(results) == 0 {
		return []string{"No dark web exposure detected. Continue monitoring regularly."}
	}

	recs := []string{
		"Change passwords for all accounts using this email/phone immediately",
		"Enable two-factor authentication on all accounts",
		"Monitor your credit reports for suspicious activity",
		"Consider using a credit freeze",
		"Set up fraud alerts with credit bureaus",
	}

	for _, r := range results {
		if r.Severity == models.SeverityCritical {
			return append([]string{"🚨 CRITICAL: Your data is actively being traded. Contact your bank and credit card companies immediately."}, recs...)
		}
	}
	return recs
}
