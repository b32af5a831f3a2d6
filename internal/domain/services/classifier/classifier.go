// Package classifier turns contacts and messages into threat detections
// using the deterministic pattern rules, optionally consulting an external
// opinion for SMS content.
package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

// Advisor is an optional second opinion on a single message. Implementations
// must never fail: transport and parse problems are folded into a default
// result by the implementation itself.
type Advisor interface {
	Classify(ctx context.Context, req models.ClassificationRequest) models.ClassificationResult
}

// Classifier applies the per-channel rule sets.
type Classifier struct {
	advisor Advisor
	now     func() time.Time
	newID   func() string
	logger  *logger.Logger
}

// Option customises a Classifier
type Option func(*Classifier)

// WithAdvisor enables the per-message second opinion on the SMS channel.
func WithAdvisor(a Advisor) Option {
	return func(c *Classifier) { c.advisor = a }
}

// WithClock overrides the detection timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithIDGenerator overrides detection id generation.
func WithIDGenerator(gen func() string) Option {
	return func(c *Classifier) { c.newID = gen }
}

// New creates a rule-based classifier
func New(log *logger.Logger, opts ...Option) *Classifier {
	c := &Classifier{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.WithComponent("classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAdvisor reports whether a second opinion is configured.
func (c *Classifier) HasAdvisor() bool {
	return c.advisor != nil
}

// materialize converts a finished pass into a detection.
func (c *Classifier) materialize(channel models.Channel, v verdict, contactID, contactName, message string) models.ThreatDetection {
	severity := v.severity()
	return models.ThreatDetection{
		ID:             string(channel) + "-threat-" + c.newID(),
		ContactID:      contactID,
		ContactName:    contactName,
		Channel:        channel,
		ThreatType:     v.threatType,
		Severity:       severity,
		Confidence:     v.confidence(),
		Indicators:     v.indicators,
		Message:        message,
		DetectedAt:     c.now(),
		Recommendation: Recommendation(channel, v.threatType, severity),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

const unknownContact = "Unknown Contact"
