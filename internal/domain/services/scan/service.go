// Package scan runs a full Shadow Cleaner scan: exposure lookups, channel
// classification and the optional dark web check fan out concurrently, then
// the results are scored, saved and announced.
package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/classifier"
	"shadowcleaner/internal/domain/services/darkweb"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/internal/domain/services/scoring"
	"shadowcleaner/pkg/logger"
)

// ExposureChecker looks up breach exposure for an identifier. A nil report
// with a nil error means the result is unknown.
type ExposureChecker interface {
	CheckEmail(ctx context.Context, email string) (*models.ExposureReport, error)
	CheckPhone(ctx context.Context, phone string) (*models.ExposureReport, error)
}

// ThreatClassifier classifies each input channel.
type ThreatClassifier interface {
	ClassifyTelegram(ctx context.Context, contacts []models.TelegramContact) []models.ThreatDetection
	ClassifyWhatsApp(ctx context.Context, contacts []models.WhatsAppContact) []models.ThreatDetection
	ClassifySMS(ctx context.Context, messages []models.SMSMessage) []models.ThreatDetection
}

// DarkWebChecker reports dark web findings for the scanned identifiers.
type DarkWebChecker interface {
	Check(ctx context.Context, email, phone string) []models.DarkWebResult
}

// HistorySaver persists finished scans.
type HistorySaver interface {
	Save(ctx context.Context, scan models.ScanResponse) (models.ScanHistoryEntry, error)
}

// EventPublisher announces scan results.
type EventPublisher interface {
	PublishScanCompleted(ctx context.Context, resp models.ScanResponse) error
	PublishThreatDetected(ctx context.Context, scanID string, threat models.ThreatDetection) error
}

// Service orchestrates scans
type Service struct {
	exposures  ExposureChecker
	classifier ThreatClassifier
	darkWeb    DarkWebChecker
	history    HistorySaver
	publisher  EventPublisher
	now        func() time.Time
	newID      func() string
	logger     *logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithDarkWeb enables dark web checks for requests that ask for them.
func WithDarkWeb(d DarkWebChecker) Option {
	return func(s *Service) { s.darkWeb = d }
}

// WithHistory saves every finished scan.
func WithHistory(h HistorySaver) Option {
	return func(s *Service) { s.history = h }
}

// WithPublisher announces every finished scan.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the scan timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides scan id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a scan orchestrator
func NewService(exposures ExposureChecker, classifier ThreatClassifier, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		exposures:  exposures,
		classifier: classifier,
		now:        time.Now,
		newID:      func() string { return "scan-" + uuid.NewString() },
		logger:     log.WithComponent("scan"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs every requested check and returns the scored result. Empty
// requests are rejected with models.ErrEmptyScanRequest before any work
// starts. A provider rate limit aborts the scan with exposure.ErrRateLimited;
// every other collaborator failure degrades to a less informative result.
func (s *Service) Scan(ctx context.Context, req models.ScanRequest) (models.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return models.ScanResponse{}, err
	}

	scanID := s.newID()
	log := s.logger.WithScanID(scanID)
	start := time.Now()

	var (
		emailReport, phoneReport *models.ExposureReport
		telegram, whatsApp, sms  []models.ThreatDetection
		darkWeb                  []models.DarkWebResult
	)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)

	g, gctx := errgroup.WithContext(ctx)

	if email != "" {
		g.Go(func() error {
			r, err := s.exposures.CheckEmail(gctx, email)
			if err != nil {
				return fmt.Errorf("email exposure: %w", err)
			}
			emailReport = r
			return nil
		})
	}
	if phone != "" {
		g.Go(func() error {
			r, err := s.exposures.CheckPhone(gctx, phone)
			if err != nil {
				return fmt.Errorf("phone exposure: %w", err)
			}
			phoneReport = r
			return nil
		})
	}
	if len(req.TelegramContacts) > 0 {
		g.Go(func() error {
			telegram = s.classifier.ClassifyTelegram(gctx, req.TelegramContacts)
			return nil
		})
	}
	if len(req.WhatsAppContacts) > 0 {
		g.Go(func() error {
			whatsApp = s.classifier.ClassifyWhatsApp(gctx, req.WhatsAppContacts)
			return nil
		})
	}
	if len(req.SMSMessages) > 0 {
		g.Go(func() error {
			sms = s.classifier.ClassifySMS(gctx, req.SMSMessages)
			return nil
		})
	}
	if req.CheckDarkWeb && s.darkWeb != nil && (email != "" || phone != "") {
		g.Go(func() error {
			darkWeb = s.darkWeb.Check(gctx, email, phone)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("scan aborted")
		return models.ScanResponse{}, err
	}

	exposures := make([]models.ExposureReport, 0, 2)
	for _, r := range []*models.ExposureReport{emailReport, phoneReport} {
		if r != nil {
			exposures = append(exposures, *r)
		}
	}

	threats := make([]models.ThreatDetection, 0, len(telegram)+len(whatsApp)+len(sms))
	threats = append(threats, telegram...)
	threats = append(threats, whatsApp...)
	threats = append(threats, sms...)

	now := s.now()
	resp := models.ScanResponse{
		ShadowScore:     scoring.DefaultWeights.Compute(Breakdown(exposures, threats), now),
		Exposures:       exposures,
		Threats:         threats,
		Recommendations: scoring.GenerateRecommendations(exposures, threats),
		DarkWebResults:  darkWeb,
		ScanID:          scanID,
		Timestamp:       now,
	}

	log.Info().
		Int("score", resp.ShadowScore.Score).
		Str("threat_level", string(resp.ShadowScore.ThreatLevel)).
		Int("threats", len(threats)).
		Int("exposures", len(exposures)).
		Dur("duration", time.Since(start)).
		Msg("scan completed")

	s.finish(ctx, log, resp)

	return resp, nil
}

// finish saves and announces a scan. Neither step can fail the scan.
func (s *Service) finish(ctx context.Context, log *logger.Logger, resp models.ScanResponse) {
	if s.history != nil {
		if _, err := s.history.Save(ctx, resp); err != nil {
			log.WithError(err).Error().Msg("failed to save scan to history")
		}
	}

	if s.publisher == nil {
		return
	}
	for _, t := range resp.Threats {
		if !t.Severity.AtLeast(models.SeverityHigh) {
			continue
		}
		if err := s.publisher.PublishThreatDetected(ctx, resp.ScanID, t); err != nil {
			log.Warn().Err(err).Msg("failed to publish threat event")
		}
	}
	if err := s.publisher.PublishScanCompleted(ctx, resp); err != nil {
		log.Warn().Err(err).Msg("failed to publish scan event")
	}
}

// Breakdown derives the score inputs from scan results. A high or critical
// threat counts both as a suspicious contact and as a scam message.
func Breakdown(exposures []models.ExposureReport, threats []models.ThreatDetection) models.ScoreBreakdown {
	var b models.ScoreBreakdown
	for _, e := range exposures {
		switch e.Kind {
		case models.ExposureEmail:
			b.EmailBreaches += e.TotalBreaches
		case models.ExposurePhone:
			b.PhoneLeaks += e.TotalBreaches
		}
	}
	b.SuspiciousContacts = models.CountBySeverity(threats, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical)
	b.ScamMessages = models.CountBySeverity(threats, models.SeverityHigh, models.SeverityCritical)
	return b
}

var (
	_ ExposureChecker  = (*exposure.Scanner)(nil)
	_ ThreatClassifier = (*classifier.Classifier)(nil)
	_ DarkWebChecker   = (*darkweb.Checker)(nil)
)
