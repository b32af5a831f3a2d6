package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/classifier"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/pkg/logger"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type stubExposures struct {
	email, phone       *models.ExposureReport
	emailErr, phoneErr error
	mu                 sync.Mutex
	calls              int
}

func (s *stubExposures) CheckEmail(_ context.Context, _ string) (*models.ExposureReport, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.email, s.emailErr
}

func (s *stubExposures) CheckPhone(_ context.Context, _ string) (*models.ExposureReport, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.phone, s.phoneErr
}

type stubDarkWeb struct{ calls int }

func (s *stubDarkWeb) Check(_ context.Context, _, _ string) []models.DarkWebResult {
	s.calls++
	return []models.DarkWebResult{{Source: "Example", Type: models.DarkWebBreach, Severity: models.SeverityMedium}}
}

type recordingHistory struct{ saved []models.ScanResponse }

func (r *recordingHistory) Save(_ context.Context, scan models.ScanResponse) (models.ScanHistoryEntry, error) {
	r.saved = append(r.saved, scan)
	return models.ScanHistoryEntry{ScanResponse: scan, ID: "h-1"}, nil
}

type recordingPublisher struct {
	completed []string
	threats   []models.ThreatDetection
	err       error
}

func (p *recordingPublisher) PublishScanCompleted(_ context.Context, resp models.ScanResponse) error {
	p.completed = append(p.completed, resp.ScanID)
	return p.err
}

func (p *recordingPublisher) PublishThreatDetected(_ context.Context, _ string, t models.ThreatDetection) error {
	p.threats = append(p.threats, t)
	return p.err
}

func breaches(n int) []models.Breach {
	out := make([]models.Breach, n)
	for i := range out {
		out[i] = models.Breach{Name: "Breach", Title: "Breach"}
	}
	return out
}

func cryptoContact() models.TelegramContact {
	age := 5
	return models.TelegramContact{AccountAge: &age, LastMessage: "Guaranteed profit with bitcoin"}
}

func newTestService(exp ExposureChecker, opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "scan-test" }),
	}
	return NewService(exp, classifier.New(logger.NewNop()), logger.NewNop(), append(base, opts...)...)
}

func TestScanRejectsEmptyRequest(t *testing.T) {
	exp := &stubExposures{}
	hist := &recordingHistory{}
	s := newTestService(exp, WithHistory(hist))

	_, err := s.Scan(context.Background(), models.ScanRequest{Email: "   "})
	assert.ErrorIs(t, err, models.ErrEmptyScanRequest)
	assert.Zero(t, exp.calls)
	assert.Empty(t, hist.saved)
}

func TestScanFullRequest(t *testing.T) {
	exp := &stubExposures{
		email: models.NewExposureReport(models.ExposureEmail, "jo@example.com", breaches(2)),
		phone: models.NewExposureReport(models.ExposurePhone, "+15551234567", nil),
	}
	hist := &recordingHistory{}
	pub := &recordingPublisher{}
	dw := &stubDarkWeb{}
	s := newTestService(exp, WithHistory(hist), WithPublisher(pub), WithDarkWeb(dw))

	resp, err := s.Scan(context.Background(), models.ScanRequest{
		Email:            "jo@example.com",
		Phone:            "+1 555 123 4567",
		TelegramContacts: []models.TelegramContact{cryptoContact()},
		SMSMessages:      []models.SMSMessage{{Sender: "+15557654321", Message: "see you at lunch"}},
		CheckDarkWeb:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "scan-test", resp.ScanID)
	assert.Equal(t, fixedNow, resp.Timestamp)

	require.Len(t, resp.Exposures, 2)
	assert.Equal(t, models.ExposureEmail, resp.Exposures[0].Kind)
	assert.Equal(t, models.ExposurePhone, resp.Exposures[1].Kind)

	require.Len(t, resp.Threats, 1)
	assert.Equal(t, models.ThreatCryptoScam, resp.Threats[0].ThreatType)

	// 2 email breaches (30) + one critical threat counted as both a
	// suspicious contact (10) and a scam message (25).
	assert.Equal(t, models.ScoreBreakdown{EmailBreaches: 2, SuspiciousContacts: 1, ScamMessages: 1}, resp.ShadowScore.Breakdown)
	assert.Equal(t, 35, resp.ShadowScore.Score)
	assert.Equal(t, models.ThreatLevelCritical, resp.ShadowScore.ThreatLevel)

	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, models.SeverityCritical, resp.Recommendations[0].Priority)
	assert.Len(t, resp.DarkWebResults, 1)
	assert.Equal(t, 1, dw.calls)

	require.Len(t, hist.saved, 1)
	assert.Equal(t, "scan-test", hist.saved[0].ScanID)
	assert.Equal(t, []string{"scan-test"}, pub.completed)
	assert.Len(t, pub.threats, 1)
}

func TestScanOrdersThreatsByChannel(t *testing.T) {
	s := newTestService(&stubExposures{})

	resp, err := s.Scan(context.Background(), models.ScanRequest{
		SMSMessages: []models.SMSMessage{{
			Sender:   "12345",
			Message:  "Your bank account has been locked. Click here to verify.",
			HasLinks: true,
		}},
		WhatsAppContacts: []models.WhatsAppContact{{
			Name:              "Support",
			IsBusinessAccount: true,
			LastMessage:       "Guaranteed profit with bitcoin",
		}},
		TelegramContacts: []models.TelegramContact{cryptoContact()},
	})
	require.NoError(t, err)
	require.Len(t, resp.Threats, 3)
	assert.Equal(t, models.ChannelTelegram, resp.Threats[0].Channel)
	assert.Equal(t, models.ChannelWhatsApp, resp.Threats[1].Channel)
	assert.Equal(t, models.ChannelSMS, resp.Threats[2].Channel)
}

func TestScanUnknownEmailResultIsOmitted(t *testing.T) {
	s := newTestService(&stubExposures{
		phone: models.NewExposureReport(models.ExposurePhone, "+15551234567", breaches(1)),
	})

	resp, err := s.Scan(context.Background(), models.ScanRequest{Email: "a@b.c", Phone: "+15551234567"})
	require.NoError(t, err)
	require.Len(t, resp.Exposures, 1)
	assert.Equal(t, models.ExposurePhone, resp.Exposures[0].Kind)
	assert.Equal(t, 1, resp.ShadowScore.Breakdown.PhoneLeaks)
	assert.Equal(t, 80, resp.ShadowScore.Score)
	assert.NotNil(t, resp.Threats)
}

func TestScanSurfacesRateLimit(t *testing.T) {
	hist := &recordingHistory{}
	pub := &recordingPublisher{}
	s := newTestService(&stubExposures{emailErr: exposure.ErrRateLimited}, WithHistory(hist), WithPublisher(pub))

	_, err := s.Scan(context.Background(), models.ScanRequest{Email: "a@b.c"})
	assert.ErrorIs(t, err, exposure.ErrRateLimited)
	assert.Empty(t, hist.saved)
	assert.Empty(t, pub.completed)
}

func TestScanDarkWebOnlyWhenRequested(t *testing.T) {
	dw := &stubDarkWeb{}
	s := newTestService(&stubExposures{}, WithDarkWeb(dw))
	ctx := context.Background()

	resp, err := s.Scan(ctx, models.ScanRequest{Email: "a@b.c"})
	require.NoError(t, err)
	assert.Nil(t, resp.DarkWebResults)

	_, err = s.Scan(ctx, models.ScanRequest{
		TelegramContacts: []models.TelegramContact{cryptoContact()},
		CheckDarkWeb:     true,
	})
	require.NoError(t, err)
	assert.Zero(t, dw.calls)

	_, err = s.Scan(ctx, models.ScanRequest{Phone: "+15551234567", CheckDarkWeb: true})
	require.NoError(t, err)
	assert.Equal(t, 1, dw.calls)
}

func TestScanPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	s := newTestService(&stubExposures{}, WithPublisher(pub))

	resp, err := s.Scan(context.Background(), models.ScanRequest{TelegramContacts: []models.TelegramContact{cryptoContact()}})
	require.NoError(t, err)
	assert.Equal(t, "scan-test", resp.ScanID)
	assert.Len(t, pub.completed, 1)
}

func TestBreakdown(t *testing.T) {
	exposures := []models.ExposureReport{
		*models.NewExposureReport(models.ExposureEmail, "a@b.c", breaches(3)),
		*models.NewExposureReport(models.ExposurePhone, "+1555", breaches(1)),
	}
	threats := []models.ThreatDetection{
		{Severity: models.SeverityLow},
		{Severity: models.SeverityMedium},
		{Severity: models.SeverityHigh},
		{Severity: models.SeverityCritical},
	}

	assert.Equal(t, models.ScoreBreakdown{
		EmailBreaches:      3,
		PhoneLeaks:         1,
		SuspiciousContacts: 3,
		ScamMessages:       2,
	}, Breakdown(exposures, threats))
}
