package classifier

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/pkg/logger"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClassifier(opts ...Option) *Classifier {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("%d", n) }),
	}
	return New(logger.NewNop(), append(base, opts...)...)
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestClassifyTelegram(t *testing.T) {
	c := newTestClassifier()
	ctx := context.Background()

	t.Run("new account with crypto pitch is critical", func(t *testing.T) {
		threats := c.ClassifyTelegram(ctx, []models.TelegramContact{{
			AccountAge:  intPtr(5),
			LastMessage: "Guaranteed profit with bitcoin",
		}})
		require.Len(t, threats, 1)
		th := threats[0]
		assert.Equal(t, models.ThreatCryptoScam, th.ThreatType)
		assert.Equal(t, models.SeverityCritical, th.Severity)
		assert.InDelta(t, 0.7, th.Confidence, 1e-9)
		assert.Equal(t, []string{"New account (5 days old)", "Cryptocurrency scam indicators"}, th.Indicators)
		assert.Equal(t, "Unknown Contact", th.ContactName)
		assert.Equal(t, models.ChannelTelegram, th.Channel)
		assert.Equal(t, fixedNow, th.DetectedAt)
		assert.Equal(t, "telegram-threat-1", th.ID)
		assert.Contains(t, th.Recommendation, "🚨 CRITICAL: Block and report.")
	})

	t.Run("signals stack and confidence clamps at one", func(t *testing.T) {
		threats := c.ClassifyTelegram(ctx, []models.TelegramContact{{
			ID:          "c-2",
			Username:    "crypto_trader123",
			Phone:       "+234567890",
			LastMessage: "Hello dear, I have amazing bitcoin investment opportunity for you!",
			AccountAge:  intPtr(7),
			IsVerified:  boolPtr(false),
		}})
		require.Len(t, threats, 1)
		th := threats[0]
		assert.Equal(t, 1.0, th.Confidence)
		assert.Equal(t, "crypto_trader123", th.ContactName)
		assert.Equal(t, "c-2", th.ContactID)
		assert.Equal(t, []string{
			"New account (7 days old)",
			"Foreign phone number",
			"Cryptocurrency scam indicators",
			"Unverified account",
		}, th.Indicators)
	})

	t.Run("ordinary contact is safe", func(t *testing.T) {
		threats := c.ClassifyTelegram(ctx, []models.TelegramContact{{
			Username:    "john_doe",
			Phone:       "+1234567890",
			LastMessage: "Hey, how are you?",
			AccountAge:  intPtr(365),
			IsVerified:  boolPtr(true),
		}})
		assert.Empty(t, threats)
	})

	t.Run("exactly the floor emits one medium detection", func(t *testing.T) {
		threats := c.ClassifyTelegram(ctx, []models.TelegramContact{{
			FirstName:  "Ann",
			LastName:   "Lee",
			AccountAge: intPtr(29),
			IsVerified: boolPtr(false),
		}})
		require.Len(t, threats, 1)
		assert.InDelta(t, 0.3, threats[0].Confidence, 1e-9)
		assert.Equal(t, models.SeverityMedium, threats[0].Severity)
		assert.Equal(t, models.ThreatSpam, threats[0].ThreatType)
		assert.Equal(t, "Ann Lee", threats[0].ContactName)
	})

	t.Run("missing verification flag is not unverified", func(t *testing.T) {
		threats := c.ClassifyTelegram(ctx, []models.TelegramContact{{AccountAge: intPtr(29)}})
		assert.Empty(t, threats)
	})
}

func TestClassifyWhatsApp(t *testing.T) {
	c := newTestClassifier()
	ctx := context.Background()

	threats := c.ClassifyWhatsApp(ctx, []models.WhatsAppContact{
		{
			Name:              "Unknown Business",
			IsBusinessAccount: true,
			LastMessage:       "Your account will be deleted. Send your WhatsApp verification code",
		},
		{
			Phone:             "+15550001111",
			IsBusinessAccount: true,
			ProfilePicture:    true,
		},
		{
			Name:           "Mum",
			ProfilePicture: true,
			LastMessage:    "dinner at 7?",
		},
	})
	require.Len(t, threats, 2)

	impersonator := threats[0]
	assert.Equal(t, "Unknown Business", impersonator.ContactName)
	assert.Equal(t, models.ThreatPhishing, impersonator.ThreatType)
	assert.Equal(t, models.SeverityCritical, impersonator.Severity)
	assert.Equal(t, 1.0, impersonator.Confidence)
	assert.Equal(t, []string{"Unverified business account", "No profile picture", "WhatsApp impersonation"}, impersonator.Indicators)
	assert.Equal(t, "🚨 CRITICAL: Block and report to WhatsApp. Do not click any links or provide personal information.", impersonator.Recommendation)

	business := threats[1]
	assert.Equal(t, "+15550001111", business.ContactName)
	assert.Equal(t, models.ThreatFakeProfile, business.ThreatType)
	assert.Equal(t, models.SeverityMedium, business.Severity)
	assert.Equal(t, "Verify business authenticity through official channels. Block if suspicious.", business.Recommendation)
}

func TestClassifySMS(t *testing.T) {
	c := newTestClassifier()
	ctx := context.Background()

	t.Run("one bank pattern from a short code is not enough", func(t *testing.T) {
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{Sender: "12345", Message: "Your account needs attention"}})
		assert.Empty(t, threats)
	})

	t.Run("bank phishing with link", func(t *testing.T) {
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{
			Sender:   "12345",
			Message:  "Your bank account has been locked. Click here to verify.",
			HasLinks: true,
		}})
		require.Len(t, threats, 1)
		th := threats[0]
		assert.Equal(t, "12345", th.ContactName)
		assert.Equal(t, models.ThreatPhishing, th.ThreatType)
		assert.Equal(t, models.SeverityCritical, th.Severity)
		assert.Equal(t, []string{"Short code sender (common in spam)", "Contains suspicious links", "Bank phishing attempt"}, th.Indicators)
		assert.Contains(t, th.Recommendation, "🚨 CRITICAL THREAT: ")
	})

	t.Run("link detected in text", func(t *testing.T) {
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{Sender: "12345", Message: "see https://example.test"}})
		require.Len(t, threats, 1)
		assert.InDelta(t, 0.45, threats[0].Confidence, 1e-9)
		assert.Equal(t, models.SeverityMedium, threats[0].Severity)
	})

	t.Run("floor beats a lower confidence band", func(t *testing.T) {
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{Sender: "+15557654321", Message: "IRS: tax refund owed"}})
		require.Len(t, threats, 1)
		assert.InDelta(t, 0.55, threats[0].Confidence, 1e-9)
		assert.Equal(t, models.SeverityCritical, threats[0].Severity)
	})

	t.Run("later medium floor never lowers an earlier critical one", func(t *testing.T) {
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{
			Sender:  "+15557654321",
			Message: "IRS refund owed, claim it, urgent. Congratulations winner",
		}})
		require.Len(t, threats, 1)
		th := threats[0]
		assert.Equal(t, models.SeverityCritical, th.Severity)
		assert.Equal(t, models.ThreatScam, th.ThreatType)
		assert.Equal(t, []string{"Tax/IRS scam", "Prize/lottery scam"}, th.Indicators)
	})
}

type stubAdvisor struct {
	result models.ClassificationResult
	calls  int
}

func (s *stubAdvisor) Classify(_ context.Context, _ models.ClassificationRequest) models.ClassificationResult {
	s.calls++
	return s.result
}

func TestClassifySMSWithAdvisor(t *testing.T) {
	ctx := context.Background()

	t.Run("more confident opinion takes over", func(t *testing.T) {
		adv := &stubAdvisor{result: models.ClassificationResult{
			Classification: models.ClassPhishing,
			Confidence:     0.8,
			Indicators:     []string{"Credential request"},
		}}
		c := newTestClassifier(WithAdvisor(adv))
		require.True(t, c.HasAdvisor())

		threats := c.ClassifySMS(ctx, []models.SMSMessage{{Sender: "Bank", Message: "send me your login please"}})
		require.Len(t, threats, 1)
		assert.Equal(t, 1, adv.calls)
		assert.Equal(t, models.ThreatPhishing, threats[0].ThreatType)
		assert.Equal(t, models.SeverityCritical, threats[0].Severity)
		assert.InDelta(t, 0.8, threats[0].Confidence, 1e-9)
		assert.Equal(t, []string{"Credential request"}, threats[0].Indicators)
	})

	t.Run("legitimate opinion leaves rules alone", func(t *testing.T) {
		adv := &stubAdvisor{result: models.ClassificationResult{Classification: models.ClassLegitimate, Confidence: 0.9}}
		c := newTestClassifier(WithAdvisor(adv))
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{Sender: "12345", Message: "Your account needs attention"}})
		assert.Empty(t, threats)
	})

	t.Run("weaker opinion keeps rule type but adds indicators", func(t *testing.T) {
		adv := &stubAdvisor{result: models.ClassificationResult{
			Classification: models.ClassSpam,
			Confidence:     0.3,
			Indicators:     []string{"Low model confidence"},
		}}
		c := newTestClassifier(WithAdvisor(adv))
		threats := c.ClassifySMS(ctx, []models.SMSMessage{{
			Sender:   "12345",
			Message:  "Your bank account has been locked. Click here to verify.",
			HasLinks: true,
		}})
		require.Len(t, threats, 1)
		assert.Equal(t, models.ThreatPhishing, threats[0].ThreatType)
		assert.Equal(t, "Low model confidence", threats[0].Indicators[len(threats[0].Indicators)-1])
	})

	t.Run("degraded opinion is ignored", func(t *testing.T) {
		adv := &stubAdvisor{result: models.ClassificationResult{
			Classification: models.ClassSpam,
			Confidence:     0.5,
			Indicators:     []string{"classification unavailable"},
			Degraded:       true,
		}}
		c := newTestClassifier(WithAdvisor(adv))
		threats := c.ClassifySMS(ctx, []models.SMSMessage{
			{Sender: "Mom", Message: "see you at dinner tonight"},
			{Sender: "Bob", Message: "running 5 min late"},
		})
		assert.Equal(t, 2, adv.calls)
		assert.Empty(t, threats)

		phishing := c.ClassifySMS(ctx, []models.SMSMessage{{
			Sender:   "12345",
			Message:  "Your bank account has been locked. Click here to verify.",
			HasLinks: true,
		}})
		require.Len(t, phishing, 1)
		assert.Equal(t, models.ThreatPhishing, phishing[0].ThreatType)
		assert.NotContains(t, phishing[0].Indicators, "classification unavailable")
	})
}

func TestEmissionFloor(t *testing.T) {
	below := newVerdict()
	below.points = 29
	assert.False(t, below.emits())

	at := newVerdict()
	at.points = 30
	assert.True(t, at.emits())
	assert.Equal(t, models.SeverityMedium, at.severity())
}

func TestVerdictIsImmutable(t *testing.T) {
	base := newVerdict().add(10, "a")
	left := base.add(10, "b")
	right := base.add(10, "c")

	assert.Equal(t, []string{"a"}, base.indicators)
	assert.Equal(t, []string{"a", "b"}, left.indicators)
	assert.Equal(t, []string{"a", "c"}, right.indicators)
	assert.Equal(t, 10, base.points)
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		age        *int
		suspicious bool
		threatType models.ThreatType
		confidence float64
	}{
		{"crypto wins over romance", "darling, trust me, bitcoin profit guaranteed", nil, true, models.ThreatCryptoScam, 0.5},
		{"romance", "my dear I am so lonely", nil, true, models.ThreatRomanceScam, 0.4},
		{"generic becomes scam", "send money now, you won a prize", nil, true, models.ThreatScam, 0.3},
		{"question alone is not suspicious", "where are you from? are you from here", nil, false, models.ThreatSpam, 0.2},
		{"question plus new account", "are you single?", intPtr(3), true, models.ThreatSpam, 0.35},
		{"new account alone", "hi", intPtr(3), false, "", 0.15},
		{"zero age is ignored", "hi", intPtr(0), false, "", 0},
		{"clean", "see you tomorrow", nil, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyMessage(tt.message, MessageContext{AccountAge: tt.age})
			assert.Equal(t, tt.suspicious, got.IsSuspicious)
			assert.Equal(t, tt.threatType, got.ThreatType)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestFromClassification(t *testing.T) {
	c := newTestClassifier()

	_, ok := c.FromClassification(models.ChannelSMS, models.ClassificationResult{Classification: models.ClassLegitimate, Confidence: 1}, "x", "")
	assert.False(t, ok)

	_, ok = c.FromClassification(models.ChannelSMS, models.ClassificationResult{Classification: models.ClassSpam, Confidence: 0.29}, "x", "")
	assert.False(t, ok)

	det, ok := c.FromClassification(models.ChannelTelegram, models.ClassificationResult{
		Classification: models.ClassRomanceScam,
		Confidence:     1.7,
		Indicators:     []string{"affection"},
	}, "", "hi")
	require.True(t, ok)
	assert.Equal(t, models.ThreatRomanceScam, det.ThreatType)
	assert.Equal(t, 1.0, det.Confidence)
	assert.Equal(t, models.SeverityCritical, det.Severity)
	assert.Equal(t, "Unknown Contact", det.ContactName)
	assert.Equal(t, []string{"affection"}, det.Indicators)
}

func TestRecommendation(t *testing.T) {
	assert.Equal(t, "Block to reduce spam. Report if messages continue.",
		Recommendation(models.ChannelTelegram, models.ThreatSpam, models.SeverityMedium))
	assert.Equal(t, "⚠️ HIGH RISK: Block immediately and report. Do not engage or provide personal information.",
		Recommendation(models.ChannelTelegram, models.ThreatType("unknown"), models.SeverityHigh))
	assert.Equal(t, "Block contact and report as spam to WhatsApp.",
		Recommendation(models.ChannelWhatsApp, models.ThreatCryptoScam, models.SeverityLow))
	assert.Equal(t, "🚨 CRITICAL THREAT: Block sender and report as spam to your carrier.",
		Recommendation(models.ChannelSMS, models.ThreatSpam, models.SeverityCritical))
}

func TestRulesReturnsCopy(t *testing.T) {
	rules := Rules(models.ChannelSMS)
	require.Len(t, rules, 4)
	rules[0].Points = 0
	assert.Equal(t, 60, Rules(models.ChannelSMS)[0].Points)
	assert.Empty(t, Rules(models.Channel("fax")))
}
