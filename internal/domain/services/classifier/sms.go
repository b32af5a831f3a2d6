package classifier

import (
	"context"
	"math"
	"strings"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/patterns"
)

// ClassifySMS analyzes text messages. When an advisor is configured every
// message is also sent to it and the stronger of the two opinions wins.
func (c *Classifier) ClassifySMS(ctx context.Context, messages []models.SMSMessage) []models.ThreatDetection {
	threats := []models.ThreatDetection{}
	for _, sms := range messages {
		if ctx.Err() != nil {
			break
		}
		v := smsVerdict(sms)
		if c.advisor != nil {
			opinion := c.advisor.Classify(ctx, models.ClassificationRequest{
				Message: sms.Message,
				Context: &models.ClassificationContext{SenderName: sms.Sender},
			})
			v = mergeOpinion(v, opinion)
		}
		if !v.emits() {
			continue
		}
		threats = append(threats, c.materialize(models.ChannelSMS, v, sms.ID, sms.Sender, sms.Message))
	}

	c.logger.Debug().
		Int("messages", len(messages)).
		Int("threats", len(threats)).
		Bool("advised", c.advisor != nil).
		Msg("sms messages classified")

	return threats
}

func smsVerdict(sms models.SMSMessage) verdict {
	v := newVerdict()
	text := strings.ToLower(sms.Message)

	v = v.addIf(patterns.IsShortCode(sms.Sender), 20, "Short code sender (common in spam)")
	v = v.addIf(sms.HasLinks || patterns.ContainsLink(text), 25, "Contains suspicious links")
	return v.applyAll(smsRules, text)
}

// mergeOpinion folds an external classification into a rule verdict. The
// opinion only takes over when it is more confident; its indicators are
// always kept. The severity floor is never lowered. Degraded opinions are
// ignored.
func mergeOpinion(v verdict, opinion models.ClassificationResult) verdict {
	if opinion.Degraded {
		return v
	}
	threatType, ok := opinion.Classification.ThreatType()
	if !ok {
		return v
	}
	points := int(math.Round(clamp01(opinion.Confidence) * fullConfidence))
	for _, ind := range opinion.Indicators {
		v = v.add(0, ind)
	}
	if points > v.points {
		v.points = points
		v.threatType = threatType
	}
	return v
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
