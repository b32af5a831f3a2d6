package classifier

import (
	"math"
	"strings"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/patterns"
)

// MessageContext carries optional sender facts for single-message classification.
type MessageContext struct {
	SenderName string
	AccountAge *int
}

// MessageClassification is the outcome of classifying one free-standing message.
type MessageClassification struct {
	IsSuspicious bool              `json:"isSuspicious"`
	ThreatType   models.ThreatType `json:"threatType,omitempty"`
	Confidence   float64           `json:"confidence"`
	Indicators   []string          `json:"indicators"`
}

// ClassifyMessage classifies a single message. Categories are tried in
// priority order (crypto, romance, phishing, generic, questions) and only
// the first match counts.
func ClassifyMessage(message string, mctx MessageContext) MessageClassification {
	v := newVerdict()
	v.threatType = ""
	text := strings.ToLower(message)

	for _, rule := range messageRules {
		if patterns.MustLookup(rule.Set).Count(text) >= rule.MinMatches {
			v = v.retype(rule.ThreatType, "").add(rule.Points, rule.Indicator)
			break
		}
	}

	if mctx.AccountAge != nil && *mctx.AccountAge > 0 && *mctx.AccountAge < patterns.NewAccountThresholdDays {
		v = v.add(15, "New account")
	}

	return MessageClassification{
		IsSuspicious: v.emits(),
		ThreatType:   v.threatType,
		Confidence:   v.confidence(),
		Indicators:   v.indicators,
	}
}

// FromClassification normalizes an external classification into a
// detection using the same severity bands and emission floor as the rule
// classifier. Legitimate, degraded and under-floor results yield false.
func (c *Classifier) FromClassification(channel models.Channel, result models.ClassificationResult, contactName, message string) (models.ThreatDetection, bool) {
	threatType, ok := result.Classification.ThreatType()
	if !ok || result.Degraded {
		return models.ThreatDetection{}, false
	}
	v := newVerdict().retype(threatType, "")
	v.points = int(math.Round(clamp01(result.Confidence) * fullConfidence))
	v.indicators = append(v.indicators, result.Indicators...)
	if !v.emits() {
		return models.ThreatDetection{}, false
	}
	if contactName == "" {
		contactName = unknownContact
	}
	return c.materialize(channel, v, "", contactName, message), true
}
