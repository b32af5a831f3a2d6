package ai

import (
	"context"

	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/classifier"
)

// RuleClassifier answers classification requests from the pattern library
// alone. It never fails.
type RuleClassifier struct{}

// NewRuleClassifier returns the deterministic classifier.
func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

// Name implements Classifier.
func (RuleClassifier) Name() string { return "rules" }

// Classify implements Classifier. Messages that match no category are
// legitimate.
func (RuleClassifier) Classify(_ context.Context, req models.ClassificationRequest) (models.ClassificationResult, error) {
	var mctx classifier.MessageContext
	if req.Context != nil {
		mctx.SenderName = req.Context.SenderName
		mctx.AccountAge = req.Context.AccountAge
	}

	mc := classifier.ClassifyMessage(req.Message, mctx)
	result := models.ClassificationResult{
		Classification: models.ClassLegitimate,
		Confidence:     mc.Confidence,
		Indicators:     mc.Indicators,
		Reasoning:      "No scam patterns matched",
	}
	if mc.ThreatType != "" {
		result.Classification = classificationFor(mc.ThreatType)
		result.Reasoning = "Matched rule-based scam patterns"
	}
	return result, nil
}

// classificationFor maps rule threat types onto the six-way label set.
// Generic scams have no label of their own and count as spam.
func classificationFor(t models.ThreatType) models.Classification {
	switch t {
	case models.ThreatPhishing:
		return models.ClassPhishing
	case models.ThreatRomanceScam:
		return models.ClassRomanceScam
	case models.ThreatCryptoScam:
		return models.ClassCryptoScam
	case models.ThreatFakeProfile:
		return models.ClassFakeProfile
	default:
		return models.ClassSpam
	}
}
