// Package scoring turns scan findings into a shadow score and an ordered
// list of cleanup recommendations.
package scoring

import (
	"math"
	"time"

	"shadowcleaner/internal/domain/models"
)

// Weights are the per-item penalties and the per-category ceiling.
type Weights struct {
	EmailBreach           int
	PhoneLeak             int
	SuspiciousContact     int
	ScamMessage           int
	PrivacyGap            int
	MaxPenaltyPerCategory int
}

// DefaultWeights is the reference weighting.
var DefaultWeights = Weights{
	EmailBreach:           15,
	PhoneLeak:             20,
	SuspiciousContact:     10,
	ScamMessage:           25,
	PrivacyGap:            5,
	MaxPenaltyPerCategory: 40,
}

// Threat level lower bounds, inclusive.
const (
	SafeMin    = 80
	CautionMin = 60
	WarningMin = 40
)

// ComputeShadowScore scores b with the default weights.
func ComputeShadowScore(b models.ScoreBreakdown) models.ShadowScore {
	return DefaultWeights.Compute(b, time.Now())
}

// Compute scores b. Score and threat level depend only on b; now only
// stamps LastUpdated.
func (w Weights) Compute(b models.ScoreBreakdown, now time.Time) models.ShadowScore {
	penalty := w.capped(b.EmailBreaches, w.EmailBreach) +
		w.capped(b.PhoneLeaks, w.PhoneLeak) +
		w.capped(b.SuspiciousContacts, w.SuspiciousContact) +
		w.capped(b.ScamMessages, w.ScamMessage) +
		w.capped(b.PrivacyGaps, w.PrivacyGap)

	score := int(math.Round(math.Max(0, math.Min(100, 100-penalty))))

	return models.ShadowScore{
		Score:       score,
		ThreatLevel: ThreatLevelFor(score),
		Breakdown:   b,
		LastUpdated: now,
	}
}

// capped returns count*weight limited to the category ceiling. Negative
// counts contribute nothing.
func (w Weights) capped(count, weight int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(float64(count)*float64(weight), float64(w.MaxPenaltyPerCategory))
}

// ThreatLevelFor bands an integer score.
func ThreatLevelFor(score int) models.ThreatLevel {
	switch {
	case score >= SafeMin:
		return models.ThreatLevelSafe
	case score >= CautionMin:
		return models.ThreatLevelCaution
	case score >= WarningMin:
		return models.ThreatLevelWarning
	default:
		return models.ThreatLevelCritical
	}
}

// Label is the short human description shown next to a score.
func Label(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	case score >= 30:
		return "Poor"
	default:
		return "Critical"
	}
}
