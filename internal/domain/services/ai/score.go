package ai

import (
	"math"

	"shadowcleaner/internal/domain/models"
)

var baseThreatScores = map[models.Classification]float64{
	models.ClassLegitimate:  0,
	models.ClassSpam:        20,
	models.ClassPhishing:    70,
	models.ClassRomanceScam: 85,
	models.ClassCryptoScam:  90,
	models.ClassFakeProfile: 60,
}

// ThreatScore rates a classification from 0 to 100, higher is more dangerous.
func ThreatScore(result models.ClassificationResult) int {
	return int(math.Round(baseThreatScores[result.Classification] * clamp01(result.Confidence)))
}
