package classifier

import (
	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/patterns"
)

// Confidence is tracked in hundredths so that sums such as 0.1+0.2 land
// exactly on the emission floor.
const (
	fullConfidence = 100
	emissionFloor  = 30
)

// Rule binds a pattern set to its effect once enough matchers hit.
type Rule struct {
	Set        patterns.Category
	MinMatches int
	// ThreatType replaces the current type when set.
	ThreatType models.ThreatType
	// Points is the confidence increment in hundredths.
	Points int
	// Floor raises the severity floor when set. It never lowers it.
	Floor     models.Severity
	Indicator string
}

// verdict is the accumulator for one classification pass. Every method
// returns a new value, so a pass is a fold over signals and rules.
type verdict struct {
	threatType models.ThreatType
	floor      models.Severity
	points     int
	indicators []string
}

func newVerdict() verdict {
	return verdict{
		threatType: models.ThreatSpam,
		floor:      models.SeverityLow,
		indicators: []string{},
	}
}

// add credits points and records why.
func (v verdict) add(points int, indicator string) verdict {
	v.points += points
	v.indicators = append(v.indicators[:len(v.indicators):len(v.indicators)], indicator)
	return v
}

// addIf is add guarded by cond.
func (v verdict) addIf(cond bool, points int, indicator string) verdict {
	if !cond {
		return v
	}
	return v.add(points, indicator)
}

// retype switches the threat type and escalates the floor.
func (v verdict) retype(t models.ThreatType, floor models.Severity) verdict {
	if t != "" {
		v.threatType = t
	}
	if floor != "" {
		v.floor = models.MaxSeverity(v.floor, floor)
	}
	return v
}

// apply evaluates rule against text.
func (v verdict) apply(rule Rule, text string) verdict {
	set := patterns.MustLookup(rule.Set)
	if set.Count(text) < rule.MinMatches {
		return v
	}
	return v.retype(rule.ThreatType, rule.Floor).add(rule.Points, rule.Indicator)
}

// applyAll folds rules over text in order.
func (v verdict) applyAll(rules []Rule, text string) verdict {
	for _, r := range rules {
		v = v.apply(r, text)
	}
	return v
}

// confidence is the clamped final confidence in [0,1].
func (v verdict) confidence() float64 {
	p := v.points
	if p > fullConfidence {
		p = fullConfidence
	}
	if p < 0 {
		p = 0
	}
	return float64(p) / fullConfidence
}

// severity is the more severe of the floor and the confidence band.
func (v verdict) severity() models.Severity {
	return models.MaxSeverity(v.floor, models.SeverityFromConfidence(v.confidence()))
}

// emits reports whether the pass produced a detection.
func (v verdict) emits() bool {
	return v.points >= emissionFloor
}
