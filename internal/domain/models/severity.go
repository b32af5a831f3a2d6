package models

// Severity is the four-step scale shared by exposures, threats, dark web
// findings and recommendation priorities.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank orders severities from low (0) to critical (3). Unknown values rank as low.
func (s Severity) Rank() int {
	return severityRank[s]
}

// IsValid reports whether s is one of the four known levels.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// MaxSeverity returns the more severe of a and b. Ties keep a.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// SeverityFromConfidence maps a classifier confidence onto the fixed bands
// used by every channel: >=0.7 critical, >=0.5 high, >=0.3 medium.
func SeverityFromConfidence(confidence float64) Severity {
	switch {
	case confidence >= 0.7:
		return SeverityCritical
	case confidence >= 0.5:
		return SeverityHigh
	case confidence >= ConfidenceFloor:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
