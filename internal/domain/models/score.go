package models

import "time"

// ThreatLevel is the four-band classification of a shadow score
type ThreatLevel string

const (
	ThreatLevelSafe     ThreatLevel = "safe"
	ThreatLevelCaution  ThreatLevel = "caution"
	ThreatLevelWarning  ThreatLevel = "warning"
	ThreatLevelCritical ThreatLevel = "critical"
)

// ScoreBreakdown holds the raw counts a shadow score was computed from.
type ScoreBreakdown struct {
	EmailBreaches      int `json:"emailBreaches"`
	PhoneLeaks         int `json:"phoneLeaks"`
	SuspiciousContacts int `json:"suspiciousContacts"`
	ScamMessages       int `json:"scamMessages"`
	PrivacyGaps        int `json:"privacyGaps"`
}

// ShadowScore is the aggregate 0-100 safety score of a scan.
type ShadowScore struct {
	Score       int            `json:"score"`
	ThreatLevel ThreatLevel    `json:"threatLevel"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	LastUpdated time.Time      `json:"lastUpdated"`
}
