package models

import "time"

// ScanHistoryEntry is a saved scan. The embedded response is flattened in JSON.
type ScanHistoryEntry struct {
	ScanResponse
	ID      string    `json:"id"`
	SavedAt time.Time `json:"savedAt"`
}

// ScanComparison is the delta between a scan and the most recent other scan.
// It is derived on demand and never stored.
type ScanComparison struct {
	Current         *ScanHistoryEntry `json:"current"`
	Previous        *ScanHistoryEntry `json:"previous"`
	ScoreDelta      int               `json:"scoreDelta"`
	NewThreats      int               `json:"newThreats"`
	ResolvedThreats int               `json:"resolvedThreats"`
	NewExposures    int               `json:"newExposures"`
}
