package models

import "time"

// WaitlistSource records where a sign-up came from
type WaitlistSource string

const (
	WaitlistHomepage      WaitlistSource = "homepage"
	WaitlistShadowCleaner WaitlistSource = "shadow-cleaner"
	WaitlistPostScan      WaitlistSource = "post-scan"
)

// IsValid reports whether s is a known source.
func (s WaitlistSource) IsValid() bool {
	switch s {
	case WaitlistHomepage, WaitlistShadowCleaner, WaitlistPostScan:
		return true
	}
	return false
}

// WaitlistEntry is one early-access sign-up
type WaitlistEntry struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Timestamp    time.Time      `json:"timestamp"`
	Position     int            `json:"position"`
	Source       WaitlistSource `json:"source"`
	ReferralCode string         `json:"referralCode,omitempty"`
}

// WaitlistJoinResult is returned to the caller after joining
type WaitlistJoinResult struct {
	Success       bool   `json:"success"`
	Position      int    `json:"position"`
	TotalWaitlist int    `json:"totalWaitlist"`
	Message       string `json:"message"`
	ReferralCode  string `json:"referralCode"`
	AlreadyJoined bool   `json:"alreadyJoined"`
}
