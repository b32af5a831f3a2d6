package models

import "time"

// DarkWebSourceType describes where a dark web finding was seen
type DarkWebSourceType string

const (
	DarkWebForum       DarkWebSourceType = "forum"
	DarkWebMarketplace DarkWebSourceType = "marketplace"
	DarkWebPaste       DarkWebSourceType = "paste"
	DarkWebBreach      DarkWebSourceType = "breach"
)

// DarkWebResult is a single dark web finding for a checked identifier.
type DarkWebResult struct {
	Source    string            `json:"source"`
	Type      DarkWebSourceType `json:"type"`
	DataFound []string          `json:"dataFound"`
	Severity  Severity          `json:"severity"`
	FirstSeen *time.Time        `json:"firstSeen,omitempty"`
	URL       string            `json:"url,omitempty"`
}
