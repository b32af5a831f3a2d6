package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyScanRequest is returned when a scan request carries no input at all.
var ErrEmptyScanRequest = errors.New("empty scan request")

// ScanRequest is the full set of inputs for one scan.
type ScanRequest struct {
	Email            string            `json:"email,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	TelegramContacts []TelegramContact `json:"telegramContacts,omitempty"`
	WhatsAppContacts []WhatsAppContact `json:"whatsappContacts,omitempty"`
	SMSMessages      []SMSMessage      `json:"smsMessages,omitempty"`
	CheckDarkWeb     bool              `json:"checkDarkWeb,omitempty"`
}

// IsEmpty reports whether the request has nothing to scan.
func (r ScanRequest) IsEmpty() bool {
	return strings.TrimSpace(r.Email) == "" &&
		strings.TrimSpace(r.Phone) == "" &&
		len(r.TelegramContacts) == 0 &&
		len(r.WhatsAppContacts) == 0 &&
		len(r.SMSMessages) == 0
}

// Validate rejects empty requests before any scanning work begins.
func (r ScanRequest) Validate() error {
	if r.IsEmpty() {
		return ErrEmptyScanRequest
	}
	return nil
}

// ScanResponse is the full result of one scan.
type ScanResponse struct {
	ShadowScore     ShadowScore             `json:"shadowScore"`
	Exposures       []ExposureReport        `json:"exposures"`
	Threats         []ThreatDetection       `json:"threats"`
	Recommendations []CleanupRecommendation `json:"recommendations"`
	DarkWebResults  []DarkWebResult         `json:"darkWebResults,omitempty"`
	ScanID          string                  `json:"scanId"`
	Timestamp       time.Time               `json:"timestamp"`
}

// ChannelScanResponse is returned by the per-channel endpoints.
type ChannelScanResponse struct {
	Threats         []ThreatDetection `json:"threats"`
	SafeCount       int               `json:"safeCount"`
	SuspiciousCount int               `json:"suspiciousCount"`
	CriticalCount   int               `json:"criticalCount"`
}

// NewChannelScanResponse counts the threats found among total inputs.
func NewChannelScanResponse(total int, threats []ThreatDetection) ChannelScanResponse {
	if threats == nil {
		threats = []ThreatDetection{}
	}
	return ChannelScanResponse{
		Threats:         threats,
		SafeCount:       total - len(threats),
		SuspiciousCount: CountBySeverity(threats, SeverityLow, SeverityMedium),
		CriticalCount:   CountBySeverity(threats, SeverityHigh, SeverityCritical),
	}
}
