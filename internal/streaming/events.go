package streaming

import (
	"time"

	"github.com/google/uuid"

	"shadowcleaner/internal/domain/models"
)

// EventType represents the type of scan event
type EventType string

const (
	EventTypeScanCompleted  EventType = "scan.completed"
	EventTypeThreatDetected EventType = "threat.detected"
)

// Event is the envelope published on the bus. Exactly one payload is set.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ScanCompleted  *ScanCompletedEvent  `json:"scanCompleted,omitempty"`
	ThreatDetected *ThreatDetectedEvent `json:"threatDetected,omitempty"`
}

// ScanCompletedEvent summarizes a finished scan
type ScanCompletedEvent struct {
	ScanID        string             `json:"scanId"`
	Score         int                `json:"score"`
	ThreatLevel   models.ThreatLevel `json:"threatLevel"`
	ThreatCount   int                `json:"threatCount"`
	ExposureCount int                `json:"exposureCount"`
	Timestamp     time.Time          `json:"timestamp"`
}

// ThreatDetectedEvent announces a high or critical detection
type ThreatDetectedEvent struct {
	ScanID      string            `json:"scanId"`
	ThreatType  models.ThreatType `json:"threatType"`
	Severity    models.Severity   `json:"severity"`
	ContactName string            `json:"contactName"`
	Channel     models.Channel    `json:"channel,omitempty"`
}

// NewScanCompletedEvent creates an event from a scan response
func NewScanCompletedEvent(resp models.ScanResponse) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeScanCompleted,
		Timestamp: time.Now(),
		ScanCompleted: &ScanCompletedEvent{
			ScanID:        resp.ScanID,
			Score:         resp.ShadowScore.Score,
			ThreatLevel:   resp.ShadowScore.ThreatLevel,
			ThreatCount:   len(resp.Threats),
			ExposureCount: len(resp.Exposures),
			Timestamp:     resp.Timestamp,
		},
	}
}

// NewThreatDetectedEvent creates an event for one detection
func NewThreatDetectedEvent(scanID string, t models.ThreatDetection) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeThreatDetected,
		Timestamp: time.Now(),
		ThreatDetected: &ThreatDetectedEvent{
			ScanID:      scanID,
			ThreatType:  t.ThreatType,
			Severity:    t.Severity,
			ContactName: t.ContactName,
			Channel:     t.Channel,
		},
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Minimum severity for threat events (empty = all)
	MinSeverity models.Severity `json:"minSeverity,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *Event) bool {
	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.MinSeverity != "" && event.ThreatDetected != nil {
		if !event.ThreatDetected.Severity.AtLeast(s.MinSeverity) {
			return false
		}
	}

	return true
}
