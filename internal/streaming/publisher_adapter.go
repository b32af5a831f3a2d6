package streaming

import (
	"context"

	"shadowcleaner/internal/domain/models"
)

// EventBusPublisher implements scan.EventPublisher using the EventBus and
// the WebSocket hub
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter. Either side may be nil.
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

// PublishScanCompleted publishes the summary of a finished scan
func (p *EventBusPublisher) PublishScanCompleted(ctx context.Context, resp models.ScanResponse) error {
	return p.publish(ctx, NewScanCompletedEvent(resp))
}

// PublishThreatDetected publishes one detection of a scan
func (p *EventBusPublisher) PublishThreatDetected(ctx context.Context, scanID string, threat models.ThreatDetection) error {
	return p.publish(ctx, NewThreatDetectedEvent(scanID, threat))
}

func (p *EventBusPublisher) publish(ctx context.Context, event *Event) error {
	if p.eventBus != nil {
		if err := p.eventBus.Publish(ctx, event); err != nil {
			return err
		}
	}

	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}

	return nil
}
