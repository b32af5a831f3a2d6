package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"shadowcleaner/internal/config"
	"shadowcleaner/pkg/logger"
)

// ErrNotConnected is returned when publishing without a live connection.
var ErrNotConnected = errors.New("NATS not connected")

// NATSPublisher handles publishing events to NATS JetStream
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	logger *logger.Logger

	mu        sync.RWMutex
	connected bool
}

// NewNATSPublisher connects to NATS and ensures the event stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	log = log.WithComponent("nats")

	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "SHADOW_EVENTS"
	}
	if cfg.Subjects.ScanCompleted == "" {
		cfg.Subjects.ScanCompleted = "shadow.scan.completed"
	}
	if cfg.Subjects.ThreatDetected == "" {
		cfg.Subjects.ThreatDetected = "shadow.threat.detected"
	}

	log.Info().Str("url", cfg.URL).Str("stream", cfg.StreamName).Msg("connecting to NATS")

	conn, err := nats.Connect(cfg.URL,
		nats.Name("shadow-cleaner"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// Scan summaries carry no identifiers, so a day of retention is enough
	// for downstream consumers to catch up.
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Shadow Cleaner scan events",
		Subjects:    []string{"shadow.>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		MaxBytes:    64 * 1024 * 1024,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	log.Info().Str("stream", stream.CachedInfo().Config.Name).Msg("NATS stream ready")

	return &NATSPublisher{
		conn:      conn,
		js:        js,
		config:    cfg,
		logger:    log,
		connected: true,
	}, nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.connected = false
	}
}

// IsConnected returns whether NATS is connected
func (p *NATSPublisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn.IsConnected()
}

// Publish publishes an event and waits for the stream acknowledgement
func (p *NATSPublisher) Publish(ctx context.Context, event *Event) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	subject := p.subject(event)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("event_type", string(event.Type)).
		Msg("published event")

	return nil
}

// subject returns the NATS subject for an event. Threat events are split by
// severity: shadow.threat.detected.<severity>.
func (p *NATSPublisher) subject(event *Event) string {
	return subjectFor(p.config.Subjects, event)
}

func subjectFor(subjects config.NATSSubjectsConfig, event *Event) string {
	switch event.Type {
	case EventTypeThreatDetected:
		severity := "unknown"
		if event.ThreatDetected != nil && event.ThreatDetected.Severity != "" {
			severity = string(event.ThreatDetected.Severity)
		}
		return subjects.ThreatDetected + "." + severity
	default:
		return subjects.ScanCompleted
	}
}
