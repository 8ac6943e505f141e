package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// Subjects.
const (
	SubjectMapComputed   = "fifteenmap.map.computed"
	SubjectSessionPrefix = "fifteenmap.session."
	StreamMaps           = "FIFTEENMAP_MAPS"
)

// SessionSubject is the core NATS subject carrying one session's transitions.
func SessionSubject(sessionID string) string {
	return SubjectSessionPrefix + sessionID
}

// Publisher implements ports.EventPublisher. Computed maps go through
// JetStream so the recorder can catch up; session transitions are
// fire-and-forget on core NATS.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      StreamMaps,
		Subjects:  []string{"fifteenmap.map.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func (p *Publisher) PublishMapComputed(ctx context.Context, ev *domain.MapComputed) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectMapComputed, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.conn.Publish(SessionSubject(ev.SessionID), data)
}

// Conn exposes the underlying connection for the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("fifteenmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
