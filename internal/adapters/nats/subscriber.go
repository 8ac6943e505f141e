package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
}

// NewSubscriber creates a subscriber whose JetStream consumers use durable.
func NewSubscriber(url, durable string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeMapComputed delivers every computed map at least once. A handler
// error naks the message for redelivery, up to three attempts.
func (s *Subscriber) SubscribeMapComputed(ctx context.Context, handler func(ctx context.Context, ev *domain.MapComputed) error) error {
	_, err := s.js.Subscribe(SubjectMapComputed, func(msg *nats.Msg) {
		var ev domain.MapComputed
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("dropping malformed map event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			slog.Warn("map event handler failed", "address", ev.Address, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	return err
}

// Close drains the connection. Subscriptions are not unsubscribed, since
// that would delete the durable consumer and lose its position.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
