package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/infrastructure/events"
)

const publishTimeout = 5 * time.Second

// Publisher is the subset of JetStream the event bus needs
type Publisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventBus implements events.EventBus on JetStream. Destinations map to
// subjects "<prefix>.<destination>"; the message id is the dedup key.
type EventBus struct {
	js     Publisher
	prefix string
	logger *zap.Logger
}

// NewEventBus creates a JetStream-backed event bus
func NewEventBus(js Publisher, subjectPrefix string, logger *zap.Logger) *EventBus {
	return &EventBus{
		js:     js,
		prefix: subjectPrefix,
		logger: logger.Named("event_bus"),
	}
}

// Subject returns the subject a destination publishes to
func (b *EventBus) Subject(destination string) string {
	return fmt.Sprintf("%s.%s", b.prefix, destination)
}

// Publish publishes msg and waits for the stream acknowledgment
func (b *EventBus) Publish(ctx context.Context, msg events.Message) error {
	out := nats.NewMsg(b.Subject(msg.Destination))
	out.Data = msg.Data
	out.Header.Set("Event-Type", msg.EventType)
	out.Header.Set("Episode-Id", msg.Key)

	var opts []jetstream.PublishOpt
	if msg.ID != "" {
		opts = append(opts, jetstream.WithMsgID(msg.ID))
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ack, err := b.js.PublishMsg(pubCtx, out, opts...)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", out.Subject, err)
	}

	b.logger.Debug("event published",
		zap.String("subject", out.Subject),
		zap.String("msg_id", msg.ID),
		zap.String("stream", ack.Stream),
		zap.Uint64("sequence", ack.Sequence),
		zap.Bool("duplicate", ack.Duplicate),
	)
	return nil
}

// Close is a no-op; the connection belongs to the Client
func (b *EventBus) Close() error {
	return nil
}
