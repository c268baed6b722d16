package events

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/domain/events"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

// Message is one serialized integration event on its way to a broker
type Message struct {
	Destination string
	// Key groups messages of one episode; partitioned brokers route by it
	Key       string
	ID        string
	EventType string
	Data      []byte
}

// EventBus is the interface for the underlying message broker
type EventBus interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// ErrPublish is returned when the broker rejects an integration event
var ErrPublish = apperrors.New(apperrors.KindFailure, "Messaging.PublishError", "failed to publish integration event")

// IntegrationEventPublisher is an adapter that publishes integration events
type IntegrationEventPublisher struct {
	eventBus EventBus
	logger   *zap.Logger
}

// NewIntegrationEventPublisher creates a new integration event publisher
func NewIntegrationEventPublisher(eventBus EventBus, logger *zap.Logger) *IntegrationEventPublisher {
	return &IntegrationEventPublisher{
		eventBus: eventBus,
		logger:   logger.Named("integration"),
	}
}

// Publish serializes event and hands it to the broker under destination
func (p *IntegrationEventPublisher) Publish(ctx context.Context, destination string, event *events.IntegrationEvent) error {
	data, err := event.Marshal()
	if err != nil {
		return apperrors.Unexpected("Messaging.MarshalError", "marshal integration event", err)
	}

	msg := Message{
		Destination: destination,
		Key:         strconv.FormatInt(event.AggregateID, 10),
		ID:          event.EventID.String(),
		EventType:   event.EventType,
		Data:        data,
	}
	if err := p.eventBus.Publish(ctx, msg); err != nil {
		return &apperrors.AppError{
			Kind:    ErrPublish.Kind,
			Code:    ErrPublish.Code,
			Message: "publish " + event.EventType + " to " + destination,
			Err:     err,
		}
	}

	p.logger.Debug("integration event published",
		zap.String("event_id", event.EventID.String()),
		zap.String("event_type", event.EventType),
		zap.String("destination", destination),
		zap.Int64("episode_id", event.AggregateID),
	)
	return nil
}
