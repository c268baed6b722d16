package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IntegrationEvent is the wire-level copy of a domain event that other
// services consume
type IntegrationEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	AggregateID   int64     `json:"episode_id"`
	CorrelationID uuid.UUID `json:"correlation_id"`
	Payload       any       `json:"payload"`
}

// NewIntegrationEvent wraps payload into a new, uniquely identified
// integration event caused by source
func NewIntegrationEvent(eventType string, source Event, payload any) *IntegrationEvent {
	return &IntegrationEvent{
		EventID:       uuid.New(),
		EventType:     eventType,
		OccurredAt:    source.OccurredAt(),
		AggregateID:   source.AggregateID(),
		CorrelationID: source.ID(),
		Payload:       payload,
	}
}

// Marshal encodes the event as JSON
func (e *IntegrationEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// IntegrationEventPublisher hands integration events to an external queue
type IntegrationEventPublisher interface {
	// Publish sends event to the named destination (queue or topic)
	Publish(ctx context.Context, destination string, event *IntegrationEvent) error
}
