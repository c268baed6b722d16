package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event raised by an aggregate
type Event interface {
	ID() uuid.UUID
	AggregateID() int64
	AggregateType() string
	EventType() string
	Version() int
	OccurredAt() time.Time
	// BindAggregateID fills in the identity of an aggregate that was
	// created in the same transaction. It never overwrites a known id.
	BindAggregateID(id int64)
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	id            uuid.UUID
	aggregateID   int64
	aggregateType string
	eventType     string
	version       int
	occurredAt    time.Time
}

// NewBaseEvent creates a new base event
func NewBaseEvent(aggregateID int64, aggregateType, eventType string, version int) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		eventType:     eventType,
		version:       version,
		occurredAt:    time.Now().UTC(),
	}
}

// ID returns the event ID
func (e *BaseEvent) ID() uuid.UUID {
	return e.id
}

// AggregateID returns the aggregate ID
func (e *BaseEvent) AggregateID() int64 {
	return e.aggregateID
}

// AggregateType returns the aggregate type
func (e *BaseEvent) AggregateType() string {
	return e.aggregateType
}

// EventType returns the event type
func (e *BaseEvent) EventType() string {
	return e.eventType
}

// Version returns the aggregate version the event was raised against
func (e *BaseEvent) Version() int {
	return e.version
}

// OccurredAt returns when the event was raised
func (e *BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// BindAggregateID sets the aggregate id if it is still unknown
func (e *BaseEvent) BindAggregateID(id int64) {
	if e.aggregateID == 0 {
		e.aggregateID = id
	}
}

// Handler reacts to one committed domain event
type Handler func(ctx context.Context, event Event) error

// Dispatcher hands committed events to their subscribers. Subscriber
// failures are the dispatcher's to report; they never reach the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, evts ...Event)
}
