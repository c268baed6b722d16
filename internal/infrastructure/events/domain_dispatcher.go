package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/domain/events"
)

// subscriber is a named handler registered for one event type
type subscriber struct {
	name   string
	handle events.Handler
}

// InMemoryDomainEventDispatcher runs subscribers synchronously, in
// registration order, right after a transaction commits. Each subscriber
// runs even when an earlier one failed or panicked.
type InMemoryDomainEventDispatcher struct {
	subscribers map[string][]subscriber
	mu          sync.RWMutex
	logger      *zap.Logger
}

// NewInMemoryDomainEventDispatcher creates a new in-memory domain event dispatcher
func NewInMemoryDomainEventDispatcher(logger *zap.Logger) *InMemoryDomainEventDispatcher {
	return &InMemoryDomainEventDispatcher{
		subscribers: make(map[string][]subscriber),
		logger:      logger.Named("dispatcher"),
	}
}

// Subscribe appends a named handler for eventType
func (d *InMemoryDomainEventDispatcher) Subscribe(eventType, name string, handler events.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subscribers[eventType] = append(d.subscribers[eventType], subscriber{name: name, handle: handler})
}

// Dispatch delivers each event, in order, to every subscriber of its type
func (d *InMemoryDomainEventDispatcher) Dispatch(ctx context.Context, evts ...events.Event) {
	for _, event := range evts {
		d.mu.RLock()
		subs := d.subscribers[event.EventType()]
		d.mu.RUnlock()

		if len(subs) == 0 {
			d.logger.Debug("no subscribers for event", zap.String("event_type", event.EventType()))
			continue
		}

		for _, sub := range subs {
			if err := d.run(ctx, sub, event); err != nil {
				d.logger.Error("subscriber failed",
					zap.Error(err),
					zap.String("subscriber", sub.name),
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.ID().String()),
					zap.Int64("episode_id", event.AggregateID()),
				)
			}
		}
	}
}

func (d *InMemoryDomainEventDispatcher) run(ctx context.Context, sub subscriber, event events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return sub.handle(ctx, event)
}
