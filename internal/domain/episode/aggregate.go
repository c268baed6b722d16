package episode

import (
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/events"
)

// AggregateType names the episode aggregate on events
const AggregateType = "episode"

// BaseAggregate provides identity, optimistic version and timestamps.
// The id and version are owned by the persistence layer.
type BaseAggregate struct {
	id        int64
	version   int
	createdAt time.Time
	updatedAt time.Time
	ledger    events.Ledger
}

func newBaseAggregate(now time.Time) BaseAggregate {
	return BaseAggregate{
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the aggregate's ID, zero until first saved
func (a *BaseAggregate) ID() int64 {
	return a.id
}

// Version returns the last persisted version, zero for new aggregates
func (a *BaseAggregate) Version() int {
	return a.version
}

// CreatedAt returns the aggregate's creation time
func (a *BaseAggregate) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns the aggregate's last update time
func (a *BaseAggregate) UpdatedAt() time.Time {
	return a.updatedAt
}

// IsNew reports whether the aggregate was never persisted
func (a *BaseAggregate) IsNew() bool {
	return a.id == 0
}

// AssignID records the identity handed out by the store on first insert
// and back-fills it on buffered events.
func (a *BaseAggregate) AssignID(id int64) {
	if a.id != 0 {
		return
	}
	a.id = id
	a.ledger.BindAggregateID(id)
}

// MarkPersisted records the version the store committed
func (a *BaseAggregate) MarkPersisted(version int) {
	a.version = version
}

// PendingEvents returns the events raised since the last drain
func (a *BaseAggregate) PendingEvents() []events.Event {
	return a.ledger.Pending()
}

// DrainEvents hands the buffered events to the caller and empties the buffer
func (a *BaseAggregate) DrainEvents() []events.Event {
	return a.ledger.Drain()
}

// ClearEvents discards the buffered events
func (a *BaseAggregate) ClearEvents() {
	a.ledger.Clear()
}

func (a *BaseAggregate) record(e events.Event) {
	a.ledger.Record(e)
}

func (a *BaseAggregate) touch(now time.Time) {
	a.updatedAt = now
}

// nextVersion is the version the pending changes will commit as
func (a *BaseAggregate) nextVersion() int {
	return a.version + 1
}
