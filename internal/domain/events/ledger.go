package events

// Ledger is an ordered buffer of events an aggregate raised but nobody
// has dispatched yet. It is owned by a single aggregate instance and is
// not safe for concurrent use.
type Ledger struct {
	pending []Event
}

// Record appends an event
func (l *Ledger) Record(event Event) {
	l.pending = append(l.pending, event)
}

// Pending returns a copy of the buffered events in insertion order
func (l *Ledger) Pending() []Event {
	out := make([]Event, len(l.pending))
	copy(out, l.pending)
	return out
}

// Len returns the number of buffered events
func (l *Ledger) Len() int {
	return len(l.pending)
}

// Drain returns the buffered events and empties the ledger
func (l *Ledger) Drain() []Event {
	out := l.pending
	l.pending = nil
	return out
}

// Clear discards the buffered events
func (l *Ledger) Clear() {
	l.pending = nil
}

// BindAggregateID back-fills the aggregate id on every buffered event
func (l *Ledger) BindAggregateID(id int64) {
	for _, e := range l.pending {
		e.BindAggregateID(id)
	}
}
