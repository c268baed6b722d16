package episode

import (
	"context"

	"github.com/narwhalmedia/episodes/internal/domain/events"
)

// UnitOfWork defines the interface for managing transactions across repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction. Repositories called with
// Context() join it and hand it the events they drain from aggregates.
type Transaction interface {
	// Commit commits the transaction
	Commit() error
	// Rollback rolls back the transaction; it is a no-op after Commit
	Rollback() error
	// Context returns the transaction context
	Context() context.Context
	// Events returns the domain events drained while the transaction was open
	Events() []events.Event
}

// RunInTransaction runs fn in a new transaction. The events drained inside
// it go to dispatcher only after the commit succeeded; on any error they
// are discarded with the transaction.
func RunInTransaction(ctx context.Context, uow UnitOfWork, dispatcher events.Dispatcher, fn func(ctx context.Context) error) error {
	tx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx.Context()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	dispatcher.Dispatch(ctx, tx.Events()...)
	return nil
}
