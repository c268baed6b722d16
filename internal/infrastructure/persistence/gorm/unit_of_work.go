package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

type txKey struct{}

// UnitOfWork implements the Unit of Work pattern for GORM
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new GORM-based unit of work
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Begin starts a new transaction
func (u *UnitOfWork) Begin(ctx context.Context) (appepisode.Transaction, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.Failure("Database.BeginFailed", "begin transaction", tx.Error)
	}

	t := &gormTransaction{tx: tx}
	t.ctx = context.WithValue(ctx, txKey{}, t)
	return t, nil
}

// gormTransaction implements the Transaction interface for GORM
type gormTransaction struct {
	tx     *gorm.DB
	ctx    context.Context
	events []events.Event
	done   bool
}

// Commit commits the transaction
func (t *gormTransaction) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	if err := t.tx.Commit().Error; err != nil {
		return apperrors.Failure("Database.CommitFailed", "commit transaction", err)
	}
	t.done = true
	return nil
}

// Rollback rolls back the transaction and discards the collected events
func (t *gormTransaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.events = nil
	if err := t.tx.Rollback().Error; err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return nil
		}
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Context returns the transaction context
func (t *gormTransaction) Context() context.Context {
	return t.ctx
}

// Events returns the drained domain events in the order they were raised
func (t *gormTransaction) Events() []events.Event {
	out := make([]events.Event, len(t.events))
	copy(out, t.events)
	return out
}

func (t *gormTransaction) collect(evts []events.Event) {
	t.events = append(t.events, evts...)
}

func transactionFrom(ctx context.Context) *gormTransaction {
	t, _ := ctx.Value(txKey{}).(*gormTransaction)
	if t == nil || t.done {
		return nil
	}
	return t
}
