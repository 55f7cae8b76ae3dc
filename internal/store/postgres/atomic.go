package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// txKey carries the open transaction through the context handed to the
// function running atomically. Repositories pick it up via ext.
type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// ext returns the executor for ctx: the enclosing transaction when one is
// open, the pool otherwise.
func ext(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// Atomic implements store.Atomic with a database transaction, so the event
// append and the projection write of one protocol run commit or fail as a
// unit.
type Atomic struct {
	db *sqlx.DB
}

// NewAtomic returns a transaction-backed Atomic.
func NewAtomic(db *sqlx.DB) *Atomic {
	return &Atomic{db: db}
}

func (a *Atomic) RunAtomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		// Already inside a unit; nested runs join it.
		return fn(ctx)
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
