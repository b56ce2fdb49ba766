package tx

import (
	"context"
	"database/sql"
	"fmt"
)

// Manager wraps transactional boundaries for multi-statement store
// operations. Within runs fn inside one transaction: any error from fn (or
// a panic) rolls back in full before propagating, so partial writes are
// never observable.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

type ctxKey struct{}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Store methods run against it so they work both inside and outside a
// managed transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// From returns the transaction carried by ctx, or fallback when none is
// in flight.
func From(ctx context.Context, fallback Querier) Querier {
	if t, ok := ctx.Value(ctxKey{}).(*sql.Tx); ok {
		return t
	}
	return fallback
}

type SQLManager struct {
	db *sql.DB
}

func NewSQLManager(db *sql.DB) *SQLManager {
	return &SQLManager{db: db}
}

func (m *SQLManager) Within(ctx context.Context, fn func(context.Context) error) (err error) {
	txn, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = txn.Rollback()
			panic(p)
		}
	}()
	if err := fn(context.WithValue(ctx, ctxKey{}, txn)); err != nil {
		_ = txn.Rollback()
		return err
	}
	if err := txn.Commit(); err != nil {
		_ = txn.Rollback()
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NoopManager runs fn directly. Used by tests that fake the store layer.
type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
