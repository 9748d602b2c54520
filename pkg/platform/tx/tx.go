// Package tx carries SQL transactions through context and provides a Runner
// abstraction so services can group multi-store writes into one atomic unit
// without knowing which storage backend is wired.
package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Postgres
// stores query through it so the same code runs inside and outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier resolves the DBTX for a context: the context transaction when one
// is running, otherwise the base handle.
func Querier(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Runner executes a function as one atomic unit. Either every store write
// inside fn commits, or none do.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner implements Runner over database/sql transactions. The opened
// transaction rides in the context so stores pick it up via Querier.
type SQLRunner struct {
	db *sql.DB
}

// NewSQLRunner constructs a Runner bound to the given database handle.
func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// MemoryRunner serializes units of work behind a single mutex. In-memory
// stores are per-entity consistent on their own; the runner gives multi-store
// sequences the same exactly-one-winner property the SQL runner gets from
// transactions.
//
// Rollback is not simulated: in-memory composition orders its writes so the
// guarded conditional (link claim) runs first and later writes cannot fail.
type MemoryRunner struct {
	mu sync.Mutex
}

// NewMemoryRunner constructs a mutex-backed Runner for in-memory wiring.
func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
