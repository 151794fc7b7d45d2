// Package tx implements the ledger unit of work.
//
// Every state-changing call runs inside Ledger.RunInTx. Calls are serialized
// behind a single lock, so no caller ever observes another call's in-flight
// writes. In-memory stores register undo actions with OnRollback; when a
// database is configured a *sql.Tx is opened and carried in the context for
// Postgres stores. Any error returned by the callback (or a panic) rolls back
// both. AfterCommit hooks run only once the unit commits. A RunInTx nested inside another joins the outer unit, so a failure
// in a callee aborts the caller's whole transaction.
package tx

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	dErrors "veriledger/pkg/domain-errors"
)

const defaultTimeout = 5 * time.Second

// Runner provides a transactional boundary for ledger mutations.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DBTX is the subset of *sql.DB and *sql.Tx used by Postgres stores.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type unitKey struct{}

type unit struct {
	sqlTx     *sql.Tx
	undo      []func()
	committed []func()
}

func (u *unit) rollback() {
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
	u.committed = nil
	if u.sqlTx != nil {
		_ = u.sqlTx.Rollback() //nolint:errcheck // rollback after a failed commit is a no-op
	}
}

// Ledger is the shared unit-of-work coordinator.
type Ledger struct {
	mu      sync.Mutex
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithDB opens a SQL transaction for every unit of work.
func WithDB(db *sql.DB) Option {
	return func(l *Ledger) {
		l.db = db
	}
}

// WithTimeout overrides the default 5s transaction deadline.
func WithTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger used for rollback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger creates a coordinator. Without WithDB it is purely in-memory.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunInTx runs fn as one atomic, serialized unit of work.
func (l *Ledger) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, ok := ctx.Value(unitKey{}).(*unit); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	u := &unit{}
	if l.db != nil {
		sqlTx, beginErr := l.db.BeginTx(ctx, nil)
		if beginErr != nil {
			return dErrors.Wrap(beginErr, dErrors.CodeInternal, "failed to begin transaction")
		}
		u.sqlTx = sqlTx
	}

	defer func() {
		if r := recover(); r != nil {
			u.rollback()
			panic(r)
		}
	}()

	txCtx := context.WithValue(ctx, unitKey{}, u)
	if err := fn(txCtx); err != nil {
		u.rollback()
		l.logRollback(ctx, err)
		return err
	}

	if u.sqlTx != nil {
		if err := u.sqlTx.Commit(); err != nil {
			u.sqlTx = nil
			u.rollback()
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
		}
	}
	for _, hook := range u.committed {
		hook()
	}
	return nil
}

func (l *Ledger) logRollback(ctx context.Context, err error) {
	if l.logger == nil {
		return
	}
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		l.logger.DebugContext(ctx, "transaction rolled back", "code", string(de.Code))
		return
	}
	l.logger.WarnContext(ctx, "transaction rolled back", "error", err)
}

// OnRollback registers an undo action for the enclosing unit of work.
// Outside a unit of work it is a no-op.
func OnRollback(ctx context.Context, undo func()) {
	if u, ok := ctx.Value(unitKey{}).(*unit); ok {
		u.undo = append(u.undo, undo)
	}
}

// AfterCommit registers fn to run once the enclosing unit of work commits.
// It is dropped on rollback. Outside a unit of work fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if u, ok := ctx.Value(unitKey{}).(*unit); ok {
		u.committed = append(u.committed, fn)
		return
	}
	fn()
}

// InTx reports whether ctx carries a unit of work.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(unitKey{}).(*unit)
	return ok
}

// From extracts the SQL transaction of the enclosing unit of work if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	u, ok := ctx.Value(unitKey{}).(*unit)
	if !ok || u.sqlTx == nil {
		return nil, false
	}
	return u.sqlTx, true
}

// Executor returns the active SQL transaction, or db when none is open.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if sqlTx, ok := From(ctx); ok {
		return sqlTx
	}
	return db
}
