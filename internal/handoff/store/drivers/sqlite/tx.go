package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/handoff/internal/handoff/store"
)

// errNestedTx is returned when code holding a Tx tries to open another one.
// SQLite has a single writer, so this would deadlock on the pooled conn.
var errNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore scopes every repository to one *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

var _ store.Tx = (*txStore)(nil)

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close leaves the underlying database open; the owner of the Tx finishes it.
func (t *txStore) Close() error { return nil }

// Ping succeeds while the transaction holds its connection.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error { return errNestedTx }

// Migrations run before any transaction is opened.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) atomic(ctx context.Context, fn func(q dbtx) error) error {
	return fn(t.tx)
}

func (t *txStore) Scopes() store.Scopes {
	return &scopesRepo{q: t.tx, atomic: t.atomic}
}

func (t *txStore) ExchangeStates() store.ExchangeStates {
	return &exchangeStatesRepo{q: t.tx}
}

func (t *txStore) RateLimits() store.RateLimits {
	return &rateLimitsRepo{q: t.tx, atomic: t.atomic}
}
