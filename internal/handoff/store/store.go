package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrSecretUnreadable means a stored secret could not be decrypted,
	// usually because the master key changed.
	ErrSecretUnreadable = errors.New("store: secret unreadable")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so a Tx-scoped store cannot start another Tx.
type Store interface {
	Scopes() Scopes
	ExchangeStates() ExchangeStates
	RateLimits() RateLimits

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Scopes is read by the issuer. The write methods exist for the scope
// importer and tests; no request path calls them.
type Scopes interface {
	// GetScopeByID returns a scope with its secret decrypted.
	GetScopeByID(ctx context.Context, id string) (domain.TargetScope, error)

	// ListScopesForEmail returns live scopes whose authorised set contains email.
	ListScopesForEmail(ctx context.Context, email string) ([]domain.ScopeSummary, error)

	// UpsertScope creates or replaces a scope and its authorised members.
	UpsertScope(ctx context.Context, s domain.TargetScope) error

	// DeleteScope removes a scope and its members.
	DeleteScope(ctx context.Context, id string) error

	// ListScopeIDs returns every stored scope id.
	ListScopeIDs(ctx context.Context) ([]string, error)
}

// ExchangeStates holds one-time state handles.
type ExchangeStates interface {
	// CreateExchangeState inserts a new record. Duplicate ids fail with
	// ErrAlreadyExists.
	CreateExchangeState(ctx context.Context, s domain.ExchangeState) error

	// TakeExchangeState deletes the record and returns it in one atomic
	// step. Absent records yield ErrNotFound.
	TakeExchangeState(ctx context.Context, id string) (domain.ExchangeState, error)

	// DeleteExpiredExchangeStates removes every record with expires_at < now.
	DeleteExpiredExchangeStates(ctx context.Context, now time.Time) (int64, error)
}

// RateLimits is a sliding-window request log shared by every instance that
// points at the same database.
type RateLimits interface {
	// RecordHit counts a request for key at now unless max requests already
	// landed in (now-window, now]. It reports whether the hit was recorded
	// and, when rejected, the time the oldest counted hit leaves the window.
	RecordHit(ctx context.Context, key string, window time.Duration, max int, now time.Time) (allowed bool, retryAt time.Time, err error)

	// DeleteHitsBefore prunes hits older than cutoff.
	DeleteHitsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
