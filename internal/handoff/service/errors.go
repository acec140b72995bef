package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/store"
)

// Error kinds surfaced to the HTTP boundary. Handlers match them with
// errors.Is; the wrapped detail is for logs only.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrConfig          = errors.New("config_error")
	ErrMalformedInput  = errors.New("malformed_input")
	ErrExpired         = errors.New("expired")
	ErrNotFound        = errors.New("not_found")
	ErrRateLimited     = errors.New("rate_limited")
	ErrTransient       = errors.New("transient_error")
)

// withTimeout bounds a call to an external collaborator. A zero timeout
// still returns a cancellable context.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// storeError maps driver failures onto the service taxonomy. Not-found
// passes through so callers can decide what absence means to them.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", ErrTransient, op, err)
	}
}
