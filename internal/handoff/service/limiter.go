package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
)

// StoreLimiter is an httpx.Limiter backed by the shared database, so every
// instance pointed at the same store enforces one budget and counts
// survive restarts.
type StoreLimiter struct {
	Store   store.Store
	Timeout time.Duration
}

var _ httpx.Limiter = (*StoreLimiter)(nil)

func (l *StoreLimiter) Allow(ctx context.Context, key string, policy httpx.RateLimitPolicy, now time.Time) (bool, time.Duration, error) {
	ctx, cancel := withTimeout(ctx, l.Timeout)
	defer cancel()

	allowed, retryAt, err := l.Store.RateLimits().RecordHit(ctx, policy.Name+":"+key, policy.Window, policy.RequestsPerWindow, now)
	if err != nil {
		return false, 0, storeError("record rate limit hit", err)
	}
	if allowed {
		return true, 0, nil
	}
	return false, max(retryAt.Sub(now), 0), nil
}
