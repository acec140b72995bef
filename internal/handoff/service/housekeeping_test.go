package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingRunOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ex := &ExchangeService{Store: s}
	limiter := &StoreLimiter{Store: s}

	_, err := ex.Create(ctx, "u1", "old", time.Minute, testNow.Add(-time.Hour))
	require.NoError(t, err)
	live, err := ex.Create(ctx, "u1", "live", time.Minute, testNow)
	require.NoError(t, err)

	policy := httpx.RateLimitPolicy{Name: "ISSUE", RequestsPerWindow: 10, Window: time.Minute}
	_, _, err = limiter.Allow(ctx, "k", policy, testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	_, _, err = limiter.Allow(ctx, "k", policy, testNow)
	require.NoError(t, err)

	hk := NewHousekeepingService(ex, limiter, discardLogger(), 0, time.Hour)
	hk.Now = fixedClock(testNow)
	require.Equal(t, DefaultHousekeepingInterval, hk.Interval)

	res := hk.RunOnce(ctx)
	require.Equal(t, Sweep{ExchangeStates: 1, RateLimitHits: 1}, res)

	_, err = ex.Consume(ctx, live, testNow)
	require.NoError(t, err)
}

func TestHousekeepingWithoutStoreLimiter(t *testing.T) {
	ex := &ExchangeService{Store: newTestStore(t)}
	hk := NewHousekeepingService(ex, nil, discardLogger(), time.Minute, 0)

	res := hk.RunOnce(context.Background())
	require.Zero(t, res.Errors)
}

func TestHousekeepingStartStop(t *testing.T) {
	ex := &ExchangeService{Store: newTestStore(t)}
	hk := NewHousekeepingService(ex, nil, discardLogger(), 10*time.Millisecond, 0)

	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
