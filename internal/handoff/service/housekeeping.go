package service

import (
	"context"
	"log/slog"
	"time"
)

// DefaultHousekeepingInterval matches how often abandoned states are swept.
const DefaultHousekeepingInterval = 5 * time.Minute

// HousekeepingService periodically deletes expired exchange states and
// rate-limit hits that no window can still count.
type HousekeepingService struct {
	Exchange *ExchangeService
	Limiter  *StoreLimiter // nil when rate limits live in memory
	Logger   *slog.Logger
	Interval time.Duration

	// HitRetention must be at least the longest rate-limit window.
	HitRetention time.Duration
	Now          func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to five minutes.
func NewHousekeepingService(exchange *ExchangeService, limiter *StoreLimiter, logger *slog.Logger, interval, hitRetention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	if hitRetention <= 0 {
		hitRetention = time.Hour
	}

	return &HousekeepingService{
		Exchange:     exchange,
		Limiter:      limiter,
		Logger:       logger,
		Interval:     interval,
		HitRetention: hitRetention,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs one cleanup pass. Each step is independent; a failure
// in one does not skip the other.
func (s *HousekeepingService) RunOnce(ctx context.Context) Sweep {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var res Sweep

	states, err := s.Exchange.Sweep(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired exchange states", "error", err)
		res.Errors++
	} else {
		res.ExchangeStates = states
	}

	if s.Limiter != nil {
		hitCtx, cancel := withTimeout(ctx, s.Limiter.Timeout)
		hits, err := s.Limiter.Store.RateLimits().DeleteHitsBefore(hitCtx, now.Add(-s.HitRetention))
		cancel()
		if err != nil {
			s.Logger.Error("failed to prune rate limit hits", "error", err)
			res.Errors++
		} else {
			res.RateLimitHits = hits
		}
	}

	s.Logger.Info("housekeeping cleanup completed",
		"exchange_states_deleted", res.ExchangeStates,
		"rate_limit_hits_deleted", res.RateLimitHits,
		"errors", res.Errors,
	)
	return res
}

// Sweep summarises one housekeeping pass.
type Sweep struct {
	ExchangeStates int64
	RateLimitHits  int64
	Errors         int
}
