package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
	"github.com/google/uuid"
)

// ExchangeService keeps minted tokens behind one-time state handles so the
// token itself never travels through the browser.
type ExchangeService struct {
	Store        store.Store
	TTL          time.Duration
	StoreTimeout time.Duration
	Now          func() time.Time
}

// ExchangeResult is what a successful Consume hands back.
type ExchangeResult struct {
	Token       string
	PrincipalID string
}

func (s *ExchangeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ExchangeService) ttl(ttl time.Duration) time.Duration {
	switch {
	case ttl > 0:
		return ttl
	case s.TTL > 0:
		return s.TTL
	default:
		return domain.DefaultExchangeStateTTL
	}
}

// Create stores token under a fresh UUID v4 handle owned by principalID.
// ttl <= 0 uses the service default.
func (s *ExchangeService) Create(ctx context.Context, principalID, token string, ttl time.Duration, now time.Time) (string, error) {
	if principalID == "" {
		return "", ErrUnauthenticated
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrMalformedInput)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%w: generate state id: %v", ErrTransient, err)
	}

	state := domain.ExchangeState{
		ID:          id.String(),
		Token:       token,
		PrincipalID: principalID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl(ttl)),
	}

	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Store.ExchangeStates().CreateExchangeState(ctx, state); err != nil {
		return "", storeError("create exchange state", err)
	}
	return state.ID, nil
}

// Consume redeems a state handle exactly once. The record is removed in
// the same statement that reads it, so it never yields a token twice.
func (s *ExchangeService) Consume(ctx context.Context, stateID string, now time.Time) (*ExchangeResult, error) {
	stateID, err := ParseStateID(stateID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	state, err := s.Store.ExchangeStates().TakeExchangeState(ctx, stateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("take exchange state", err)
	}

	if state.Expired(now) {
		slogx.FromContext(ctx).Info("expired handoff state presented",
			slog.String("principal_id", state.PrincipalID),
		)
		return nil, ErrExpired
	}

	return &ExchangeResult{Token: state.Token, PrincipalID: state.PrincipalID}, nil
}

// ConsumeNow is Consume at the service clock.
func (s *ExchangeService) ConsumeNow(ctx context.Context, stateID string) (*ExchangeResult, error) {
	return s.Consume(ctx, stateID, s.now())
}

// Sweep deletes every state that expired before now, consumed or not.
func (s *ExchangeService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	n, err := s.Store.ExchangeStates().DeleteExpiredExchangeStates(ctx, now)
	if err != nil {
		return 0, storeError("sweep exchange states", err)
	}
	return n, nil
}

// ParseStateID accepts only hyphenated UUID v4 strings and returns the
// lowercase form the store keys on.
func ParseStateID(stateID string) (string, error) {
	// uuid.Parse also takes urn: and braced forms; handles are never sent that way.
	if len(stateID) != 36 {
		return "", fmt.Errorf("%w: state id is not a UUID", ErrMalformedInput)
	}
	id, err := uuid.Parse(stateID)
	if err != nil || id.Version() != 4 || id.Variant() != uuid.RFC4122 {
		return "", fmt.Errorf("%w: state id is not a UUID v4", ErrMalformedInput)
	}
	return id.String(), nil
}
