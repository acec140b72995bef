package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

// HandoffService ties issuance to the state exchange for the indirect flow.
type HandoffService struct {
	Issuer   *IssuerService
	Exchange *ExchangeService
}

// StateHandle is returned to the browser in place of the token.
type StateHandle struct {
	StateID   string
	ExpiresIn int64 // seconds
}

// Begin mints a token for principal on scopeID and parks it behind a new
// state handle.
func (s *HandoffService) Begin(ctx context.Context, principal domain.Principal, scopeID string) (*StateHandle, error) {
	issued, err := s.Issuer.IssueForScope(ctx, principal, scopeID)
	if err != nil {
		return nil, err
	}

	now := s.Exchange.now()
	ttl := s.Exchange.ttl(0)
	stateID, err := s.Exchange.Create(ctx, principal.ID, issued.Token, ttl, now)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("handoff state created",
		slog.String("principal_id", principal.ID),
		slog.String("scope_id", issued.Claims.ScopeID),
		slog.String("jti", issued.Claims.ID),
	)

	return &StateHandle{StateID: stateID, ExpiresIn: int64(ttl.Seconds())}, nil
}

// Redeem exchanges a state handle for its token.
func (s *HandoffService) Redeem(ctx context.Context, stateID string) (*ExchangeResult, error) {
	return s.Exchange.ConsumeNow(ctx, stateID)
}
