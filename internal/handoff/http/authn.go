package http

import (
	"context"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

type principalKey struct{}

// SessionAuthenticator re-derives the principal from the bearer session on
// every request. Identity fields in request bodies are never trusted.
type SessionAuthenticator struct {
	Verifier service.SessionVerifier
}

// AuthenticateBearer implements httpx.TokenAuthenticator.
func (a *SessionAuthenticator) AuthenticateBearer(ctx context.Context, token string) (context.Context, error) {
	p, err := a.Verifier.Verify(ctx, token)
	if err != nil {
		return ctx, err
	}

	ctx = context.WithValue(ctx, principalKey{}, p)
	ctx = httpx.WithUserID(ctx, p.ID)
	ctx = slogx.With(ctx, "principal_id", p.ID)
	return ctx, nil
}

func principalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
