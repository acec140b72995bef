package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/aussiebroadwan/handoff/pkg/cryptox"
	"github.com/aussiebroadwan/handoff/pkg/idx"
	"github.com/aussiebroadwan/handoff/pkg/jwtx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

// IssuerService mints handoff tokens for one issuer/audience pair. Every
// scope goes through the same code path; only the TargetScope differs.
type IssuerService struct {
	Store    store.Store
	Issuer   string
	Audience string
	TokenTTL time.Duration

	// DefaultScopeID is used when a request names no scope.
	DefaultScopeID string
	StoreTimeout   time.Duration
	Now            func() time.Time
}

// IssuedToken is a freshly minted token with the claims it carries.
type IssuedToken struct {
	Token  string
	Claims jwtx.Claims
}

// ExpiresIn is the token lifetime in whole seconds.
func (t *IssuedToken) ExpiresIn() int64 {
	return t.Claims.ExpiresAt - t.Claims.IssuedAt
}

func (s *IssuerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue mints a token for principal on scope at now. The principal must
// come from a verified session, never from request fields.
func (s *IssuerService) Issue(ctx context.Context, principal domain.Principal, scope domain.TargetScope, now time.Time) (*IssuedToken, error) {
	l := slogx.FromContext(ctx)

	if principal.IsZero() {
		return nil, ErrUnauthenticated
	}

	if !scope.Live || !scope.Authorizes(principal.Email) {
		l.Warn("handoff issuance denied",
			slog.String("principal_id", principal.ID),
			slog.String("scope_id", scope.ID),
		)
		return nil, ErrForbidden
	}

	// Fail closed: never sign with an empty secret.
	if len(scope.Secret) == 0 {
		l.Error("handoff scope has no signing secret", slog.String("scope_id", scope.ID))
		return nil, fmt.Errorf("%w: scope %q has no signing secret", ErrConfig, scope.ID)
	}

	claims := jwtx.NewHandoffClaims(
		principal.ID,
		principal.Email,
		scope.ID,
		scope.Name,
		s.Issuer,
		s.Audience,
		idx.NewAt(now.UTC()).String(),
		s.TokenTTL,
		now,
	)

	token, err := jwtx.Encode(jwtx.DefaultHeader, claims, scope.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: encode token: %v", ErrConfig, err)
	}

	l.Info("handoff token issued",
		slog.String("principal_id", principal.ID),
		slog.String("email", principal.Email),
		slog.String("scope_id", scope.ID),
		slog.String("scope", scope.Name),
		slog.String("jti", claims.ID),
		slog.String("token_fp", cryptox.FingerprintToken(token)),
	)

	return &IssuedToken{Token: token, Claims: claims}, nil
}

// IssueForScope loads scopeID (or the default scope) and issues for
// principal at the service clock. Unknown scopes are FORBIDDEN so callers
// cannot probe which ids exist.
func (s *IssuerService) IssueForScope(ctx context.Context, principal domain.Principal, scopeID string) (*IssuedToken, error) {
	if principal.IsZero() {
		return nil, ErrUnauthenticated
	}

	scope, err := s.LoadScope(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	return s.Issue(ctx, principal, scope, s.now())
}

// LoadScope fetches a scope with its decrypted secret.
func (s *IssuerService) LoadScope(ctx context.Context, scopeID string) (domain.TargetScope, error) {
	scopeID = strings.TrimSpace(scopeID)
	if scopeID == "" {
		scopeID = s.DefaultScopeID
	}
	if scopeID == "" {
		return domain.TargetScope{}, fmt.Errorf("%w: no scope requested and no default scope configured", ErrMalformedInput)
	}

	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	scope, err := s.Store.Scopes().GetScopeByID(ctx, scopeID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.TargetScope{}, ErrForbidden
		case errors.Is(err, store.ErrSecretUnreadable):
			slogx.FromContext(ctx).Error("handoff scope secret unreadable", slog.String("scope_id", scopeID), slog.Any("error", err))
			return domain.TargetScope{}, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return domain.TargetScope{}, storeError("load scope", err)
	}
	return scope, nil
}

// ListScopes returns the live scopes principal may launch, ids and names only.
func (s *IssuerService) ListScopes(ctx context.Context, principal domain.Principal) ([]domain.ScopeSummary, error) {
	if principal.IsZero() {
		return nil, ErrUnauthenticated
	}

	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	scopes, err := s.Store.Scopes().ListScopesForEmail(ctx, principal.Email)
	if err != nil {
		return nil, storeError("list scopes", err)
	}
	return scopes, nil
}
