package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrMissingBearer = errors.New("httpx: missing bearer token")

// TokenAuthenticator resolves a bearer credential into a request context
// that carries the caller's identity.
type TokenAuthenticator interface {
	AuthenticateBearer(ctx context.Context, token string) (context.Context, error)
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// BearerToken extracts the credential from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(authz[len("Bearer "):])
	return raw, raw != ""
}

func AuthnMiddleware(a TokenAuthenticator, onError ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="missing bearer token"`)
				onError(w, r, ErrMissingBearer)
				return
			}

			ctx, err := a.AuthenticateBearer(r.Context(), raw)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
