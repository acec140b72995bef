package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func fakeIdentityProvider(t *testing.T) *httptest.Server {
	t.Helper()
	// Requests missing the api key or hitting the wrong path get a 400,
	// which the verifier reports as transient and the tests would catch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" || r.Header.Get("apikey") != "anon-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch r.Header.Get("Authorization") {
		case "Bearer good-session":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "A@x.com"})
		case "Bearer no-email":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1"})
		case "Bearer slow":
			time.Sleep(200 * time.Millisecond)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "a@x.com"})
		case "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSessionVerifier(t *testing.T) {
	srv := fakeIdentityProvider(t)
	v := NewHTTPSessionVerifier(srv.URL+"/", "anon-key", 50*time.Millisecond, 0)
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		p, err := v.Verify(ctx, "good-session")
		require.NoError(t, err)
		require.Equal(t, domain.Principal{ID: "u1", Email: "a@x.com"}, p)
	})

	t.Run("rejected session", func(t *testing.T) {
		_, err := v.Verify(ctx, "bad-session")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("empty credential never leaves the process", func(t *testing.T) {
		_, err := v.Verify(ctx, " ")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("identity without email", func(t *testing.T) {
		_, err := v.Verify(ctx, "no-email")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("provider error is transient", func(t *testing.T) {
		_, err := v.Verify(ctx, "broken")
		require.ErrorIs(t, err, ErrTransient)
	})

	t.Run("provider timeout is transient", func(t *testing.T) {
		_, err := v.Verify(ctx, "slow")
		require.ErrorIs(t, err, ErrTransient)
	})
}

func TestHTTPSessionVerifierThrottle(t *testing.T) {
	srv := fakeIdentityProvider(t)
	v := NewHTTPSessionVerifier(srv.URL, "anon-key", 50*time.Millisecond, 1)
	require.NotNil(t, v.Limiter)

	_, err := v.Verify(context.Background(), "good-session")
	require.NoError(t, err)

	// The bucket is empty and the next token is a second away, beyond the timeout.
	_, err = v.Verify(context.Background(), "good-session")
	require.ErrorIs(t, err, ErrTransient)
}

func signSession(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTSessionVerifier(t *testing.T) {
	secret := []byte("idp-secret")
	v := &JWTSessionVerifier{Secret: secret, Audience: "authenticated", Now: fixedClock(testNow)}
	ctx := context.Background()

	claims := func(exp time.Time) sessionClaims {
		return sessionClaims{
			Email: "a@x.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				Audience:  jwt.ClaimStrings{"authenticated"},
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		}
	}

	t.Run("valid session", func(t *testing.T) {
		p, err := v.Verify(ctx, signSession(t, jwt.SigningMethodHS256, secret, claims(testNow.Add(time.Hour))))
		require.NoError(t, err)
		require.Equal(t, domain.Principal{ID: "u1", Email: "a@x.com"}, p)
	})

	t.Run("expired session", func(t *testing.T) {
		_, err := v.Verify(ctx, signSession(t, jwt.SigningMethodHS256, secret, claims(testNow.Add(-time.Minute))))
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify(ctx, signSession(t, jwt.SigningMethodHS256, []byte("other"), claims(testNow.Add(time.Hour))))
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		_, err := v.Verify(ctx, signSession(t, jwt.SigningMethodHS384, secret, claims(testNow.Add(time.Hour))))
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := signSession(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims(testNow.Add(time.Hour)))
		_, err := v.Verify(ctx, token)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := claims(testNow.Add(time.Hour))
		c.Audience = jwt.ClaimStrings{"service_role"}
		_, err := v.Verify(ctx, signSession(t, jwt.SigningMethodHS256, secret, c))
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing secret is a config error", func(t *testing.T) {
		_, err := (&JWTSessionVerifier{}).Verify(ctx, "x.y.z")
		require.ErrorIs(t, err, ErrConfig)
	})
}
