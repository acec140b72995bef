package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/internal/handoff/store/drivers/sqlite"
	"github.com/aussiebroadwan/handoff/pkg/cryptox"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "portal-handoff"
	testAudience = "analytics-app"
	acmeSecret   = "acme-signing-secret"
)

// fakeSessions maps bearer credentials to principals. "idp-down" simulates
// an unreachable identity provider.
type fakeSessions map[string]domain.Principal

func (f fakeSessions) Verify(_ context.Context, credential string) (domain.Principal, error) {
	if credential == "idp-down" {
		return domain.Principal{}, service.ErrTransient
	}
	p, ok := f[credential]
	if !ok {
		return domain.Principal{}, service.ErrUnauthenticated
	}
	return p, nil
}

type testEnv struct {
	router   *Router
	store    *sqlite.Store
	exchange *service.ExchangeService
}

func newTestEnv(t *testing.T, configure ...func(*Router)) *testEnv {
	t.Helper()

	cryptox.ResetMasterKeyForTesting()
	t.Cleanup(cryptox.ResetMasterKeyForTesting)
	t.Setenv(cryptox.MasterKeyEnv, "http-test-key")

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	now := time.Now().UTC()
	for _, s := range []domain.TargetScope{
		{ID: "acme", Name: "Acme", Secret: []byte(acmeSecret), AuthorizedEmails: []string{"alice@example.com"}, Live: true},
		{ID: "dark", Name: "Dark", Secret: []byte("x"), AuthorizedEmails: []string{"alice@example.com"}, Live: false},
		{ID: "unsigned", Name: "Unsigned", AuthorizedEmails: []string{"alice@example.com"}, Live: true},
	} {
		s.CreatedAt, s.UpdatedAt = now, now
		require.NoError(t, st.Scopes().UpsertScope(context.Background(), s))
	}

	sessions := fakeSessions{
		"alice-session": {ID: "u-alice", Email: "alice@example.com"},
		"bob-session":   {ID: "u-bob", Email: "bob@example.com"},
	}

	issuer := &service.IssuerService{
		Store:          st,
		Issuer:         testIssuer,
		Audience:       testAudience,
		DefaultScopeID: "acme",
		StoreTimeout:   time.Second,
	}
	exchange := &service.ExchangeService{Store: st, StoreTimeout: time.Second}

	logger := slog.New(slog.DiscardHandler)
	r := NewRouter(st, httpx.NewMemoryLimiter(), sessions, "test", logger)
	r.IssuerService = issuer
	r.HandoffService = &service.HandoffService{Issuer: issuer, Exchange: exchange}
	r.Cookie = CookieConfig{ParentDomain: "example.com"}
	for _, fn := range configure {
		fn(r)
	}
	r.ApplyRoutes()

	return &testEnv{router: r, store: st, exchange: exchange}
}

func (e *testEnv) do(method, path, bearer, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, want *handoffsdk.APIError) {
	t.Helper()
	require.Equal(t, want.StatusCode, rec.Code, rec.Body.String())
	body := decodeBody[handoffsdk.ErrorResponse](t, rec)
	require.Equal(t, want.Code, body.Error)
	require.Equal(t, want.Description, body.ErrorDescription)
}

func TestStateExchangeFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/handoff/state", "alice-session", `{"scopeId":"acme"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	state := decodeBody[handoffsdk.StateResponse](t, rec)
	require.Len(t, state.StateID, 36)
	require.Equal(t, int64(300), state.ExpiresIn)
	require.NotContains(t, rec.Body.String(), ".", "the token must not reach the browser")

	rec = env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"`+state.StateID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decodeBody[handoffsdk.ExchangeResponse](t, rec).Token

	claims, err := jwtx.NewValidator(testIssuer, testAudience).ValidateString(token, []byte(acmeSecret), time.Now())
	require.NoError(t, err)
	require.Equal(t, "u-alice", claims.Subject)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "acme", claims.ScopeID)

	rec = env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"`+state.StateID+`"}`)
	requireAPIError(t, rec, handoffsdk.ErrNotFound)
}

func TestStateUsesDefaultScope(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "{}"} {
		rec := env.do(http.MethodPost, "/v1/handoff/state", "alice-session", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestStateErrors(t *testing.T) {
	cases := []struct {
		name   string
		bearer string
		body   string
		want   *handoffsdk.APIError
	}{
		{"missing session", "", `{}`, handoffsdk.ErrUnauthenticated},
		{"rejected session", "forged", `{}`, handoffsdk.ErrUnauthenticated},
		{"identity provider down", "idp-down", `{}`, handoffsdk.ErrTransient},
		{"not authorised", "bob-session", `{"scopeId":"acme"}`, handoffsdk.ErrForbidden},
		{"scope not live", "alice-session", `{"scopeId":"dark"}`, handoffsdk.ErrForbidden},
		{"unknown scope", "alice-session", `{"scopeId":"nope"}`, handoffsdk.ErrForbidden},
		{"scope without secret", "alice-session", `{"scopeId":"unsigned"}`, handoffsdk.ErrConfig},
		{"bad json", "alice-session", `{"scopeId":`, handoffsdk.ErrMalformedInput},
		{"identity in body is rejected", "alice-session", `{"email":"bob@example.com"}`, handoffsdk.ErrMalformedInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPost, "/v1/handoff/state", tc.bearer, tc.body)
			requireAPIError(t, rec, tc.want)
			require.NotContains(t, rec.Body.String(), acmeSecret)
		})
	}

	t.Run("missing session advertises bearer auth", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/v1/handoff/state", "", "")
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})
}

func TestExchangeErrors(t *testing.T) {
	env := newTestEnv(t)

	t.Run("not a uuid", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"abc"}`)
		requireAPIError(t, rec, handoffsdk.ErrMalformedInput)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/v1/handoff/exchange", "", "")
		requireAPIError(t, rec, handoffsdk.ErrMalformedInput)
	})

	t.Run("unknown state", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"3f2b8c1e-9d4a-4e6b-8f7c-2a1b0c9d8e7f"}`)
		requireAPIError(t, rec, handoffsdk.ErrNotFound)
	})

	t.Run("expired state", func(t *testing.T) {
		past := time.Now().Add(-10 * time.Minute)
		id, err := env.exchange.Create(context.Background(), "u-alice", "secret.token.value", time.Minute, past)
		require.NoError(t, err)

		rec := env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"`+id+`"}`)
		requireAPIError(t, rec, handoffsdk.ErrExpired)
		require.NotContains(t, rec.Body.String(), "secret.token.value")

		rec = env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"`+id+`"}`)
		requireAPIError(t, rec, handoffsdk.ErrNotFound)
	})

	t.Run("store unavailable", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.store.Close())
		rec := env.do(http.MethodPost, "/v1/handoff/exchange", "", `{"stateId":"3f2b8c1e-9d4a-4e6b-8f7c-2a1b0c9d8e7f"}`)
		requireAPIError(t, rec, handoffsdk.ErrTransient)
	})
}

func TestIssueRateLimit(t *testing.T) {
	env := newTestEnv(t)

	for i := range httpx.IssuePolicy.RequestsPerWindow {
		rec := env.do(http.MethodPost, "/v1/handoff/state", "alice-session", "")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := env.do(http.MethodPost, "/v1/handoff/state", "alice-session", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	body := decodeBody[handoffsdk.ErrorResponse](t, rec)
	require.Equal(t, handoffsdk.ErrorCodeRateLimited, body.Error)

	// Listing has its own budget.
	rec = env.do(http.MethodGet, "/v1/scopes", "alice-session", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenEndpoint(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/v1/handoff/token", "alice-session", "")
		requireAPIError(t, rec, handoffsdk.ErrDirectFlowDisabled)
		require.Empty(t, rec.Result().Cookies())
	})

	enable := func(r *Router) { r.DirectCookie = true }

	t.Run("sets a parent-domain cookie", func(t *testing.T) {
		env := newTestEnv(t, enable)
		req := httptest.NewRequest(http.MethodPost, "https://portal.example.com/v1/handoff/token", nil)
		req.Header.Set("Authorization", "Bearer alice-session")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeBody[handoffsdk.TokenResponse](t, rec)
		require.Equal(t, int64(120), resp.ExpiresIn)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		require.Equal(t, DefaultCookieName, c.Name)
		require.Equal(t, resp.Token, c.Value)
		require.Equal(t, "/", c.Path)
		require.Equal(t, 3600, c.MaxAge)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.True(t, c.Secure)
		require.Equal(t, "example.com", c.Domain)
	})

	t.Run("still requires a session", func(t *testing.T) {
		env := newTestEnv(t, enable)
		rec := env.do(http.MethodPost, "/v1/handoff/token", "", "")
		requireAPIError(t, rec, handoffsdk.ErrUnauthenticated)
	})

	t.Run("still checks authorisation", func(t *testing.T) {
		env := newTestEnv(t, enable)
		rec := env.do(http.MethodPost, "/v1/handoff/token", "bob-session", "")
		requireAPIError(t, rec, handoffsdk.ErrForbidden)
		require.Empty(t, rec.Result().Cookies())
	})
}

func TestCookieConfig(t *testing.T) {
	cfg := CookieConfig{Name: "handoff", ParentDomain: ".Example.com"}

	cases := []struct {
		host       string
		wantDomain string
		wantSecure bool
	}{
		{"example.com", ".example.com", true},
		{"portal.example.com:8443", ".example.com", true},
		{"notexample.com", "", true},
		{"localhost:8080", "", false},
		{"127.0.0.1", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Host = tc.host

			c := cfg.Cookie(req, "tok")
			require.Equal(t, "handoff", c.Name)
			require.Equal(t, tc.wantDomain, c.Domain)
			require.Equal(t, tc.wantSecure, c.Secure)
			require.Equal(t, 3600, c.MaxAge)
		})
	}
}

func TestScopesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/scopes", "alice-session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[handoffsdk.ScopesResponse](t, rec)
	require.Equal(t, []handoffsdk.Scope{{ID: "acme", Name: "Acme"}, {ID: "unsigned", Name: "Unsigned"}}, resp.Scopes)
	require.NotContains(t, rec.Body.String(), acmeSecret)

	rec = env.do(http.MethodGet, "/v1/scopes", "bob-session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"scopes":[]}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/v1/scopes", "", "")
	requireAPIError(t, rec, handoffsdk.ErrUnauthenticated)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody[handoffsdk.HealthResponse](t, rec).Status)

	rec = env.do(http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[handoffsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Scopes)

	require.NoError(t, env.store.Close())
	rec = env.do(http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "degraded", decodeBody[handoffsdk.HealthResponse](t, rec).Status)
}

func TestAPIErrorMapping(t *testing.T) {
	cases := map[error]*handoffsdk.APIError{
		service.ErrUnauthenticated: handoffsdk.ErrUnauthenticated,
		httpx.ErrMissingBearer:     handoffsdk.ErrUnauthenticated,
		service.ErrForbidden:       handoffsdk.ErrForbidden,
		service.ErrConfig:          handoffsdk.ErrConfig,
		service.ErrMalformedInput:  handoffsdk.ErrMalformedInput,
		httpx.ErrBadJSON:           handoffsdk.ErrMalformedInput,
		service.ErrExpired:         handoffsdk.ErrExpired,
		service.ErrNotFound:        handoffsdk.ErrNotFound,
		service.ErrRateLimited:     handoffsdk.ErrRateLimited,
		service.ErrTransient:       handoffsdk.ErrTransient,
		io.ErrUnexpectedEOF:        handoffsdk.ErrTransient,
	}

	for err, want := range cases {
		t.Run(err.Error(), func(t *testing.T) {
			got := apiError(err)
			require.Same(t, want, got)
		})
	}

	t.Run("status codes", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, handoffsdk.ErrExpired.StatusCode)
		require.Equal(t, http.StatusUnauthorized, handoffsdk.ErrNotFound.StatusCode)
		require.Equal(t, http.StatusBadRequest, handoffsdk.ErrMalformedInput.StatusCode)
		require.Equal(t, http.StatusInternalServerError, handoffsdk.ErrConfig.StatusCode)
		require.Equal(t, http.StatusInternalServerError, handoffsdk.ErrTransient.StatusCode)
	})
}
