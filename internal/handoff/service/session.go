package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

// SessionVerifier turns the browser's opaque session credential into a
// Principal. Implementations return ErrUnauthenticated for a bad session
// and ErrTransient when the identity provider cannot answer.
type SessionVerifier interface {
	Verify(ctx context.Context, credential string) (domain.Principal, error)
}

// HTTPSessionVerifier asks the identity provider's user endpoint who owns
// the credential.
type HTTPSessionVerifier struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client

	// Limiter throttles outbound calls so a burst of browsers cannot
	// exhaust the provider's quota. Nil means unthrottled.
	Limiter *rate.Limiter
}

// NewHTTPSessionVerifier builds a verifier for baseURL. maxRPS <= 0
// disables throttling.
func NewHTTPSessionVerifier(baseURL, apiKey string, timeout time.Duration, maxRPS float64) *HTTPSessionVerifier {
	v := &HTTPSessionVerifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Timeout: timeout,
		Client:  &http.Client{},
	}
	if maxRPS > 0 {
		v.Limiter = rate.NewLimiter(rate.Limit(maxRPS), max(int(maxRPS), 1))
	}
	return v
}

type idpUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *HTTPSessionVerifier) Verify(ctx context.Context, credential string) (domain.Principal, error) {
	if strings.TrimSpace(credential) == "" {
		return domain.Principal{}, ErrUnauthenticated
	}

	ctx, cancel := withTimeout(ctx, v.Timeout)
	defer cancel()

	if v.Limiter != nil {
		if err := v.Limiter.Wait(ctx); err != nil {
			return domain.Principal{}, fmt.Errorf("%w: identity provider throttle: %v", ErrTransient, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/user", nil)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: build identity request: %v", ErrConfig, err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	if v.APIKey != "" {
		req.Header.Set("apikey", v.APIKey)
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: identity provider: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.Principal{}, ErrUnauthenticated
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.Principal{}, fmt.Errorf("%w: identity provider returned %d", ErrTransient, resp.StatusCode)
	}

	var u idpUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&u); err != nil {
		return domain.Principal{}, fmt.Errorf("%w: decode identity response: %v", ErrTransient, err)
	}

	p := domain.Principal{ID: u.ID, Email: domain.NormalizeEmail(u.Email)}
	if p.IsZero() {
		return domain.Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// JWTSessionVerifier checks identity-provider session JWTs locally with
// the provider's shared HS256 secret.
type JWTSessionVerifier struct {
	Secret []byte
	// Audience, when set, must appear in the session's aud claim.
	Audience string
	Leeway   time.Duration
	Now      func() time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *JWTSessionVerifier) Verify(_ context.Context, credential string) (domain.Principal, error) {
	if len(v.Secret) == 0 {
		return domain.Principal{}, fmt.Errorf("%w: identity provider secret not configured", ErrConfig)
	}
	if strings.TrimSpace(credential) == "" {
		return domain.Principal{}, ErrUnauthenticated
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.Leeway),
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}
	if v.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(v.Now))
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return domain.Principal{}, errors.Join(ErrUnauthenticated, err)
	}

	p := domain.Principal{ID: claims.Subject, Email: domain.NormalizeEmail(claims.Email)}
	if p.IsZero() {
		return domain.Principal{}, ErrUnauthenticated
	}
	return p, nil
}
