package handoffsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the handoff service. The portal side uses RequestState,
// RequestToken and ListScopes with the user's session credential; the
// destination application only needs ExchangeState and a Verifier.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RequestState mints a token for scopeID and returns the state handle
// wrapping it.
func (c *Client) RequestState(ctx context.Context, session, scopeID string) (*StateResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/handoff/state", session, StateRequest{ScopeID: scopeID})
	if err != nil {
		return nil, err
	}

	var out StateResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeState redeems a state handle. It succeeds at most once per handle.
func (c *Client) ExchangeState(ctx context.Context, stateID string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/handoff/exchange", "", ExchangeRequest{StateID: stateID})
	if err != nil {
		return "", err
	}

	var out ExchangeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Token, nil
}

// RequestToken uses the direct flow. It fails with ErrDirectFlowDisabled
// unless the server enables it.
func (c *Client) RequestToken(ctx context.Context, session, scopeID string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/handoff/token", session, TokenRequest{ScopeID: scopeID})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListScopes returns the live scopes the session's principal may launch.
func (c *Client) ListScopes(ctx context.Context, session string) ([]Scope, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/v1/scopes", session, nil)
	if err != nil {
		return nil, err
	}

	var out ScopesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Scopes, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
