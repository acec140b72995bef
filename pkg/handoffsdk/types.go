package handoffsdk

// ErrorResponse is the JSON error body. Client code should use APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Handoff Types
// ============================================================================

// StateRequest asks for a token to be parked behind a state handle.
// An empty ScopeID selects the server's default scope.
type StateRequest struct {
	ScopeID string `json:"scopeId,omitempty"`
}

// StateResponse is returned by POST /v1/handoff/state.
type StateResponse struct {
	// StateID is the one-time handle the browser passes to the destination
	StateID string `json:"stateId"`

	// ExpiresIn is the handle lifetime in seconds
	ExpiresIn int64 `json:"expiresIn"`
}

// ExchangeRequest redeems a state handle.
type ExchangeRequest struct {
	StateID string `json:"stateId"`
}

// ExchangeResponse carries the token parked behind a state handle.
type ExchangeResponse struct {
	Token string `json:"token"`
}

// TokenRequest asks for a token delivered directly (cookie flow).
type TokenRequest struct {
	ScopeID string `json:"scopeId,omitempty"`
}

// TokenResponse is returned by POST /v1/handoff/token.
type TokenResponse struct {
	Token string `json:"token"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int64 `json:"expiresIn"`
}

// Scope is the public view of a target scope.
type Scope struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScopesResponse lists the scopes the caller may be handed off to.
type ScopesResponse struct {
	Scopes []Scope `json:"scopes"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency readyz looks at.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Scopes is "ok" when at least one live scope is configured
	Scopes string `json:"scopes"`
}
