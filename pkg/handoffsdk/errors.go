package handoffsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/handoff/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeUnauthenticated = "UNAUTHENTICATED"
	ErrorCodeForbidden       = "FORBIDDEN"
	ErrorCodeConfig          = "CONFIG_ERROR"
	ErrorCodeMalformedInput  = "MALFORMED_INPUT"
	ErrorCodeExpired         = "EXPIRED"
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeRateLimited     = "RATE_LIMITED"
	ErrorCodeTransient       = "TRANSIENT_ERROR"
	ErrorCodeDisabled        = "DISABLED"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body every handoff endpoint returns. The server
// writes it with WriteError, the client rebuilds it from the response.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is one of the ErrorCode constants
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code so callers can use errors.Is against the
// predefined values regardless of description or status.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrUnauthenticated is returned when the session credential is missing
	// or the identity provider rejects it.
	ErrUnauthenticated = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthenticated,
		Description: "a valid session is required",
	}

	// ErrForbidden is returned when the principal may not be handed off to
	// the requested scope.
	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "not authorized for this scope",
	}

	// ErrConfig hides server misconfiguration behind a generic body.
	ErrConfig = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeConfig,
		Description: "internal server error",
	}

	// ErrMalformedInput is returned for bad JSON or a state id that is not a UUID v4.
	ErrMalformedInput = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMalformedInput,
		Description: "the request is malformed",
	}

	// ErrExpired is returned when a state handle outlived its TTL.
	ErrExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeExpired,
		Description: "the handoff has expired",
	}

	// ErrNotFound is returned for unknown or already redeemed state handles.
	ErrNotFound = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNotFound,
		Description: "the handoff is unknown or already used",
	}

	// ErrRateLimited mirrors the body written by the rate limit middleware.
	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "Too many requests. Please try again later.",
	}

	// ErrTransient is returned when the store or identity provider is
	// unavailable. Callers may retry.
	ErrTransient = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeTransient,
		Description: "temporarily unavailable, please retry",
	}

	// ErrDirectFlowDisabled is returned by the direct token endpoint when
	// the cookie flow is switched off.
	ErrDirectFlowDisabled = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeDisabled,
		Description: "direct token delivery is disabled",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// IsRetryable reports whether err is a failure the caller may retry.
func IsRetryable(err error) bool {
	e, ok := err.(*APIError)
	if !ok {
		return false
	}
	return e.Code == ErrorCodeTransient || e.Code == ErrorCodeRateLimited
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	code := ErrorCodeTransient
	if resp.StatusCode < 500 {
		code = ErrorCodeMalformedInput
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        code,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
