package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

// apiError maps a service error onto the public error body. Anything that
// is not a known kind becomes TRANSIENT_ERROR so internal detail never
// reaches the client.
func apiError(err error) *handoffsdk.APIError {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, httpx.ErrMissingBearer):
		return handoffsdk.ErrUnauthenticated
	case errors.Is(err, service.ErrForbidden):
		return handoffsdk.ErrForbidden
	case errors.Is(err, service.ErrConfig):
		return handoffsdk.ErrConfig
	case errors.Is(err, service.ErrMalformedInput), errors.Is(err, httpx.ErrBadJSON):
		return handoffsdk.ErrMalformedInput
	case errors.Is(err, service.ErrExpired):
		return handoffsdk.ErrExpired
	case errors.Is(err, service.ErrNotFound):
		return handoffsdk.ErrNotFound
	case errors.Is(err, service.ErrRateLimited):
		return handoffsdk.ErrRateLimited
	default:
		return handoffsdk.ErrTransient
	}
}

// writeError logs the failure with the endpoint, then writes the mapped
// body. The request logger already carries the principal id once the
// session is verified. Server-side kinds log at error level.
func writeError(w http.ResponseWriter, r *http.Request, endpoint string, err error, attrs ...slog.Attr) {
	apiErr := apiError(err)

	attrs = append(attrs,
		slog.String("endpoint", endpoint),
		slog.String("code", apiErr.Code),
		slog.Any("err", err),
	)

	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slogx.FromContext(r.Context()).LogAttrs(r.Context(), level, "handoff request failed", attrs...)

	apiErr.WriteError(w)
}

// authErrorWriter adapts writeError for httpx.AuthnMiddleware.
func authErrorWriter(endpoint string) httpx.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, endpoint, err)
	}
}
