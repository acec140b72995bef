package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
)

// TokenHandler serves the direct cookie flow. It answers DISABLED unless
// Enabled is set; the state exchange is the default delivery.
type TokenHandler struct {
	IssuerService *service.IssuerService
	Cookie        CookieConfig
	Enabled       bool
}

// ServeHTTP godoc
//
//	@Summary		Issue Handoff Token (direct flow)
//	@Description	Mint a handoff token and return it in the body and in a cross-subdomain cookie.
//	@Description	Only available when HANDOFF_DIRECT_COOKIE=true.
//	@Tags			Handoff
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		handoffsdk.TokenRequest		false	"target scope, defaults to the configured scope"
//	@Success		200		{object}	handoffsdk.TokenResponse	"token, expiresIn"
//	@Failure		400		{object}	handoffsdk.ErrorResponse	"MALFORMED_INPUT"
//	@Failure		401		{object}	handoffsdk.ErrorResponse	"UNAUTHENTICATED"
//	@Failure		403		{object}	handoffsdk.ErrorResponse	"FORBIDDEN"
//	@Failure		404		{object}	handoffsdk.ErrorResponse	"DISABLED"
//	@Failure		429		{object}	handoffsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	handoffsdk.ErrorResponse	"CONFIG_ERROR or TRANSIENT_ERROR"
//	@Router			/v1/handoff/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const endpoint = "handoff.token"
	ctx := r.Context()

	if !h.Enabled {
		handoffsdk.ErrDirectFlowDisabled.WriteError(w)
		return
	}

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(w, r, endpoint, service.ErrUnauthenticated)
		return
	}

	var req handoffsdk.TokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, endpoint, err)
		return
	}

	issued, err := h.IssuerService.IssueForScope(ctx, principal, req.ScopeID)
	if err != nil {
		writeError(w, r, endpoint, err, slog.String("scope_id", req.ScopeID))
		return
	}

	http.SetCookie(w, h.Cookie.Cookie(r, issued.Token))
	httpx.WriteJSON(w, http.StatusOK, handoffsdk.TokenResponse{
		Token:     issued.Token,
		ExpiresIn: issued.ExpiresIn(),
	})
}
