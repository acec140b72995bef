package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
)

type StateHandler struct {
	HandoffService *service.HandoffService
}

// ServeHTTP godoc
//
//	@Summary		Create Handoff State
//	@Description	Mint a handoff token for the signed-in principal and park it behind a one-time state handle.
//	@Description	The token itself never reaches the browser; the destination redeems the handle once.
//	@Tags			Handoff
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		handoffsdk.StateRequest		false	"target scope, defaults to the configured scope"
//	@Success		200		{object}	handoffsdk.StateResponse	"stateId, expiresIn"
//	@Failure		400		{object}	handoffsdk.ErrorResponse	"MALFORMED_INPUT"
//	@Failure		401		{object}	handoffsdk.ErrorResponse	"UNAUTHENTICATED"
//	@Failure		403		{object}	handoffsdk.ErrorResponse	"FORBIDDEN"
//	@Failure		429		{object}	handoffsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	handoffsdk.ErrorResponse	"CONFIG_ERROR or TRANSIENT_ERROR"
//	@Router			/v1/handoff/state [post].
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const endpoint = "handoff.state"
	ctx := r.Context()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(w, r, endpoint, service.ErrUnauthenticated)
		return
	}

	var req handoffsdk.StateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, endpoint, err)
		return
	}

	handle, err := h.HandoffService.Begin(ctx, principal, req.ScopeID)
	if err != nil {
		writeError(w, r, endpoint, err, slog.String("scope_id", req.ScopeID))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, handoffsdk.StateResponse{
		StateID:   handle.StateID,
		ExpiresIn: handle.ExpiresIn,
	})
}
