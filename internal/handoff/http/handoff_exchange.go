package http

import (
	"net/http"

	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

type ExchangeHandler struct {
	HandoffService *service.HandoffService
}

// ServeHTTP godoc
//
//	@Summary		Exchange Handoff State
//	@Description	Redeem a state handle for the token parked behind it. Each handle works exactly once.
//	@Description	Called server-to-server by the destination application; no session is required.
//	@Tags			Handoff
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handoffsdk.ExchangeRequest	true	"state handle (UUID v4)"
//	@Success		200		{object}	handoffsdk.ExchangeResponse	"token"
//	@Failure		400		{object}	handoffsdk.ErrorResponse	"MALFORMED_INPUT"
//	@Failure		401		{object}	handoffsdk.ErrorResponse	"EXPIRED or NOT_FOUND"
//	@Failure		429		{object}	handoffsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	handoffsdk.ErrorResponse	"TRANSIENT_ERROR"
//	@Router			/v1/handoff/exchange [post].
func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const endpoint = "handoff.exchange"
	ctx := r.Context()

	var req handoffsdk.ExchangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, endpoint, err)
		return
	}

	res, err := h.HandoffService.Redeem(ctx, req.StateID)
	if err != nil {
		writeError(w, r, endpoint, err)
		return
	}

	slogx.FromContext(ctx).Info("handoff state redeemed", "principal_id", res.PrincipalID)
	httpx.WriteJSON(w, http.StatusOK, handoffsdk.ExchangeResponse{Token: res.Token})
}
