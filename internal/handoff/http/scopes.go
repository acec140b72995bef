package http

import (
	"net/http"

	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
)

type ScopesHandler struct {
	IssuerService *service.IssuerService
}

// ServeHTTP godoc
//
//	@Summary		List Launchable Scopes
//	@Description	List the live scopes the signed-in principal may be handed off to. Secrets are never returned.
//	@Tags			Scopes
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	handoffsdk.ScopesResponse	"scopes"
//	@Failure		401	{object}	handoffsdk.ErrorResponse	"UNAUTHENTICATED"
//	@Failure		429	{object}	handoffsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500	{object}	handoffsdk.ErrorResponse	"TRANSIENT_ERROR"
//	@Router			/v1/scopes [get].
func (h *ScopesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const endpoint = "scopes.list"
	ctx := r.Context()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(w, r, endpoint, service.ErrUnauthenticated)
		return
	}

	summaries, err := h.IssuerService.ListScopes(ctx, principal)
	if err != nil {
		writeError(w, r, endpoint, err)
		return
	}

	resp := handoffsdk.ScopesResponse{Scopes: make([]handoffsdk.Scope, 0, len(summaries))}
	for _, s := range summaries {
		resp.Scopes = append(resp.Scopes, handoffsdk.Scope{ID: s.ID, Name: s.Name})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
