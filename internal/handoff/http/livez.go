package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Reports that the handoff process is up. It touches no dependency and
//	@Description	always answers 200 while the HTTP server is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	handoffsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	body := handoffsdk.HealthResponse{Status: "ok", Version: version}
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := body
		resp.Uptime = time.Since(startTime).Round(time.Second).String()
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
