package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Reports the database connection and whether any scope is configured
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	handoffsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	handoffsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := &handoffsdk.HealthChecks{
			Database: "ok",
			Scopes:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("readiness: database ping failed", "err", err)
			checks.Database = "error"
			checks.Scopes = "unknown"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if ids, err := st.Scopes().ListScopeIDs(ctx); err != nil || len(ids) == 0 {
			// No scopes is reported but not fatal: the exchange still works.
			checks.Scopes = "none configured"
		}

		httpx.WriteJSON(w, statusCode, handoffsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
