package http

import (
	"net/http"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/pkg/httpx"
	"github.com/teamshiksha/accounts/pkg/jwtx"
)

// ReadyzHandler is the readiness probe. It checks database connectivity and
// that the token verifier has keys loaded.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	verifier *jwtx.Verifier,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !verifier.Ready() {
			checks.Signer = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
