package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

func uptime(start time.Time) string {
	return time.Since(start).Truncate(time.Second).String()
}

// HealthHandler godoc
//
//	@Summary	Basic health check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	authsdk.StatusResponse
//	@Router		/health [get].
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "OK"})
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving. Reports uptime and build version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  uptime(startTime),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the user database and the session store. Any failure turns the probe to 503.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db, sessions Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var dbErr, sessErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); dbErr = db.Ping(ctx) }()
		go func() { defer wg.Done(); sessErr = sessions.Ping(ctx) }()
		wg.Wait()

		resp := authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  uptime(startTime),
			Version: version,
			Checks: &authsdk.HealthChecks{
				Database: checkStatus(dbErr),
				Sessions: checkStatus(sessErr),
			},
		}

		status := http.StatusOK
		if dbErr != nil || sessErr != nil {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, status, resp)
	}
}

func checkStatus(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
