package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
)

// HealthHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe reporting service health and the number of
//	@Description	live instance sessions in any state. Answers 200 OK
//	@Description	whenever the process is up.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.HealthResponse	"status, timestamp, activeSessions"
//	@Router			/health [get].
func HealthHandler(manager *service.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := gatewaysdk.HealthResponse{
			Status:         "ok",
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			ActiveSessions: manager.ActiveSessions(),
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
