package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

type SessionHandler struct {
	SessionManager *service.SessionManager
}

// ServeHTTP godoc
//
//	@Summary		Start Session Endpoint
//	@Description	Creates the instance record if needed and kicks off a connection attempt in the background.
//	@Description	Poll /qr afterwards for the pairing code. Calling this for a connected or already-initializing
//	@Description	instance is a harmless no-op.
//	@Tags			Sessions
//	@Produce		json
//	@Param			instanceKey	query		string							true	"Instance key"
//	@Success		200			{object}	gatewaysdk.StartSessionResponse	"success, message, connected"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse		"success, message"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse		"success, message"
//	@Security		ApiKeyAuth
//	@Router			/start-session [get].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := r.URL.Query().Get("instanceKey")
	ctx = slogx.WithInstance(ctx, key)
	log := slogx.FromContext(ctx)

	res, err := h.SessionManager.StartSession(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
				Success: false,
				Message: "instanceKey is required",
			})
		default:
			log.Error("failed to start session", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, gatewaysdk.ErrorResponse{
				Success: false,
				Message: "failed to start session",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.StartSessionResponse{
		Success:   true,
		Message:   res.Message,
		Connected: res.Connected,
	})
}
