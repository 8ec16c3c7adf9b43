package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

type LogoutHandler struct {
	SessionManager *service.SessionManager
}

// ServeHTTP godoc
//
//	@Summary		Logout Endpoint
//	@Description	Permanently unlinks the instance: the live connection is closed, the remote side is told to
//	@Description	unlink, and the pairing state, credentials and instance record are all removed. Idempotent;
//	@Description	logging out an unknown instance still succeeds.
//	@Tags			Sessions
//	@Produce		json
//	@Param			instanceKey	query		string						true	"Instance key"
//	@Success		200			{object}	gatewaysdk.LogoutResponse	"status, message"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"success, message"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse	"success, message"
//	@Security		ApiKeyAuth
//	@Router			/logout [get].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	key := r.URL.Query().Get("instanceKey")

	res, err := h.SessionManager.Logout(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
				Success: false,
				Message: "instanceKey is required",
			})
		default:
			log.Error("failed to log out instance", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, gatewaysdk.ErrorResponse{
				Success: false,
				Message: "failed to log out instance",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.LogoutResponse{
		Status:  "success",
		Message: res.Message,
	})
}
