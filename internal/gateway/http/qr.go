package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

type QRHandler struct {
	SessionManager *service.SessionManager
}

// ServeHTTP godoc
//
//	@Summary		Pairing Code Endpoint
//	@Description	Returns the current pairing code as a PNG data URL together with its remaining validity.
//	@Description	Codes expire server-side; an expired or missing code answers with needsRestart=true and the
//	@Description	caller must hit /start-session again. A connected instance returns connected=true and no code.
//	@Tags			Sessions
//	@Produce		json
//	@Param			instanceKey	query		string						true	"Instance key"
//	@Success		200			{object}	gatewaysdk.QRResponse		"success, qr, expiresIn, connected, message, needsRestart"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"success, message"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse	"success, message"
//	@Security		ApiKeyAuth
//	@Router			/qr [get].
func (h *QRHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	key := r.URL.Query().Get("instanceKey")

	res, err := h.SessionManager.QR(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
				Success: false,
				Message: "instanceKey is required",
			})
		default:
			log.Error("failed to fetch pairing code", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, gatewaysdk.ErrorResponse{
				Success: false,
				Message: "failed to fetch pairing code",
			})
		}
		return
	}

	// Pairing codes are short-lived secrets; keep them out of caches.
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.QRResponse{
		Success:      res.Connected || res.QR != "",
		QR:           res.QR,
		ExpiresIn:    res.ExpiresIn,
		Connected:    res.Connected,
		Message:      res.Message,
		NeedsRestart: res.NeedsRestart,
	})
}
