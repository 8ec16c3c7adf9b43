package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

// SendMessageHandler delivers a text message through a connected instance.
type SendMessageHandler struct {
	MessageService *service.MessageService
}

// ServeHTTP godoc
//
//	@Summary		Send a text message
//	@Description	Delivers a plain text message to the given chat address
//	@Description	through the instance named by the instanceKey query
//	@Description	parameter. Bare numbers are qualified with the configured
//	@Description	chat domain.
//	@Tags			Messages
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			instanceKey	query		string						true	"Instance key"
//	@Param			request		body		gatewaysdk.SendMessageRequest	true	"Message to deliver"
//	@Success		200			{object}	gatewaysdk.SendResponse
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"Validation failure"
//	@Failure		409			{object}	gatewaysdk.ErrorResponse	"Instance not connected"
//	@Failure		410			{object}	gatewaysdk.ErrorResponse	"Instance logged out"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse	"Delivery failed"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse	"Internal error"
//	@Router			/send-message [post].
func (h *SendMessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req gatewaysdk.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "invalid JSON body",
		})
		return
	}

	key := r.URL.Query().Get("instanceKey")
	ctx = slogx.WithInstance(ctx, key)

	if err := h.MessageService.SendText(ctx, key, req.Number, req.Message); err != nil {
		writeSendError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.SendResponse{
		Success: true,
		Message: "message sent",
	})
}
