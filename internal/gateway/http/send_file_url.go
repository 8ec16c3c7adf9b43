package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

// SendFileURLHandler fetches a remote file and delivers it as a document.
type SendFileURLHandler struct {
	MessageService *service.MessageService
}

// ServeHTTP godoc
//
//	@Summary		Send a file fetched from a URL
//	@Description	Downloads the file at fileUrl, subject to the configured
//	@Description	size limit, and delivers it as a document attachment with
//	@Description	an optional caption. The filename falls back to the URL
//	@Description	path, then to a name derived from the sniffed content type.
//	@Tags			Messages
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			instanceKey	query		string						true	"Instance key"
//	@Param			request		body		gatewaysdk.SendFileURLRequest	true	"File to fetch and deliver"
//	@Success		200			{object}	gatewaysdk.SendResponse
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"Validation failure or file too large"
//	@Failure		409			{object}	gatewaysdk.ErrorResponse	"Instance not connected"
//	@Failure		410			{object}	gatewaysdk.ErrorResponse	"Instance logged out"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse	"Fetch or delivery failed"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse	"Internal error"
//	@Router			/send-file-url [post].
func (h *SendFileURLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req gatewaysdk.SendFileURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "invalid JSON body",
		})
		return
	}

	key := r.URL.Query().Get("instanceKey")
	ctx = slogx.WithInstance(ctx, key)

	if err := h.MessageService.SendFileFromURL(ctx, key, req.Number, req.FileURL, req.Caption, req.FileName); err != nil {
		writeSendError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.SendResponse{
		Success: true,
		Message: "file sent",
	})
}
