package http

import (
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

// maxMultipartMemory bounds how much of an upload is buffered in memory
// before spilling to temp files.
const maxMultipartMemory = 32 << 20

// SendFileHandler delivers an uploaded file as a document.
type SendFileHandler struct {
	MessageService *service.MessageService
}

// ServeHTTP godoc
//
//	@Summary		Send an uploaded file
//	@Description	Accepts a multipart upload and delivers it as a document
//	@Description	attachment with an optional caption. The content type is
//	@Description	taken from the part header, or sniffed when absent.
//	@Tags			Messages
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			instanceKey	query		string	true	"Instance key"
//	@Param			number		formData	string	true	"Destination chat address"
//	@Param			file		formData	file	true	"File to deliver"
//	@Param			caption		formData	string	false	"Caption for the document"
//	@Success		200			{object}	gatewaysdk.SendResponse
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"Validation failure or file too large"
//	@Failure		409			{object}	gatewaysdk.ErrorResponse	"Instance not connected"
//	@Failure		410			{object}	gatewaysdk.ErrorResponse	"Instance logged out"
//	@Failure		502			{object}	gatewaysdk.ErrorResponse	"Delivery failed"
//	@Failure		500			{object}	gatewaysdk.ErrorResponse	"Internal error"
//	@Router			/send-file [post].
func (h *SendFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "invalid multipart form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "file is required",
		})
		return
	}
	defer file.Close()

	key := r.URL.Query().Get("instanceKey")
	number := r.FormValue("number")
	caption := r.FormValue("caption")
	ctx = slogx.WithInstance(ctx, key)

	if err := h.MessageService.SendUploadedFile(ctx, key, number, file, header, caption); err != nil {
		writeSendError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.SendResponse{
		Success: true,
		Message: "file sent",
	})
}
