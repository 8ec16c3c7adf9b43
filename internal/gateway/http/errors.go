package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/media"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

// writeSendError maps a message-service failure onto the HTTP error
// envelope. All three send endpoints share this mapping.
func writeSendError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
			Success: false,
			Message: validationMessage(err),
		})
	case errors.Is(err, media.ErrTooLarge):
		httpx.WriteJSON(w, http.StatusBadRequest, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "file exceeds the size limit",
		})
	case errors.Is(err, service.ErrNotConnected):
		httpx.WriteJSON(w, http.StatusConflict, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "instance not connected, start the session first",
		})
	case errors.Is(err, service.ErrTerminalLogout):
		httpx.WriteJSON(w, http.StatusGone, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "instance has been logged out",
		})
	case errors.Is(err, service.ErrTransientIO):
		httpx.WriteJSON(w, http.StatusBadGateway, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "failed to retrieve file",
		})
	case errors.Is(err, service.ErrUpstream):
		httpx.WriteJSON(w, http.StatusBadGateway, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "failed to deliver message",
		})
	default:
		slogx.FromContext(ctx).Error("send failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, gatewaysdk.ErrorResponse{
			Success: false,
			Message: "internal error",
		})
	}
}

// validationMessage strips the sentinel prefix so the client sees just the
// field-level detail, e.g. "number is required".
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}
