package gatewaysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the gateway. It carries the
// HTTP status and the message from the error envelope, so callers can branch
// on the status without string matching.
type APIError struct {
	// StatusCode is the HTTP status the gateway answered with
	StatusCode int

	// Message is the human-readable message from the response body
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %d %s", e.StatusCode, e.Message)
}

// IsValidation reports whether err is a gateway rejection of the request
// parameters (HTTP 400).
func IsValidation(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsNotConnected reports whether err means the instance has no live
// connection (HTTP 409). The caller should start the session and pair again.
func IsNotConnected(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsLoggedOut reports whether err means the instance was terminally logged
// out (HTTP 410).
func IsLoggedOut(err error) bool {
	return hasStatus(err, http.StatusGone)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// parseErrorResponse turns a non-2xx response body into an *APIError. Bodies
// that are not the standard envelope fall back to the raw status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
