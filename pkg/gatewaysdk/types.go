package gatewaysdk

// ============================================================================
// Error Envelope
// ============================================================================

// ErrorResponse is the JSON envelope every non-2xx gateway response carries.
type ErrorResponse struct {
	// Success is always false for error responses
	Success bool `json:"success"`

	// Message is a human-readable description of what went wrong
	Message string `json:"message"`
}

// ============================================================================
// Session Types
// ============================================================================

// StartSessionResponse is returned from GET /start-session.
type StartSessionResponse struct {
	// Success indicates the request was accepted
	Success bool `json:"success"`

	// Message describes what the gateway did (e.g., "instance initializing")
	Message string `json:"message"`

	// Connected is true when the instance already holds an open connection
	Connected bool `json:"connected"`
}

// QRResponse is returned from GET /qr.
//
// A fresh pairing code arrives as a PNG data URL in QR with the remaining
// validity in ExpiresIn. Once paired, Connected flips to true and no code is
// returned. NeedsRestart signals that the code is gone for good and the
// caller must hit /start-session again.
type QRResponse struct {
	Success bool `json:"success"`

	// QR is a "data:image/png;base64," data URL encoding the pairing code
	QR string `json:"qr,omitempty"`

	// ExpiresIn is the remaining validity of the code in whole seconds
	ExpiresIn int `json:"expiresIn,omitempty"`

	// Connected is true when the instance no longer needs pairing
	Connected bool `json:"connected"`

	Message string `json:"message,omitempty"`

	// NeedsRestart tells the caller to start a new session for a fresh code
	NeedsRestart bool `json:"needsRestart,omitempty"`
}

// LogoutResponse is returned from GET /logout.
type LogoutResponse struct {
	// Status is "success" for completed logouts, including repeats
	Status string `json:"status"`

	// Message distinguishes a real teardown from a no-op on an unknown key
	Message string `json:"message"`
}

// ============================================================================
// Messaging Types
// ============================================================================

// SendMessageRequest is the JSON body for POST /send-message.
type SendMessageRequest struct {
	// Number is the destination: a bare number gets the gateway's chat
	// domain appended, anything containing "@" is used as-is
	Number string `json:"number"`

	// Message is the text to deliver
	Message string `json:"message"`
}

// SendFileURLRequest is the JSON body for POST /send-file-url.
type SendFileURLRequest struct {
	Number string `json:"number"`

	// FileURL is fetched by the gateway and forwarded as a document
	FileURL string `json:"fileUrl"`

	Caption string `json:"caption,omitempty"`

	// FileName overrides the name shown to the recipient; defaults to the
	// last URL path segment
	FileName string `json:"fileName,omitempty"`
}

// SendResponse is the envelope returned by all three send endpoints.
type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	// Status is "ok" whenever the process is serving
	Status string `json:"status"`

	// Timestamp is the server time in RFC3339
	Timestamp string `json:"timestamp"`

	// ActiveSessions counts instances with a live handle, connected or
	// still pairing
	ActiveSessions int `json:"activeSessions"`
}
