package gatewaysdk

import (
	"context"
	"net/http"
)

// StartSession asks the gateway to create the instance if needed and begin
// connecting. The call returns as soon as the attempt is underway; poll QR
// for the pairing code.
func (c *Client) StartSession(ctx context.Context) (*StartSessionResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.url("/start-session", nil, true), nil, "")
	if err != nil {
		return nil, err
	}

	var out StartSessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// QR fetches the current pairing code as a PNG data URL. Check Connected
// and NeedsRestart before using the QR field; an instance that has already
// paired returns no code.
func (c *Client) QR(ctx context.Context) (*QRResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.url("/qr", nil, true), nil, "")
	if err != nil {
		return nil, err
	}

	var out QRResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout permanently unlinks the instance: its connection, pairing state and
// stored credentials are all removed. Logging out an unknown instance still
// succeeds.
func (c *Client) Logout(ctx context.Context) (*LogoutResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.url("/logout", nil, true), nil, "")
	if err != nil {
		return nil, err
	}

	var out LogoutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
