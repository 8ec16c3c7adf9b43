package gatewaysdk

import (
	"context"
	"net/http"
)

// Health reports whether the gateway is serving and how many instances hold
// a live handle. It needs no instance key and no API key.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.url("/health", nil, false), nil, "")
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
