package gatewaysdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to a chatbridge gateway on behalf of one instance. All
// session and messaging calls are scoped to the InstanceKey it was created
// with; Health is the only key-free operation.
type Client struct {
	BaseURL     string
	InstanceKey string
	HTTPClient  *http.Client

	// APIKey is sent as the X-API-Key header when non-empty. Only needed
	// against gateways that have boundary auth configured.
	APIKey string
}

// Option customises a Client at construction time.
type Option func(*Client)

// WithAPIKey attaches a static API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.APIKey = key }
}

// WithHTTPClient swaps the underlying HTTP client, e.g. for custom timeouts
// or transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// NewClient creates a gateway client bound to one instance key.
func NewClient(baseURL, instanceKey string, opts ...Option) *Client {
	c := &Client{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		InstanceKey: instanceKey,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
