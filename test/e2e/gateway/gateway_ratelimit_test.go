package gateway_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRateLimitStartSession verifies that /start-session is rate limited.
// The endpoint has strict limits (5 req/min) because every call can spawn a
// dial and a database write.
func TestRateLimitStartSession(t *testing.T) {
	baseURL, cleanup := setupGatewayContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := newClient(baseURL, "kiosk-rl")
	ctx := context.Background()

	// Make requests until we hit the rate limit (strict limit is 5 req/min)
	// We'll make 6 requests rapidly and expect the 6th to be rate limited
	var lastErr error
	for i := range 6 {
		_, err := client.StartSession(ctx)
		if i < 5 {
			// First 5 are no-ops after the initial start, but all allowed
			require.NoError(t, err, "request %d should not be rate limited yet", i+1)
		} else {
			lastErr = err
		}
	}

	require.Error(t, lastErr)
	require.Contains(t, lastErr.Error(), "429", "Should be rate limited after 5 requests")
	t.Logf("Successfully rate limited after 5 requests to /start-session")
}

// TestRateLimitIsPerInstance verifies the limiter keys on IP + instanceKey,
// so one noisy instance cannot starve another.
func TestRateLimitIsPerInstance(t *testing.T) {
	baseURL, cleanup := setupGatewayContainerWithDefaultRateLimits(t)
	defer cleanup()

	noisy := newClient(baseURL, "kiosk-noisy")
	quiet := newClient(baseURL, "kiosk-quiet")
	ctx := context.Background()

	// Exhaust the noisy instance's budget
	for range 6 {
		_, _ = noisy.StartSession(ctx)
	}
	_, err := noisy.StartSession(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")

	// A different instance key still has its own budget
	resp, err := quiet.StartSession(ctx)
	require.NoError(t, err, "another instance should not be affected")
	require.True(t, resp.Success)
}
