package gateway_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoint verifies the health probe works without any API key and
// reports the live session count.
func TestHealthEndpoint(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	// Deliberately no API key: orchestrator probes don't carry one
	bare := gatewaysdk.NewClient(baseURL, "")

	health, err := bare.Health(t.Context())
	assertHealthy(t, health, err)
	require.Equal(t, 0, health.ActiveSessions)

	// Timestamp is RFC3339 server time
	ts, err := time.Parse(time.RFC3339, health.Timestamp)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC(), ts, time.Minute)

	t.Logf("Health endpoint is healthy")
}

// TestHealthCountsPendingSessions verifies the session count includes
// instances that are still pairing, not just connected ones.
func TestHealthCountsPendingSessions(t *testing.T) {
	baseURL, cleanup := setupSlowPairingContainer(t)
	defer cleanup()

	client := newClient(baseURL, "kiosk-pending")

	_, err := client.StartSession(t.Context())
	require.NoError(t, err)

	waitForPairingCode(t, client)

	// Still unpaired, but very much a live session
	assertActiveSessions(t, client, 1)
}
