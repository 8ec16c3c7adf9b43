package gateway_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/chatbridge/pkg/cryptox"
	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// assertUnauthorized checks that an error indicates a rejected API key.
func assertUnauthorized(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.Contains(t, err.Error(), "401", "%s - expected an unauthorized error, got: %s", context, err)
}

// TestAPIKeyRequired verifies every instance endpoint rejects requests
// without the configured API key, while /health stays open.
func TestAPIKeyRequired(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	ctx := context.Background()

	// No API key at all
	bare := gatewaysdk.NewClient(baseURL, "kiosk-sec")

	_, err := bare.StartSession(ctx)
	assertUnauthorized(t, err, "start-session without key")

	_, err = bare.QR(ctx)
	assertUnauthorized(t, err, "qr without key")

	_, err = bare.Logout(ctx)
	assertUnauthorized(t, err, "logout without key")

	_, err = bare.SendMessage(ctx, "61400000000", "hello")
	assertUnauthorized(t, err, "send-message without key")

	// Health has no key requirement
	health, err := bare.Health(ctx)
	assertHealthy(t, health, err)

	// A wrong key is rejected the same way
	wrong := gatewaysdk.NewClient(baseURL, "kiosk-sec", gatewaysdk.WithAPIKey("not-the-key"))
	_, err = wrong.StartSession(ctx)
	assertUnauthorized(t, err, "start-session with wrong key")

	// The right key gets through
	right := newClient(baseURL, "kiosk-sec")
	resp, err := right.StartSession(ctx)
	require.NoError(t, err)
	require.True(t, resp.Success)
}

// TestMissingInstanceKey verifies the instance endpoints refuse requests
// without an instanceKey.
func TestMissingInstanceKey(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	// Valid API key, empty instance key
	client := gatewaysdk.NewClient(baseURL, "", gatewaysdk.WithAPIKey(testAPIKey))
	ctx := context.Background()

	_, err := client.StartSession(ctx)
	require.Error(t, err)
	require.True(t, gatewaysdk.IsValidation(err))
	require.Contains(t, err.Error(), "instanceKey is required")

	_, err = client.QR(ctx)
	require.True(t, gatewaysdk.IsValidation(err))

	_, err = client.Logout(ctx)
	require.True(t, gatewaysdk.IsValidation(err))

	// Send validation runs the same check once the payload is otherwise fine
	_, err = client.SendMessage(ctx, "61400000000", "hello")
	require.True(t, gatewaysdk.IsValidation(err))
	require.Contains(t, err.Error(), "instanceKey is required")
}

// TestHashedAPIKey verifies authentication against an Argon2id hash when
// GATEWAY_API_KEY_HASH is configured instead of the raw key.
func TestHashedAPIKey(t *testing.T) {
	// Fresh random credential, stored server-side only as its PHC hash
	key, err := cryptox.GenerateAPIKey()
	require.NoError(t, err)
	hash, err := cryptox.HashAPIKey(key)
	require.NoError(t, err)

	env := baseEnv()
	delete(env, "GATEWAY_API_KEY")
	env["GATEWAY_API_KEY_HASH"] = hash
	env["GATEWAY_SIM_PAIR_DELAY"] = "10m"
	relaxRateLimits(env)

	baseURL, cleanup := startContainer(t, env)
	defer cleanup()

	ctx := context.Background()

	// The raw key verifies against its stored hash
	client := gatewaysdk.NewClient(baseURL, "kiosk-hash", gatewaysdk.WithAPIKey(key))
	resp, err := client.StartSession(ctx)
	require.NoError(t, err)
	require.True(t, resp.Success)

	// Any other key does not
	wrong := gatewaysdk.NewClient(baseURL, "kiosk-hash", gatewaysdk.WithAPIKey(testAPIKey))
	_, err = wrong.StartSession(ctx)
	assertUnauthorized(t, err, "start-session with non-matching key against hash")
}
