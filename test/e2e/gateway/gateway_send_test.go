package gateway_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/chatbridge/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// TestSendMessage verifies text delivery through a paired instance, including
// the validation failures.
func TestSendMessage(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	client := newClient(baseURL, "kiosk-send")
	ctx := context.Background()

	startAndConnect(t, client)

	resp, err := client.SendMessage(ctx, "61400000000", "G'day from the e2e suite")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "message sent", resp.Message)

	// Fully qualified addresses work too
	resp, err = client.SendMessage(ctx, "61400000000@s.whatsapp.net", "and again")
	require.NoError(t, err)
	require.True(t, resp.Success)

	// Missing fields are rejected up front
	_, err = client.SendMessage(ctx, "", "no number")
	require.Error(t, err)
	require.True(t, gatewaysdk.IsValidation(err))
	require.Contains(t, err.Error(), "number is required")

	_, err = client.SendMessage(ctx, "61400000000", "")
	require.Error(t, err)
	require.True(t, gatewaysdk.IsValidation(err))
	require.Contains(t, err.Error(), "message is required")
}

// TestSendRequiresConnection verifies sends against an instance that was
// never started are refused with a conflict.
func TestSendRequiresConnection(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	client := newClient(baseURL, "kiosk-ghost")

	_, err := client.SendMessage(context.Background(), "61400000000", "anyone there?")
	require.Error(t, err)
	require.True(t, gatewaysdk.IsNotConnected(err))
	require.Contains(t, err.Error(), "not connected")
}

// TestSendFileUpload verifies multipart uploads are delivered as documents.
func TestSendFileUpload(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	client := newClient(baseURL, "kiosk-upload")
	ctx := context.Background()

	startAndConnect(t, client)

	payload := []byte("%PDF-1.4\n% e2e test document\n")
	resp, err := client.SendFile(ctx, "61400000000", "receipt.pdf", bytes.NewReader(payload), "your receipt")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "file sent", resp.Message)
}

// TestSendFileURLFailures verifies the URL-fetch endpoint's error contract.
// The happy path needs a reachable file server and is covered by the service
// tests; here we check validation and an unreachable origin.
func TestSendFileURLFailures(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	client := newClient(baseURL, "kiosk-fetch")
	ctx := context.Background()

	startAndConnect(t, client)

	// Missing URL is a validation failure
	_, err := client.SendFileURL(ctx, gatewaysdk.SendFileURLRequest{
		Number: "61400000000",
	})
	require.Error(t, err)
	require.True(t, gatewaysdk.IsValidation(err))
	require.Contains(t, err.Error(), "fileUrl is required")

	// An unreachable origin surfaces as a bad gateway
	_, err = client.SendFileURL(ctx, gatewaysdk.SendFileURLRequest{
		Number:  "61400000000",
		FileURL: "http://127.0.0.1:9/nothing-here.png",
	})
	require.Error(t, err)

	var apiErr *gatewaysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "failed to retrieve file")
}
