/*
Package gatewaysdk provides a client SDK for the chatbridge gateway.

# Overview

A Client is bound to a single instance key at construction and exposes the
gateway's whole HTTP surface as typed methods: session lifecycle
(StartSession, QR, Logout), messaging (SendMessage, SendFileURL, SendFile)
and Health.

	client := gatewaysdk.NewClient("https://gateway.example.com", "my-instance")

	// Kick off a session and poll for the pairing code.
	_, err := client.StartSession(ctx)
	qr, err := client.QR(ctx)
	if qr.NeedsRestart {
		// The code expired before anyone scanned it; start over.
	}

	// Once paired, send messages.
	_, err = client.SendMessage(ctx, "61400000001", "hello")

Gateways with boundary auth configured need the key attached:

	client := gatewaysdk.NewClient(baseURL, "my-instance",
		gatewaysdk.WithAPIKey(os.Getenv("GATEWAY_API_KEY")))

# Errors

Non-2xx responses come back as *APIError carrying the HTTP status and the
gateway's message. The IsValidation, IsNotConnected and IsLoggedOut helpers
cover the statuses callers usually branch on:

	_, err := client.SendMessage(ctx, number, text)
	if gatewaysdk.IsNotConnected(err) {
		// Start the session and pair again before retrying.
	}
*/
package gatewaysdk
