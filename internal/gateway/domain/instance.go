package domain

import "time"

// Instance is the durable record for one protocol connection slot. The
// caller-supplied key identifies it everywhere: HTTP query params, the
// credential blob on disk, and the live registry entry.
type Instance struct {
	Key             string
	Connected       bool
	PairingCode     *string    // nullable; set only while pairing is pending
	PairingIssuedAt *time.Time // travels with PairingCode
	LastConnectedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SessionState describes a live registry entry. An instance with no entry is
// absent; closed connections are removed from the registry rather than parked
// in a dedicated state.
type SessionState string

const (
	StateInitializing    SessionState = "initializing"
	StateAwaitingPairing SessionState = "awaiting_pairing"
	StateConnected       SessionState = "connected"
)
