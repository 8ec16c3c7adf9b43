// Package protosim is an in-process protocol driver. It speaks the full
// protocol.Factory contract with deterministic behaviour: a dial with saved
// credentials opens immediately, a fresh dial issues a pairing code and then
// pairs itself after a configurable delay. The default binary wires it so the
// gateway runs without any external service, and the e2e suite drives it
// directly.
package protosim

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol"
)

// ErrNotOpen is returned by Send before the simulated connection has opened.
var ErrNotOpen = errors.New("protosim: connection not open")

// Factory builds simulated clients.
type Factory struct {
	// PairDelay is how long a fresh dial waits before pairing itself.
	PairDelay time.Duration

	// AutoPair completes the pairing handshake automatically. Disable it in
	// tests that drive pairing by hand via Client.CompletePairing.
	AutoPair bool

	mu       sync.Mutex
	dialErr  error
	attempts int
	clients  []*Client
}

// NewFactory returns a Factory with demo-friendly defaults.
func NewFactory() *Factory {
	return &Factory{
		PairDelay: 10 * time.Second,
		AutoPair:  true,
	}
}

// Dial implements protocol.Factory.
func (f *Factory) Dial(ctx context.Context, stash protocol.Stash) (protocol.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.attempts++
	dialErr := f.dialErr
	f.mu.Unlock()
	if dialErr != nil {
		return nil, dialErr
	}

	c := &Client{
		stash:  stash,
		events: make(chan protocol.Event, 8),
	}

	creds, err := stash.Load()
	if err != nil {
		return nil, fmt.Errorf("protosim: load stash: %w", err)
	}

	if len(creds) > 0 {
		// Existing session: straight to open.
		c.open = true
		c.emit(protocol.Event{Kind: protocol.EventOpen})
	} else {
		code, err := pairingCode()
		if err != nil {
			return nil, err
		}
		c.emit(protocol.Event{Kind: protocol.EventPairing, PairingCode: code})
		if f.AutoPair {
			c.pairTimer = time.AfterFunc(f.PairDelay, c.CompletePairing)
		}
	}

	f.mu.Lock()
	f.clients = append(f.clients, c)
	f.mu.Unlock()

	return c, nil
}

// SetDialErr forces subsequent dials to fail with err until cleared with
// nil. Safe to flip while dials are in flight.
func (f *Factory) SetDialErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialErr = err
}

// DialAttempts counts every Dial call, including failed ones.
func (f *Factory) DialAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// Dialed returns every client this factory has produced, in dial order.
func (f *Factory) Dialed() []*Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Client, len(f.clients))
	copy(out, f.clients)
	return out
}

// Last returns the most recently dialed client, or nil.
func (f *Factory) Last() *Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clients) == 0 {
		return nil
	}
	return f.clients[len(f.clients)-1]
}

// SentMessage records one successful Send.
type SentMessage struct {
	To  string
	Msg protocol.Message
}

// Client is one simulated connection.
type Client struct {
	stash protocol.Stash

	mu        sync.Mutex
	events    chan protocol.Event
	open      bool
	closed    bool
	pairTimer *time.Timer
	sent      []SentMessage
}

// Events implements protocol.Client.
func (c *Client) Events() <-chan protocol.Event { return c.events }

// Send implements protocol.Client. Messages are recorded for inspection.
func (c *Client) Send(ctx context.Context, to string, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.closed {
		return ErrNotOpen
	}
	c.sent = append(c.sent, SentMessage{To: to, Msg: msg})
	return nil
}

// Logout implements protocol.Client. The remote side "unlinks" immediately:
// a terminal closure is emitted and the connection stops accepting sends.
func (c *Client) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.open = false
	c.mu.Unlock()

	c.emit(protocol.Event{Kind: protocol.EventClosed, Reason: "logged out", LoggedOut: true})
	return nil
}

// Close implements protocol.Client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.open = false
	if c.pairTimer != nil {
		c.pairTimer.Stop()
	}
	close(c.events)
	return nil
}

// CompletePairing simulates the remote device scanning the code: credentials
// are saved through the stash and the connection opens.
func (c *Client) CompletePairing() {
	creds, err := credentialBlob()
	if err == nil {
		err = c.stash.Save(creds)
	}
	if err != nil {
		c.emit(protocol.Event{Kind: protocol.EventClosed, Reason: "pairing failed: " + err.Error()})
		return
	}

	c.mu.Lock()
	c.open = true
	c.mu.Unlock()

	c.emit(protocol.Event{Kind: protocol.EventOpen})
}

// Drop simulates a recoverable connection loss.
func (c *Client) Drop(reason string) {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()

	c.emit(protocol.Event{Kind: protocol.EventClosed, Reason: reason})
}

// Unlink simulates the remote side removing this device (terminal closure
// without a local Logout call).
func (c *Client) Unlink() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()

	c.emit(protocol.Event{Kind: protocol.EventClosed, Reason: "device removed", LoggedOut: true})
}

// Reissue pushes a replacement pairing code, as the real protocol does when a
// code sits unscanned long enough.
func (c *Client) Reissue() error {
	code, err := pairingCode()
	if err != nil {
		return err
	}
	c.emit(protocol.Event{Kind: protocol.EventPairing, PairingCode: code})
	return nil
}

// Sent returns the messages accepted so far.
func (c *Client) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}

// IsOpen reports whether the simulated connection currently accepts sends.
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open && !c.closed
}

func (c *Client) emit(ev protocol.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		// Consumer gone or wedged; the simulator never blocks on it.
	}
}

func pairingCode() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("protosim: pairing code: %w", err)
	}
	return "2@" + base64.StdEncoding.EncodeToString(raw), nil
}

func credentialBlob() ([]byte, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("protosim: credentials: %w", err)
	}
	return fmt.Appendf(nil, `{"device_id":%q}`, base64.RawURLEncoding.EncodeToString(raw)), nil
}
