// Package protocol defines the contract between the gateway and a messaging
// protocol driver. The gateway never sees protocol internals; it dials
// through a Factory, reacts to the Events stream, and sends through the
// Client. Credentials flow through the Stash so drivers stay storage-agnostic.
package protocol

import "context"

// EventKind discriminates lifecycle events on the client's event stream.
type EventKind int

const (
	// EventPairing carries a fresh pairing code. May repeat while the remote
	// side hasn't scanned yet; each occurrence replaces the previous code.
	EventPairing EventKind = iota + 1

	// EventOpen signals the connection is established and sends will work.
	EventOpen

	// EventClosed signals the connection is gone. LoggedOut distinguishes a
	// terminal remote unlink from a recoverable drop.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventPairing:
		return "pairing"
	case EventOpen:
		return "open"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification from a driver.
type Event struct {
	Kind        EventKind
	PairingCode string // EventPairing only
	Reason      string // EventClosed detail, free-form
	LoggedOut   bool   // EventClosed: true means credentials are dead
}

// Message is the payload for a send. Exactly one of Text or Document is set.
type Message struct {
	Text     string
	Document *Document
}

// Document is a binary attachment with its presentation metadata.
type Document struct {
	Filename string
	MIMEType string
	Data     []byte
	Caption  string
}

// Stash gives a driver durable storage for its credential blob. Load returns
// (nil, nil) when no credentials exist yet, which tells the driver to start a
// fresh pairing.
type Stash interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Client is one live protocol connection.
//
// Events returns the lifecycle stream; the channel is closed by Close. After
// EventOpen, Send delivers messages until EventClosed. Logout asks the remote
// side to unlink this device; the driver follows up with a terminal
// EventClosed. Close releases resources and never blocks on the remote side.
type Client interface {
	Events() <-chan Event
	Send(ctx context.Context, to string, msg Message) error
	Logout(ctx context.Context) error
	Close() error
}

// Factory dials new protocol connections. Dial must respect ctx cancellation;
// a successful Dial hands ownership of the Client to the caller.
type Factory interface {
	Dial(ctx context.Context, stash Stash) (Client, error)
}
