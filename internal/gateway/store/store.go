package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Every lifecycle mutation is a single statement, so there is
// no transaction surface; if a multi-step write ever shows up it gets added
// here rather than smuggled through driver internals.
type Store interface {
	Instances() Instances

	ApplyMigrations() error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Instances interface {
	// GetInstance returns the durable record for a key.
	GetInstance(ctx context.Context, key string) (domain.Instance, error)

	// ListInstanceKeys returns every known key, oldest first. Used by the
	// startup restore pass.
	ListInstanceKeys(ctx context.Context) ([]string, error)

	// UpsertInstance creates the placeholder row for a key if it does not
	// exist yet. Existing rows are left untouched.
	UpsertInstance(ctx context.Context, key string) error

	// SetConnected marks the instance connected and clears both pairing
	// columns in the same statement.
	SetConnected(ctx context.Context, key string) error

	// SetDisconnected clears the connected flag, leaving pairing state alone.
	SetDisconnected(ctx context.Context, key string) error

	// SetPairingCode records a freshly issued pairing code. Re-issuing
	// replaces the previous code and timestamp.
	SetPairingCode(ctx context.Context, key, code string, issuedAt time.Time) error

	// ClearPairingCode drops the pairing code and its timestamp.
	ClearPairingCode(ctx context.Context, key string) error

	// DeleteInstance removes the row entirely. Logout and terminal closures
	// end here; a missing row is what makes their fences hold.
	DeleteInstance(ctx context.Context, key string) error

	// PurgeStalePairings clears pairing codes issued before the cutoff.
	// Returns the number of rows touched. Housekeeping only; the QR read
	// path does its own freshness check.
	PurgeStalePairings(ctx context.Context, before time.Time) (int64, error)
}
