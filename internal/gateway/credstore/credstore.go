// Package credstore keeps per-instance protocol credentials on disk, one
// sealed blob per key. Blobs are AES-256-GCM sealed through pkg/cryptox and
// written atomically so a crash mid-save never leaves a torn file behind.
package credstore

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol"
	"github.com/aussiebroadwan/chatbridge/pkg/cryptox"
)

// Store manages the credential directory.
type Store struct {
	dir string
}

// New creates the credential directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("credstore: empty directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("credstore: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Stash returns the protocol-facing load/save handle for one instance key.
func (s *Store) Stash(key string) protocol.Stash {
	return &stash{path: s.path(key)}
}

// Delete removes the blob for a key. Deleting a key that has no blob is fine;
// logout leans on that for idempotency.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credstore: delete %q: %w", key, err)
	}
	return nil
}

// Has reports whether a blob exists for the key.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

// path escapes the caller-supplied key so it can never traverse outside the
// credential directory.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".bin")
}

type stash struct {
	path string
}

// Load implements protocol.Stash. A missing blob yields (nil, nil), which a
// driver reads as "start a fresh pairing".
func (st *stash) Load() ([]byte, error) {
	sealed, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: read: %w", err)
	}

	plain, err := cryptox.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("credstore: unseal: %w", err)
	}
	return plain, nil
}

// Save implements protocol.Stash. The sealed blob lands via a temp file and
// rename so readers only ever see complete writes.
func (st *stash) Save(data []byte) error {
	sealed, err := cryptox.Seal(data)
	if err != nil {
		return fmt.Errorf("credstore: seal: %w", err)
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("credstore: write temp: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}
