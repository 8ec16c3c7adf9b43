// Package idx mints and validates ULID identifiers, used by the gateway
// as request IDs: sortable by issue time and safe to mint concurrently.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID in its canonical 26-character form.
type ID string

// ErrInvalid reports a string that is not a canonical ULID.
var ErrInvalid = errors.New("idx: invalid ulid")

// Package init runs before any goroutine touches these, the mutex guards
// everything after that.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New mints an ID for the current time. IDs minted within the same
// millisecond still come out strictly increasing.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt mints an ID carrying the given timestamp.
func NewAt(t time.Time) ID {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// Parse validates s as a canonical ULID. Leading and trailing whitespace
// is tolerated; anything else malformed returns ErrInvalid.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if _, err := ulid.ParseStrict(s); err != nil {
		return "", ErrInvalid
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }

// Time recovers the timestamp embedded in the ID, or the zero time when
// the ID does not parse.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
