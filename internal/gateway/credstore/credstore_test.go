package credstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/chatbridge/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	os.Setenv("GATEWAY_MASTER_KEY", "credstore-test-master-key")
	cryptox.ResetMasterKeyForTesting()
	t.Cleanup(func() {
		os.Unsetenv("GATEWAY_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStashRoundTrip(t *testing.T) {
	s := newTestStore(t)

	stash := s.Stash("alpha")

	// No blob yet: Load yields nil, nil
	data, err := stash.Load()
	require.NoError(t, err)
	require.Nil(t, data)
	require.False(t, s.Has("alpha"))

	creds := []byte(`{"device_id":"a1b2c3"}`)
	require.NoError(t, stash.Save(creds))
	require.True(t, s.Has("alpha"))

	loaded, err := stash.Load()
	require.NoError(t, err)
	require.Equal(t, creds, loaded)
}

func TestBlobIsSealedOnDisk(t *testing.T) {
	dir := t.TempDir()

	os.Setenv("GATEWAY_MASTER_KEY", "credstore-test-master-key")
	cryptox.ResetMasterKeyForTesting()
	t.Cleanup(func() {
		os.Unsetenv("GATEWAY_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	s, err := New(dir)
	require.NoError(t, err)

	secret := []byte("the-noise-key-material")
	require.NoError(t, s.Stash("alpha").Save(secret))

	raw, err := os.ReadFile(filepath.Join(dir, "alpha.bin"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "noise-key", "credentials must not be stored in the clear")
}

func TestSaveReplacesAtomically(t *testing.T) {
	s := newTestStore(t)
	stash := s.Stash("alpha")

	require.NoError(t, stash.Save([]byte("v1")))
	require.NoError(t, stash.Save([]byte("v2")))

	loaded, err := stash.Load()
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), loaded)

	// No temp file litter after successful saves
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Stash("alpha").Save([]byte("creds")))
	require.True(t, s.Has("alpha"))

	require.NoError(t, s.Delete("alpha"))
	require.False(t, s.Has("alpha"))
	require.NoError(t, s.Delete("alpha"))

	data, err := s.Stash("alpha").Load()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestKeysArePathEscaped(t *testing.T) {
	s := newTestStore(t)

	hostile := "../../etc/passwd"
	require.NoError(t, s.Stash(hostile).Save([]byte("creds")))

	// The blob must live inside the store dir, not where the key points.
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, s.Has(hostile))

	require.NoError(t, s.Delete(hostile))
	require.False(t, s.Has(hostile))
}
