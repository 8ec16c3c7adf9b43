package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/credstore"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/domain"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol/protosim"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/store"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/store/drivers/sqlite"
)

type managerFixture struct {
	manager *SessionManager
	factory *protosim.Factory
	store   store.Store
	creds   *credstore.Store
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	creds, err := credstore.New(t.TempDir())
	require.NoError(t, err)

	factory := protosim.NewFactory()
	factory.AutoPair = false

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := NewSessionManager(st, creds, factory, NewRegistry(), NewPairCache(), logger, ManagerConfig{
		QRTTL:          time.Minute,
		ReconnectDelay: 150 * time.Millisecond,
		DialTimeout:    2 * time.Second,
	})
	t.Cleanup(func() { _ = m.Close() })

	return &managerFixture{manager: m, factory: factory, store: st, creds: creds}
}

func (fx *managerFixture) waitForState(t *testing.T, key string, want domain.SessionState) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, state, ok := fx.manager.registry.Get(key)
		return ok && state == want
	}, 2*time.Second, 5*time.Millisecond)
}

func (fx *managerFixture) waitForRemoval(t *testing.T, key string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, _, ok := fx.manager.registry.Get(key)
		return !ok
	}, 2*time.Second, time.Millisecond)
}

// waitForStoredCode blocks until the pairing event has been fully processed,
// including the store write that finishes it.
func (fx *managerFixture) waitForStoredCode(t *testing.T, key string) {
	t.Helper()
	require.Eventually(t, func() bool {
		inst, err := fx.store.Instances().GetInstance(context.Background(), key)
		return err == nil && inst.PairingCode != nil
	}, 2*time.Second, 5*time.Millisecond)
}

func (fx *managerFixture) pairAndConnect(t *testing.T, key string) {
	t.Helper()
	_, err := fx.manager.StartSession(context.Background(), key)
	require.NoError(t, err)
	fx.waitForState(t, key, domain.StateAwaitingPairing)
	fx.factory.Last().CompletePairing()
	fx.waitForState(t, key, domain.StateConnected)
}

func TestEmptyInstanceKeyRejected(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.StartSession(ctx, "  ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = fx.manager.QR(ctx, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = fx.manager.Logout(ctx, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestStartSessionPairingFlow(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, res.Connected)

	fx.waitForStoredCode(t, "alpha")

	qr, err := fx.manager.QR(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, qr.Connected)
	require.False(t, qr.NeedsRestart)
	require.True(t, strings.HasPrefix(qr.QR, "data:image/png;base64,"))
	require.Greater(t, qr.ExpiresIn, 0)
	require.LessOrEqual(t, qr.ExpiresIn, 60)

	// The durable record carries the code so it survives a restart.
	inst, err := fx.store.Instances().GetInstance(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, inst.PairingCode)
	require.False(t, inst.Connected)

	fx.factory.Last().CompletePairing()
	fx.waitForState(t, "alpha", domain.StateConnected)

	qr, err = fx.manager.QR(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, qr.Connected)
	require.Empty(t, qr.QR)

	require.Eventually(t, func() bool {
		inst, err := fx.store.Instances().GetInstance(ctx, "alpha")
		return err == nil && inst.Connected && inst.PairingCode == nil
	}, 2*time.Second, 5*time.Millisecond)

	require.True(t, fx.creds.Has("alpha"))
	require.Equal(t, 1, fx.manager.ActiveSessions())
}

func TestStartSessionStates(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	fx.waitForState(t, "alpha", domain.StateAwaitingPairing)

	res, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, res.Connected)
	require.Contains(t, res.Message, "in progress")

	fx.factory.Last().CompletePairing()
	fx.waitForState(t, "alpha", domain.StateConnected)

	res, err = fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, res.Connected)

	require.Len(t, fx.factory.Dialed(), 1, "repeat starts must not redial")
}

func TestStartSessionSingleFlight(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.manager.StartSession(ctx, "alpha")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	fx.waitForState(t, "alpha", domain.StateAwaitingPairing)
	require.Len(t, fx.factory.Dialed(), 1, "concurrent starts must collapse to one dial")
}

func TestQRLazyExpiry(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	fx.waitForStoredCode(t, "alpha")

	entry, ok := fx.manager.cache.Get("alpha")
	require.True(t, ok)

	t.Run("fresh code reports at least one second left", func(t *testing.T) {
		fx.manager.now = func() time.Time { return entry.IssuedAt.Add(fx.manager.qrTTL - 10*time.Millisecond) }

		qr, err := fx.manager.QR(ctx, "alpha")
		require.NoError(t, err)
		require.NotEmpty(t, qr.QR)
		require.Equal(t, 1, qr.ExpiresIn)
	})

	t.Run("code expires exactly at the ttl", func(t *testing.T) {
		fx.manager.now = func() time.Time { return entry.IssuedAt.Add(fx.manager.qrTTL) }

		qr, err := fx.manager.QR(ctx, "alpha")
		require.NoError(t, err)
		require.True(t, qr.NeedsRestart)
		require.Empty(t, qr.QR)

		// Expiry clears both the cache and the durable record.
		inst, err := fx.store.Instances().GetInstance(ctx, "alpha")
		require.NoError(t, err)
		require.Nil(t, inst.PairingCode)

		_, ok := fx.manager.cache.Get("alpha")
		require.False(t, ok)
	})

	t.Run("expired code stays gone", func(t *testing.T) {
		fx.manager.now = time.Now

		qr, err := fx.manager.QR(ctx, "alpha")
		require.NoError(t, err)
		require.True(t, qr.NeedsRestart)
	})
}

func TestQRUnknownInstance(t *testing.T) {
	fx := newManagerFixture(t)

	qr, err := fx.manager.QR(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, qr.Connected)
	require.Empty(t, qr.QR)
	require.True(t, qr.NeedsRestart)
}

func TestQRSurvivesCacheLoss(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	fx.waitForStoredCode(t, "alpha")

	// A restart loses the in-memory cache but not the record.
	fx.manager.cache.Delete("alpha")

	qr, err := fx.manager.QR(ctx, "alpha")
	require.NoError(t, err)
	require.NotEmpty(t, qr.QR)
	require.False(t, qr.NeedsRestart)

	_, ok := fx.manager.cache.Get("alpha")
	require.True(t, ok, "store hit should rehydrate the cache")
}

func TestPairingReissueReplacesCode(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	fx.waitForStoredCode(t, "alpha")

	first, ok := fx.manager.cache.Get("alpha")
	require.True(t, ok)

	require.NoError(t, fx.factory.Last().Reissue())

	require.Eventually(t, func() bool {
		inst, err := fx.store.Instances().GetInstance(ctx, "alpha")
		return err == nil && inst.PairingCode != nil && *inst.PairingCode != first.Code
	}, 2*time.Second, 5*time.Millisecond)

	inst, err := fx.store.Instances().GetInstance(ctx, "alpha")
	require.NoError(t, err)
	e, ok := fx.manager.cache.Get("alpha")
	require.True(t, ok)
	require.Equal(t, *inst.PairingCode, e.Code, "cache and record must agree on the latest code")
}

func TestLogoutIdempotent(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.Logout(ctx, "ghost")
	require.NoError(t, err)
	require.Contains(t, res.Message, "not found")

	fx.pairAndConnect(t, "alpha")
	require.True(t, fx.creds.Has("alpha"))

	res, err = fx.manager.Logout(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, "instance logged out", res.Message)

	_, _, ok := fx.manager.registry.Get("alpha")
	require.False(t, ok)
	require.False(t, fx.creds.Has("alpha"))
	require.False(t, fx.factory.Last().IsOpen())
	_, err = fx.store.Instances().GetInstance(ctx, "alpha")
	require.ErrorIs(t, err, store.ErrNotFound)

	res, err = fx.manager.Logout(ctx, "alpha")
	require.NoError(t, err)
	require.Contains(t, res.Message, "not found")
}

func TestLogoutBeatsScheduledReconnect(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	fx.pairAndConnect(t, "alpha")
	dialed := len(fx.factory.Dialed())

	fx.factory.Last().Drop("stream error")
	fx.waitForRemoval(t, "alpha")

	// A reconnect is on its way; logging out now must win over it.
	_, err := fx.manager.Logout(ctx, "alpha")
	require.NoError(t, err)

	time.Sleep(3 * fx.manager.reconnectDelay)

	require.Len(t, fx.factory.Dialed(), dialed, "reconnect must not fire after logout")
	_, _, ok := fx.manager.registry.Get("alpha")
	require.False(t, ok)
	_, err = fx.store.Instances().GetInstance(ctx, "alpha")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecoverableDropReconnects(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	fx.pairAndConnect(t, "alpha")
	first := fx.factory.Last()

	first.Drop("stream error")
	fx.waitForRemoval(t, "alpha")
	fx.waitForState(t, "alpha", domain.StateConnected)

	require.Len(t, fx.factory.Dialed(), 2)
	require.NotSame(t, first, fx.factory.Last())

	// Saved credentials mean no new pairing round.
	require.Eventually(t, func() bool {
		inst, err := fx.store.Instances().GetInstance(ctx, "alpha")
		return err == nil && inst.Connected && inst.PairingCode == nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRemoteUnlinkIsTerminal(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	fx.pairAndConnect(t, "alpha")
	dialed := len(fx.factory.Dialed())

	fx.factory.Last().Unlink()

	require.Eventually(t, func() bool {
		_, err := fx.store.Instances().GetInstance(ctx, "alpha")
		return errors.Is(err, store.ErrNotFound)
	}, 2*time.Second, 5*time.Millisecond)

	require.False(t, fx.creds.Has("alpha"))
	_, _, ok := fx.manager.registry.Get("alpha")
	require.False(t, ok)

	time.Sleep(3 * fx.manager.reconnectDelay)
	require.Len(t, fx.factory.Dialed(), dialed, "terminal closure must not reconnect")
}

func TestDialFailureUnpairedKeyDropped(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	fx.factory.SetDialErr(errors.New("network unreachable"))

	_, err := fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err, "dial failures surface through logs, not the start call")

	require.Eventually(t, func() bool {
		_, err := fx.store.Instances().GetInstance(ctx, "alpha")
		return errors.Is(err, store.ErrNotFound)
	}, 2*time.Second, 5*time.Millisecond)

	_, _, ok := fx.manager.registry.Get("alpha")
	require.False(t, ok)

	// The key can be started again once the network returns.
	fx.factory.SetDialErr(nil)
	_, err = fx.manager.StartSession(ctx, "alpha")
	require.NoError(t, err)
	fx.waitForState(t, "alpha", domain.StateAwaitingPairing)
}

func TestDialFailurePairedKeyRetries(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	fx.pairAndConnect(t, "alpha")

	fx.factory.SetDialErr(errors.New("network unreachable"))
	attempts := fx.factory.DialAttempts()
	fx.factory.Last().Drop("stream error")

	// At least one redial fails, and the record survives it.
	require.Eventually(t, func() bool {
		return fx.factory.DialAttempts() > attempts
	}, 2*time.Second, 5*time.Millisecond)
	_, err := fx.store.Instances().GetInstance(ctx, "alpha")
	require.NoError(t, err)

	fx.factory.SetDialErr(nil)
	fx.waitForState(t, "alpha", domain.StateConnected)
	require.True(t, fx.creds.Has("alpha"))
}

func TestRestoreAll(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.Instances().UpsertInstance(ctx, "alpha"))
	require.NoError(t, fx.store.Instances().UpsertInstance(ctx, "beta"))

	require.NoError(t, fx.manager.RestoreAll(ctx))

	fx.waitForState(t, "alpha", domain.StateAwaitingPairing)
	fx.waitForState(t, "beta", domain.StateAwaitingPairing)
	require.Len(t, fx.factory.Dialed(), 2)
}

func TestCloseDropsConnections(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	fx.pairAndConnect(t, "alpha")
	client := fx.factory.Last()

	require.NoError(t, fx.manager.Close())

	require.Equal(t, 0, fx.manager.ActiveSessions())
	require.False(t, client.IsOpen())

	// The record survives shutdown so the next boot restores the instance.
	_, err := fx.store.Instances().GetInstance(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, fx.creds.Has("alpha"))
}
