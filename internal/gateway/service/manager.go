package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/credstore"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/domain"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/store"
	"github.com/aussiebroadwan/chatbridge/pkg/qrx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

var ErrValidation = errors.New("invalid request")

// SessionManager owns the lifecycle of every messaging instance: it dials
// connections, pumps their events, persists pairing codes, schedules
// reconnects after recoverable closures and tears everything down on logout.
//
// The durable store is the single source of truth for which instances exist.
// Logout wins every race by deleting the store record: dial completions and
// reconnect timers re-check the record before acting, so a concurrent logout
// silently cancels them without any timer bookkeeping.
type SessionManager struct {
	store    store.Store
	creds    *credstore.Store
	factory  protocol.Factory
	registry *Registry
	cache    *PairCache
	logger   *slog.Logger

	qrTTL          time.Duration
	reconnectDelay time.Duration
	dialTimeout    time.Duration

	now func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// ManagerConfig carries the tunables for a SessionManager. Zero values fall
// back to the defaults below.
type ManagerConfig struct {
	QRTTL          time.Duration
	ReconnectDelay time.Duration
	DialTimeout    time.Duration
}

const (
	defaultQRTTL          = 60 * time.Second
	defaultReconnectDelay = 5 * time.Second
	defaultDialTimeout    = 30 * time.Second
)

func NewSessionManager(
	st store.Store,
	creds *credstore.Store,
	factory protocol.Factory,
	registry *Registry,
	cache *PairCache,
	logger *slog.Logger,
	cfg ManagerConfig,
) *SessionManager {
	if cfg.QRTTL <= 0 {
		cfg.QRTTL = defaultQRTTL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		store:          st,
		creds:          creds,
		factory:        factory,
		registry:       registry,
		cache:          cache,
		logger:         logger,
		qrTTL:          cfg.QRTTL,
		reconnectDelay: cfg.ReconnectDelay,
		dialTimeout:    cfg.DialTimeout,
		now:            time.Now,
		timers:         make(map[string]*time.Timer),
	}
}

// StartResult reports the outcome of a StartSession call.
type StartResult struct {
	Connected bool
	Message   string
}

// StartSession ensures an instance exists for key and that a connection
// attempt is underway. Calls against a connected or already-initializing
// instance are no-ops. The dial itself happens on a background goroutine;
// callers poll /qr for progress.
func (m *SessionManager) StartSession(ctx context.Context, key string) (StartResult, error) {
	if strings.TrimSpace(key) == "" {
		return StartResult{}, fmt.Errorf("%w: instanceKey is required", ErrValidation)
	}

	if _, state, ok := m.registry.Get(key); ok {
		if state == domain.StateConnected {
			return StartResult{Connected: true, Message: "instance already connected"}, nil
		}
		return StartResult{Message: "instance initialization already in progress"}, nil
	}

	if !m.registry.BeginInit(key) {
		return StartResult{Message: "instance initialization already in progress"}, nil
	}

	// Record the instance before dialing so a crash mid-dial still restores
	// the key on the next boot.
	if err := m.store.Instances().UpsertInstance(ctx, key); err != nil {
		m.registry.EndInit(key)
		return StartResult{}, fmt.Errorf("record instance: %w", err)
	}

	go m.initialize(key)

	return StartResult{Message: "instance initializing"}, nil
}

// initialize dials a connection for key and installs it in the registry.
// The caller must hold the init guard; it is released here.
func (m *SessionManager) initialize(key string) {
	defer m.registry.EndInit(key)

	log := m.logger.With(slog.String("instance", key))

	dialCtx, cancel := context.WithTimeout(context.Background(), m.dialTimeout)
	defer cancel()

	client, err := m.factory.Dial(dialCtx, m.creds.Stash(key))
	if err != nil {
		log.Error("dial failed", slog.Any("error", err))
		m.dialFailed(key, log)
		return
	}

	// A logout may have landed while the dial was in flight. The store
	// record is the referee: if it is gone, discard the fresh connection.
	if _, err := m.store.Instances().GetInstance(context.Background(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("instance removed during dial, discarding connection")
		} else {
			log.Error("instance lookup failed after dial", slog.Any("error", err))
		}
		_ = client.Close()
		return
	}

	if prev := m.registry.Put(key, client); prev != nil {
		log.Warn("replacing stale protocol handle")
		_ = prev.Close()
	}

	go m.pump(key, client, log)
}

// dialFailed decides what happens to an instance whose dial attempt failed.
// A key that has connected before keeps its record and gets a retry; a key
// that never made it to the network is dropped so /start-session can be
// retried from a clean slate.
func (m *SessionManager) dialFailed(key string, log *slog.Logger) {
	ctx := context.Background()

	inst, err := m.store.Instances().GetInstance(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("instance lookup failed after dial error", slog.Any("error", err))
		}
		return
	}

	if inst.LastConnectedAt == nil {
		if err := m.creds.Delete(key); err != nil {
			log.Warn("credential cleanup failed", slog.Any("error", err))
		}
		if err := m.store.Instances().DeleteInstance(ctx, key); err != nil {
			log.Error("instance cleanup failed", slog.Any("error", err))
		}
		log.Info("unpaired instance dropped after dial failure")
		return
	}

	m.scheduleReconnect(key)
}

// pump drains the event channel of a single client. Running all handlers on
// this one goroutine keeps per-instance event ordering; cross-instance
// ordering is not guaranteed and not needed.
func (m *SessionManager) pump(key string, client protocol.Client, log *slog.Logger) {
	for ev := range client.Events() {
		switch ev.Kind {
		case protocol.EventPairing:
			m.handlePairing(key, client, ev, log)
		case protocol.EventOpen:
			m.handleOpen(key, client, log)
		case protocol.EventClosed:
			m.handleClosed(key, client, ev, log)
		default:
			log.Warn("unhandled protocol event", slog.String("kind", ev.Kind.String()))
		}
	}
}

func (m *SessionManager) handlePairing(key string, client protocol.Client, ev protocol.Event, log *slog.Logger) {
	if !m.registry.SetState(key, client, domain.StateAwaitingPairing) {
		return
	}

	issuedAt := m.now()
	m.cache.Set(key, ev.PairingCode, issuedAt)

	if err := m.store.Instances().SetPairingCode(context.Background(), key, ev.PairingCode, issuedAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Logout raced the pairing event; drop the cached code too.
			m.cache.Delete(key)
			return
		}
		log.Error("persist pairing code failed", slog.Any("error", err))
	}
	log.Info("pairing code issued")
}

func (m *SessionManager) handleOpen(key string, client protocol.Client, log *slog.Logger) {
	if !m.registry.SetState(key, client, domain.StateConnected) {
		return
	}

	m.cache.Delete(key)

	if err := m.store.Instances().SetConnected(context.Background(), key); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("persist connected state failed", slog.Any("error", err))
	}
	log.Info("instance connected")
}

func (m *SessionManager) handleClosed(key string, client protocol.Client, ev protocol.Event, log *slog.Logger) {
	// Unregister first so nobody can pick up the dead handle, then decide
	// between teardown and retry.
	if !m.registry.RemoveIf(key, client) {
		return
	}
	_ = client.Close()
	m.cache.Delete(key)

	ctx := context.Background()

	if ev.LoggedOut {
		log.Info("instance logged out remotely", slog.String("reason", ev.Reason))
		if err := m.creds.Delete(key); err != nil {
			log.Error("credential delete failed", slog.Any("error", err))
		}
		if err := m.store.Instances().DeleteInstance(ctx, key); err != nil {
			log.Error("instance delete failed", slog.Any("error", err))
		}
		return
	}

	log.Warn("connection closed", slog.String("reason", ev.Reason))

	if err := m.store.Instances().SetDisconnected(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Logout got here first; nothing left to reconnect.
			return
		}
		log.Error("persist disconnected state failed", slog.Any("error", err))
	}

	m.scheduleReconnect(key)
}

// scheduleReconnect arms a retry timer for key. Timers are never canceled by
// logout; reconnect re-checks the store when the timer fires, which makes a
// deleted record veto the attempt.
func (m *SessionManager) scheduleReconnect(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if t, ok := m.timers[key]; ok {
		t.Stop()
	}
	m.timers[key] = time.AfterFunc(m.reconnectDelay, func() { m.reconnect(key) })
	m.logger.Info("reconnect scheduled",
		slog.String("instance", key),
		slog.Duration("delay", m.reconnectDelay),
	)
}

func (m *SessionManager) reconnect(key string) {
	m.mu.Lock()
	delete(m.timers, key)
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	log := m.logger.With(slog.String("instance", key))

	if _, err := m.store.Instances().GetInstance(context.Background(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("reconnect abandoned, instance no longer exists")
		} else {
			log.Error("reconnect lookup failed", slog.Any("error", err))
		}
		return
	}

	if !m.registry.BeginInit(key) {
		log.Info("reconnect skipped, instance already active")
		return
	}
	m.initialize(key)
}

// LogoutResult reports the outcome of a Logout call.
type LogoutResult struct {
	Message string
}

// Logout permanently removes an instance: the live connection is told to
// unlink and closed, the pairing code, credentials and store record are all
// deleted. It is idempotent; logging out an unknown key succeeds with a
// different message. Protocol failures are logged and do not block the
// teardown, because the store delete is what makes the logout stick.
func (m *SessionManager) Logout(ctx context.Context, key string) (LogoutResult, error) {
	if strings.TrimSpace(key) == "" {
		return LogoutResult{}, fmt.Errorf("%w: instanceKey is required", ErrValidation)
	}

	l := slogx.FromContext(ctx).With(slog.String("instance", key))
	existed := false

	if client, ok := m.registry.Remove(key); ok {
		existed = true
		if err := client.Logout(ctx); err != nil {
			l.Warn("protocol logout failed", slog.Any("error", err))
		}
		_ = client.Close()
	}

	m.cache.Delete(key)

	if err := m.creds.Delete(key); err != nil {
		l.Warn("credential delete failed", slog.Any("error", err))
	}

	if _, err := m.store.Instances().GetInstance(ctx, key); err == nil {
		existed = true
	}
	if err := m.store.Instances().DeleteInstance(ctx, key); err != nil {
		return LogoutResult{}, fmt.Errorf("remove instance record: %w", err)
	}

	if !existed {
		return LogoutResult{Message: "nothing to do, instance not found"}, nil
	}

	l.Info("instance logged out")
	return LogoutResult{Message: "instance logged out"}, nil
}

// QRResult reports the outcome of a QR call. QR is non-empty only when a
// fresh pairing code is available; ExpiresIn then holds the remaining
// validity in whole seconds (rounded up, never below 1).
type QRResult struct {
	Connected    bool
	QR           string
	ExpiresIn    int
	NeedsRestart bool
	Message      string
}

// QR returns the current pairing code for key rendered as a PNG data URL.
// Expiry is enforced lazily at read time: a code older than the TTL is
// cleared from the cache and the store, and the caller is told to restart
// the session.
func (m *SessionManager) QR(ctx context.Context, key string) (QRResult, error) {
	if strings.TrimSpace(key) == "" {
		return QRResult{}, fmt.Errorf("%w: instanceKey is required", ErrValidation)
	}

	if _, state, ok := m.registry.Get(key); ok && state == domain.StateConnected {
		return QRResult{Connected: true, Message: "instance already connected"}, nil
	}

	code, issuedAt, ok := m.lookupPairing(ctx, key)
	if !ok {
		return QRResult{
			Message:      "no pairing code available, restart the session",
			NeedsRestart: true,
		}, nil
	}

	age := m.now().Sub(issuedAt)
	if age >= m.qrTTL {
		m.expirePairing(ctx, key)
		return QRResult{
			Message:      "pairing code expired, restart the session",
			NeedsRestart: true,
		}, nil
	}

	dataURL, err := qrx.DataURL(code, qrx.DefaultSize)
	if err != nil {
		return QRResult{}, fmt.Errorf("render qr: %w", err)
	}

	expiresIn := int(math.Ceil((m.qrTTL - age).Seconds()))
	if expiresIn < 1 {
		expiresIn = 1
	}

	return QRResult{QR: dataURL, ExpiresIn: expiresIn}, nil
}

// lookupPairing finds the current pairing code for key, preferring the
// cache and falling back to the store (a restart loses the cache but not the
// record). A store hit rehydrates the cache for the next poll.
func (m *SessionManager) lookupPairing(ctx context.Context, key string) (string, time.Time, bool) {
	if e, ok := m.cache.Get(key); ok {
		return e.Code, e.IssuedAt, true
	}

	inst, err := m.store.Instances().GetInstance(ctx, key)
	if err != nil || inst.PairingCode == nil || inst.PairingIssuedAt == nil {
		return "", time.Time{}, false
	}

	m.cache.Set(key, *inst.PairingCode, *inst.PairingIssuedAt)
	return *inst.PairingCode, *inst.PairingIssuedAt, true
}

func (m *SessionManager) expirePairing(ctx context.Context, key string) {
	m.cache.Delete(key)
	if err := m.store.Instances().ClearPairingCode(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Warn("clear expired pairing code failed",
			slog.String("instance", key),
			slog.Any("error", err),
		)
	}
}

// RestoreAll kicks off a session for every instance recorded in the store.
// Called once at boot; each restore runs through the normal StartSession
// path so guards and fences apply as usual.
func (m *SessionManager) RestoreAll(ctx context.Context) error {
	keys, err := m.store.Instances().ListInstanceKeys(ctx)
	if err != nil {
		return fmt.Errorf("list instances: %w", err)
	}

	for _, key := range keys {
		if _, err := m.StartSession(ctx, key); err != nil {
			m.logger.Error("instance restore failed",
				slog.String("instance", key),
				slog.Any("error", err),
			)
		}
	}

	if len(keys) > 0 {
		m.logger.Info("instance restore started", slog.Int("count", len(keys)))
	}
	return nil
}

// ActiveSessions returns the number of live instance handles, connected or
// still working towards it.
func (m *SessionManager) ActiveSessions() int {
	return m.registry.Len()
}

// Close stops all reconnect timers and drops every live connection without
// logging anything out. Instance records stay in the store so the next boot
// restores them.
func (m *SessionManager) Close() error {
	m.mu.Lock()
	m.closed = true
	for key, t := range m.timers {
		t.Stop()
		delete(m.timers, key)
	}
	m.mu.Unlock()

	for _, key := range m.registry.Keys() {
		if client, ok := m.registry.Remove(key); ok {
			_ = client.Close()
		}
	}

	m.logger.Info("session manager closed")
	return nil
}
