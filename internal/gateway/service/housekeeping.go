package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/store"
)

// HousekeepingService periodically sweeps expired pairing codes out of the
// store and the in-memory cache. Expiry is still enforced lazily at read
// time; this sweep only keeps long-abandoned codes from lingering forever.
type HousekeepingService struct {
	Store    store.Store
	Cache    *PairCache
	Logger   *slog.Logger
	Interval time.Duration
	QRTTL    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is
// zero or negative, a sensible default of 5 minutes is applied.
func NewHousekeepingService(st store.Store, cache *PairCache, logger *slog.Logger, interval, qrTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if qrTTL <= 0 {
		qrTTL = defaultQRTTL
	}
	return &HousekeepingService{
		Store:    st,
		Cache:    cache,
		Logger:   logger,
		Interval: interval,
		QRTTL:    qrTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the housekeeping loop in a background goroutine.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop signals the housekeeping loop to stop and waits for it to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once immediately on startup.
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs a single housekeeping pass. Errors are logged but do not
// stop the service.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.QRTTL)

	purged, err := s.Store.Instances().PurgeStalePairings(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to purge stale pairing codes", slog.Any("error", err))
	}

	dropped := s.Cache.DeleteOlderThan(cutoff)

	if purged > 0 || dropped > 0 {
		s.Logger.Info("housekeeping cleanup completed",
			slog.Int64("stale_pairings_purged", purged),
			slog.Int("cached_codes_dropped", dropped),
		)
	}
}
