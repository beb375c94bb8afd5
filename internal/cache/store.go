// Package cache holds the dashboard snapshot behind a TTL and a
// background refresh loop. Readers always see the last fully committed
// snapshot; a refresh builds a new one and swaps it in atomically.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/addissystems/erp-dashboard/internal/dashboard"
)

// Loader computes a full snapshot. Returning nil means the cycle could
// not produce data (e.g. authentication failed) and the previous
// snapshot stays in place.
type Loader func() *dashboard.Snapshot

// Store owns the single mutable snapshot slot. refreshMu serializes
// refresh bodies; snapMu guards only the pointer swap, so readers
// never wait on a running refresh.
type Store struct {
	load   Loader
	ttl    time.Duration
	logger *zap.Logger

	refreshMu sync.Mutex
	snapMu    sync.RWMutex
	snap      *dashboard.Snapshot

	runMu     sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewStore creates a store with no data; the first EnsureFresh or
// scheduler tick populates it.
func NewStore(load Loader, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		load:   load,
		ttl:    ttl,
		logger: logger,
	}
}

// Snapshot returns the last committed snapshot, or nil before the
// first successful refresh.
func (s *Store) Snapshot() *dashboard.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// EnsureFresh refreshes synchronously when the snapshot is stale.
// Concurrent callers converge on one refresh body: whoever loses the
// race blocks until the winner commits, re-checks staleness, and
// returns without recomputing.
func (s *Store) EnsureFresh() {
	if !s.stale() {
		return
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if !s.stale() {
		return
	}
	s.refresh()
}

// Refresh forces a full refresh regardless of age. Used by the
// background loop.
func (s *Store) Refresh() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.refresh()
}

// refresh runs the loader and commits the result. Callers hold
// refreshMu.
func (s *Store) refresh() {
	started := time.Now()
	snap := s.load()
	if snap == nil {
		s.logger.Warn("Refresh produced no snapshot, keeping previous data")
		return
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()

	s.logger.Info("Snapshot refreshed",
		zap.Duration("took", time.Since(started)),
		zap.Int("incomplete_orders", len(snap.Invoices)),
		zap.Int("banking_entries", len(snap.Journals)),
		zap.Int("overshoot_partners", len(snap.Overshoot)))
}

// stale reports whether the snapshot is missing or older than the TTL.
func (s *Store) stale() bool {
	snap := s.Snapshot()
	return snap == nil || time.Since(snap.LastUpdated) >= s.ttl
}

// Start launches the background refresh loop, which forces a refresh
// immediately and then at every interval regardless of read traffic.
func (s *Store) Start(ctx context.Context, interval time.Duration) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresh scheduler is already running")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true

	s.logger.Info("Refresh scheduler started",
		zap.Duration("interval", interval),
		zap.Duration("ttl", s.ttl))

	go s.refreshLoop(ctx, interval)
	return nil
}

// Stop stops the background refresh loop.
func (s *Store) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.isRunning {
		return
	}

	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info("Refresh scheduler stopped")
}

func (s *Store) refreshLoop(ctx context.Context, interval time.Duration) {
	s.Refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh()
		}
	}
}
