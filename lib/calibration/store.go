// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package calibration

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gridcast/gridcast/lib/clock"
)

// DefaultBroadcastDelay is the coalescing window used when
// StoreConfig.BroadcastDelay is zero.
const DefaultBroadcastDelay = 100 * time.Millisecond

// Listener receives the latest snapshot when a coalescing window
// closes. Listeners run on the timer goroutine and must not call Set.
type Listener func(Snapshot)

// StoreConfig configures a Store.
type StoreConfig struct {
	// Clock drives the coalescing window. Nil means clock.Real().
	Clock clock.Clock

	// BroadcastDelay is the coalescing window. Zero means
	// DefaultBroadcastDelay; negative means deliver synchronously
	// from Set.
	BroadcastDelay time.Duration

	// Logger receives rejection and broadcast records. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Store holds the single current snapshot.
type Store struct {
	clock  clock.Clock
	delay  time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	current   Snapshot
	listeners []Listener

	// scheduled is true while a coalescing window is open. generation
	// distinguishes windows so a late timer handle is not mistaken for
	// the current one.
	scheduled  bool
	generation uint64
	timer      *clock.Timer
	closed     bool
}

// NewStore returns an empty Store.
func NewStore(config StoreConfig) *Store {
	store := &Store{
		clock:  config.Clock,
		delay:  config.BroadcastDelay,
		logger: config.Logger,
	}
	if store.clock == nil {
		store.clock = clock.Real()
	}
	if store.delay == 0 {
		store.delay = DefaultBroadcastDelay
	}
	if store.logger == nil {
		store.logger = slog.Default()
	}
	return store
}

// Subscribe registers a listener for future broadcasts.
func (s *Store) Subscribe(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Set validates snapshot and makes it the current value. An invalid
// snapshot is logged and rejected; the previous value stays in place
// and nothing is broadcast.
func (s *Store) Set(snapshot Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		s.logger.Warn("rejected calibration snapshot", "error", err)
		return err
	}

	s.mu.Lock()
	s.current = snapshot
	if s.closed || s.scheduled {
		s.mu.Unlock()
		return nil
	}
	s.scheduled = true
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	s.logger.Debug("calibration updated",
		"monitor_width", snapshot.MonitorWidth,
		"monitor_height", snapshot.MonitorHeight,
		"grid_spacing_x", snapshot.GridSpacingX,
		"grid_spacing_y", snapshot.GridSpacingY,
	)

	if s.delay < 0 {
		s.flush()
		return nil
	}

	timer := s.clock.AfterFunc(s.delay, s.flush)
	s.mu.Lock()
	if s.scheduled && s.generation == generation {
		s.timer = timer
	}
	s.mu.Unlock()
	return nil
}

// Get returns the current snapshot, or Unknown and false if no valid
// snapshot has been set.
func (s *Store) Get() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current.Known()
}

// Close cancels any open coalescing window. Later Set calls still
// update the value but no longer broadcast.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.scheduled = false
}

func (s *Store) flush() {
	s.mu.Lock()
	if !s.scheduled {
		s.mu.Unlock()
		return
	}
	s.scheduled = false
	s.timer = nil
	snapshot := s.current
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("broadcasting calibration", "listeners", len(listeners))
	for _, listener := range listeners {
		listener(snapshot)
	}
}
