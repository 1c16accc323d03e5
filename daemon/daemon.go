// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package daemon assembles the wall application's privileged process.
//
// A [Daemon] owns the single-instance lock, the calibration store, the
// scratch area, the renderer IPC server, the frame receiver and the
// WebSocket bridge. [New] builds them from a [config.Config];
// [Daemon.Start] binds the sockets; [Daemon.Close] tears everything
// down in reverse order.
//
// The store's broadcasts go to the bridge. Renderer snapshots go to
// the store. Frames from the bridge go through the receiver to the
// scratch area and then, by path, to the renderers.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gridcast/gridcast/bridge"
	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/clock"
	"github.com/gridcast/gridcast/lib/config"
	"github.com/gridcast/gridcast/lib/instance"
	"github.com/gridcast/gridcast/lib/ipc"
	"github.com/gridcast/gridcast/lib/scratch"
	"github.com/gridcast/gridcast/receiver"
)

// BaseDPI is the DPI of a display with scale factor 1.
const BaseDPI = 96

// Daemon is the process-wide context of the wall application.
type Daemon struct {
	config *config.Config
	logger *slog.Logger

	lock      *instance.Lock
	area      *scratch.Area
	store     *calibration.Store
	renderers *ipc.Server
	receiver  *receiver.Receiver
	bridge    *bridge.Bridge

	cancel    context.CancelFunc
	served    chan struct{}
	closeOnce sync.Once
}

// New acquires the instance lock and builds every component. Nothing
// listens until Start. A nil logger means slog.Default().
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.EnsureRuntimeDirectories(); err != nil {
		return nil, err
	}

	lock, err := instance.Acquire(cfg.Lock.Path)
	if err != nil {
		return nil, err
	}

	area, err := scratch.Open(cfg.Scratch.Directory, clock.Real(), logger.With("component", "scratch"))
	if err != nil {
		lock.Release()
		return nil, err
	}
	if cfg.Scratch.Retention > 0 {
		removed, err := area.Prune(cfg.Scratch.Retention)
		if err != nil {
			logger.Warn("pruning scratch area failed", "error", err)
		} else if removed > 0 {
			logger.Info("pruned scratch area", "removed", removed, "retention", cfg.Scratch.Retention)
		}
	}

	d := &Daemon{
		config: cfg,
		logger: logger,
		lock:   lock,
		area:   area,
		store: calibration.NewStore(calibration.StoreConfig{
			BroadcastDelay: cfg.Calibration.BroadcastDelay,
			Logger:         logger.With("component", "calibration"),
		}),
	}
	d.renderers = ipc.NewServer(cfg.IPC.SocketPath, d, logger.With("component", "ipc"))
	d.receiver = receiver.New(area, d.renderers, logger.With("component", "receiver"))
	d.bridge = &bridge.Bridge{
		ListenAddr:      cfg.Bridge.ListenAddress,
		Sink:            d.receiver,
		Calibration:     d.store,
		MaxMessageBytes: cfg.Bridge.MaxMessageBytes,
		Logger:          logger.With("component", "bridge"),
	}
	d.store.Subscribe(d.bridge.Broadcast)
	return d, nil
}

// Start binds the renderer socket and the bridge. A bridge address
// already in use is reported as bridge.ErrAddressInUse. On error the
// caller still calls Close.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.renderers.Listen(); err != nil {
		return err
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.served = make(chan struct{})
	go func() {
		defer close(d.served)
		if err := d.renderers.Serve(ctx); err != nil {
			d.logger.Error("renderer server failed", "error", err)
		}
	}()

	if err := d.bridge.Start(ctx); err != nil {
		return err
	}
	d.logger.Info("daemon started",
		"bridge", d.bridge.Addr().String(),
		"renderer_socket", d.config.IPC.SocketPath,
		"scratch", d.area.Directory(),
	)
	return nil
}

// Run starts the daemon and serves until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Close stops the bridge and the renderer server, stops the store's
// pending broadcast and releases the instance lock. Received frames
// stay in the scratch area.
func (d *Daemon) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.bridge.Stop()
		d.renderers.Close()
		if d.served != nil {
			<-d.served
		}
		d.store.Close()
		err = d.lock.Release()
		d.logger.Info("daemon stopped")
	})
	return err
}

// BridgeAddr returns the bridge's bound address, or nil before Start.
func (d *Daemon) BridgeAddr() net.Addr {
	return d.bridge.Addr()
}

// Store returns the calibration store.
func (d *Daemon) Store() *calibration.Store {
	return d.store
}

// GridSystemUpdated stores a snapshot published by a renderer.
func (d *Daemon) GridSystemUpdated(snapshot calibration.Snapshot) error {
	if err := d.store.Set(snapshot); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	return nil
}

// GridSystem returns the stored snapshot.
func (d *Daemon) GridSystem() (calibration.Snapshot, bool) {
	return d.store.Get()
}

// ScreenDPI returns the configured scale factor times BaseDPI.
func (d *Daemon) ScreenDPI() float64 {
	return d.config.Display.ScaleFactor * BaseDPI
}
