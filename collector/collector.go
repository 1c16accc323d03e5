// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/protocol"
)

// DefaultConfirmThreshold is the number of matching frames above which
// a scan asks for confirmation.
const DefaultConfirmThreshold = 20

var (
	// ErrBusy is returned for a scan or export while another is running.
	ErrBusy = errors.New("collector: another scan or export is in progress")

	// ErrNotReady is returned for an export before a completed scan.
	ErrNotReady = errors.New("collector: export requested before a completed scan")

	// ErrUnsupportedURL is returned by OpenURL for anything but http
	// and https links.
	ErrUnsupportedURL = errors.New("collector: only http and https links can be opened")

	// ErrCancelled is returned by an export stopped with Cancel.
	ErrCancelled = errors.New("collector: export cancelled")
)

// State is the collector's position in the scan/export cycle.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateAwaitingConfirmation
	StateReady
	StateExporting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateReady:
		return "ready"
	case StateExporting:
		return "exporting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Node is one member of the design tool's selection.
type Node struct {
	Name string

	// IsFrame is false for groups, shapes and other non-frame nodes,
	// which are never exported.
	IsFrame bool
}

// Host is the design tool as seen from the sandbox.
type Host interface {
	// Selection returns the current selection in display order.
	Selection(ctx context.Context) ([]Node, error)

	// Rasterize renders the selected frame with exactly this name to PNG.
	Rasterize(ctx context.Context, name string) ([]byte, error)

	// OpenURL opens a link outside the sandbox.
	OpenURL(ctx context.Context, link string) error
}

// Emitter receives the collector's events in order.
type Emitter interface {
	Emit(event protocol.Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(event protocol.Event)

// Emit calls f(event).
func (f EmitterFunc) Emit(event protocol.Event) { f(event) }

// Options configures a Collector.
type Options struct {
	// ConfirmThreshold is the largest scan that runs without
	// confirmation. Zero means DefaultConfirmThreshold.
	ConfirmThreshold int

	// Logger receives structured log output. If nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Collector is the sandbox-side state machine.
type Collector struct {
	host      Host
	emitter   Emitter
	threshold int
	logger    *slog.Logger

	mu         sync.Mutex
	state      State
	frames     []frame.Descriptor
	screenInfo *protocol.ScreenInfo
	cancel     context.CancelFunc
}

// New returns an idle Collector.
func New(host Host, emitter Emitter, options Options) *Collector {
	threshold := options.ConfirmThreshold
	if threshold <= 0 {
		threshold = DefaultConfirmThreshold
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		host:      host,
		emitter:   emitter,
		threshold: threshold,
		logger:    logger,
	}
}

// Start announces the collector to the UI host and asks it for the
// current calibration.
func (c *Collector) Start() {
	c.emitter.Emit(protocol.InitUI{})
	c.emitter.Emit(protocol.GetScreenInfo{})
}

// State returns the current state.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Frames returns the metadata from the last completed scan.
func (c *Collector) Frames() []frame.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame.Descriptor(nil), c.frames...)
}

// ScreenInfo returns the calibration last handed over by the UI host.
func (c *Collector) ScreenInfo() (protocol.ScreenInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screenInfo == nil {
		return protocol.ScreenInfo{}, false
	}
	return *c.screenInfo, true
}

// Handle dispatches one command from the UI host. Scans and exports
// run to completion before Handle returns.
func (c *Collector) Handle(ctx context.Context, command protocol.Command) error {
	switch command := command.(type) {
	case protocol.ScanFrames:
		return c.Scan(ctx, command.ConfirmScan)
	case protocol.ExportFrames:
		return c.Export(ctx, command.FrameNames)
	case protocol.OpenURL:
		return c.OpenURL(ctx, command.URL)
	case protocol.ResizeFrame:
		return c.Resize(ctx)
	case protocol.ScreenInfoReply:
		info := command.ScreenInfo
		c.mu.Lock()
		c.screenInfo = &info
		c.mu.Unlock()
		c.logger.Debug("screen info received", "monitor_width", info.MonitorWidth, "monitor_height", info.MonitorHeight, "dpi", info.DPI)
		return nil
	case protocol.GetScreenInfo:
		// Only the UI host holds a bridge connection; nothing to answer.
		c.logger.Debug("ignoring get-screen-info addressed to the sandbox")
		return nil
	}
	return fmt.Errorf("collector: unhandled command %T", command)
}

// Cancel stops the running export after its current item. It does
// nothing when no export is running.
func (c *Collector) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Collector) reject(request string, err error) error {
	c.emitter.Emit(protocol.RequestRejected{Request: request, Message: err.Error()})
	c.logger.Info("request rejected", "request", request, "error", err)
	return err
}

func (c *Collector) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// OpenURL forwards an http or https link to the host.
func (c *Collector) OpenURL(ctx context.Context, link string) error {
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		c.emitter.Emit(protocol.Notify{Message: "Only web links can be opened."})
		return fmt.Errorf("%w: %q", ErrUnsupportedURL, link)
	}
	if err := c.host.OpenURL(ctx, parsed.String()); err != nil {
		return fmt.Errorf("collector: opening %s: %w", parsed.Redacted(), err)
	}
	return nil
}

// Resize sends the size encoded in the single selected frame's name
// so the wall can resize that frame's window.
func (c *Collector) Resize(ctx context.Context) error {
	selection, err := c.host.Selection(ctx)
	if err != nil {
		return fmt.Errorf("collector: reading selection: %w", err)
	}
	if len(selection) != 1 || !selection[0].IsFrame {
		c.emitter.Emit(protocol.Notify{Message: "Please select a single frame to resize."})
		return nil
	}
	descriptor, ok := frame.ParseName(selection[0].Name)
	if !ok {
		c.emitter.Emit(protocol.Notify{Message: "Selected frame does not have valid resize dimensions in its name."})
		return nil
	}
	c.emitter.Emit(protocol.SendResizeToElectron{Frame: protocol.FrameSizeOf(descriptor)})
	return nil
}
