// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package presentation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/ipc"
	"github.com/gridcast/gridcast/lib/protocol"
)

// EventKind says what an Event reports.
type EventKind int

const (
	// EventFrameReceived: a frame was stored and announced.
	EventFrameReceived EventKind = iota

	// EventFrameResized: the plugin asked for a frame's size to change.
	EventFrameResized

	// EventRepublished: the daemon's calibration differed from the
	// renderer's and the renderer's was sent again.
	EventRepublished
)

// Event is one change the renderer observed from the daemon.
type Event struct {
	Kind     EventKind
	Frame    FrameView
	Snapshot calibration.Snapshot
}

// FrameView is a stored frame plus its size in renderer pixels. The
// pixel size is zero while no calibration is known.
type FrameView struct {
	ipc.StoredFrame
	PixelWidth  float64
	PixelHeight float64
}

// Renderer holds the layout and the received frames.
type Renderer struct {
	client *ipc.Client
	logger *slog.Logger
	events chan Event

	mu             sync.Mutex
	viewportWidth  float64
	viewportHeight float64
	monitorWidth   float64
	monitorHeight  float64
	snapshot       calibration.Snapshot
	frames         []ipc.StoredFrame
}

// NewRenderer returns a Renderer using client. A nil logger means
// slog.Default().
func NewRenderer(client *ipc.Client, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		client: client,
		logger: logger,
		events: make(chan Event, 16),
	}
}

// Events returns the changes Run observes. The channel is closed when
// Run returns.
func (r *Renderer) Events() <-chan Event {
	return r.events
}

// SetMonitor sets the wall's physical size in inches and publishes the
// resulting calibration once the viewport is known too.
func (r *Renderer) SetMonitor(width, height float64) (calibration.Snapshot, error) {
	r.mu.Lock()
	r.monitorWidth, r.monitorHeight = width, height
	r.mu.Unlock()
	return r.relayout()
}

// SetViewport sets the presentation surface size in pixels and
// publishes the resulting calibration once the wall size is known too.
func (r *Renderer) SetViewport(width, height float64) (calibration.Snapshot, error) {
	r.mu.Lock()
	r.viewportWidth, r.viewportHeight = width, height
	r.mu.Unlock()
	return r.relayout()
}

// relayout recomputes the calibration and publishes it if it changed.
// Until both sizes are set it returns Unknown and no error.
func (r *Renderer) relayout() (calibration.Snapshot, error) {
	r.mu.Lock()
	if r.viewportWidth == 0 || r.viewportHeight == 0 || r.monitorWidth == 0 || r.monitorHeight == 0 {
		r.mu.Unlock()
		return calibration.Unknown, nil
	}
	snapshot, err := ComputeSnapshot(r.viewportWidth, r.viewportHeight, r.monitorWidth, r.monitorHeight)
	if err != nil {
		r.mu.Unlock()
		return calibration.Unknown, fmt.Errorf("presentation: computing calibration: %w", err)
	}
	if snapshot == r.snapshot {
		r.mu.Unlock()
		return snapshot, nil
	}
	r.snapshot = snapshot
	r.mu.Unlock()

	if err := r.client.PublishGridSystem(snapshot); err != nil {
		return snapshot, fmt.Errorf("presentation: publishing calibration: %w", err)
	}
	r.logger.Debug("calibration published",
		"grid_spacing_x", snapshot.GridSpacingX,
		"grid_spacing_y", snapshot.GridSpacingY,
	)
	return snapshot, nil
}

// Snapshot returns the last computed calibration.
func (r *Renderer) Snapshot() (calibration.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot, r.snapshot.Known()
}

// Frames returns the received frames in arrival order. A frame sent
// again under the same name keeps its position.
func (r *Renderer) Frames() []FrameView {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := make([]FrameView, len(r.frames))
	for index, stored := range r.frames {
		views[index] = r.viewLocked(stored)
	}
	return views
}

func (r *Renderer) viewLocked(stored ipc.StoredFrame) FrameView {
	view := FrameView{StoredFrame: stored}
	if r.snapshot.Known() {
		view.PixelWidth, view.PixelHeight = r.snapshot.PixelSize(stored.WidthUnits, stored.HeightUnits)
	}
	return view
}

// ScreenDPI asks the daemon for the display DPI.
func (r *Renderer) ScreenDPI(ctx context.Context) (float64, error) {
	return r.client.ScreenDPI(ctx)
}

// Run asks the daemon for its calibration, then handles daemon
// messages until ctx ends or the connection closes.
func (r *Renderer) Run(ctx context.Context) error {
	defer close(r.events)

	if err := r.client.RequestGridSystem(); err != nil {
		return fmt.Errorf("presentation: requesting calibration: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message, ok := <-r.client.Messages():
			if !ok {
				return ipc.ErrClosed
			}
			event, ok := r.handle(message)
			if !ok {
				continue
			}
			select {
			case r.events <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *Renderer) handle(message ipc.Message) (Event, bool) {
	switch message.Type {
	case ipc.TypeGridSystemInfo:
		return r.reconcile(message.Snapshot)

	case ipc.TypeFrameDataUpdate:
		stored := message.Update.Frame
		r.mu.Lock()
		replaced := false
		for index := range r.frames {
			if r.frames[index].Name == stored.Name {
				r.frames[index] = stored
				replaced = true
				break
			}
		}
		if !replaced {
			r.frames = append(r.frames, stored)
		}
		view := r.viewLocked(stored)
		r.mu.Unlock()
		r.logger.Info("frame received", "name", stored.Name, "path", stored.ImagePath)
		return Event{Kind: EventFrameReceived, Frame: view}, true

	case ipc.TypeFrameResizeUpdate:
		return Event{Kind: EventFrameResized, Frame: r.resize(*message.Resize)}, true
	}
	r.logger.Debug("ignoring daemon message", "type", message.Type)
	return Event{}, false
}

// reconcile republishes the local calibration when the daemon's copy
// is missing or different.
func (r *Renderer) reconcile(daemon *calibration.Snapshot) (Event, bool) {
	r.mu.Lock()
	local := r.snapshot
	r.mu.Unlock()
	if !local.Known() || (daemon != nil && *daemon == local) {
		return Event{}, false
	}
	if err := r.client.PublishGridSystem(local); err != nil {
		r.logger.Warn("republishing calibration failed", "error", err)
		return Event{}, false
	}
	r.logger.Info("daemon calibration out of date, republished")
	return Event{Kind: EventRepublished, Snapshot: local}, true
}

// resize applies size to the frame with the same name. A name with no
// received frame is reported without a scratch path.
func (r *Renderer) resize(size protocol.FrameSize) FrameView {
	r.mu.Lock()
	defer r.mu.Unlock()
	for index := range r.frames {
		if r.frames[index].Name == size.Name {
			r.frames[index].WidthUnits = size.WidthUnits
			r.frames[index].HeightUnits = size.HeightUnits
			return r.viewLocked(r.frames[index])
		}
	}
	return r.viewLocked(ipc.StoredFrame{Name: size.Name, WidthUnits: size.WidthUnits, HeightUnits: size.HeightUnits})
}
