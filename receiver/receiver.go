// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package receiver persists frames arriving over the bridge and tells
// the renderer where to find them.
//
// The image is written to the scratch area once and the payload slice
// is dropped; the renderer is sent only the file path and a digest.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/ipc"
	"github.com/gridcast/gridcast/lib/protocol"
	"github.com/gridcast/gridcast/lib/scratch"
)

// Notifier delivers payload-free notices to the renderer.
type Notifier interface {
	NotifyFrame(frame ipc.StoredFrame)
	NotifyResize(size protocol.FrameSize)
}

// Receiver implements bridge.FrameSink.
type Receiver struct {
	area     *scratch.Area
	notifier Notifier
	logger   *slog.Logger
}

// New returns a Receiver writing into area and notifying notifier. A
// nil logger means slog.Default().
func New(area *scratch.Area, notifier Notifier, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Receiver{area: area, notifier: notifier, logger: logger}
}

// Receive stores descriptor's payload as <name>.png and notifies the
// renderer. A frame without a payload is rejected.
func (r *Receiver) Receive(ctx context.Context, descriptor frame.Descriptor) error {
	if len(descriptor.Payload) == 0 {
		return fmt.Errorf("receiver: frame %q has no image data", descriptor.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entry, err := r.area.Write(descriptor.Name, descriptor.Payload)
	if err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	descriptor.Payload = nil

	stored := ipc.StoredFrame{
		Name:         descriptor.Name,
		WidthUnits:   descriptor.WidthUnits,
		HeightUnits:  descriptor.HeightUnits,
		OriginalName: descriptor.OriginalName,
		ImagePath:    entry.Path,
		Digest:       entry.Digest.String(),
	}
	r.logger.Info("frame stored",
		"name", stored.Name,
		"path", stored.ImagePath,
		"bytes", entry.Size,
		"width_units", stored.WidthUnits,
		"height_units", stored.HeightUnits,
	)
	r.notifier.NotifyFrame(stored)
	return nil
}

// Resize forwards a window size request to the renderer.
func (r *Receiver) Resize(ctx context.Context, size protocol.FrameSize) error {
	if size.WidthUnits <= 0 || size.HeightUnits <= 0 {
		return errors.New("receiver: resize needs a positive width and height")
	}
	r.notifier.NotifyResize(size)
	return nil
}
