// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/protocol"
)

// Export rasterizes the named frames in order and emits the successful
// ones as a single send-to-electron. Names are full labels as they
// appear in the selection.
func (c *Collector) Export(ctx context.Context, names []string) error {
	c.mu.Lock()
	switch c.state {
	case StateReady:
	case StateExporting:
		c.mu.Unlock()
		return c.reject(protocol.TypeExportFrames, ErrBusy)
	default:
		c.mu.Unlock()
		return c.reject(protocol.TypeExportFrames, ErrNotReady)
	}
	ctx, cancel := context.WithCancel(ctx)
	c.state = StateExporting
	c.cancel = cancel
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.state = StateIdle
		c.cancel = nil
		c.mu.Unlock()
	}()

	total := len(names)
	c.emitter.Emit(protocol.ExportStarted{Count: total})
	c.emitter.Emit(protocol.GetScreenInfo{})

	selection, err := c.host.Selection(ctx)
	if err != nil {
		c.emitter.Emit(protocol.Notify{Message: "Could not read the selection."})
		return fmt.Errorf("collector: reading selection: %w", err)
	}
	selected := make(map[string]bool, len(selection))
	for _, node := range selection {
		if node.IsFrame {
			selected[node.Name] = true
		}
	}

	exported := make([]frame.Descriptor, 0, total)
	for index, name := range names {
		if ctx.Err() != nil {
			return c.cancelled(index, total)
		}

		if !selected[name] {
			c.logger.Debug("skipping frame missing from selection", "name", name)
			continue
		}
		descriptor, ok := frame.ParseName(name)
		if !ok {
			c.logger.Debug("skipping frame with unparseable name", "name", name)
			continue
		}

		progress := protocol.ExportProgress{
			Current:   index + 1,
			Total:     total,
			FrameName: descriptor.Name,
			Status:    protocol.StatusExporting,
		}
		c.emitter.Emit(progress)

		payload, err := c.host.Rasterize(ctx, name)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return c.cancelled(index, total)
			}
			c.logger.Warn("frame export failed", "name", name, "error", err)
			progress.Status = protocol.StatusError
			c.emitter.Emit(progress)
			continue
		}

		descriptor.Payload = payload
		exported = append(exported, descriptor)
		progress.Status = protocol.StatusExported
		c.emitter.Emit(progress)
	}

	if len(exported) > 0 {
		c.emitter.Emit(protocol.SendToElectron{Frames: exported})
	}
	c.logger.Info("export complete", "requested", total, "exported", len(exported))
	return nil
}

// cancelled reports an export stopped before item index.
func (c *Collector) cancelled(completed, total int) error {
	c.emitter.Emit(protocol.ExportCancelled{Completed: completed, Total: total})
	c.logger.Info("export cancelled", "completed", completed, "total", total)
	return ErrCancelled
}
