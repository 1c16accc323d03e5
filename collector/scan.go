// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"fmt"

	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/protocol"
)

// Scan counts the selection's matching frames and, unless the count
// needs confirmation, sends their metadata as update-frame-list.
// confirmed is set when the user has accepted a large scan.
func (c *Collector) Scan(ctx context.Context, confirmed bool) error {
	c.mu.Lock()
	if c.state == StateScanning || c.state == StateExporting {
		c.mu.Unlock()
		return c.reject(protocol.TypeScanFrames, ErrBusy)
	}
	c.state = StateScanning
	c.frames = nil
	c.mu.Unlock()

	selection, err := c.host.Selection(ctx)
	if err != nil {
		c.setState(StateIdle)
		c.emitter.Emit(protocol.Notify{Message: "Could not read the selection."})
		return fmt.Errorf("collector: reading selection: %w", err)
	}

	if len(selection) == 0 {
		c.setState(StateIdle)
		c.emitter.Emit(protocol.SelectionEmpty{Message: "Please select frames to scan."})
		return nil
	}

	count := 0
	for _, node := range selection {
		if node.IsFrame && frame.MatchesConvention(node.Name) {
			count++
		}
	}

	switch {
	case count == 0:
		c.setState(StateIdle)
		c.emitter.Emit(protocol.NoMatchingFrames{
			Message: "No selected frames match the naming pattern (name#widthxheight or name#CODE#).",
		})
		return nil

	case count > c.threshold && !confirmed:
		c.setState(StateAwaitingConfirmation)
		c.emitter.Emit(protocol.ConfirmScan{
			Message: fmt.Sprintf("There are %d matching frames in your selection. "+
				"Scanning may take a while. Do you want to continue?", count),
			Count: count,
		})
		return nil
	}

	c.emitter.Emit(protocol.ScanStarted{})
	frames := make([]frame.Descriptor, 0, count)
	for _, node := range selection {
		if !node.IsFrame {
			continue
		}
		if descriptor, ok := frame.ParseName(node.Name); ok {
			frames = append(frames, descriptor)
		}
	}

	c.mu.Lock()
	c.frames = frames
	c.state = StateReady
	c.mu.Unlock()

	c.logger.Debug("scan complete", "selected", len(selection), "matching", count, "parsed", len(frames))
	c.emitter.Emit(protocol.UpdateFrameList{Frames: frames})
	return nil
}
