// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/protocol"
)

// Message types. The first three and get-screen-dpi travel from the
// renderer to the daemon; the rest travel the other way.
const (
	TypeGridSystemUpdated = "grid-system-updated"
	TypeRequestGridSystem = "request-grid-system"
	TypeGetScreenDPI      = "get-screen-dpi"

	TypeGridSystemInfo    = "grid-system-info"
	TypeScreenDPI         = "screen-dpi"
	TypeFrameDataUpdate   = "frame-data-update"
	TypeFrameResizeUpdate = "frame-resize-update"
)

// FrameUpdateKind is the only kind of frame-data-update.
const FrameUpdateKind = "frame-data"

var (
	// ErrUnknownType is returned for an envelope whose type is not
	// listed above.
	ErrUnknownType = errors.New("ipc: unknown message type")

	// ErrMalformed is returned when a known type lacks a required field.
	ErrMalformed = errors.New("ipc: malformed message")

	// ErrClosed is returned by Client calls after the connection ends.
	ErrClosed = errors.New("ipc: connection closed")
)

// Message is the envelope for every renderer-channel message. Which
// optional fields are set depends on Type.
type Message struct {
	Type string `cbor:"type"`

	// RequestID pairs get-screen-dpi with its screen-dpi reply.
	RequestID uint64 `cbor:"request_id,omitempty"`

	// Snapshot is set on grid-system-updated, and on grid-system-info
	// when a calibration is known. A grid-system-info without a
	// snapshot means none is known yet.
	Snapshot *calibration.Snapshot `cbor:"snapshot,omitempty"`

	// DPI is set on screen-dpi.
	DPI float64 `cbor:"dpi,omitempty"`

	// Update is set on frame-data-update.
	Update *FrameUpdate `cbor:"update,omitempty"`

	// Resize is set on frame-resize-update.
	Resize *protocol.FrameSize `cbor:"resize,omitempty"`
}

// FrameUpdate announces a frame stored in the scratch area.
type FrameUpdate struct {
	// Type is always FrameUpdateKind.
	Type  string      `cbor:"type"`
	Frame StoredFrame `cbor:"frame"`
}

// StoredFrame is a received frame without its image. ImagePath is the
// scratch file; Digest is the hex BLAKE3 digest of its contents.
type StoredFrame struct {
	Name         string  `cbor:"name"`
	WidthUnits   float64 `cbor:"widthUnits"`
	HeightUnits  float64 `cbor:"heightUnits"`
	OriginalName string  `cbor:"originalName"`
	ImagePath    string  `cbor:"imagePath"`
	Digest       string  `cbor:"digest"`
}

// Validate checks that the type is known and its required fields are
// present.
func (m Message) Validate() error {
	switch m.Type {
	case TypeGridSystemUpdated:
		if m.Snapshot == nil {
			return fmt.Errorf("%w: %s without snapshot", ErrMalformed, m.Type)
		}
	case TypeRequestGridSystem, TypeGridSystemInfo:
	case TypeGetScreenDPI, TypeScreenDPI:
		if m.RequestID == 0 {
			return fmt.Errorf("%w: %s without request_id", ErrMalformed, m.Type)
		}
	case TypeFrameDataUpdate:
		if m.Update == nil || m.Update.Frame.ImagePath == "" {
			return fmt.Errorf("%w: %s without frame image path", ErrMalformed, m.Type)
		}
	case TypeFrameResizeUpdate:
		if m.Resize == nil || m.Resize.Name == "" {
			return fmt.Errorf("%w: %s without frame", ErrMalformed, m.Type)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	return nil
}
