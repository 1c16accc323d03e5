// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"

	"github.com/gridcast/gridcast/lib/frame"
)

// Wire type tags. get-screen-info is shared with the other directions.
const (
	TypeFrameData   = "frame-data"
	TypeScreenInfo  = "screen-info"
	TypeFrameResize = "frame-resize"
)

// Wire is a message carried over the WebSocket bridge.
type Wire interface {
	Message
	isWire()
}

// FrameData carries one exported frame, payload included.
type FrameData struct {
	Frame frame.Descriptor `json:"frame"`
}

// FrameResize asks the wall to resize the window showing a frame.
type FrameResize struct {
	Frame FrameSize `json:"frame"`
}

func (FrameData) MessageType() string   { return TypeFrameData }
func (ScreenInfo) MessageType() string  { return TypeScreenInfo }
func (FrameResize) MessageType() string { return TypeFrameResize }

func (FrameData) isWire()     {}
func (ScreenInfo) isWire()    {}
func (FrameResize) isWire()   {}
func (GetScreenInfo) isWire() {}

func (m FrameData) validate() error {
	if m.Frame.Name == "" {
		return errors.New("frame.name is required")
	}
	return nil
}

func (m FrameResize) validate() error {
	if m.Frame.Name == "" {
		return errors.New("frame.name is required")
	}
	return nil
}

var wireDecoders = decoderTable[Wire]{
	TypeFrameData:     variant(func(m FrameData) Wire { return m }),
	TypeGetScreenInfo: variant(func(m GetScreenInfo) Wire { return m }),
	TypeScreenInfo:    variant(func(m ScreenInfo) Wire { return m }),
	TypeFrameResize:   variant(func(m FrameResize) Wire { return m }),
}

// DecodeWire parses a message received over the bridge.
func DecodeWire(data []byte) (Wire, error) {
	return wireDecoders.decode("wire", data)
}
