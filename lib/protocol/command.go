// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
)

// Command type tags.
const (
	TypeScanFrames      = "scan-frames"
	TypeExportFrames    = "export-frames"
	TypeOpenURL         = "open-url"
	TypeResizeFrame     = "resize-frame"
	TypeScreenInfoReply = "screen-info"
	TypeGetScreenInfo   = "get-screen-info"
)

// Command is a message from the UI host to the plugin sandbox.
type Command interface {
	Message
	isCommand()
}

// ScanFrames asks for a scan of the current selection. ConfirmScan is
// set when the user has accepted a large scan.
type ScanFrames struct {
	ConfirmScan bool `json:"confirmScan,omitempty"`
}

// ExportFrames asks for the named frames to be rasterized. Names are
// full labels as they appear in the selection.
type ExportFrames struct {
	FrameNames []string `json:"frameNames"`
}

// OpenURL asks the host to open an external link.
type OpenURL struct {
	URL string `json:"url"`
}

// ResizeFrame asks for the selected frame's size to be pushed to the wall.
type ResizeFrame struct{}

// ScreenInfoReply hands the UI host's cached calibration to the sandbox.
type ScreenInfoReply struct {
	ScreenInfo ScreenInfo `json:"screenInfo"`
}

// GetScreenInfo requests the current calibration. The sandbox sends it
// to the UI host, and the UI host to the bridge.
type GetScreenInfo struct{}

func (ScanFrames) MessageType() string      { return TypeScanFrames }
func (ExportFrames) MessageType() string    { return TypeExportFrames }
func (OpenURL) MessageType() string         { return TypeOpenURL }
func (ResizeFrame) MessageType() string     { return TypeResizeFrame }
func (ScreenInfoReply) MessageType() string { return TypeScreenInfoReply }
func (GetScreenInfo) MessageType() string   { return TypeGetScreenInfo }

func (ScanFrames) isCommand()      {}
func (ExportFrames) isCommand()    {}
func (OpenURL) isCommand()         {}
func (ResizeFrame) isCommand()     {}
func (ScreenInfoReply) isCommand() {}
func (GetScreenInfo) isCommand()   {}

func (m ExportFrames) validate() error {
	if m.FrameNames == nil {
		return errors.New("frameNames is required")
	}
	return nil
}

func (m OpenURL) validate() error {
	if m.URL == "" {
		return errors.New("url is required")
	}
	return nil
}

var commandDecoders = decoderTable[Command]{
	TypeScanFrames:      variant(func(m ScanFrames) Command { return m }),
	TypeExportFrames:    variant(func(m ExportFrames) Command { return m }),
	TypeOpenURL:         variant(func(m OpenURL) Command { return m }),
	TypeResizeFrame:     variant(func(m ResizeFrame) Command { return m }),
	TypeScreenInfoReply: variant(func(m ScreenInfoReply) Command { return m }),
	TypeGetScreenInfo:   variant(func(m GetScreenInfo) Command { return m }),
}

// DecodeCommand parses a message sent to the plugin sandbox.
func DecodeCommand(data []byte) (Command, error) {
	return commandDecoders.decode("command", data)
}
