// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"

	"github.com/gridcast/gridcast/lib/frame"
)

// Event type tags.
const (
	TypeInitUI               = "init-ui"
	TypeSelectionEmpty       = "selection-empty"
	TypeNoMatchingFrames     = "no-matching-frames"
	TypeConfirmScan          = "confirm-scan"
	TypeScanStarted          = "scan-started"
	TypeUpdateFrameList      = "update-frame-list"
	TypeExportStarted        = "export-started"
	TypeExportProgress       = "export-progress"
	TypeSendToElectron       = "send-to-electron"
	TypeRequestScreenInfo    = "request-screen-info"
	TypeExportCancelled      = "export-cancelled"
	TypeRequestRejected      = "request-rejected"
	TypeNotify               = "notify"
	TypeSendResizeToElectron = "send-resize-to-electron"
)

// ExportStatus is the per-item state in an export-progress event.
type ExportStatus string

const (
	StatusExporting ExportStatus = "exporting"
	StatusExported  ExportStatus = "exported"
	StatusError     ExportStatus = "error"
)

// Event is a message from the plugin sandbox to the UI host.
type Event interface {
	Message
	isEvent()
}

type InitUI struct{}

type SelectionEmpty struct {
	Message string `json:"message"`
}

type NoMatchingFrames struct {
	Message string `json:"message"`
}

// ConfirmScan asks the user to accept a scan of Count frames.
type ConfirmScan struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type ScanStarted struct{}

// UpdateFrameList carries the metadata-only result of a scan.
type UpdateFrameList struct {
	Frames []frame.Descriptor `json:"frames"`
}

type ExportStarted struct {
	Count int `json:"count"`
}

// ExportProgress reports one item of an export. Current is 1-based.
type ExportProgress struct {
	Current   int          `json:"current"`
	Total     int          `json:"total"`
	FrameName string       `json:"frameName"`
	Status    ExportStatus `json:"status"`
}

// SendToElectron is the transfer unit: every frame of one export that
// rasterized successfully, in request order.
type SendToElectron struct {
	Frames []frame.Descriptor `json:"frames"`
}

type RequestScreenInfo struct{}

// ExportCancelled reports an export stopped before its last item.
type ExportCancelled struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// RequestRejected reports a command refused in the current state.
type RequestRejected struct {
	Request string `json:"request"`
	Message string `json:"message"`
}

type Notify struct {
	Message string `json:"message"`
}

type SendResizeToElectron struct {
	Frame FrameSize `json:"frame"`
}

func (InitUI) MessageType() string               { return TypeInitUI }
func (SelectionEmpty) MessageType() string       { return TypeSelectionEmpty }
func (NoMatchingFrames) MessageType() string     { return TypeNoMatchingFrames }
func (ConfirmScan) MessageType() string          { return TypeConfirmScan }
func (ScanStarted) MessageType() string          { return TypeScanStarted }
func (UpdateFrameList) MessageType() string      { return TypeUpdateFrameList }
func (ExportStarted) MessageType() string        { return TypeExportStarted }
func (ExportProgress) MessageType() string       { return TypeExportProgress }
func (SendToElectron) MessageType() string       { return TypeSendToElectron }
func (RequestScreenInfo) MessageType() string    { return TypeRequestScreenInfo }
func (ExportCancelled) MessageType() string      { return TypeExportCancelled }
func (RequestRejected) MessageType() string      { return TypeRequestRejected }
func (Notify) MessageType() string               { return TypeNotify }
func (SendResizeToElectron) MessageType() string { return TypeSendResizeToElectron }

func (InitUI) isEvent()               {}
func (SelectionEmpty) isEvent()       {}
func (NoMatchingFrames) isEvent()     {}
func (ConfirmScan) isEvent()          {}
func (ScanStarted) isEvent()          {}
func (UpdateFrameList) isEvent()      {}
func (ExportStarted) isEvent()        {}
func (ExportProgress) isEvent()       {}
func (SendToElectron) isEvent()       {}
func (RequestScreenInfo) isEvent()    {}
func (GetScreenInfo) isEvent()        {}
func (ExportCancelled) isEvent()      {}
func (RequestRejected) isEvent()      {}
func (Notify) isEvent()               {}
func (SendResizeToElectron) isEvent() {}

func (m ExportProgress) validate() error {
	switch m.Status {
	case StatusExporting, StatusExported, StatusError:
		return nil
	}
	return errors.New("status must be exporting, exported or error")
}

var eventDecoders = decoderTable[Event]{
	TypeInitUI:               variant(func(m InitUI) Event { return m }),
	TypeSelectionEmpty:       variant(func(m SelectionEmpty) Event { return m }),
	TypeNoMatchingFrames:     variant(func(m NoMatchingFrames) Event { return m }),
	TypeConfirmScan:          variant(func(m ConfirmScan) Event { return m }),
	TypeScanStarted:          variant(func(m ScanStarted) Event { return m }),
	TypeUpdateFrameList:      variant(func(m UpdateFrameList) Event { return m }),
	TypeExportStarted:        variant(func(m ExportStarted) Event { return m }),
	TypeExportProgress:       variant(func(m ExportProgress) Event { return m }),
	TypeSendToElectron:       variant(func(m SendToElectron) Event { return m }),
	TypeRequestScreenInfo:    variant(func(m RequestScreenInfo) Event { return m }),
	TypeGetScreenInfo:        variant(func(m GetScreenInfo) Event { return m }),
	TypeExportCancelled:      variant(func(m ExportCancelled) Event { return m }),
	TypeRequestRejected:      variant(func(m RequestRejected) Event { return m }),
	TypeNotify:               variant(func(m Notify) Event { return m }),
	TypeSendResizeToElectron: variant(func(m SendResizeToElectron) Event { return m }),
}

// DecodeEvent parses a message sent by the plugin sandbox.
func DecodeEvent(data []byte) (Event, error) {
	return eventDecoders.decode("event", data)
}
