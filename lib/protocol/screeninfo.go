// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/frame"
)

// ScreenInfo is the calibration as broadcast over the bridge. It is a
// [Wire] message on its own and the payload of [ScreenInfoReply].
type ScreenInfo struct {
	MonitorWidth  float64 `json:"monitorWidth"`
	MonitorHeight float64 `json:"monitorHeight"`
	GridSpacingX  float64 `json:"gridSpacingX"`
	GridSpacingY  float64 `json:"gridSpacingY"`
	DPI           float64 `json:"dpi"`
}

// ScreenInfoFromSnapshot converts a calibration snapshot.
func ScreenInfoFromSnapshot(snapshot calibration.Snapshot) ScreenInfo {
	return ScreenInfo{
		MonitorWidth:  snapshot.MonitorWidth,
		MonitorHeight: snapshot.MonitorHeight,
		GridSpacingX:  snapshot.GridSpacingX,
		GridSpacingY:  snapshot.GridSpacingY,
		DPI:           snapshot.PixelsPerUnit,
	}
}

// Snapshot converts back to a calibration snapshot.
func (info ScreenInfo) Snapshot() calibration.Snapshot {
	return calibration.Snapshot{
		MonitorWidth:  info.MonitorWidth,
		MonitorHeight: info.MonitorHeight,
		PixelsPerUnit: info.DPI,
		GridSpacingX:  info.GridSpacingX,
		GridSpacingY:  info.GridSpacingY,
	}
}

// FrameSize is a frame's name and physical size without any image.
type FrameSize struct {
	Name        string  `json:"name"`
	WidthUnits  float64 `json:"widthUnits"`
	HeightUnits float64 `json:"heightUnits"`
}

// FrameSizeOf returns the size part of a descriptor.
func FrameSizeOf(descriptor frame.Descriptor) FrameSize {
	return FrameSize{
		Name:        descriptor.Name,
		WidthUnits:  descriptor.WidthUnits,
		HeightUnits: descriptor.HeightUnits,
	}
}
