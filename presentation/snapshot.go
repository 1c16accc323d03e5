// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package presentation

import (
	"fmt"

	"github.com/gridcast/gridcast/lib/calibration"
)

// ComputeSnapshot returns the calibration for a surface of
// viewportWidth by viewportHeight pixels showing a wall of
// monitorWidth by monitorHeight inches. Each axis gets its own
// spacing; PixelsPerUnit is their mean.
func ComputeSnapshot(viewportWidth, viewportHeight, monitorWidth, monitorHeight float64) (calibration.Snapshot, error) {
	if monitorWidth <= 0 || monitorHeight <= 0 {
		return calibration.Unknown, fmt.Errorf("%w: wall size %vx%v", calibration.ErrInvalidSnapshot, monitorWidth, monitorHeight)
	}
	spacingX := viewportWidth / monitorWidth
	spacingY := viewportHeight / monitorHeight
	snapshot := calibration.Snapshot{
		MonitorWidth:  monitorWidth,
		MonitorHeight: monitorHeight,
		PixelsPerUnit: (spacingX + spacingY) / 2,
		GridSpacingX:  spacingX,
		GridSpacingY:  spacingY,
	}
	if err := snapshot.Validate(); err != nil {
		return calibration.Unknown, err
	}
	return snapshot, nil
}
