// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package calibration

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSnapshot is returned (wrapped with the offending field)
// for a snapshot with a non-positive or non-finite field.
var ErrInvalidSnapshot = errors.New("calibration: invalid snapshot")

// Snapshot is one calibration of the wall. Sizes are in inches,
// spacings in renderer pixels per inch.
type Snapshot struct {
	MonitorWidth  float64 `json:"monitorWidth"`
	MonitorHeight float64 `json:"monitorHeight"`
	PixelsPerUnit float64 `json:"pixelsPerUnit"`

	// GridSpacingX and GridSpacingY may differ slightly: the viewport
	// aspect ratio rarely matches the physical aspect ratio exactly.
	GridSpacingX float64 `json:"gridSpacingX"`
	GridSpacingY float64 `json:"gridSpacingY"`
}

// Unknown is the value reported before any snapshot has been set.
var Unknown = Snapshot{}

// Known reports whether s is anything other than the Unknown sentinel.
func (s Snapshot) Known() bool {
	return s != Unknown
}

// Validate checks that every field is strictly positive and finite.
func (s Snapshot) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"monitorWidth", s.MonitorWidth},
		{"monitorHeight", s.MonitorHeight},
		{"pixelsPerUnit", s.PixelsPerUnit},
		{"gridSpacingX", s.GridSpacingX},
		{"gridSpacingY", s.GridSpacingY},
	}
	for _, field := range fields {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return fmt.Errorf("%w: %s is not finite (%v)", ErrInvalidSnapshot, field.name, field.value)
		}
		if field.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidSnapshot, field.name, field.value)
		}
	}
	return nil
}

// PixelSize converts a physical size in inches to renderer pixels.
func (s Snapshot) PixelSize(widthInches, heightInches float64) (width, height float64) {
	return widthInches * s.GridSpacingX, heightInches * s.GridSpacingY
}
