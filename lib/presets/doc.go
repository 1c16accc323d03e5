// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package presets loads the catalogue of monitor models a wall can be
// built from.
//
// Catalogues are authored as JSONC (JSON with comments and trailing
// commas) and measured in centimetres, the unit panel datasheets use:
//
//	{
//	  "presets": [
//	    // 27-inch 16:9 panel
//	    {"id": "27-169", "name": "27\" 16:9", "width": 59.8, "height": 33.6},
//	  ],
//	}
//
// [Preset.Inches] converts to the inches the calibration works in.
// [Builtin] returns the catalogue compiled into the binary.
package presets
