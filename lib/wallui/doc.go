// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package wallui is a terminal stand-in for the wall's renderer.
//
// The terminal window is the presentation surface: each cell counts as
// a fixed number of pixels, so resizing the terminal changes the
// viewport and triggers a new calibration exactly as resizing the
// wall window would. Received frames are listed with their physical
// size and their pixel size at the current calibration.
//
// Built on bubbletea. [Model] reads renderer events from a channel
// and re-lists frames as they arrive.
package wallui
