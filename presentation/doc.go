// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package presentation is the renderer's side of the wall.
//
// The renderer is the only component that computes calibration.
// [ComputeSnapshot] derives one from the presentation surface's pixel
// size and the wall's physical size; a [Renderer] recomputes it on
// every layout change and publishes it to the daemon over lib/ipc.
// The daemon stores it and the bridge rebroadcasts it to the plugin.
//
// A Renderer also keeps the frames the daemon announces. Announcements
// carry a scratch file path rather than image bytes; [Renderer.Frames]
// reports each frame with its pixel size at the current calibration.
package presentation
