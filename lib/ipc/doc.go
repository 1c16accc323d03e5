// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc is the channel between the daemon and the renderer: a
// stream of CBOR-encoded [Message] envelopes over a Unix socket.
//
// The renderer publishes calibration (grid-system-updated), asks for
// the current one (request-grid-system), and queries the display DPI
// (get-screen-dpi, answered by a screen-dpi carrying the same request
// ID). The daemon pushes grid-system-info, frame-data-update and
// frame-resize-update.
//
// Frame images never cross this channel. A frame-data-update names
// the scratch file holding the image; the renderer loads it from
// disk.
//
// Both cmd/gridcast-daemon (through [Server]) and cmd/gridcast-wall
// (through [Client]) import this package, so the wire types are
// defined once.
package ipc
