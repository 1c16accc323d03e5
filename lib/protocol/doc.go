// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the JSON messages exchanged between the
// plugin sandbox, the UI host, and the daemon's WebSocket bridge.
//
// Each direction is a closed set of message types:
//
//   - [Command]: UI host to plugin sandbox (scan-frames, export-frames, ...)
//   - [Event]: plugin sandbox to UI host (confirm-scan, export-progress, ...)
//   - [Wire]: UI host and bridge (frame-data, screen-info, ...)
//
// A message is a flat JSON object whose "type" member names the
// variant. [Encode] adds the tag; [DecodeCommand], [DecodeEvent] and
// [DecodeWire] dispatch on it and return an error wrapping
// [ErrUnknownType] for a tag outside the direction's set, so a handler
// switching on the concrete type never sees a message it does not
// know.
//
// [GetScreenInfo] belongs to all three directions: the sandbox asks the
// UI host, which asks the bridge.
package protocol
