// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds Gridcast's CBOR configuration.
//
// Gridcast speaks two encodings with a fixed boundary:
//
//   - JSON on everything a browser touches: the plugin sandbox
//     messages and the WebSocket bridge.
//   - CBOR on the local renderer channel ([lib/ipc]) between the
//     daemon and the wall renderer, where both ends are Go.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same envelope always produces the same bytes. Types carry `json`
// tags; fxamacker/cbor falls back to them when no `cbor` tag is
// present, so a snapshot has one field naming across both encodings.
package codec
