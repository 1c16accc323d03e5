// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package scratch manages the directory where received frames are
// written for the renderer to load.
//
// Each frame is stored as <name>.png. A later frame with the same name
// replaces the file; writes go through a temporary file and a rename,
// so the renderer never reads a partially written image. There is no
// manifest: the directory listing is the state.
//
// Every write returns a BLAKE3 [Digest] of the payload so the renderer
// can tell a replaced image from an unchanged one without rereading
// it.
package scratch
