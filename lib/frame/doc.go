// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame describes exportable frames and the naming convention
// that marks them.
//
// A design-tool frame opts in to the wall by its name:
//
//	Lobby#12.5x7    explicit size, width x height in inches
//	Lobby#SA#       a size code from the fixed table
//	Lobby#SA        the same, without the trailing delimiter
//
// The part before the first delimiter is the user-facing [Descriptor]
// name; the full label is kept as OriginalName because it is the key
// used to find the frame again in the live selection.
package frame
