// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package calibration holds the wall's physical-to-pixel mapping.
//
// A [Snapshot] says how large the monitor wall is in inches and how
// many renderer pixels one inch occupies along each axis. The renderer
// is the only component that computes snapshots; everything else keeps
// a read-only copy.
//
// [Store] is the daemon's single copy. [Store.Set] validates and
// replaces the value unconditionally (last writer wins, no merge, no
// versioning) and opens a short coalescing window; when the window
// closes every listener receives the latest value exactly once. A
// burst of resize events therefore costs one network write, and
// intermediate values are dropped rather than queued.
//
// Before the first valid Set, [Store.Get] reports [Unknown]. The
// sentinel is never handed to listeners.
package calibration
