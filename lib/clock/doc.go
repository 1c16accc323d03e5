// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Gridcast has two places where wall-clock time changes behavior: the
// calibration store's broadcast coalescing window and the relay's
// reconnect backoff. Both take a [Clock] instead of calling the time
// package. Production wires [Real]; tests wire [Fake] and move time
// forward explicitly with [FakeClock.Advance], so a "two updates inside
// one window" case is a deterministic sequence of calls rather than a
// race against a sleeping goroutine.
//
// When a goroutine registers a timer concurrently with the test, use
// [FakeClock.WaitForTimers] before advancing.
package clock
