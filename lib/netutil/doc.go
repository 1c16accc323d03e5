// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies network errors for the bridge and relay:
// which failures are an ordinary peer going away, and which one means
// the listening address belongs to somebody else.
package netutil
