// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Gridcast packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that individual tests never call time.After themselves;
// the timeout is a hang guard, not a synchronization mechanism.
//
// [SocketDir] returns a short /tmp directory for Unix sockets, whose
// paths are limited to 108 bytes and overflow under deeply nested
// t.TempDir() paths.
//
// [Logger] returns a logger that only surfaces errors, so test output
// stays readable while failures in background goroutines still show.
package testutil
