// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers shared by Gridcast
// binaries: reporting a fatal error before (or without) the structured
// logger, and mapping operator-facing failures to distinct exit codes.
//
// Each main() is the same three lines:
//
//	if err := run(); err != nil {
//	    process.Fatal(err)
//	}
//
// An error that implements ExitCode() (see [ExitError]) selects the
// exit status and, when it carries a notice, replaces the generic
// "error: ..." line with that notice.
package process
