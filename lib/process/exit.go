// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes shared by Gridcast binaries.
const (
	// ExitFailure is the status for any unclassified error.
	ExitFailure = 1

	// ExitAlreadyRunning is the status when another daemon instance
	// holds the lock or the bridge address.
	ExitAlreadyRunning = 3
)

// ExitError attaches an exit status and an operator-facing notice to
// an underlying error.
type ExitError struct {
	Code int

	// Notice is printed instead of the generic "error: ..." line.
	// Empty means use the generic line.
	Notice string

	Err error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the exit status.
func (e *ExitError) ExitCode() int { return e.Code }

// Fatal reports err on stderr and exits. See Report for the format.
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes err to w the way Fatal does and returns the exit code
// Fatal would use.
func Report(w io.Writer, err error) int {
	var exitError *ExitError
	if errors.As(err, &exitError) {
		if exitError.Notice != "" {
			fmt.Fprintln(w, exitError.Notice)
			if exitError.Err != nil {
				fmt.Fprintf(w, "  (%v)\n", exitError.Err)
			}
		} else {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		return exitError.Code
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return ExitFailure
}
