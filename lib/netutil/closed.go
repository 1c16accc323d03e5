// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedCloseError reports whether err is a normal connection
// termination: EOF, a closed connection, a broken pipe or a reset.
// Plugin windows are closed without a WebSocket close handshake all the
// time, so the bridge logs these at Debug rather than Error.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}

// IsAddressInUse reports whether err is a bind failure because another
// process already listens on the address.
func IsAddressInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
