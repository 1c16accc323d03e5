// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge is the daemon's WebSocket endpoint for plugin UI
// hosts.
//
// Every accepted connection becomes a peer. Peers send [protocol.Wire]
// messages as text frames:
//
//   - frame-data hands one exported frame to the [FrameSink]
//   - get-screen-info asks for the current calibration, answered to
//     the asking peer only and not at all while none is known
//   - frame-resize forwards a window size request to the [FrameSink]
//
// [Bridge.Broadcast] writes screen-info to every peer; the daemon
// subscribes it to the calibration store. A newly connected peer is
// sent the current calibration straight away when one is known.
//
// Messages that fail to decode are logged and dropped without closing
// the connection. A peer whose write fails is dropped from the set.
// There is no authentication: any local page may connect.
//
// Start binds the listener and serves in the background. A bind
// failure because the address is taken wraps [ErrAddressInUse], which
// the daemon reports as another instance already running. Stop closes
// the listener and every peer, then waits for their handlers to
// finish. Addr returns the bound address, which uses an ephemeral port
// if port 0 was requested.
package bridge
