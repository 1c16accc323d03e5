// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay is the UI-host side of the wall connection.
//
// The plugin sandbox has no network access, so every event it emits
// passes through a [Relay]. The relay keeps one WebSocket connection
// to the daemon's bridge, redialing with capped exponential backoff
// when it drops, and:
//
//   - caches the latest screen-info the bridge pushes and hands it to
//     the sandbox as a screen-info command;
//   - answers the sandbox's get-screen-info and request-screen-info
//     from that cache, so calibration is available while the bridge
//     is briefly unreachable;
//   - splits a send-to-electron transfer unit into one frame-data
//     message per frame;
//   - forwards send-resize-to-electron as frame-resize.
//
// Every event, handled or not, is also passed to the configured
// observer, which plays the part of the plugin's visible UI.
package relay
