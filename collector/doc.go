// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package collector runs inside the plugin sandbox: it scans the
// design tool's selection for frames named for the wall, rasterizes
// the ones the user picks, and hands them to the UI host as one
// transfer.
//
// The collector is an explicit state machine:
//
//	Idle ──scan──▶ Scanning ──▶ Idle                   (nothing selected or nothing matches)
//	                        ──▶ AwaitingConfirmation   (more than ConfirmThreshold matches)
//	                        ──▶ Ready                  (frame list sent)
//	AwaitingConfirmation ──scan(confirmed)──▶ Scanning
//	Ready ──export──▶ Exporting ──▶ Idle
//
// A scan is accepted in every state but Scanning and Exporting. An
// export is accepted only in Ready. Refused requests return [ErrBusy]
// or [ErrNotReady] and emit request-rejected so the UI can say why.
//
// Exports report progress per item in request order. A frame that is
// missing from the selection or whose name does not parse is skipped
// silently; a frame that fails to rasterize is reported as an error
// and the export continues. [Collector.Cancel] stops an export between
// items; a cancelled export sends no transfer.
//
// The design tool itself is reached through [Host]; events go out
// through an [Emitter].
package collector
