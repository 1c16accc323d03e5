// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"

	"github.com/gridcast/gridcast/lib/protocol"
)

// The collector and the relay live in separate contexts in the real
// plugin and only exchange JSON. These adapters put the same encoding
// between them in-process, so a message that would not survive the
// trip fails here too.

// eventBoundary carries sandbox events to the UI host.
type eventBoundary struct {
	deliver func(protocol.Event)
	logger  *slog.Logger
}

func (b eventBoundary) Emit(event protocol.Event) {
	data, err := protocol.Encode(event)
	if err != nil {
		b.logger.Error("encoding sandbox event", "type", event.MessageType(), "error", err)
		return
	}
	decoded, err := protocol.DecodeEvent(data)
	if err != nil {
		b.logger.Error("UI host rejected sandbox event", "type", event.MessageType(), "error", err)
		return
	}
	b.deliver(decoded)
}

// commandBoundary carries UI host commands to the sandbox.
type commandBoundary struct {
	deliver func(protocol.Command)
	logger  *slog.Logger
}

func (b commandBoundary) Send(command protocol.Command) {
	data, err := protocol.Encode(command)
	if err != nil {
		b.logger.Error("encoding sandbox command", "type", command.MessageType(), "error", err)
		return
	}
	decoded, err := protocol.DecodeCommand(data)
	if err != nil {
		b.logger.Error("sandbox rejected command", "type", command.MessageType(), "error", err)
		return
	}
	b.deliver(decoded)
}
