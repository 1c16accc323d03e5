// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/gridcast/gridcast/lib/protocol"
)

// reporter prints what the plugin UI would show.
type reporter struct {
	out io.Writer

	mu       sync.Mutex
	notices  int
	exported int
	failed   int
}

func (r *reporter) observe(event protocol.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event := event.(type) {
	case protocol.SelectionEmpty:
		fmt.Fprintln(r.out, event.Message)
	case protocol.NoMatchingFrames:
		fmt.Fprintln(r.out, event.Message)
	case protocol.ConfirmScan:
		fmt.Fprintln(r.out, event.Message)
	case protocol.UpdateFrameList:
		fmt.Fprintf(r.out, "%d frames ready\n", len(event.Frames))
	case protocol.ExportStarted:
		fmt.Fprintf(r.out, "exporting %d frames\n", event.Count)
	case protocol.ExportProgress:
		switch event.Status {
		case protocol.StatusExported:
			r.exported++
			fmt.Fprintf(r.out, "[%d/%d] %s\n", event.Current, event.Total, event.FrameName)
		case protocol.StatusError:
			r.failed++
			fmt.Fprintf(r.out, "[%d/%d] %s failed\n", event.Current, event.Total, event.FrameName)
		}
	case protocol.SendToElectron:
		fmt.Fprintf(r.out, "sent %d frames to the wall\n", len(event.Frames))
	case protocol.ExportCancelled:
		fmt.Fprintf(r.out, "cancelled after %d of %d frames\n", event.Completed, event.Total)
	case protocol.RequestRejected:
		fmt.Fprintf(r.out, "%s refused: %s\n", event.Request, event.Message)
	case protocol.Notify:
		r.notices++
		fmt.Fprintln(r.out, event.Message)
	}
}

// summary returns the frames exported and failed, and the notices seen.
func (r *reporter) summary() (exported, failed, notices int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exported, r.failed, r.notices
}
