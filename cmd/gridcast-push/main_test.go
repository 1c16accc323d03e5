// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gridcast/gridcast/collector"
	"github.com/gridcast/gridcast/daemon"
	"github.com/gridcast/gridcast/lib/config"
	"github.com/gridcast/gridcast/lib/ipc"
	"github.com/gridcast/gridcast/lib/protocol"
	"github.com/gridcast/gridcast/lib/testutil"
)

func writeFrames(t *testing.T, names ...string) string {
	t.Helper()
	directory := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(directory, name), []byte("png:"+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return directory
}

func TestFolderHostSelection(t *testing.T) {
	directory := writeFrames(t, "B#SA#.png", "A#2x3.PNG", "notes.txt", "plain.png")
	if err := os.Mkdir(filepath.Join(directory, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	host := newFolderHost(directory, nil, testutil.Logger())
	nodes, err := host.Selection(context.Background())
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	want := []collector.Node{
		{Name: "A#2x3", IsFrame: true},
		{Name: "B#SA#", IsFrame: true},
		{Name: "plain", IsFrame: true},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("Selection = %+v, want %+v", nodes, want)
	}

	data, err := host.Rasterize(context.Background(), "A#2x3")
	if err != nil || string(data) != "png:A#2x3.PNG" {
		t.Errorf("Rasterize = %q, %v", data, err)
	}
	if _, err := host.Rasterize(context.Background(), "missing"); err == nil {
		t.Error("Rasterize of a missing frame succeeded")
	}

	filtered := newFolderHost(directory, []string{"B#SA#"}, testutil.Logger())
	nodes, _ = filtered.Selection(context.Background())
	if len(nodes) != 1 || nodes[0].Name != "B#SA#" {
		t.Errorf("--only selection = %+v", nodes)
	}
}

func TestBoundaryRejectsInvalidEvents(t *testing.T) {
	var delivered []protocol.Event
	boundary := eventBoundary{deliver: func(event protocol.Event) { delivered = append(delivered, event) }, logger: testutil.Logger()}

	boundary.Emit(protocol.ExportProgress{Current: 1, Total: 1, FrameName: "A", Status: protocol.StatusExported})
	boundary.Emit(protocol.ExportProgress{Current: 1, Total: 1, FrameName: "A", Status: "finished"})
	if len(delivered) != 1 {
		t.Errorf("delivered %d events, want only the valid one", len(delivered))
	}

	var commands []protocol.Command
	commandBoundary{deliver: func(command protocol.Command) { commands = append(commands, command) }, logger: testutil.Logger()}.
		Send(protocol.ExportFrames{FrameNames: []string{"A#2x3"}})
	if len(commands) != 1 || !reflect.DeepEqual(commands[0], protocol.ExportFrames{FrameNames: []string{"A#2x3"}}) {
		t.Errorf("commands = %#v", commands)
	}
}

func TestAsk(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "Yes\n": true, "n\n": false, "\n": false, "": false} {
		var out bytes.Buffer
		if got := ask(strings.NewReader(input), &out, "Continue? "); got != want {
			t.Errorf("ask(%q) = %v, want %v", input, got, want)
		}
		if out.String() != "Continue? " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestPushToDaemon(t *testing.T) {
	runtime := testutil.SocketDir(t)
	cfg := config.Default()
	cfg.Bridge.ListenAddress = "127.0.0.1:0"
	cfg.Scratch.Directory = filepath.Join(t.TempDir(), "frames")
	cfg.IPC.SocketPath = filepath.Join(runtime, "renderer.sock")
	cfg.Lock.Path = filepath.Join(runtime, "daemon.lock")

	d, err := daemon.New(cfg, testutil.Logger())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon Start: %v", err)
	}

	renderer, err := ipc.Dial(context.Background(), cfg.IPC.SocketPath, testutil.Logger())
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { renderer.Close() })
	if _, err := renderer.ScreenDPI(context.Background()); err != nil {
		t.Fatalf("ScreenDPI: %v", err)
	}

	directory := writeFrames(t, "A#2x3.png", "B#SA#.png", "notes.png")
	cfg.Relay.URL = "ws://" + d.BridgeAddr().String() + "/"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var output bytes.Buffer
	report := &reporter{out: &output}
	s, err := newSession(ctx, cfg.Relay, newFolderHost(directory, nil, testutil.Logger()), report, testutil.Logger())
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if err := s.push(ctx, func() bool { return false }); err != nil {
		t.Fatalf("push: %v\noutput:\n%s", err, output.String())
	}

	var received []string
	for range 2 {
		message := testutil.RequireReceive(t, renderer.Messages(), 5*time.Second, "waiting for frame-data-update")
		if message.Type != ipc.TypeFrameDataUpdate {
			t.Fatalf("renderer received %q", message.Type)
		}
		received = append(received, message.Update.Frame.Name)
		if _, err := os.Stat(message.Update.Frame.ImagePath); err != nil {
			t.Errorf("scratch file for %s: %v", message.Update.Frame.Name, err)
		}
	}
	sort.Strings(received)
	if !reflect.DeepEqual(received, []string{"A", "B"}) {
		t.Errorf("renderer received %v, want [A B]", received)
	}
	if !strings.Contains(output.String(), "sent 2 frames to the wall") {
		t.Errorf("output:\n%s", output.String())
	}
}
