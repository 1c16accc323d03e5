// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package presentation

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/ipc"
	"github.com/gridcast/gridcast/lib/protocol"
	"github.com/gridcast/gridcast/lib/testutil"
)

const timeout = 5 * time.Second

func TestComputeSnapshot(t *testing.T) {
	tests := []struct {
		name                    string
		viewportW, viewportH    float64
		monitorW, monitorH      float64
		wantX, wantY, wantPixel float64
		wantErr                 bool
	}{
		{name: "square pixels", viewportW: 1920, viewportH: 1080, monitorW: 40, monitorH: 22.5, wantX: 48, wantY: 48, wantPixel: 48},
		{name: "aspect mismatch", viewportW: 1000, viewportH: 600, monitorW: 20, monitorH: 10, wantX: 50, wantY: 60, wantPixel: 55},
		{name: "zero viewport", viewportW: 0, viewportH: 600, monitorW: 20, monitorH: 10, wantErr: true},
		{name: "zero wall", viewportW: 1000, viewportH: 600, monitorW: 0, monitorH: 10, wantErr: true},
		{name: "negative wall", viewportW: 1000, viewportH: 600, monitorW: 20, monitorH: -1, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			snapshot, err := ComputeSnapshot(test.viewportW, test.viewportH, test.monitorW, test.monitorH)
			if test.wantErr {
				if !errors.Is(err, calibration.ErrInvalidSnapshot) {
					t.Errorf("error = %v, want ErrInvalidSnapshot", err)
				}
				if snapshot.Known() {
					t.Errorf("snapshot = %+v, want Unknown", snapshot)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeSnapshot: %v", err)
			}
			if math.Abs(snapshot.GridSpacingX-test.wantX) > 1e-9 ||
				math.Abs(snapshot.GridSpacingY-test.wantY) > 1e-9 ||
				math.Abs(snapshot.PixelsPerUnit-test.wantPixel) > 1e-9 {
				t.Errorf("snapshot = %+v, want spacing %v x %v, %v px/in", snapshot, test.wantX, test.wantY, test.wantPixel)
			}
			if snapshot.MonitorWidth != test.monitorW || snapshot.MonitorHeight != test.monitorH {
				t.Errorf("wall size = %vx%v", snapshot.MonitorWidth, snapshot.MonitorHeight)
			}
		})
	}
}

type fakeDaemon struct {
	mu        sync.Mutex
	current   calibration.Snapshot
	published chan calibration.Snapshot
}

func (d *fakeDaemon) GridSystemUpdated(snapshot calibration.Snapshot) error {
	d.mu.Lock()
	d.current = snapshot
	d.mu.Unlock()
	d.published <- snapshot
	return nil
}

func (d *fakeDaemon) GridSystem() (calibration.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.current.Known()
}

func (d *fakeDaemon) ScreenDPI() float64 { return 144 }

func (d *fakeDaemon) set(snapshot calibration.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = snapshot
}

func startDaemon(t *testing.T) (*ipc.Server, *fakeDaemon, string) {
	t.Helper()
	daemon := &fakeDaemon{published: make(chan calibration.Snapshot, 16)}
	socketPath := filepath.Join(testutil.SocketDir(t), "renderer.sock")
	server := ipc.NewServer(socketPath, daemon, testutil.Logger())
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan struct{})
	go func() {
		defer close(served)
		server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, served, timeout, "server shutdown")
	})
	return server, daemon, socketPath
}

func connect(t *testing.T, socketPath string) *Renderer {
	t.Helper()
	client, err := ipc.Dial(context.Background(), socketPath, testutil.Logger())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRenderer(client, testutil.Logger())
}

func run(t *testing.T, renderer *Renderer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- renderer.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, timeout, "renderer to stop")
	})
}

func waitForClient(t *testing.T, server *ipc.Server) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for server.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("renderer never registered with the server")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLayoutPublishesOnlyChanges(t *testing.T) {
	_, daemon, socketPath := startDaemon(t)
	renderer := connect(t, socketPath)

	snapshot, err := renderer.SetViewport(1920, 1080)
	if err != nil || snapshot.Known() {
		t.Fatalf("SetViewport before wall size = %+v, %v; want Unknown, nil", snapshot, err)
	}
	if _, ok := renderer.Snapshot(); ok {
		t.Error("Snapshot known before the wall size is set")
	}

	snapshot, err = renderer.SetMonitor(40, 22.5)
	if err != nil {
		t.Fatalf("SetMonitor: %v", err)
	}
	published := testutil.RequireReceive(t, daemon.published, timeout, "first calibration")
	if published != snapshot || published.GridSpacingX != 48 {
		t.Errorf("published %+v, SetMonitor returned %+v", published, snapshot)
	}

	// Same layout again: nothing sent. The next publish must be the
	// changed layout.
	if _, err := renderer.SetViewport(1920, 1080); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if _, err := renderer.SetViewport(960, 540); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	published = testutil.RequireReceive(t, daemon.published, timeout, "second calibration")
	if published.GridSpacingX != 24 {
		t.Errorf("second publish spacing = %v, want 24", published.GridSpacingX)
	}
}

func TestRunTracksFrames(t *testing.T) {
	server, daemon, socketPath := startDaemon(t)
	renderer := connect(t, socketPath)
	if _, err := renderer.SetViewport(1000, 500); err != nil {
		t.Fatal(err)
	}
	if _, err := renderer.SetMonitor(20, 10); err != nil {
		t.Fatal(err)
	}
	testutil.RequireReceive(t, daemon.published, timeout, "calibration")
	run(t, renderer)
	waitForClient(t, server)

	stored := ipc.StoredFrame{
		Name:         "Lobby",
		WidthUnits:   2,
		HeightUnits:  3,
		OriginalName: "Lobby#2x3",
		ImagePath:    "/tmp/figma-frames/Lobby.png",
		Digest:       "abc",
	}
	server.NotifyFrame(stored)
	event := testutil.RequireReceive(t, renderer.Events(), timeout, "frame event")
	if event.Kind != EventFrameReceived || event.Frame.StoredFrame != stored {
		t.Fatalf("event = %+v", event)
	}
	if event.Frame.PixelWidth != 100 || event.Frame.PixelHeight != 150 {
		t.Errorf("pixel size = %vx%v, want 100x150", event.Frame.PixelWidth, event.Frame.PixelHeight)
	}

	// Same name again replaces in place.
	stored.Digest = "def"
	server.NotifyFrame(stored)
	testutil.RequireReceive(t, renderer.Events(), timeout, "second frame event")
	server.NotifyResize(protocol.FrameSize{Name: "Lobby", WidthUnits: 4, HeightUnits: 1})
	event = testutil.RequireReceive(t, renderer.Events(), timeout, "resize event")
	if event.Kind != EventFrameResized || event.Frame.PixelWidth != 200 || event.Frame.PixelHeight != 50 {
		t.Errorf("resize event = %+v", event)
	}

	frames := renderer.Frames()
	if len(frames) != 1 {
		t.Fatalf("Frames() = %+v, want one frame", frames)
	}
	if frames[0].Digest != "def" || frames[0].WidthUnits != 4 {
		t.Errorf("frame = %+v", frames[0])
	}

	dpi, err := renderer.ScreenDPI(context.Background())
	if err != nil || dpi != 144 {
		t.Errorf("ScreenDPI = %v, %v; want 144", dpi, err)
	}
}

func TestRunRepublishesStaleCalibration(t *testing.T) {
	_, daemon, socketPath := startDaemon(t)
	renderer := connect(t, socketPath)
	if _, err := renderer.SetViewport(1000, 500); err != nil {
		t.Fatal(err)
	}
	local, err := renderer.SetMonitor(20, 10)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireReceive(t, daemon.published, timeout, "calibration")

	daemon.set(calibration.Snapshot{MonitorWidth: 1, MonitorHeight: 1, PixelsPerUnit: 1, GridSpacingX: 1, GridSpacingY: 1})
	run(t, renderer)

	event := testutil.RequireReceive(t, renderer.Events(), timeout, "republish event")
	if event.Kind != EventRepublished || event.Snapshot != local {
		t.Errorf("event = %+v, want republish of %+v", event, local)
	}
	if published := testutil.RequireReceive(t, daemon.published, timeout, "republished calibration"); published != local {
		t.Errorf("daemon received %+v, want %+v", published, local)
	}
}

func TestRunEndsWhenDaemonGoes(t *testing.T) {
	server, _, socketPath := startDaemon(t)
	renderer := connect(t, socketPath)
	done := make(chan error, 1)
	go func() { done <- renderer.Run(context.Background()) }()
	waitForClient(t, server)

	server.Close()
	if err := testutil.RequireReceive(t, done, timeout, "Run to return"); !errors.Is(err, ipc.ErrClosed) {
		t.Errorf("Run error = %v, want ipc.ErrClosed", err)
	}
	testutil.RequireClosed(t, closedSignal(renderer.Events()), timeout, "events channel close")
}

// closedSignal converts the close of events into a struct{} channel.
func closedSignal(events <-chan Event) <-chan struct{} {
	signal := make(chan struct{})
	go func() {
		for range events {
		}
		close(signal)
	}()
	return signal
}
