// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/protocol"
	"github.com/gridcast/gridcast/lib/testutil"
)

// fakeHost serves a fixed selection. Rasterize returns the frame name
// as bytes unless the name is listed in failures; names in block wait
// for release (or ctx) before answering.
type fakeHost struct {
	mu        sync.Mutex
	selection []Node
	failures  map[string]bool
	block     map[string]chan struct{}
	started   chan string
	opened    []string
}

func (h *fakeHost) Selection(context.Context) ([]Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Node(nil), h.selection...), nil
}

func (h *fakeHost) Rasterize(ctx context.Context, name string) ([]byte, error) {
	if h.started != nil {
		h.started <- name
	}
	if release, ok := h.block[name]; ok {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if h.failures[name] {
		return nil, errors.New("export failed")
	}
	return []byte(name), nil
}

func (h *fakeHost) OpenURL(_ context.Context, link string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, link)
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (l *eventLog) Emit(event protocol.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []protocol.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]protocol.Event(nil), l.events...)
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func frames(names ...string) []Node {
	nodes := make([]Node, len(names))
	for index, name := range names {
		nodes[index] = Node{Name: name, IsFrame: true}
	}
	return nodes
}

func newCollector(host Host) (*Collector, *eventLog) {
	log := &eventLog{}
	return New(host, log, Options{Logger: testutil.Logger()}), log
}

func TestScanEmptySelection(t *testing.T) {
	collector, log := newCollector(&fakeHost{})

	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	events := log.snapshot()
	if len(events) != 1 {
		t.Fatalf("events = %#v, want one selection-empty", events)
	}
	if _, ok := events[0].(protocol.SelectionEmpty); !ok {
		t.Errorf("event = %#v, want selection-empty", events[0])
	}
	if collector.State() != StateIdle {
		t.Errorf("state = %v, want idle", collector.State())
	}
}

func TestScanNoMatchingFrames(t *testing.T) {
	host := &fakeHost{selection: []Node{
		{Name: "Lobby", IsFrame: true},
		{Name: "Logo#SA#", IsFrame: false}, // a group, not a frame
	}}
	collector, log := newCollector(host)

	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	events := log.snapshot()
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	if _, ok := events[0].(protocol.NoMatchingFrames); !ok {
		t.Errorf("event = %#v, want no-matching-frames", events[0])
	}
	if collector.State() != StateIdle {
		t.Errorf("state = %v, want idle", collector.State())
	}
}

func TestScanLargeSelectionNeedsConfirmation(t *testing.T) {
	names := make([]string, 25)
	for index := range names {
		names[index] = fmt.Sprintf("Panel %02d#SA#", index)
	}
	collector, log := newCollector(&fakeHost{selection: frames(names...)})

	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	events := log.snapshot()
	if len(events) != 1 {
		t.Fatalf("events = %#v, want exactly one confirm-scan", events)
	}
	confirm, ok := events[0].(protocol.ConfirmScan)
	if !ok || confirm.Count != 25 {
		t.Fatalf("event = %#v, want confirm-scan{count:25}", events[0])
	}
	if collector.State() != StateAwaitingConfirmation {
		t.Errorf("state = %v, want awaiting-confirmation", collector.State())
	}

	log.reset()
	if err := collector.Scan(context.Background(), true); err != nil {
		t.Fatalf("confirmed Scan: %v", err)
	}
	events = log.snapshot()
	if len(events) != 2 {
		t.Fatalf("events = %#v, want scan-started and update-frame-list", events)
	}
	if _, ok := events[0].(protocol.ScanStarted); !ok {
		t.Errorf("first event = %#v, want scan-started", events[0])
	}
	list, ok := events[1].(protocol.UpdateFrameList)
	if !ok || len(list.Frames) != 25 {
		t.Fatalf("second event = %#v, want update-frame-list with 25 frames", events[1])
	}
	for _, descriptor := range list.Frames {
		if descriptor.Payload != nil {
			t.Errorf("scan result %q carries a payload", descriptor.Name)
		}
	}
	if collector.State() != StateReady {
		t.Errorf("state = %v, want ready", collector.State())
	}
}

func TestScanAtThresholdRunsDirectly(t *testing.T) {
	names := make([]string, DefaultConfirmThreshold)
	for index := range names {
		names[index] = fmt.Sprintf("P%d#2x3", index)
	}
	collector, log := newCollector(&fakeHost{selection: frames(names...)})

	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ok := log.snapshot()[0].(protocol.ScanStarted); !ok {
		t.Errorf("a scan of exactly %d frames asked for confirmation", DefaultConfirmThreshold)
	}
}

func TestScanSkipsUnknownCodes(t *testing.T) {
	// Lobby#ZZ# counts as matching but does not parse.
	collector, log := newCollector(&fakeHost{selection: frames("Lobby#ZZ#", "Hall#SA", "Kiosk#4x3")})

	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	events := log.snapshot()
	list := events[len(events)-1].(protocol.UpdateFrameList)
	var names []string
	for _, descriptor := range list.Frames {
		names = append(names, descriptor.Name)
	}
	if !reflect.DeepEqual(names, []string{"Hall", "Kiosk"}) {
		t.Errorf("frame list = %v, want [Hall Kiosk]", names)
	}
}

func TestExportWithFailingItem(t *testing.T) {
	host := &fakeHost{
		selection: frames("A#2x3", "B#2x3", "C#SA#"),
		failures:  map[string]bool{"B#2x3": true},
	}
	collector, log := newCollector(host)
	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	log.reset()

	if err := collector.Export(context.Background(), []string{"A#2x3", "B#2x3", "C#SA#"}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := []protocol.Event{
		protocol.ExportStarted{Count: 3},
		protocol.GetScreenInfo{},
		protocol.ExportProgress{Current: 1, Total: 3, FrameName: "A", Status: protocol.StatusExporting},
		protocol.ExportProgress{Current: 1, Total: 3, FrameName: "A", Status: protocol.StatusExported},
		protocol.ExportProgress{Current: 2, Total: 3, FrameName: "B", Status: protocol.StatusExporting},
		protocol.ExportProgress{Current: 2, Total: 3, FrameName: "B", Status: protocol.StatusError},
		protocol.ExportProgress{Current: 3, Total: 3, FrameName: "C", Status: protocol.StatusExporting},
		protocol.ExportProgress{Current: 3, Total: 3, FrameName: "C", Status: protocol.StatusExported},
		protocol.SendToElectron{Frames: []frame.Descriptor{
			{Name: "A", WidthUnits: 2, HeightUnits: 3, OriginalName: "A#2x3", Payload: frame.Bytes("A#2x3")},
			{Name: "C", WidthUnits: 12.73, HeightUnits: 7.16, OriginalName: "C#SA#", Payload: frame.Bytes("C#SA#")},
		}},
	}
	if got := log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("events:\n got %#v\nwant %#v", got, want)
	}
	if collector.State() != StateIdle {
		t.Errorf("state = %v, want idle after export", collector.State())
	}
}

func TestExportSkipsMissingFrames(t *testing.T) {
	collector, log := newCollector(&fakeHost{selection: frames("A#2x3", "Plain")})
	if err := collector.Scan(context.Background(), false); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	log.reset()

	if err := collector.Export(context.Background(), []string{"Gone#2x3", "Plain", "A#2x3"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	var progress []protocol.ExportProgress
	var transfer *protocol.SendToElectron
	for _, event := range log.snapshot() {
		switch event := event.(type) {
		case protocol.ExportProgress:
			progress = append(progress, event)
		case protocol.SendToElectron:
			transfer = &event
		}
	}
	if len(progress) != 2 || progress[0].Current != 3 || progress[0].FrameName != "A" {
		t.Errorf("progress = %+v, want only item 3 (A)", progress)
	}
	if transfer == nil || len(transfer.Frames) != 1 {
		t.Errorf("transfer = %+v, want one frame", transfer)
	}
}

func TestExportAllFailedSendsNoTransfer(t *testing.T) {
	host := &fakeHost{selection: frames("A#2x3"), failures: map[string]bool{"A#2x3": true}}
	collector, log := newCollector(host)
	collector.Scan(context.Background(), false)

	if err := collector.Export(context.Background(), []string{"A#2x3"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, event := range log.snapshot() {
		if _, ok := event.(protocol.SendToElectron); ok {
			t.Error("send-to-electron emitted with no exported frames")
		}
	}
}

func TestExportBeforeScanIsRejected(t *testing.T) {
	collector, log := newCollector(&fakeHost{selection: frames("A#2x3")})

	err := collector.Export(context.Background(), []string{"A#2x3"})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("Export error = %v, want ErrNotReady", err)
	}
	events := log.snapshot()
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	rejected, ok := events[0].(protocol.RequestRejected)
	if !ok || rejected.Request != protocol.TypeExportFrames {
		t.Errorf("event = %#v, want request-rejected for export-frames", events[0])
	}
}

func TestExportTwiceNeedsNewScan(t *testing.T) {
	collector, _ := newCollector(&fakeHost{selection: frames("A#2x3")})
	collector.Scan(context.Background(), false)
	if err := collector.Export(context.Background(), []string{"A#2x3"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := collector.Export(context.Background(), []string{"A#2x3"}); !errors.Is(err, ErrNotReady) {
		t.Errorf("second Export error = %v, want ErrNotReady", err)
	}
}

func TestBusyWhileExportingAndCancel(t *testing.T) {
	release := make(chan struct{})
	host := &fakeHost{
		selection: frames("A#2x3", "B#2x3", "C#2x3"),
		block:     map[string]chan struct{}{"B#2x3": release},
		started:   make(chan string, 8),
	}
	collector, log := newCollector(host)
	collector.Scan(context.Background(), false)

	exportDone := make(chan error, 1)
	go func() {
		exportDone <- collector.Export(context.Background(), []string{"A#2x3", "B#2x3", "C#2x3"})
	}()

	testutil.RequireReceive(t, host.started, 5*time.Second, "rasterize A")
	testutil.RequireReceive(t, host.started, 5*time.Second, "rasterize B")
	if collector.State() != StateExporting {
		t.Fatalf("state = %v, want exporting", collector.State())
	}

	if err := collector.Scan(context.Background(), false); !errors.Is(err, ErrBusy) {
		t.Errorf("Scan during export error = %v, want ErrBusy", err)
	}
	if err := collector.Export(context.Background(), []string{"A#2x3"}); !errors.Is(err, ErrBusy) {
		t.Errorf("Export during export error = %v, want ErrBusy", err)
	}

	collector.Cancel()
	err := testutil.RequireReceive(t, exportDone, 5*time.Second, "export to stop")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Export error = %v, want ErrCancelled", err)
	}

	var cancelled *protocol.ExportCancelled
	rejections := 0
	for _, event := range log.snapshot() {
		switch event := event.(type) {
		case protocol.ExportCancelled:
			cancelled = &event
		case protocol.RequestRejected:
			rejections++
		case protocol.SendToElectron:
			t.Error("cancelled export sent a transfer")
		}
	}
	if cancelled == nil || cancelled.Completed != 1 || cancelled.Total != 3 {
		t.Errorf("export-cancelled = %+v, want completed 1 of 3", cancelled)
	}
	if rejections != 2 {
		t.Errorf("got %d request-rejected events, want 2", rejections)
	}
	if collector.State() != StateIdle {
		t.Errorf("state = %v, want idle", collector.State())
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name      string
		selection []Node
		want      protocol.Event
	}{
		{
			name:      "single parseable frame",
			selection: frames("Lobby#12.5x7"),
			want:      protocol.SendResizeToElectron{Frame: protocol.FrameSize{Name: "Lobby", WidthUnits: 12.5, HeightUnits: 7}},
		},
		{
			name:      "two frames",
			selection: frames("A#2x3", "B#2x3"),
			want:      protocol.Notify{Message: "Please select a single frame to resize."},
		},
		{
			name:      "not a frame",
			selection: []Node{{Name: "A#2x3"}},
			want:      protocol.Notify{Message: "Please select a single frame to resize."},
		},
		{
			name:      "unparseable name",
			selection: frames("Lobby"),
			want:      protocol.Notify{Message: "Selected frame does not have valid resize dimensions in its name."},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			collector, log := newCollector(&fakeHost{selection: test.selection})
			if err := collector.Handle(context.Background(), protocol.ResizeFrame{}); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			events := log.snapshot()
			if len(events) != 1 || !reflect.DeepEqual(events[0], test.want) {
				t.Errorf("events = %#v, want %#v", events, test.want)
			}
		})
	}
}

func TestOpenURL(t *testing.T) {
	host := &fakeHost{}
	collector, log := newCollector(host)

	if err := collector.Handle(context.Background(), protocol.OpenURL{URL: "https://example.com/guide"}); err != nil {
		t.Fatalf("OpenURL: %v", err)
	}
	for _, link := range []string{"file:///etc/passwd", "javascript:alert(1)", "not a url"} {
		if err := collector.OpenURL(context.Background(), link); !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("OpenURL(%q) error = %v, want ErrUnsupportedURL", link, err)
		}
	}
	if !reflect.DeepEqual(host.opened, []string{"https://example.com/guide"}) {
		t.Errorf("opened = %v", host.opened)
	}
	if got := len(log.snapshot()); got != 3 {
		t.Errorf("got %d notify events, want 3", got)
	}
}

func TestStartAndScreenInfo(t *testing.T) {
	collector, log := newCollector(&fakeHost{})
	collector.Start()
	want := []protocol.Event{protocol.InitUI{}, protocol.GetScreenInfo{}}
	if got := log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Start events = %#v, want %#v", got, want)
	}

	if _, ok := collector.ScreenInfo(); ok {
		t.Error("ScreenInfo known before any reply")
	}
	info := protocol.ScreenInfo{MonitorWidth: 20, MonitorHeight: 10, GridSpacingX: 50, GridSpacingY: 50, DPI: 96}
	if err := collector.Handle(context.Background(), protocol.ScreenInfoReply{ScreenInfo: info}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got, ok := collector.ScreenInfo(); !ok || got != info {
		t.Errorf("ScreenInfo = %+v, %v; want %+v", got, ok, info)
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateIdle:                 "idle",
		StateScanning:             "scanning",
		StateAwaitingConfirmation: "awaiting-confirmation",
		StateReady:                "ready",
		StateExporting:            "exporting",
		State(42):                 "State(42)",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
