// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/gridcast/gridcast/lib/clock"
	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/netutil"
	"github.com/gridcast/gridcast/lib/protocol"
)

// ErrDisconnected is returned when a message must go to the bridge
// while no connection is open.
var ErrDisconnected = errors.New("relay: not connected to the wall")

const (
	DefaultMinBackoff = 250 * time.Millisecond
	DefaultMaxBackoff = 5 * time.Second
)

// Sandbox receives commands for the plugin sandbox.
type Sandbox interface {
	Send(command protocol.Command)
}

// SandboxFunc adapts a function to Sandbox.
type SandboxFunc func(protocol.Command)

func (f SandboxFunc) Send(command protocol.Command) { f(command) }

// Config configures a Relay.
type Config struct {
	// URL is the bridge endpoint, e.g. "ws://127.0.0.1:8080/".
	URL string

	// Origin is sent in the handshake. Empty means "http://localhost/".
	Origin string

	// MinBackoff and MaxBackoff bound the redial delay. Zero means
	// DefaultMinBackoff and DefaultMaxBackoff.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// Clock drives the redial delay. Nil means clock.Real().
	Clock clock.Clock

	// Sandbox receives screen-info commands. Required.
	Sandbox Sandbox

	// Observer, if set, sees every event the sandbox emits, plus the
	// notify events the relay raises itself.
	Observer func(protocol.Event)

	// Logger receives structured log output. Nil means slog.Default().
	Logger *slog.Logger
}

// Relay connects the sandbox to the bridge.
type Relay struct {
	url        string
	origin     string
	minBackoff time.Duration
	maxBackoff time.Duration
	clock      clock.Clock
	sandbox    Sandbox
	observer   func(protocol.Event)
	logger     *slog.Logger

	writeMu sync.Mutex

	mu         sync.Mutex
	conn       *websocket.Conn
	screenInfo *protocol.ScreenInfo
}

// New returns a Relay. It does not connect until Run is called.
func New(config Config) (*Relay, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("relay: URL is required")
	}
	if config.Sandbox == nil {
		return nil, fmt.Errorf("relay: Sandbox is required")
	}
	relay := &Relay{
		url:        config.URL,
		origin:     config.Origin,
		minBackoff: config.MinBackoff,
		maxBackoff: config.MaxBackoff,
		clock:      config.Clock,
		sandbox:    config.Sandbox,
		observer:   config.Observer,
		logger:     config.Logger,
	}
	if relay.origin == "" {
		relay.origin = "http://localhost/"
	}
	if relay.minBackoff <= 0 {
		relay.minBackoff = DefaultMinBackoff
	}
	if relay.maxBackoff <= 0 {
		relay.maxBackoff = DefaultMaxBackoff
	}
	if relay.maxBackoff < relay.minBackoff {
		relay.maxBackoff = relay.minBackoff
	}
	if relay.clock == nil {
		relay.clock = clock.Real()
	}
	if relay.logger == nil {
		relay.logger = slog.Default()
	}
	return relay, nil
}

// Run keeps a connection to the bridge open until ctx is cancelled,
// then returns ctx.Err(). After each connect it asks the bridge for
// the current calibration.
func (r *Relay) Run(ctx context.Context) error {
	backoff := r.minBackoff
	for {
		conn, err := r.dial(ctx)
		if err == nil {
			backoff = r.minBackoff
			r.serve(ctx, conn)
		} else if ctx.Err() == nil {
			r.logger.Debug("bridge dial failed", "url", r.url, "retry_in", backoff, "error", err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(backoff):
		}
		backoff = min(backoff*2, r.maxBackoff)
	}
}

func (r *Relay) dial(ctx context.Context) (*websocket.Conn, error) {
	config, err := websocket.NewConfig(r.url, r.origin)
	if err != nil {
		return nil, fmt.Errorf("relay: bridge config: %w", err)
	}
	conn, err := config.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("relay: dialing %s: %w", r.url, err)
	}
	return conn, nil
}

// serve reads from conn until it fails or ctx ends.
func (r *Relay) serve(ctx context.Context, conn *websocket.Conn) {
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		conn.Close()
		r.mu.Lock()
		if r.conn == conn {
			r.conn = nil
		}
		r.mu.Unlock()
	}()

	r.logger.Info("connected to bridge", "url", r.url)
	if err := r.send(protocol.GetScreenInfo{}); err != nil {
		r.logger.Debug("requesting screen-info failed", "error", err)
		return
	}

	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if ctx.Err() == nil {
				if !netutil.IsExpectedCloseError(err) {
					r.logger.Debug("bridge read failed", "error", err)
				}
				r.logger.Info("disconnected from bridge")
			}
			return
		}
		message, err := protocol.DecodeWire(data)
		if err != nil {
			r.logger.Warn("dropping malformed bridge message", "error", err)
			continue
		}
		switch message := message.(type) {
		case protocol.ScreenInfo:
			r.mu.Lock()
			r.screenInfo = &message
			r.mu.Unlock()
			r.sandbox.Send(protocol.ScreenInfoReply{ScreenInfo: message})
		default:
			r.logger.Debug("ignoring bridge message", "type", message.MessageType())
		}
	}
}

// Connected reports whether a bridge connection is open.
func (r *Relay) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// ScreenInfo returns the last calibration the bridge pushed.
func (r *Relay) ScreenInfo() (protocol.ScreenInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screenInfo == nil {
		return protocol.ScreenInfo{}, false
	}
	return *r.screenInfo, true
}

// Emit handles one event from the sandbox. It satisfies
// collector.Emitter.
func (r *Relay) Emit(event protocol.Event) {
	switch event := event.(type) {
	case protocol.GetScreenInfo, protocol.RequestScreenInfo:
		r.answerScreenInfo()
	case protocol.SendToElectron:
		if err := r.Transfer(event.Frames); err != nil {
			r.logger.Warn("transfer failed", "frames", len(event.Frames), "error", err)
			r.observe(protocol.Notify{Message: notice(err)})
		}
	case protocol.SendResizeToElectron:
		if err := r.Resize(event.Frame); err != nil {
			r.logger.Warn("resize forward failed", "name", event.Frame.Name, "error", err)
			r.observe(protocol.Notify{Message: notice(err)})
		}
	}
	r.observe(event)
}

// answerScreenInfo replies from the cache and asks the bridge for a
// fresher value. With no cache the sandbox hears nothing until the
// bridge answers.
func (r *Relay) answerScreenInfo() {
	if info, ok := r.ScreenInfo(); ok {
		r.sandbox.Send(protocol.ScreenInfoReply{ScreenInfo: info})
	}
	if err := r.send(protocol.GetScreenInfo{}); err != nil && !errors.Is(err, ErrDisconnected) {
		r.logger.Debug("requesting screen-info failed", "error", err)
	}
}

// Transfer sends one frame-data message per frame, in order. It stops
// at the first failed write.
func (r *Relay) Transfer(frames []frame.Descriptor) error {
	batch := uuid.New()
	logger := r.logger.With("batch", batch.String())
	logger.Info("transferring frames", "count", len(frames))
	for index, descriptor := range frames {
		if err := r.send(protocol.FrameData{Frame: descriptor}); err != nil {
			return fmt.Errorf("relay: sending frame %d of %d (%s): %w", index+1, len(frames), descriptor.Name, err)
		}
		logger.Debug("frame sent", "name", descriptor.Name, "bytes", len(descriptor.Payload))
	}
	return nil
}

// Resize forwards a frame size to the bridge as frame-resize.
func (r *Relay) Resize(size protocol.FrameSize) error {
	if err := r.send(protocol.FrameResize{Frame: size}); err != nil {
		return fmt.Errorf("relay: sending resize for %s: %w", size.Name, err)
	}
	return nil
}

func (r *Relay) send(message protocol.Message) error {
	data, err := protocol.Encode(message)
	if err != nil {
		return err
	}
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return ErrDisconnected
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := websocket.Message.Send(conn, string(data)); err != nil {
		if netutil.IsExpectedCloseError(err) {
			return ErrDisconnected
		}
		return err
	}
	return nil
}

func (r *Relay) observe(event protocol.Event) {
	if r.observer != nil {
		r.observer(event)
	}
}

func notice(err error) string {
	if errors.Is(err, ErrDisconnected) {
		return "The wall application is not running. Start it and try again."
	}
	return "Sending to the wall failed."
}
