// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/net/websocket"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/frame"
	"github.com/gridcast/gridcast/lib/netutil"
	"github.com/gridcast/gridcast/lib/protocol"
)

// ErrAddressInUse is returned by Start when another process already
// listens on ListenAddr.
var ErrAddressInUse = errors.New("bridge: address already in use")

// DefaultMaxMessageBytes bounds an inbound message when
// MaxMessageBytes is zero.
const DefaultMaxMessageBytes = 64 << 20

// FrameSink consumes the frames and resize requests peers send.
type FrameSink interface {
	Receive(ctx context.Context, descriptor frame.Descriptor) error
	Resize(ctx context.Context, size protocol.FrameSize) error
}

// CalibrationSource supplies the snapshot get-screen-info answers with.
type CalibrationSource interface {
	Get() (calibration.Snapshot, bool)
}

// Bridge serves the WebSocket endpoint.
type Bridge struct {
	// ListenAddr is the TCP address to listen on (e.g. "127.0.0.1:8080").
	ListenAddr string

	// Sink receives frame-data and frame-resize messages.
	Sink FrameSink

	// Calibration answers get-screen-info and greets new peers.
	Calibration CalibrationSource

	// MaxMessageBytes caps one inbound message. Zero means
	// DefaultMaxMessageBytes.
	MaxMessageBytes int

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-connection events are logged at Debug level; dropped
	// messages at Warn.
	Logger *slog.Logger

	listener net.Listener
	server   *http.Server
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	handlers sync.WaitGroup

	mu     sync.Mutex
	peers  map[*peer]struct{}
	nextID atomic.Int64
}

type peer struct {
	id      int64
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *peer) send(data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return websocket.Message.Send(p.conn, string(data))
}

func (b *Bridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Start binds ListenAddr and serves in the background until Stop is
// called or ctx is cancelled.
func (b *Bridge) Start(ctx context.Context) error {
	if b.ListenAddr == "" {
		return fmt.Errorf("bridge: ListenAddr is required")
	}
	if b.Sink == nil {
		return fmt.Errorf("bridge: Sink is required")
	}
	if b.Calibration == nil {
		return fmt.Errorf("bridge: Calibration is required")
	}

	listener, err := net.Listen("tcp", b.ListenAddr)
	if err != nil {
		if netutil.IsAddressInUse(err) {
			return fmt.Errorf("%w: %s: %v", ErrAddressInUse, b.ListenAddr, err)
		}
		return fmt.Errorf("bridge: failed to listen on %s: %w", b.ListenAddr, err)
	}

	b.listener = listener
	b.peers = make(map[*peer]struct{})
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})

	// The plugin UI runs in a sandboxed iframe whose Origin is "null",
	// which the default handshake rejects. Peers are not authenticated.
	mux := http.NewServeMux()
	mux.Handle("/", websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   b.handleConnection,
	})
	b.server = &http.Server{Handler: mux}

	go func() {
		defer close(b.done)
		if err := b.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger().Error("bridge serve failed", "error", err)
		}
		b.handlers.Wait()
	}()
	go func() {
		<-b.ctx.Done()
		b.shutdown()
	}()

	b.logger().Info("bridge started", "listen_addr", listener.Addr().String())
	return nil
}

// Addr returns the listener's address, useful when binding to port 0.
// Returns nil if the bridge has not been started.
func (b *Bridge) Addr() net.Addr {
	if b.listener == nil {
		return nil
	}
	return b.listener.Addr()
}

// Stop shuts down the bridge, closing the listener and every peer and
// waiting for connection handlers to drain.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.done != nil {
		<-b.done
	}
}

// Wait blocks until the bridge has stopped.
func (b *Bridge) Wait() {
	if b.done != nil {
		<-b.done
	}
}

// shutdown closes the HTTP server and every peer. Hijacked WebSocket
// connections are not closed by http.Server.Close.
func (b *Bridge) shutdown() {
	b.server.Close()

	b.mu.Lock()
	peers := make([]*peer, 0, len(b.peers))
	for p := range b.peers {
		peers = append(peers, p)
	}
	b.mu.Unlock()
	for _, p := range peers {
		p.conn.Close()
	}
	b.logger().Info("bridge stopped")
}

// PeerCount returns the number of connected peers.
func (b *Bridge) PeerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.peers)
}

// Broadcast writes screen-info for snapshot to every peer. A peer whose
// write fails is disconnected.
func (b *Bridge) Broadcast(snapshot calibration.Snapshot) {
	if !snapshot.Known() {
		return
	}
	data, err := protocol.Encode(protocol.ScreenInfoFromSnapshot(snapshot))
	if err != nil {
		b.logger().Error("encoding screen-info", "error", err)
		return
	}

	b.mu.Lock()
	peers := make([]*peer, 0, len(b.peers))
	for p := range b.peers {
		peers = append(peers, p)
	}
	b.mu.Unlock()

	for _, p := range peers {
		if err := p.send(data); err != nil {
			b.logger().Debug("dropping peer after failed broadcast", "peer_id", p.id, "error", err)
			b.removePeer(p)
			p.conn.Close()
		}
	}
	b.logger().Debug("broadcast screen-info", "peers", len(peers))
}

// addPeer registers p and counts its handler, unless the bridge is
// shutting down. The check and the Add happen under mu so shutdown
// never waits on a handler it did not see.
func (b *Bridge) addPeer(p *peer) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx.Err() != nil {
		return false
	}
	b.peers[p] = struct{}{}
	b.handlers.Add(1)
	return true
}

func (b *Bridge) removePeer(p *peer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.peers, p)
}

func (b *Bridge) maxMessageBytes() int {
	if b.MaxMessageBytes > 0 {
		return b.MaxMessageBytes
	}
	return DefaultMaxMessageBytes
}

func (b *Bridge) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	conn.MaxPayloadBytes = b.maxMessageBytes()
	p := &peer{id: b.nextID.Add(1), conn: conn}
	logger := b.logger().With("peer_id", p.id)

	if !b.addPeer(p) {
		return
	}
	defer b.handlers.Done()
	defer b.removePeer(p)
	logger.Debug("peer connected", "remote_addr", conn.Request().RemoteAddr)

	if snapshot, ok := b.Calibration.Get(); ok {
		b.sendScreenInfo(p, snapshot, logger)
	}

	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				logger.Warn("dropping oversized message", "limit_bytes", conn.MaxPayloadBytes)
				continue
			}
			if !netutil.IsExpectedCloseError(err) {
				logger.Debug("peer read failed", "error", err)
			}
			logger.Debug("peer disconnected")
			return
		}

		message, err := protocol.DecodeWire(data)
		if err != nil {
			logger.Warn("dropping malformed message", "error", err)
			continue
		}
		b.dispatch(p, message, logger)
	}
}

func (b *Bridge) dispatch(p *peer, message protocol.Wire, logger *slog.Logger) {
	switch message := message.(type) {
	case protocol.FrameData:
		logger.Debug("frame received",
			"name", message.Frame.Name,
			"bytes", len(message.Frame.Payload),
		)
		if err := b.Sink.Receive(b.ctx, message.Frame); err != nil {
			logger.Error("storing frame failed", "name", message.Frame.Name, "error", err)
		}
	case protocol.GetScreenInfo:
		snapshot, ok := b.Calibration.Get()
		if !ok {
			logger.Debug("get-screen-info before any calibration, not answering")
			return
		}
		b.sendScreenInfo(p, snapshot, logger)
	case protocol.FrameResize:
		if err := b.Sink.Resize(b.ctx, message.Frame); err != nil {
			logger.Error("forwarding resize failed", "name", message.Frame.Name, "error", err)
		}
	case protocol.ScreenInfo:
		logger.Warn("dropping screen-info sent by a peer")
	}
}

func (b *Bridge) sendScreenInfo(p *peer, snapshot calibration.Snapshot, logger *slog.Logger) {
	data, err := protocol.Encode(protocol.ScreenInfoFromSnapshot(snapshot))
	if err != nil {
		logger.Error("encoding screen-info", "error", err)
		return
	}
	if err := p.send(data); err != nil {
		logger.Debug("screen-info write failed", "error", err)
		p.conn.Close()
	}
}
