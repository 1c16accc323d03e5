// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/codec"
	"github.com/gridcast/gridcast/lib/netutil"
	"github.com/gridcast/gridcast/lib/protocol"
)

// Handler is the daemon side of the renderer channel.
type Handler interface {
	// GridSystemUpdated receives a snapshot published by a renderer.
	// An error is logged; the renderer gets no reply either way.
	GridSystemUpdated(snapshot calibration.Snapshot) error

	// GridSystem returns the current calibration, if any.
	GridSystem() (calibration.Snapshot, bool)

	// ScreenDPI returns the display DPI reported to renderers.
	ScreenDPI() float64
}

// writeTimeout bounds one envelope write to a renderer. A renderer that
// stops reading is disconnected rather than stalling the daemon.
const writeTimeout = 10 * time.Second

// Server accepts renderer connections on a Unix socket. Each
// connection is long-lived: the server reads requests from it and
// pushes notifications to it until either side closes.
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger

	listener net.Listener

	mu      sync.Mutex
	clients map[*serverConn]struct{}
	closed  bool

	// activeConnections tracks connection handlers so Close can wait
	// for them.
	activeConnections sync.WaitGroup
}

type serverConn struct {
	conn    net.Conn
	writeMu sync.Mutex
	encoder *codec.Encoder
}

func (c *serverConn) send(message Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.encoder.Encode(message)
}

// NewServer returns a server for socketPath. A nil logger means
// slog.Default().
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		clients:    make(map[*serverConn]struct{}),
	}
}

// Listen binds the socket. Any existing socket file at the path is
// removed first.
func (s *Server) Listen() error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ipc: removing stale socket %s: %w", s.socketPath, err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("ipc: listening on %s: %w", s.socketPath, err)
	}
	s.listener = listener
	s.logger.Info("renderer socket listening", "path", s.socketPath)
	return nil
}

// Serve accepts connections until ctx is cancelled or Close is called,
// then waits for connection handlers to finish. Listen must have
// succeeded first.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("ipc: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("renderer accept failed", "error", err)
			continue
		}

		client := &serverConn{conn: conn, encoder: codec.NewEncoder(conn)}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			break
		}
		s.clients[client] = struct{}{}
		s.mu.Unlock()

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(client)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// Close stops accepting, disconnects every renderer and removes the
// socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clients := make([]*serverConn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
		os.Remove(s.socketPath)
	}
	for _, client := range clients {
		client.conn.Close()
	}
	return err
}

// ClientCount returns the number of connected renderers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// NotifyFrame pushes a frame-data-update to every renderer.
func (s *Server) NotifyFrame(frame StoredFrame) {
	s.broadcast(Message{
		Type:   TypeFrameDataUpdate,
		Update: &FrameUpdate{Type: FrameUpdateKind, Frame: frame},
	})
}

// NotifyResize pushes a frame-resize-update to every renderer.
func (s *Server) NotifyResize(size protocol.FrameSize) {
	s.broadcast(Message{Type: TypeFrameResizeUpdate, Resize: &size})
}

func (s *Server) broadcast(message Message) {
	s.mu.Lock()
	clients := make([]*serverConn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	if len(clients) == 0 {
		s.logger.Debug("no renderer connected, dropping notification", "type", message.Type)
		return
	}
	for _, client := range clients {
		if err := client.send(message); err != nil {
			s.logger.Warn("renderer write failed, disconnecting", "type", message.Type, "error", err)
			client.conn.Close()
		}
	}
}

func (s *Server) handleConnection(client *serverConn) {
	defer func() {
		client.conn.Close()
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		s.logger.Debug("renderer disconnected")
	}()
	s.logger.Debug("renderer connected")

	decoder := codec.NewDecoder(client.conn)
	for {
		var message Message
		if err := decoder.Decode(&message); err != nil {
			if !netutil.IsExpectedCloseError(err) {
				s.logger.Warn("renderer stream unreadable, disconnecting", "error", err)
			}
			return
		}
		if err := message.Validate(); err != nil {
			s.logger.Warn("dropping renderer message", "error", err)
			continue
		}
		s.dispatch(client, message)
	}
}

func (s *Server) dispatch(client *serverConn, message Message) {
	var reply *Message
	switch message.Type {
	case TypeGridSystemUpdated:
		if err := s.handler.GridSystemUpdated(*message.Snapshot); err != nil {
			s.logger.Warn("renderer published invalid calibration", "error", err)
		}
	case TypeRequestGridSystem:
		reply = &Message{Type: TypeGridSystemInfo}
		if snapshot, ok := s.handler.GridSystem(); ok {
			reply.Snapshot = &snapshot
		}
	case TypeGetScreenDPI:
		reply = &Message{Type: TypeScreenDPI, RequestID: message.RequestID, DPI: s.handler.ScreenDPI()}
	default:
		s.logger.Warn("dropping daemon-bound message of renderer-bound type", "type", message.Type)
	}

	if reply == nil {
		return
	}
	if err := client.send(*reply); err != nil {
		s.logger.Warn("renderer reply failed", "type", reply.Type, "error", err)
		client.conn.Close()
	}
}
