// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/lib/codec"
	"github.com/gridcast/gridcast/lib/netutil"
)

// Client is the renderer side of the channel.
//
// Daemon-pushed messages (grid-system-info, frame-data-update,
// frame-resize-update) are delivered in order on [Client.Messages].
// Delivery is queued without bound, so a consumer may call
// [Client.ScreenDPI] while handling a message.
type Client struct {
	conn   net.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	encoder *codec.Encoder

	mu       sync.Mutex
	nextID   uint64
	pending  map[uint64]chan float64
	queue    []Message
	queued   chan struct{}
	closed   bool
	readDone chan struct{}

	messages chan Message
}

// Dial connects to the daemon's renderer socket. A nil logger means
// slog.Default().
func Dial(ctx context.Context, socketPath string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("ipc: connecting to %s: %w", socketPath, err)
	}

	client := &Client{
		conn:     conn,
		logger:   logger,
		encoder:  codec.NewEncoder(conn),
		pending:  make(map[uint64]chan float64),
		queued:   make(chan struct{}, 1),
		readDone: make(chan struct{}),
		messages: make(chan Message),
	}
	go client.readLoop()
	go client.deliverLoop()
	return client, nil
}

// Messages returns the daemon-pushed messages. The channel is closed
// after the connection ends and every queued message was delivered.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Done is closed when the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.readDone
}

// PublishGridSystem sends grid-system-updated.
func (c *Client) PublishGridSystem(snapshot calibration.Snapshot) error {
	return c.send(Message{Type: TypeGridSystemUpdated, Snapshot: &snapshot})
}

// RequestGridSystem sends request-grid-system. The answer arrives on
// Messages as grid-system-info.
func (c *Client) RequestGridSystem() error {
	return c.send(Message{Type: TypeRequestGridSystem})
}

// ScreenDPI asks the daemon for the display DPI and blocks until the
// matching reply arrives, ctx ends, or the connection closes.
func (c *Client) ScreenDPI(ctx context.Context) (float64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.nextID++
	requestID := c.nextID
	reply := make(chan float64, 1)
	c.pending[requestID] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	if err := c.send(Message{Type: TypeGetScreenDPI, RequestID: requestID}); err != nil {
		return 0, err
	}

	select {
	case dpi := <-reply:
		return dpi, nil
	case <-c.readDone:
		// The reply may have raced the close.
		select {
		case dpi := <-reply:
			return dpi, nil
		default:
		}
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close ends the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(message Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.encoder.Encode(message); err != nil {
		if netutil.IsExpectedCloseError(err) {
			return ErrClosed
		}
		return fmt.Errorf("ipc: sending %s: %w", message.Type, err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.readDone)
		c.signal()
	}()

	decoder := codec.NewDecoder(c.conn)
	for {
		var message Message
		if err := decoder.Decode(&message); err != nil {
			if !netutil.IsExpectedCloseError(err) {
				c.logger.Warn("daemon stream unreadable", "error", err)
			}
			return
		}
		if err := message.Validate(); err != nil {
			c.logger.Warn("dropping daemon message", "error", err)
			continue
		}

		if message.Type == TypeScreenDPI {
			c.mu.Lock()
			reply, ok := c.pending[message.RequestID]
			c.mu.Unlock()
			if !ok {
				c.logger.Debug("screen-dpi reply for unknown request", "request_id", message.RequestID)
				continue
			}
			select {
			case reply <- message.DPI:
			default:
			}
			continue
		}

		c.mu.Lock()
		c.queue = append(c.queue, message)
		c.mu.Unlock()
		c.signal()
	}
}

func (c *Client) signal() {
	select {
	case c.queued <- struct{}{}:
	default:
	}
}

// deliverLoop moves queued messages to the Messages channel so the
// read loop never waits on the consumer.
func (c *Client) deliverLoop() {
	defer close(c.messages)
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			<-c.queued
			continue
		}
		message := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.messages <- message
	}
}
