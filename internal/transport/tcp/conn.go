// Package tcp provides the length-prefixed frame transport over TCP.
package tcp

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/omochice/frame-chat/pkg/protocol"
)

// Conn adapts net.Conn to the chat.Conn interface using protocol frames.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// Receive implements chat.Receiver.
// Reads exactly one frame from the TCP stream.
func (c *Conn) Receive(ctx context.Context) (protocol.Message, error) {
	return protocol.ReadFrame(c.reader)
}

// Send implements chat.Sender.
// The context deadline, if any, bounds the write.
func (c *Conn) Send(ctx context.Context, msg protocol.Message) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return protocol.WriteFrame(c.conn, msg)
}

// Close implements chat.Sender.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Sender.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
