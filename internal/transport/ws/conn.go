// Package ws provides the WebSocket transport. Each binary WebSocket
// message carries one encoded protocol.Message; the WebSocket framing
// replaces the length prefix used on raw TCP.
package ws

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/frame-chat/pkg/protocol"
)

const closeTimeout = time.Second

// Conn adapts a WebSocket connection to the chat.Conn interface.
type Conn struct {
	conn   net.Conn
	reader io.Reader
	state  ws.State

	// writeMu serialises data frames from Send with the control frames
	// (pong, close) written while reading.
	writeMu sync.Mutex
}

// NewServerConn wraps an upgraded server-side connection.
func NewServerConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: conn, state: ws.StateServerSide}
}

// NewClientConn wraps a dialed client-side connection. br holds bytes the
// handshake read past the HTTP response and may be nil.
func NewClientConn(conn net.Conn, br *bufio.Reader) *Conn {
	c := &Conn{conn: conn, reader: conn, state: ws.StateClientSide}
	if br != nil {
		c.reader = io.MultiReader(br, conn)
	}
	return c
}

type lockedWriter struct{ c *Conn }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.c.writeMu.Lock()
	defer w.c.writeMu.Unlock()
	return w.c.conn.Write(p)
}

// Receive implements chat.Receiver.
// Control frames are answered transparently; a text frame is rejected as
// a malformed payload.
func (c *Conn) Receive(ctx context.Context) (protocol.Message, error) {
	rw := struct {
		io.Reader
		io.Writer
	}{c.reader, lockedWriter{c}}

	data, op, err := wsutil.ReadData(rw, c.state)
	if err != nil {
		return protocol.Message{}, &protocol.DecodeError{Kind: protocol.ErrShortLength, Err: err}
	}
	if op != ws.OpBinary {
		return protocol.Message{}, &protocol.DecodeError{Kind: protocol.ErrMalformed, Err: errTextFrame}
	}
	return protocol.Decode(data)
}

// Send implements chat.Sender.
func (c *Conn) Send(ctx context.Context, msg protocol.Message) error {
	payload, err := msg.Encode()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return wsutil.WriteMessage(c.conn, c.state, ws.OpBinary, payload)
}

// Close implements chat.Sender.
// A close frame is sent on a best-effort basis.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(closeTimeout))
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
	_ = wsutil.WriteMessage(c.conn, c.state, ws.OpClose, body)
	c.writeMu.Unlock()
	return c.conn.Close()
}

// RemoteAddr implements chat.Sender.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
