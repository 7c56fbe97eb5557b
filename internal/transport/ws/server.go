package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"

	"github.com/omochice/frame-chat/internal/chat"
)

// HandshakeTimeout bounds the HTTP upgrade of an accepted connection.
const HandshakeTimeout = 10 * time.Second

var (
	// ErrHandshake is returned by Accept when a peer failed the upgrade.
	// The listener stays usable.
	ErrHandshake = errors.New("websocket handshake failed")

	errTextFrame = errors.New("text frames are not supported")
)

// Listener accepts WebSocket peers on a dedicated TCP port. Each upgrade
// runs on its own goroutine so a slow handshake does not hold up others.
type Listener struct {
	listener net.Listener
	results  chan acceptResult
	done     chan struct{}
	once     sync.Once
}

type acceptResult struct {
	conn chat.Conn
	err  error
}

// Listen starts listening on address.
func Listen(address string) (*Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to start WebSocket listener: %w", err)
	}
	l := &Listener{
		listener: listener,
		results:  make(chan acceptResult),
		done:     make(chan struct{}),
	}
	go l.acceptLoop()
	return l, nil
}

// Accept waits for the next upgraded peer. A failed upgrade is reported
// as ErrHandshake and leaves the listener usable.
func (l *Listener) Accept() (chat.Conn, error) {
	select {
	case r := <-l.results:
		return r.conn, r.err
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.deliver(acceptResult{err: err})
			continue
		}
		go l.upgrade(conn)
	}
}

func (l *Listener) upgrade(conn net.Conn) {
	_ = conn.SetDeadline(time.Now().Add(HandshakeTimeout))
	if _, err := ws.Upgrade(conn); err != nil {
		conn.Close()
		l.deliver(acceptResult{err: fmt.Errorf("%w: %s: %v", ErrHandshake, conn.RemoteAddr(), err)})
		return
	}
	_ = conn.SetDeadline(time.Time{})

	if !l.deliver(acceptResult{conn: NewServerConn(conn)}) {
		conn.Close()
	}
}

// deliver hands r to Accept. It returns false once the listener is closed.
func (l *Listener) deliver(r acceptResult) bool {
	select {
	case l.results <- r:
		return true
	case <-l.done:
		return false
	}
}

// Close stops listening. Blocked Accept calls return net.ErrClosed and
// upgrades still in flight are dropped.
func (l *Listener) Close() error {
	l.once.Do(func() { close(l.done) })
	return l.listener.Close()
}

// Addr returns the listening address.
func (l *Listener) Addr() string {
	return l.listener.Addr().String()
}

// Dial connects to a WebSocket chat server, e.g. "ws://127.0.0.1:11112".
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return NewClientConn(conn, br), nil
}
