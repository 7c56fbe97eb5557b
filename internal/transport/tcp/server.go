package tcp

import (
	"fmt"
	"net"

	"github.com/omochice/frame-chat/internal/chat"
)

// Listener accepts TCP peers and wraps them as chat connections.
type Listener struct {
	listener net.Listener
}

// Listen starts listening on address.
func Listen(address string) (*Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener: %w", err)
	}
	return &Listener{listener: listener}, nil
}

// Accept waits for the next TCP peer.
func (l *Listener) Accept() (chat.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(conn), nil
}

// Close stops listening. Blocked Accept calls return an error.
func (l *Listener) Close() error {
	return l.listener.Close()
}

// Addr returns the listening address.
func (l *Listener) Addr() string {
	return l.listener.Addr().String()
}

// Dial connects to a TCP chat server.
func Dial(address string) (*Conn, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return NewConn(conn), nil
}
