// Package chat provides the transport-agnostic connection capabilities
// shared by the server and the client.
package chat

//go:generate mockgen -source=conn.go -destination=../mocks/mock_conn.go -package=mocks

import (
	"context"

	"github.com/omochice/frame-chat/pkg/protocol"
)

// Receiver is the read half of a connection.
type Receiver interface {
	// Receive reads exactly one message. It returns a *protocol.DecodeError
	// (wrapping io.EOF on a clean close) when no whole message could be read.
	Receive(ctx context.Context) (protocol.Message, error)
}

// Sender is the write half of a connection.
type Sender interface {
	// Send writes one message.
	Send(ctx context.Context, msg protocol.Message) error

	// RemoteAddr returns the remote address used as the peer identity.
	RemoteAddr() string

	// Close closes the underlying connection in both directions.
	Close() error
}

// Conn is a duplex connection. Both halves are derived once at accept or
// dial time; the read half must only be used by a single goroutine.
type Conn interface {
	Receiver
	Sender
}
