package server

import (
	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/pkg/protocol"
)

// Event is something that happened to a peer, consumed by the Dispatcher.
// The concrete types are Connected, Disconnected, Received and ClientError.
type Event interface {
	event()
}

// Connected is emitted once by a worker when its peer is accepted.
type Connected struct {
	Address string
	Sender  chat.Sender
}

// Disconnected is emitted when a worker stops reading its peer. Sender
// identifies which connection ended so that a stale event cannot remove a
// newer record registered under the same address.
type Disconnected struct {
	Address string
	Sender  chat.Sender
}

// Received carries a message read from a peer.
type Received struct {
	Address string
	Message protocol.Message
}

// ClientError reports a peer that sent a well-framed but undecodable
// payload.
type ClientError struct {
	Address string
	Sender  chat.Sender
	Err     error
}

// shutdown asks the dispatcher to close every connection it knows about,
// now and from then on.
type shutdown struct{}

// peersQuery asks the dispatcher for the registered addresses.
type peersQuery struct {
	reply chan<- []string
}

func (Connected) event()    {}
func (Disconnected) event() {}
func (Received) event()     {}
func (ClientError) event()  {}
func (shutdown) event()     {}
func (peersQuery) event()   {}
