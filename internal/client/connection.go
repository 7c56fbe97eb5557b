package client

import (
	"context"
	"strings"

	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/internal/transport/tcp"
	wstransport "github.com/omochice/frame-chat/internal/transport/ws"
)

// Dial connects to a chat server. An address starting with "ws://" or
// "wss://" selects the WebSocket transport; anything else is a TCP
// host:port.
func Dial(ctx context.Context, address string) (chat.Conn, error) {
	if IsWebSocket(address) {
		conn, err := wstransport.Dial(ctx, address)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	conn, err := tcp.Dial(address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// IsWebSocket reports whether address selects the WebSocket transport.
func IsWebSocket(address string) bool {
	return strings.HasPrefix(address, "ws://") || strings.HasPrefix(address, "wss://")
}
