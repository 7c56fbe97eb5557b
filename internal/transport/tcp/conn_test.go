package tcp_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/internal/transport/tcp"
	"github.com/omochice/frame-chat/pkg/protocol"
)

func TestConn_ImplementsInterface(t *testing.T) {
	var _ chat.Conn = (*tcp.Conn)(nil)
}

func TestConn_Receive(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client)

	go func() {
		_ = protocol.WriteFrame(server, protocol.NewText("test message"))
		server.Close()
	}()

	msg, err := conn.Receive(context.Background())
	require.NoError(t, err)
	require.True(t, protocol.NewText("test message").Equal(msg))

	_, err = conn.Receive(context.Background())
	require.ErrorIs(t, err, protocol.ErrShortLength)
}

func TestConn_Send(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client)

	errCh := make(chan error, 1)
	go func() {
		errCh <- conn.Send(context.Background(), protocol.NewFile("a.txt", []byte("hello")))
	}()

	msg, err := protocol.ReadFrame(server)
	require.NoError(t, err)
	require.True(t, protocol.NewFile("a.txt", []byte("hello")).Equal(msg))
	require.NoError(t, <-errCh)
}

func TestConn_SendDeadline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client)

	// nobody reads from server, so the write blocks until the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := conn.Send(ctx, protocol.NewText("stuck"))
	require.Error(t, err)
}

func TestConn_Close(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	conn := tcp.NewConn(client)

	require.NoError(t, conn.Close())

	_, err := client.Read(make([]byte, 1))
	require.Error(t, err)
}

func TestConn_RemoteAddr(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client)

	require.NotEmpty(t, conn.RemoteAddr())
}
