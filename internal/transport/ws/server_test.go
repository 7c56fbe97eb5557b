package ws_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	wstransport "github.com/omochice/frame-chat/internal/transport/ws"
	"github.com/omochice/frame-chat/pkg/protocol"
)

func TestListener_AcceptAndDial(t *testing.T) {
	req := require.New(t)

	listener, err := wstransport.Listen("127.0.0.1:0")
	req.NoError(err)
	defer listener.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			accepted <- err
			return
		}
		defer conn.Close()
		msg, err := conn.Receive(context.Background())
		if err != nil {
			accepted <- err
			return
		}
		accepted <- conn.Send(context.Background(), protocol.NewText("echo: "+msg.Text))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := wstransport.Dial(ctx, "ws://"+listener.Addr())
	req.NoError(err)
	defer client.Close()

	req.NoError(client.Send(context.Background(), protocol.NewText("ping")))

	msg, err := client.Receive(context.Background())
	req.NoError(err)
	req.Equal("echo: ping", msg.Text)
	req.NoError(<-accepted)
}

func TestListener_RejectsPlainTCP(t *testing.T) {
	req := require.New(t)

	listener, err := wstransport.Listen("127.0.0.1:0")
	req.NoError(err)
	defer listener.Close()

	go func() {
		conn, err := net.Dial("tcp", listener.Addr())
		if err != nil {
			return
		}
		_ = protocol.WriteFrame(conn, protocol.NewText("not http"))
		conn.Close()
	}()

	_, err = listener.Accept()
	req.ErrorIs(err, wstransport.ErrHandshake)
}

func TestListener_Close(t *testing.T) {
	listener, err := wstransport.Listen("127.0.0.1:0")
	require.NoError(t, err)

	require.NoError(t, listener.Close())

	_, err = listener.Accept()
	require.Error(t, err)
}

func TestListener_SilentPeerDoesNotBlockOthers(t *testing.T) {
	req := require.New(t)

	listener, err := wstransport.Listen("127.0.0.1:0")
	req.NoError(err)
	defer listener.Close()

	// connects but never sends the HTTP upgrade request
	silent, err := net.Dial("tcp", listener.Addr())
	req.NoError(err)
	defer silent.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			conn.Close()
		}
		accepted <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	client, err := wstransport.Dial(ctx, "ws://"+listener.Addr())
	req.NoError(err)
	defer client.Close()

	select {
	case err := <-accepted:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("upgrade of the second peer waited for the silent one")
	}
}

func TestListener_CloseUnblocksAccept(t *testing.T) {
	listener, err := wstransport.Listen("127.0.0.1:0")
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		_, err := listener.Accept()
		errChan <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, listener.Close())

	select {
	case err := <-errChan:
		require.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Accept did not return after Close")
	}
}
