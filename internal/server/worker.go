package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/pkg/protocol"
)

// serveConn is the connection worker: the only reader of conn. Frames are
// forwarded in arrival order; the first failure ends the worker.
func serveConn(conn chat.Conn, events chan<- Event, log *slog.Logger) {
	address := conn.RemoteAddr()
	log = log.With("session", uuid.NewString(), "remote", address)

	events <- Connected{Address: address, Sender: conn}

	for {
		msg, err := conn.Receive(context.Background())
		if err == nil {
			events <- Received{Address: address, Message: msg}
			continue
		}

		if protocol.IsStreamIntact(err) {
			// the responder closes the connection after the diagnostic
			events <- ClientError{Address: address, Sender: conn, Err: err}
		} else {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Info("Connection read failed", "error", err)
			}
			_ = conn.Close()
		}
		events <- Disconnected{Address: address, Sender: conn}
		log.Debug("Worker stopped")
		return
	}
}
