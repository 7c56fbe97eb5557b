// Package client implements the interactive chat client: a stdin reader,
// a network reader, a processor, a downloader and an output writer that
// cooperate only through queues.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/internal/queue"
	"github.com/omochice/frame-chat/pkg/protocol"
)

// ErrConnectionLost is returned by Run when reading from the server
// failed. The client does not reconnect.
var ErrConnectionLost = errors.New("connection to server lost")

// Config configures a client session.
type Config struct {
	// FilesDir receives downloaded files.
	FilesDir string
	// ImagesDir receives downloaded images, converted to PNG.
	ImagesDir string
}

type event interface {
	event()
}

type commandEvent struct{ Command Command }

type messageEvent struct{ Message protocol.Message }

type networkLost struct{ Err error }

func (commandEvent) event() {}
func (messageEvent) event() {}
func (networkLost) event()  {}

// gate guards sends of the stdin reader, which may stay blocked on a read
// after the session ended.
type gate struct {
	mu     sync.Mutex
	closed bool
}

func (g *gate) do(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	return true
}

func (g *gate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// Client is one chat session over an established connection.
type Client struct {
	conn       chat.Conn
	downloader *Downloader
	writer     *Writer
	log        *slog.Logger
}

// New creates a client session. Received text is written to stdout,
// failures to stderr.
func New(conn chat.Conn, stdout, stderr io.Writer, cfg Config, log *slog.Logger) *Client {
	return &Client{
		conn:       conn,
		downloader: NewDownloader(cfg.FilesDir, cfg.ImagesDir, log.With("unit", "downloader")),
		writer:     NewWriter(stdout, stderr),
		log:        log,
	}
}

// Run reads commands from stdin until ".quit", end of input or ctx is
// done. It returns ErrConnectionLost when the server connection fails.
// The connection is closed on return.
func (c *Client) Run(ctx context.Context, stdin io.Reader) error {
	events := queue.New[event]()
	downloads := queue.New[protocol.Message]()
	output := queue.New[Result]()
	input := &gate{}

	go c.readInput(stdin, events.In(), output.In(), input)

	netDone := make(chan struct{})
	go func() {
		defer close(netDone)
		c.readNetwork(events.In())
	}()

	downloaderDone := make(chan struct{})
	go func() {
		defer close(downloaderDone)
		c.downloader.Run(downloads.Out(), output.In())
	}()

	writerDone := make(chan error, 1)
	go func() {
		writerDone <- c.writer.Run(output.Out())
	}()

	err := c.process(ctx, events.Out(), downloads.In(), output.In())

	input.close()
	_ = c.conn.Close()
	<-netDone
	events.Close()
	for range events.Out() {
	}

	downloads.Close()
	<-downloaderDone
	output.Close()
	if werr := <-writerDone; werr != nil {
		c.log.Error("Output failed", "error", werr)
	}
	return err
}

func (c *Client) readInput(stdin io.Reader, events chan<- event, output chan<- Result, input *gate) {
	lines := NewLineReader(stdin)
	for lines.Scan() {
		cmd, err := ParseCommand(lines.Line())
		if err != nil {
			if !input.do(func() { output <- Failure(err) }) {
				return
			}
			continue
		}
		if !input.do(func() { events <- commandEvent{Command: cmd} }) {
			return
		}
		if cmd.Type == CommandQuit {
			return
		}
	}
	if err := lines.Err(); err != nil {
		input.do(func() { output <- Failure(fmt.Errorf("failed to read input: %w", err)) })
	}
	// end of input quits
	input.do(func() { events <- commandEvent{Command: Command{Type: CommandQuit}} })
}

func (c *Client) readNetwork(events chan<- event) {
	for {
		msg, err := c.conn.Receive(context.Background())
		if err != nil {
			events <- networkLost{Err: err}
			return
		}
		events <- messageEvent{Message: msg}
	}
}

func (c *Client) process(ctx context.Context, events <-chan event, downloads chan<- protocol.Message, output chan<- Result) error {
	for {
		var ev event
		select {
		case <-ctx.Done():
			return nil
		case ev = <-events:
		}

		switch ev := ev.(type) {
		case messageEvent:
			if ev.Message.Type == protocol.MessageTypeText {
				output <- Success("> %s", ev.Message.Text)
				continue
			}
			downloads <- ev.Message
		case commandEvent:
			if ev.Command.Type == CommandQuit {
				c.log.Debug("Quit requested")
				return nil
			}
			if err := c.send(ctx, ev.Command); err != nil {
				output <- Failure(err)
			}
		case networkLost:
			c.log.Error("Failed to read from server", "error", ev.Err)
			return fmt.Errorf("%w: %v", ErrConnectionLost, ev.Err)
		}
	}
}

func (c *Client) send(ctx context.Context, cmd Command) error {
	msg, err := cmd.ToMessage()
	if err != nil {
		return err
	}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	c.log.Debug("Message sent", "message", msg.String())
	return nil
}
