// Package server implements the broadcast chat server: connection workers
// feed a single dispatcher that owns the peer registry, and a responder
// performs every outbound write.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/internal/queue"
	"github.com/omochice/frame-chat/internal/transport/tcp"
	wstransport "github.com/omochice/frame-chat/internal/transport/ws"
)

// DefaultPoolSize is the number of connections served concurrently when
// Config.PoolSize is not set.
const DefaultPoolSize = 8

// Config configures a Server.
type Config struct {
	// Address is the TCP listening address, e.g. "127.0.0.1:11111".
	Address string
	// WSAddress enables the WebSocket listener when not empty.
	WSAddress string
	// PoolSize bounds the number of connection workers. Accepting blocks
	// once every worker is busy.
	PoolSize int
	// WriteTimeout bounds a single outbound write. Zero means no limit.
	WriteTimeout time.Duration
}

type listener interface {
	Accept() (chat.Conn, error)
	Close() error
	Addr() string
}

// Server represents a broadcast chat server
type Server struct {
	cfg Config
	log *slog.Logger

	tcp *tcp.Listener
	ws  *wstransport.Listener

	pool       *Pool
	events     *queue.Unbounded[Event]
	jobs       *queue.Unbounded[Job]
	dispatcher *Dispatcher
	responder  *Responder

	ctx    context.Context
	cancel context.CancelFunc

	acceptWg sync.WaitGroup
	loopWg   sync.WaitGroup

	// stateMu guards the event queue against sends after Stop closed it.
	stateMu   sync.RWMutex
	listening bool
	stopped   bool
}

// New creates a new Server instance
func New(cfg Config, log *slog.Logger) *Server {
	if cfg.PoolSize < 1 {
		cfg.PoolSize = DefaultPoolSize
	}
	ctx, cancel := context.WithCancel(context.Background())

	events := queue.New[Event]()
	jobs := queue.New[Job]()

	return &Server{
		cfg:        cfg,
		log:        log,
		pool:       NewPool(cfg.PoolSize),
		events:     events,
		jobs:       jobs,
		dispatcher: NewDispatcher(events.Out(), jobs.In(), log.With("unit", "dispatcher")),
		responder:  NewResponder(jobs.Out(), cfg.WriteTimeout, log.With("unit", "responder")),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Listen binds the listeners and starts the dispatcher and responder.
// Connections are not accepted until Serve is called.
func (s *Server) Listen() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.stopped {
		return errors.New("server stopped")
	}
	if s.listening {
		return errors.New("server already listening")
	}

	tcpListener, err := tcp.Listen(s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.tcp = tcpListener
	s.log.Info("TCP server started", "address", tcpListener.Addr())

	if s.cfg.WSAddress != "" {
		wsListener, err := wstransport.Listen(s.cfg.WSAddress)
		if err != nil {
			tcpListener.Close()
			return fmt.Errorf("failed to start server: %w", err)
		}
		s.ws = wsListener
		s.log.Info("WebSocket server started", "address", wsListener.Addr())
	}

	s.loopWg.Add(2)
	go func() {
		defer s.loopWg.Done()
		s.dispatcher.Run()
		s.jobs.Close()
	}()
	go func() {
		defer s.loopWg.Done()
		s.responder.Run(context.Background())
	}()

	s.listening = true
	return nil
}

// Serve accepts connections until Stop is called. It returns nil after a
// clean stop.
func (s *Server) Serve() error {
	s.stateMu.RLock()
	listening := s.listening
	s.stateMu.RUnlock()
	if !listening {
		return errors.New("server is not listening")
	}

	s.acceptWg.Add(1)
	go s.acceptLoop(s.tcp)
	if s.ws != nil {
		s.acceptWg.Add(1)
		go s.acceptLoop(s.ws)
	}

	<-s.ctx.Done()
	return nil
}

// Start binds the listeners and serves until Stop is called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop stops accepting, closes every peer connection and waits for all
// workers, the dispatcher and the responder to finish.
func (s *Server) Stop() {
	s.stateMu.Lock()
	if s.stopped {
		s.stateMu.Unlock()
		return
	}
	s.stopped = true
	listening := s.listening
	s.stateMu.Unlock()

	s.cancel()
	if !listening {
		s.events.Close()
		s.jobs.Close()
		return
	}

	s.tcp.Close()
	if s.ws != nil {
		s.ws.Close()
	}
	s.acceptWg.Wait()

	s.events.In() <- shutdown{}
	s.pool.Wait()

	s.stateMu.Lock()
	s.events.Close()
	s.stateMu.Unlock()

	s.loopWg.Wait()
	s.log.Info("Server stopped")
}

// Addr returns the TCP listening address
func (s *Server) Addr() string {
	if s.tcp != nil {
		return s.tcp.Addr()
	}
	return ""
}

// WSAddr returns the WebSocket listening address, if enabled
func (s *Server) WSAddr() string {
	if s.ws != nil {
		return s.ws.Addr()
	}
	return ""
}

// ClientCount returns the number of registered peers
func (s *Server) ClientCount() int {
	return s.dispatcher.Len()
}

// Peers returns the registered peer addresses, sorted. It returns nil once
// the server is stopped.
func (s *Server) Peers() []string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if !s.listening || s.stopped {
		return nil
	}

	reply := make(chan []string, 1)
	s.events.In() <- peersQuery{reply: reply}
	return <-reply
}

func (s *Server) acceptLoop(l listener) {
	defer s.acceptWg.Done()

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			if errors.Is(err, wstransport.ErrHandshake) {
				s.log.Warn("Rejected connection", "error", err)
				continue
			}
			s.log.Error("Failed to accept connection", "error", err)
			continue
		}

		// blocks while the pool is saturated
		err = s.pool.Submit(s.ctx, func() {
			serveConn(conn, s.events.In(), s.log)
		})
		if err != nil {
			conn.Close()
			return
		}
	}
}
