package server

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/omochice/frame-chat/pkg/protocol"
)

// Dispatcher is the single owner of the Registry. It turns peer events
// into send jobs for the Responder.
type Dispatcher struct {
	registry *Registry
	events   <-chan Event
	jobs     chan<- Job
	log      *slog.Logger

	closing bool
	count   atomic.Int64
}

// NewDispatcher creates a dispatcher reading events and emitting jobs.
func NewDispatcher(events <-chan Event, jobs chan<- Job, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: NewRegistry(),
		events:   events,
		jobs:     jobs,
		log:      log,
	}
}

// Run handles events until the event channel is closed.
func (d *Dispatcher) Run() {
	for ev := range d.events {
		d.Handle(ev)
	}
	d.log.Debug("Event channel closed, dispatcher stopped")
}

// Len returns the number of registered peers. Safe to call from any
// goroutine.
func (d *Dispatcher) Len() int {
	return int(d.count.Load())
}

// Handle applies one event. It must only be called from the goroutine
// running the dispatcher.
func (d *Dispatcher) Handle(ev Event) {
	switch ev := ev.(type) {
	case Connected:
		d.connected(ev)
	case Disconnected:
		d.disconnected(ev)
	case Received:
		d.broadcast(ev)
	case ClientError:
		d.clientError(ev)
	case shutdown:
		d.shutdown()
	case peersQuery:
		ev.reply <- d.registry.Addresses()
	default:
		d.log.Error("Unknown event", "type", fmt.Sprintf("%T", ev))
	}
	d.count.Store(int64(d.registry.Len()))
}

func (d *Dispatcher) connected(ev Connected) {
	if d.closing {
		_ = ev.Sender.Close()
		return
	}
	if _, replaced := d.registry.Insert(ev.Address, ev.Sender); replaced {
		d.log.Info("A client reconnected", "remote", ev.Address)
		return
	}
	d.log.Info("A client connected", "remote", ev.Address)
}

func (d *Dispatcher) disconnected(ev Disconnected) {
	current, ok := d.registry.Get(ev.Address)
	if !ok {
		return
	}
	if ev.Sender != nil && current != ev.Sender {
		d.log.Debug("Ignoring stale disconnect", "remote", ev.Address)
		return
	}
	d.registry.Remove(ev.Address)
	d.log.Info("A client disconnected", "remote", ev.Address)
}

func (d *Dispatcher) broadcast(ev Received) {
	recipients := d.registry.Recipients(ev.Address)
	d.log.Debug("Broadcasting a message",
		"from", ev.Address, "message", ev.Message.String(), "recipients", len(recipients))
	for _, to := range recipients {
		d.jobs <- Job{Message: ev.Message.Clone(), To: to}
	}
}

func (d *Dispatcher) clientError(ev ClientError) {
	if d.closing {
		_ = ev.Sender.Close()
		return
	}
	d.log.Warn("A client sent a malformed message", "remote", ev.Address, "error", ev.Err)
	d.jobs <- Job{
		Message:    protocol.NewText(fmt.Sprintf("server: %v", ev.Err)),
		To:         ev.Sender,
		CloseAfter: true,
	}
}

func (d *Dispatcher) shutdown() {
	d.closing = true
	senders := d.registry.Drain()
	for _, sender := range senders {
		_ = sender.Close()
	}
	d.log.Info("Closed all client connections", "count", len(senders))
}
