package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/omochice/frame-chat/internal/chat"
	"github.com/omochice/frame-chat/pkg/protocol"
)

// Job is one message to deliver to one peer.
type Job struct {
	Message protocol.Message
	To      chat.Sender
	// CloseAfter closes the peer connection once the message was written.
	CloseAfter bool
}

// Responder performs every outbound write. A failed write is logged and
// dropped; it never affects other jobs.
type Responder struct {
	jobs    <-chan Job
	timeout time.Duration
	log     *slog.Logger
}

// NewResponder creates a responder. A zero timeout lets writes block
// until the peer accepts them.
func NewResponder(jobs <-chan Job, timeout time.Duration, log *slog.Logger) *Responder {
	return &Responder{jobs: jobs, timeout: timeout, log: log}
}

// Run delivers jobs until the job channel is closed.
func (r *Responder) Run(ctx context.Context) {
	for job := range r.jobs {
		r.deliver(ctx, job)
	}
	r.log.Debug("Job channel closed, responder stopped")
}

func (r *Responder) deliver(ctx context.Context, job Job) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := job.To.Send(ctx, job.Message); err != nil {
		r.log.Warn("Failed to send message", "remote", job.To.RemoteAddr(), "error", err)
	}
	if job.CloseAfter {
		_ = job.To.Close()
	}
}
