package server

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omochice/frame-chat/internal/mocks"
	"github.com/omochice/frame-chat/pkg/protocol"
)

func newTestDispatcher() (*Dispatcher, chan Job) {
	jobs := make(chan Job, 16)
	return NewDispatcher(nil, jobs, logs.GetLoggerFromLevel(slog.LevelDebug)), jobs
}

func drainJobs(jobs chan Job) []Job {
	var out []Job
	for {
		select {
		case job := <-jobs:
			out = append(out, job)
		default:
			return out
		}
	}
}

func TestDispatcher_BroadcastExcludesSender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	a, b, c := mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl)
	d, jobs := newTestDispatcher()

	d.Handle(Connected{Address: "a", Sender: a})
	d.Handle(Connected{Address: "b", Sender: b})
	d.Handle(Connected{Address: "c", Sender: c})
	req.Equal(3, d.Len())

	d.Handle(Received{Address: "a", Message: protocol.NewText("hello")})

	got := drainJobs(jobs)
	req.Len(got, 2)
	recipients := map[any]int{}
	for _, job := range got {
		recipients[job.To]++
		req.Equal("hello", job.Message.Text)
		req.False(job.CloseAfter)
	}
	req.Equal(1, recipients[b])
	req.Equal(1, recipients[c])
	req.Zero(recipients[a])
}

func TestDispatcher_BroadcastClonesPayload(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	d, jobs := newTestDispatcher()
	d.Handle(Connected{Address: "b", Sender: mocks.NewMockSender(ctrl)})
	d.Handle(Connected{Address: "c", Sender: mocks.NewMockSender(ctrl)})

	original := protocol.NewImage([]byte{1, 2, 3})
	d.Handle(Received{Address: "a", Message: original})

	got := drainJobs(jobs)
	req.Len(got, 2)
	got[0].Message.Content[0] = 9
	req.Equal(byte(1), got[1].Message.Content[0])
	req.Equal(byte(1), original.Content[0])
}

func TestDispatcher_DisconnectRemoves(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	a, b := mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl)
	d, jobs := newTestDispatcher()

	d.Handle(Connected{Address: "a", Sender: a})
	d.Handle(Connected{Address: "b", Sender: b})
	d.Handle(Disconnected{Address: "b", Sender: b})
	d.Handle(Disconnected{Address: "b", Sender: b})
	d.Handle(Disconnected{Address: "unknown"})

	req.Equal(1, d.Len())
	req.False(d.registry.Contains("b"))

	d.Handle(Received{Address: "a", Message: protocol.NewText("anyone?")})
	req.Empty(drainJobs(jobs))
}

func TestDispatcher_StaleDisconnectKeepsNewRecord(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	old, fresh := mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl)
	d, _ := newTestDispatcher()

	d.Handle(Connected{Address: "a", Sender: old})
	d.Handle(Connected{Address: "a", Sender: fresh})
	req.Equal(1, d.Len())

	d.Handle(Disconnected{Address: "a", Sender: old})
	current, ok := d.registry.Get("a")
	req.True(ok)
	req.Same(fresh, current)
}

func TestDispatcher_ClientErrorRepliesToOffenderOnly(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	a, b := mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl)
	d, jobs := newTestDispatcher()
	d.Handle(Connected{Address: "a", Sender: a})
	d.Handle(Connected{Address: "b", Sender: b})

	d.Handle(ClientError{Address: "a", Sender: a, Err: errors.New("bad payload")})

	got := drainJobs(jobs)
	req.Len(got, 1)
	req.Same(a, got[0].To)
	req.True(got[0].CloseAfter)
	req.Equal(protocol.MessageTypeText, got[0].Message.Type)
	req.Contains(got[0].Message.Text, "bad payload")
}

func TestDispatcher_ShutdownClosesEverything(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	a, b, late := mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl), mocks.NewMockSender(ctrl)
	a.EXPECT().Close().Return(nil)
	b.EXPECT().Close().Return(nil)
	late.EXPECT().Close().Return(nil)
	d, _ := newTestDispatcher()

	d.Handle(Connected{Address: "a", Sender: a})
	d.Handle(Connected{Address: "b", Sender: b})
	d.Handle(shutdown{})
	req.Equal(0, d.Len())

	d.Handle(Connected{Address: "late", Sender: late})
	req.Equal(0, d.Len())
}

func TestDispatcher_PeersQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	d, _ := newTestDispatcher()
	d.Handle(Connected{Address: "b", Sender: mocks.NewMockSender(ctrl)})
	d.Handle(Connected{Address: "a", Sender: mocks.NewMockSender(ctrl)})

	reply := make(chan []string, 1)
	d.Handle(peersQuery{reply: reply})

	require.Equal(t, []string{"a", "b"}, <-reply)
}

func TestDispatcher_RunStopsWhenEventsClosed(t *testing.T) {
	events := make(chan Event, 1)
	jobs := make(chan Job, 1)
	d := NewDispatcher(events, jobs, logs.GetLoggerFromLevel(slog.LevelDebug))
	close(events)

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()
	<-done
}
