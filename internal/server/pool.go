package server

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool runs tasks on at most size goroutines. Submit blocks while every
// slot is busy, which pushes back on the accept loop.
type Pool struct {
	sem  *semaphore.Weighted
	size int
	busy atomic.Int64
	wg   sync.WaitGroup
}

// NewPool creates a pool with size slots. A size below one is treated as one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Submit waits for a free slot and runs task on it. It returns ctx.Err()
// without running task if ctx is done first.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	p.busy.Add(1)
	p.wg.Add(1)
	go func() {
		defer func() {
			p.busy.Add(-1)
			p.sem.Release(1)
			p.wg.Done()
		}()
		task()
	}()
	return nil
}

// Busy returns the number of occupied slots.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return p.size
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
