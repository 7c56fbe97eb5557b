// Package queue provides an unbounded FIFO channel pair.
package queue

// Unbounded is a multi-producer, single-consumer FIFO queue whose sends
// never block. Producers send on In; the consumer ranges over Out. Closing
// In lets the consumer drain every queued item before Out is closed.
type Unbounded[T any] struct {
	in  chan T
	out chan T
}

// New starts an unbounded queue.
func New[T any]() *Unbounded[T] {
	q := &Unbounded[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go q.run()
	return q
}

// In returns the producer side.
func (q *Unbounded[T]) In() chan<- T { return q.in }

// Out returns the consumer side.
func (q *Unbounded[T]) Out() <-chan T { return q.out }

// Close closes the producer side. No sends may follow.
func (q *Unbounded[T]) Close() { close(q.in) }

func (q *Unbounded[T]) run() {
	defer close(q.out)

	var pending []T
	in := q.in
	for in != nil || len(pending) > 0 {
		var (
			out  chan T
			next T
		)
		if len(pending) > 0 {
			out = q.out
			next = pending[0]
		}

		select {
		case item, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, item)
		case out <- next:
			var zero T
			pending[0] = zero
			pending = pending[1:]
		}
	}
}
