package ping

import (
	"sync"

	"connectivity-monitor/internal/models"
)

// queue is an unbounded FIFO between goroutines. Producers never block on
// a slow consumer; memory grows instead.
//
// finish is called by the producer when it is done: pending items are still
// delivered and then out is closed. close is called by the consumer when it
// goes away: pending items are dropped and push starts failing.
type queue[T any] struct {
	in  chan T
	out chan T

	done       chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{
		in:   make(chan T),
		out:  make(chan T),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *queue[T]) run() {
	defer close(q.out)

	var pending []T
	in := q.in
	for in != nil || len(pending) > 0 {
		var out chan T
		var next T
		if len(pending) > 0 {
			out = q.out
			next = pending[0]
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, v)
		case out <- next:
			var zero T
			pending[0] = zero
			pending = pending[1:]
		case <-q.done:
			return
		}
	}
}

// push enqueues v. It returns false once the consumer has gone away.
func (q *queue[T]) push(v T) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.in <- v:
		return true
	case <-q.done:
		return false
	}
}

func (q *queue[T]) finish() {
	q.finishOnce.Do(func() { close(q.in) })
}

func (q *queue[T]) close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Results is the receiving end of the engine's result bus
type Results struct {
	q *queue[models.PingResult]
}

// C returns the event channel. It is closed after the scheduler stops and
// every pending event has been delivered.
func (r *Results) C() <-chan models.PingResult {
	return r.q.out
}

// Close detaches the consumer. The scheduler stops with ErrConsumerGone the
// next time it publishes.
func (r *Results) Close() {
	r.q.close()
}
