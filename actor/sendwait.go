package actor

import (
	"context"
	"sync"
	"time"
)

// waiter is the throwaway actor named in spec §4.1's send-and-wait
// description: a single-count latch standing in for a real actor just
// long enough to receive one reply.
type waiter[T any] struct {
	ch   chan T
	once sync.Once
}

func (w *waiter[T]) Start() error                  { return nil }
func (w *waiter[T]) Stop()                         {}
func (w *waiter[T]) deliverReply(env Envelope[T])  { w.once.Do(func() { w.ch <- env.Payload }) }

var _ replyTarget[any] = (*waiter[any])(nil)

// SendAndWait sends payload to target and blocks for its single reply, or
// until timeout elapses (timeout <= 0 means wait forever). The target
// actor is not cancelled on timeout.
func SendAndWait[T any](target *Actor[T], payload T, timeout time.Duration) (T, error) {
	w := &waiter[T]{ch: make(chan T, 1)}
	if err := target.Send(w, payload); err != nil {
		var zero T
		return zero, err
	}
	if timeout <= 0 {
		return <-w.ch, nil
	}
	select {
	case v := <-w.ch:
		return v, nil
	case <-time.After(timeout):
		var zero T
		return zero, context.DeadlineExceeded
	}
}
