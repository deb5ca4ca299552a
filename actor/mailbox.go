package actor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/czx-lab/flowrt/container/cqueue"
)

var (
	ErrMailboxNotRunning = errors.New("mailbox is not running")
	ErrMailboxStopped    = errors.New("mailbox is stopped")
)

type mbxState int32

const (
	mbxIdle mbxState = iota
	mbxRunning
	mbxStopped
)

type (
	// Mailbox is the FIFO message queue backing the blocking-style
	// actor adapter: writers push through Write, the adapter's single
	// long-running chunk drains Receive().
	Mailbox[T any] interface {
		Service
		Write(ctx context.Context, v T) error
		Receive() <-chan T
	}

	mailbox[T any] struct {
		q     *cqueue.Queue[T]
		out   chan T
		state atomic.Int32
		done  chan struct{}
	}
)

// NewMailbox creates a Mailbox ready to Start.
func NewMailbox[T any](opts ...MboxOpt) Mailbox[T] {
	o := newOptions(opts...)
	return &mailbox[T]{
		q:    cqueue.NewQueue[T](0).WithRecycler(o.Mailbox.Recycler),
		out:  make(chan T, o.Mailbox.Capacity),
		done: make(chan struct{}),
	}
}

// Start begins pumping queued values into the Receive channel. Start on an
// already-stopped mailbox returns ErrMailboxStopped.
func (m *mailbox[T]) Start() error {
	if !m.state.CompareAndSwap(int32(mbxIdle), int32(mbxRunning)) {
		if mbxState(m.state.Load()) == mbxStopped {
			return ErrMailboxStopped
		}
		return nil
	}
	go m.pump()
	return nil
}

func (m *mailbox[T]) pump() {
	defer close(m.out)
	for {
		v, ok := m.q.WaitPop()
		if !ok {
			return
		}
		select {
		case m.out <- v:
		case <-m.done:
			return
		}
	}
}

// Stop closes the backing queue and signals the pump goroutine to exit
// without waiting for it to drain: values still queued may be dropped
// rather than delivered.
func (m *mailbox[T]) Stop() {
	if !m.state.CompareAndSwap(int32(mbxRunning), int32(mbxStopped)) {
		return
	}
	m.q.Close()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

// Write enqueues v. It fails if the mailbox has not been started, has
// stopped, or ctx is already done.
func (m *mailbox[T]) Write(ctx context.Context, v T) error {
	if mbxState(m.state.Load()) != mbxRunning {
		return ErrMailboxNotRunning
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := m.q.Push(v); err != nil {
		return ErrMailboxStopped
	}
	return nil
}

// Receive returns the channel values are delivered on.
func (m *mailbox[T]) Receive() <-chan T {
	return m.out
}

var _ Mailbox[any] = (*mailbox[any])(nil)

type (
	// PriorityMailbox is the priority-ordered counterpart of Mailbox:
	// writers attach an integer priority to each value via Write, and the
	// adapter's run loop drains the highest-priority value first, ties
	// broken by arrival order.
	PriorityMailbox[T any] interface {
		Service
		Write(ctx context.Context, v T, priority int) error
		Receive() <-chan T
	}

	priorityMailbox[T any] struct {
		q     *cqueue.PriorityQueue[T]
		out   chan T
		state atomic.Int32
		done  chan struct{}
	}
)

// NewPriorityMailbox creates a PriorityMailbox ready to Start.
func NewPriorityMailbox[T any](opts ...MboxOpt) PriorityMailbox[T] {
	o := newOptions(opts...)
	return &priorityMailbox[T]{
		q:    cqueue.NewPriorityQueue[T](o.Mailbox.Capacity).WithRecycler(o.Mailbox.Recycler),
		out:  make(chan T, o.Mailbox.Capacity),
		done: make(chan struct{}),
	}
}

// Start begins pumping queued values, highest priority first, into the
// Receive channel. Start on an already-stopped mailbox returns
// ErrMailboxStopped.
func (m *priorityMailbox[T]) Start() error {
	if !m.state.CompareAndSwap(int32(mbxIdle), int32(mbxRunning)) {
		if mbxState(m.state.Load()) == mbxStopped {
			return ErrMailboxStopped
		}
		return nil
	}
	go m.pump()
	return nil
}

func (m *priorityMailbox[T]) pump() {
	defer close(m.out)
	for {
		v, ok := m.q.WaitPop()
		if !ok {
			return
		}
		select {
		case m.out <- v:
		case <-m.done:
			return
		}
	}
}

// Stop closes the backing priority queue and signals the pump goroutine to
// exit without waiting for it to drain: values still queued may be dropped
// rather than delivered.
func (m *priorityMailbox[T]) Stop() {
	if !m.state.CompareAndSwap(int32(mbxRunning), int32(mbxStopped)) {
		return
	}
	m.q.Close()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

// Write enqueues v at priority. Higher priority values are drained first;
// ties are broken by arrival order. It fails if the mailbox has not been
// started, has stopped, or ctx is already done.
func (m *priorityMailbox[T]) Write(ctx context.Context, v T, priority int) error {
	if mbxState(m.state.Load()) != mbxRunning {
		return ErrMailboxNotRunning
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if !m.q.Push(cqueue.PriorityItem[T]{Value: v, Priority: priority}) {
		return ErrMailboxStopped
	}
	return nil
}

// Receive returns the channel values are delivered on.
func (m *priorityMailbox[T]) Receive() <-chan T {
	return m.out
}

var _ PriorityMailbox[any] = (*priorityMailbox[any])(nil)
