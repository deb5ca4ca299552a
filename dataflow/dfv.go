package dataflow

import (
	"reflect"
	"sync"
	"time"

	"github.com/czx-lab/flowrt/pool"
)

// AsyncResult is delivered to a GetValAsync sink: Attachment carries
// whatever correlation value the caller registered with, Value is the
// slot's bound value.
type AsyncResult[T any] struct {
	Attachment any
	Value      T
}

type subscriber[T any] struct {
	ch chan T
	cb func(T)
}

// DFV is the single-assignment dataflow variable (C2): one internal slot,
// initially unbound, exactly one successful Bind per lifetime. Pending
// waiters are woken in registration order once bound.
type DFV[T any] struct {
	p pool.Pool

	mu          sync.Mutex
	bound       bool
	value       T
	subscribers []*subscriber[T]
}

// New creates an unbound DFV. p schedules async callbacks registered via
// GetValAsync and WhenBound.
func New[T any](p pool.Pool) *DFV[T] {
	return &DFV[T]{p: p}
}

// Bound wraps v in an already-bound DFV, useful where the caller produced
// a value synchronously and just needs it as a DFV (e.g. DFQ.LeftShift).
func Bound[T any](p pool.Pool, v T) *DFV[T] {
	d := New[T](p)
	_ = d.Bind(v)
	return d
}

// IsBound reports whether the slot has been assigned.
func (d *DFV[T]) IsBound() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bound
}

// Bind assigns v to the slot. It fails with AlreadyBoundError if the slot
// is already bound. On success every pending waiter is woken, in the
// order it registered.
func (d *DFV[T]) Bind(v T) error {
	d.mu.Lock()
	if d.bound {
		d.mu.Unlock()
		return AlreadyBoundError
	}
	d.bound = true
	d.value = v
	subs := d.subscribers
	d.subscribers = nil
	d.mu.Unlock()

	d.deliver(subs, v)
	return nil
}

// BindUnique succeeds if the slot is unbound (behaving like Bind), or if
// it is already bound to a value structurally equal (reflect.DeepEqual)
// to v; otherwise it returns AlreadyBoundError. Callers needing reference
// equality should compare pointers themselves before calling BindUnique.
func (d *DFV[T]) BindUnique(v T) error {
	d.mu.Lock()
	if d.bound {
		existing := d.value
		d.mu.Unlock()
		if reflect.DeepEqual(existing, v) {
			return nil
		}
		return AlreadyBoundError
	}
	d.mu.Unlock()
	return d.Bind(v)
}

func (d *DFV[T]) deliver(subs []*subscriber[T], v T) {
	for _, s := range subs {
		if s.ch != nil {
			s.ch <- v
		}
		if s.cb != nil {
			cb := s.cb
			_ = d.p.Execute(func() { cb(v) })
		}
	}
}

// GetVal returns the bound value, blocking until it is assigned if
// necessary. A positive timeout bounds the wait; on expiry it returns the
// zero value and false, and the waiter is removed so it is never later
// delivered a stale value.
func (d *DFV[T]) GetVal(timeout time.Duration) (T, bool) {
	d.mu.Lock()
	if d.bound {
		v := d.value
		d.mu.Unlock()
		return v, true
	}
	sub := &subscriber[T]{ch: make(chan T, 1)}
	d.subscribers = append(d.subscribers, sub)
	d.mu.Unlock()

	if timeout <= 0 {
		return <-sub.ch, true
	}
	select {
	case v := <-sub.ch:
		return v, true
	case <-time.After(timeout):
		d.removeSubscriber(sub)
		var zero T
		return zero, false
	}
}

func (d *DFV[T]) removeSubscriber(target *subscriber[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subscribers {
		if s == target {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			return
		}
	}
}

// GetValAsync registers sink to run (on the DFV's pool) once bound,
// delivering immediately if already bound. When attachment is non-nil the
// sink receives an AsyncResult pairing it with the value; otherwise it
// receives the bare value.
func (d *DFV[T]) GetValAsync(attachment any, sink func(any)) {
	deliver := func(v T) {
		if attachment != nil {
			sink(AsyncResult[T]{Attachment: attachment, Value: v})
			return
		}
		sink(v)
	}

	d.mu.Lock()
	if d.bound {
		v := d.value
		d.mu.Unlock()
		_ = d.p.Execute(func() { deliver(v) })
		return
	}
	d.subscribers = append(d.subscribers, &subscriber[T]{cb: deliver})
	d.mu.Unlock()
}

// WhenBound registers fn to run (on the DFV's pool) once bound, delivering
// immediately if already bound.
func (d *DFV[T]) WhenBound(fn func(T)) {
	d.mu.Lock()
	if d.bound {
		v := d.value
		d.mu.Unlock()
		_ = d.p.Execute(func() { fn(v) })
		return
	}
	d.subscribers = append(d.subscribers, &subscriber[T]{cb: fn})
	d.mu.Unlock()
}
