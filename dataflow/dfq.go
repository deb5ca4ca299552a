package dataflow

import (
	"sync"
	"time"

	"github.com/czx-lab/flowrt/container/cqueue"
	"github.com/czx-lab/flowrt/container/recycler"
	"github.com/czx-lab/flowrt/pool"
)

// DFQ is the dataflow queue (C2): two FIFO queues, `values` (bound DFVs
// ready to read) and `requests` (unbound DFVs owed to readers), protected
// by a single lock. At most one of the two is ever non-empty — a producer
// and a pending consumer are matched immediately. mu serializes the
// check-one-queue-then-act-on-the-other decision in LeftShift,
// LeftShiftChannel, GetVal, and GetValAsync as one atomic unit; each
// underlying cqueue.Queue's own lock is not enough on its own, since the
// invariant spans both queues together.
type DFQ[T any] struct {
	p pool.Pool

	mu       sync.Mutex
	values   *cqueue.Queue[*DFV[T]]
	requests *cqueue.Queue[*DFV[T]]

	listeners []func(T)
}

// NewDFQ creates an empty DFQ. p is threaded through to every DFV it
// creates internally, for scheduling async deliveries.
func NewDFQ[T any](p pool.Pool) *DFQ[T] {
	return &DFQ[T]{
		p:        p,
		values:   cqueue.NewQueue[*DFV[T]](0).WithRecycler(recycler.New()),
		requests: cqueue.NewQueue[*DFV[T]](0).WithRecycler(recycler.New()),
	}
}

// WheneverBound registers fn to run on every future bind into this queue,
// in addition to whatever LeftShift/poll caller observes the value.
func (q *DFQ[T]) WheneverBound(fn func(T)) {
	q.listeners = append(q.listeners, fn)
}

func (q *DFQ[T]) notifyListeners(v T) {
	for _, fn := range q.listeners {
		l := fn
		_ = q.p.Execute(func() { l(v) })
	}
}

// LeftShift binds v to one pending request if one exists, otherwise
// enqueues a freshly bound DFV into values.
func (q *DFQ[T]) LeftShift(v T) error {
	q.mu.Lock()
	req, hasReq := q.requests.Pop()
	var dfv *DFV[T]
	if !hasReq {
		dfv = Bound(q.p, v)
		_ = q.values.Push(dfv)
	}
	q.mu.Unlock()

	if hasReq {
		if err := req.Bind(v); err != nil {
			return err
		}
	}
	q.notifyListeners(v)
	return nil
}

// LeftShiftChannel subscribes asynchronously to source: once it binds, a
// DFV inserted synchronously now (preserving submission order) is bound to
// the same value.
func (q *DFQ[T]) LeftShiftChannel(source *DFV[T]) {
	q.mu.Lock()
	var target *DFV[T]
	if req, ok := q.requests.Pop(); ok {
		target = req
	} else {
		target = New[T](q.p)
		_ = q.values.Push(target)
	}
	q.mu.Unlock()

	source.WhenBound(func(v T) {
		_ = target.Bind(v)
		q.notifyListeners(v)
	})
}

// GetVal takes one bound DFV from values and reads through it; if values
// is empty, it creates an unbound DFV, enqueues it into requests, and
// waits on it. A timed-out wait removes the request DFV to avoid a leak.
func (q *DFQ[T]) GetVal(timeout time.Duration) (T, bool) {
	q.mu.Lock()
	dfv, hasVal := q.values.Pop()
	var req *DFV[T]
	if !hasVal {
		req = New[T](q.p)
		_ = q.requests.Push(req)
	}
	q.mu.Unlock()

	if hasVal {
		return dfv.GetVal(0)
	}

	v, ok := req.GetVal(timeout)
	if !ok {
		q.mu.Lock()
		q.requests.DeleteFunc(func(d *DFV[T]) bool { return d == req })
		q.mu.Unlock()
	}
	return v, ok
}

// GetValAsync is the async counterpart of GetVal: sink is invoked on the
// pool once a value is available, immediately if one is already queued.
func (q *DFQ[T]) GetValAsync(attachment any, sink func(any)) {
	q.mu.Lock()
	dfv, hasVal := q.values.Pop()
	var req *DFV[T]
	if !hasVal {
		req = New[T](q.p)
		_ = q.requests.Push(req)
	}
	q.mu.Unlock()

	if hasVal {
		dfv.GetValAsync(attachment, sink)
		return
	}
	req.GetValAsync(attachment, sink)
}

// Poll peeks at the head of values; if it is bound it is popped and
// returned, otherwise Poll returns false without blocking.
func (q *DFQ[T]) Poll() (T, bool) {
	dfv, ok := q.values.Peek()
	if !ok || !dfv.IsBound() {
		var zero T
		return zero, false
	}
	q.values.Pop()
	return dfv.GetVal(0)
}

// Length returns a snapshot of the number of bound values waiting to be
// read.
func (q *DFQ[T]) Length() int {
	return q.values.Len()
}

// Iterator returns a snapshot-based cursor over values: Next blocks on
// each element until it is bound.
func (q *DFQ[T]) Iterator() *DFQIterator[T] {
	return &DFQIterator[T]{snapshot: q.values.Snapshot()}
}

// DFQIterator traverses a DFQ snapshot taken at Iterator() time.
type DFQIterator[T any] struct {
	snapshot []*DFV[T]
	idx      int
}

// Next returns the next element, blocking until it is bound. ok is false
// once the snapshot is exhausted.
func (it *DFQIterator[T]) Next() (v T, ok bool) {
	if it.idx >= len(it.snapshot) {
		return v, false
	}
	dfv := it.snapshot[it.idx]
	it.idx++
	return dfv.GetVal(0)
}
