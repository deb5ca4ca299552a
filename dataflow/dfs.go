package dataflow

import (
	"reflect"
	"sync"

	"github.com/czx-lab/flowrt/pool"
)

// DFS is the dataflow stream (C2): a functional lazy list. Each cell owns
// a `first` DFV and a lazily created `rest` cell. Single producer per
// cell; many readers, each with its own cursor, all observing the same
// binding order.
type DFS[T any] struct {
	p     pool.Pool
	first *DFV[T]

	mu   sync.Mutex
	rest *DFS[T]
}

// NewDFS creates an empty stream cell (an unbound first with no rest yet).
func NewDFS[T any](p pool.Pool) *DFS[T] {
	return &DFS[T]{p: p, first: New[T](p)}
}

// GetFirst blocks until this cell's value is bound and returns it.
func (s *DFS[T]) GetFirst() (T, bool) {
	return s.first.GetVal(0)
}

// GetRest returns the cell after this one, creating it on first access.
func (s *DFS[T]) GetRest() *DFS[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rest == nil {
		s.rest = NewDFS[T](s.p)
	}
	return s.rest
}

// LeftShift binds v to this cell's first and returns the (possibly newly
// created) rest of the stream, for the producer's next write.
func (s *DFS[T]) LeftShift(v T) (*DFS[T], error) {
	if err := s.first.Bind(v); err != nil {
		return nil, err
	}
	return s.GetRest(), nil
}

// LeftShiftChannel subscribes asynchronously to source: once it binds,
// this cell's first is bound to the same value. It returns the (possibly
// newly created) rest of the stream immediately, for the producer's next
// write, mirroring DFQ.LeftShiftChannel.
func (s *DFS[T]) LeftShiftChannel(source *DFV[T]) *DFS[T] {
	rest := s.GetRest()
	source.WhenBound(func(v T) {
		_ = s.first.Bind(v)
	})
	return rest
}

// IsEmpty reports whether this cell is bound to the end-of-stream
// sentinel: the zero value of T. It does not block — a cell whose first
// is not yet bound is not considered empty, since its eventual value is
// still unknown.
func (s *DFS[T]) IsEmpty() bool {
	if !s.first.IsBound() {
		return false
	}
	v, _ := s.first.GetVal(0)
	var zero T
	return reflect.DeepEqual(v, zero)
}

// Filter produces a new stream containing, in order, every element for
// which pred returns true, terminated by the same end-of-stream sentinel
// as the source. It runs iteratively on the pool to avoid growing the
// stack with recursion over a long stream.
func (s *DFS[T]) Filter(pred func(T) bool) *DFS[T] {
	dest := NewDFS[T](s.p)
	_ = s.p.Execute(func() {
		cur, dst := s, dest
		for {
			v, _ := cur.GetFirst()
			if cur.IsEmpty() {
				_, _ = dst.LeftShift(v)
				return
			}
			if pred(v) {
				dst, _ = dst.LeftShift(v)
			}
			cur = cur.GetRest()
		}
	})
	return dest
}

// Map produces a new stream with fn applied to every element, preserving
// the end-of-stream sentinel unchanged.
func (s *DFS[T]) Map(fn func(T) T) *DFS[T] {
	dest := NewDFS[T](s.p)
	_ = s.p.Execute(func() {
		cur, dst := s, dest
		for {
			v, _ := cur.GetFirst()
			if cur.IsEmpty() {
				_, _ = dst.LeftShift(v)
				return
			}
			dst, _ = dst.LeftShift(fn(v))
			cur = cur.GetRest()
		}
	})
	return dest
}

// Reduce folds fn over the stream starting from init, delivering the
// final accumulated value to the returned DFV once the stream ends.
func (s *DFS[T]) Reduce(fn func(acc, v T) T, init T) *DFV[T] {
	result := New[T](s.p)
	_ = s.p.Execute(func() {
		acc := init
		cur := s
		for {
			v, _ := cur.GetFirst()
			if cur.IsEmpty() {
				_ = result.Bind(acc)
				return
			}
			acc = fn(acc, v)
			cur = cur.GetRest()
		}
	})
	return result
}

// WheneverBound registers fn to run on every bind into this cell's chain,
// starting from this cell onward, in production order.
func (s *DFS[T]) WheneverBound(fn func(T)) {
	_ = s.p.Execute(func() {
		cur := s
		for {
			v, _ := cur.GetFirst()
			fn(v)
			if cur.IsEmpty() {
				return
			}
			cur = cur.GetRest()
		}
	})
}
