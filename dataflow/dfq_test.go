package dataflow

import (
	"testing"
	"time"

	"github.com/czx-lab/flowrt/pool"
)

func TestDFQLeftShiftThenGetVal(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	q := NewDFQ[int](p)
	_ = q.LeftShift(1)
	_ = q.LeftShift(2)

	v, ok := q.GetVal(0)
	if !ok || v != 1 {
		t.Fatalf("first GetVal = %v, %v; want 1, true", v, ok)
	}
	v, ok = q.GetVal(0)
	if !ok || v != 2 {
		t.Fatalf("second GetVal = %v, %v; want 2, true", v, ok)
	}
}

// TestDFQDoubleWaitSameChannel mirrors the sum-of-pairs scenario: two
// gather requests against the same queue, issued in order, each pull the
// earliest still-unclaimed value.
func TestDFQDoubleWaitSameChannel(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	q := NewDFQ[int](p)
	for _, v := range []int{1, 2, 3, 4} {
		_ = q.LeftShift(v)
	}

	a, _ := q.GetVal(0)
	b, _ := q.GetVal(0)
	if a+b != 3 {
		t.Fatalf("first pair summed to %d; want 3", a+b)
	}
	c, _ := q.GetVal(0)
	d, _ := q.GetVal(0)
	if c+d != 7 {
		t.Fatalf("second pair summed to %d; want 7", c+d)
	}
}

func TestDFQGetValBeforeLeftShift(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	q := NewDFQ[string](p)
	got := make(chan string, 1)
	go func() {
		v, _ := q.GetVal(time.Second)
		got <- v
	}()
	time.Sleep(10 * time.Millisecond)
	_ = q.LeftShift("hello")

	select {
	case v := <-got:
		if v != "hello" {
			t.Fatalf("got %q; want hello", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("GetVal never returned")
	}
}

func TestDFQGetValTimeoutRemovesRequest(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	q := NewDFQ[int](p)
	_, ok := q.GetVal(20 * time.Millisecond)
	if ok {
		t.Fatalf("GetVal on an empty queue returned ok=true")
	}
	if q.requests.Len() != 0 {
		t.Fatalf("timed-out request was not removed, requests.Len()=%d", q.requests.Len())
	}
}

func TestDFQPollAndLength(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	q := NewDFQ[int](p)
	if _, ok := q.Poll(); ok {
		t.Fatalf("Poll on empty queue returned ok=true")
	}
	_ = q.LeftShift(5)
	if n := q.Length(); n != 1 {
		t.Fatalf("Length = %d; want 1", n)
	}
	v, ok := q.Poll()
	if !ok || v != 5 {
		t.Fatalf("Poll = %v, %v; want 5, true", v, ok)
	}
}

func TestDFQIterator(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	q := NewDFQ[int](p)
	for _, v := range []int{1, 2, 3} {
		_ = q.LeftShift(v)
	}
	it := q.Iterator()
	var got []int
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("Iterator produced %v; want [1 2 3]", got)
	}
}
