package dataflow

import (
	"testing"
	"time"

	"github.com/czx-lab/flowrt/pool"
)

func TestDFVBindAndGetVal(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	v := New[int](p)
	if v.IsBound() {
		t.Fatalf("fresh DFV reports bound")
	}
	if err := v.Bind(42); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	got, ok := v.GetVal(0)
	if !ok || got != 42 {
		t.Fatalf("GetVal = %v, %v; want 42, true", got, ok)
	}
}

func TestDFVSingleAssignmentViolation(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	v := New[int](p)
	if err := v.Bind(1); err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	if err := v.Bind(2); err != AlreadyBoundError {
		t.Fatalf("second Bind = %v; want AlreadyBoundError", err)
	}
	got, ok := v.GetVal(0)
	if !ok || got != 1 {
		t.Fatalf("GetVal after rejected rebind = %v, %v; want 1, true", got, ok)
	}
}

func TestDFVBindUnique(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	v := New[string](p)
	if err := v.BindUnique("a"); err != nil {
		t.Fatalf("first BindUnique: %v", err)
	}
	if err := v.BindUnique("a"); err != nil {
		t.Fatalf("repeat BindUnique with equal value should succeed, got %v", err)
	}
	if err := v.BindUnique("b"); err != AlreadyBoundError {
		t.Fatalf("BindUnique with differing value = %v; want AlreadyBoundError", err)
	}
}

func TestDFVGetValTimeout(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	v := New[int](p)
	start := time.Now()
	_, ok := v.GetVal(20 * time.Millisecond)
	if ok {
		t.Fatalf("GetVal on unbound slot returned ok=true")
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Fatalf("GetVal returned before its timeout elapsed")
	}
}

func TestDFVWakesEveryWaiter(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	v := New[int](p)
	order := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		go func() {
			val, _ := v.GetVal(time.Second)
			order <- i * val
		}()
	}
	time.Sleep(10 * time.Millisecond)
	_ = v.Bind(10)

	got := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case v := <-order:
			got = append(got, v)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for waiter %d", i)
		}
	}
	if len(got) != 3 {
		t.Fatalf("got %d deliveries, want 3", len(got))
	}
}

func TestDFVGetValAsync(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	v := New[int](p)
	done := make(chan AsyncResult[int], 1)
	v.GetValAsync("tag", func(res any) {
		done <- res.(AsyncResult[int])
	})
	_ = v.Bind(7)

	select {
	case r := <-done:
		if r.Value != 7 || r.Attachment != "tag" {
			t.Fatalf("got %+v; want Value=7 Attachment=tag", r)
		}
	case <-time.After(time.Second):
		t.Fatalf("async sink never fired")
	}
}
