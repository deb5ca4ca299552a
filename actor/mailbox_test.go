package actor

import (
	"context"
	"testing"
	"time"

	"github.com/czx-lab/flowrt/pool"
)

// TestMailboxFIFOOrder checks that Mailbox delivers values in the order
// they were written.
func TestMailboxFIFOOrder(t *testing.T) {
	mb := NewMailbox[int]()
	if err := mb.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mb.Stop()

	ctx := context.Background()
	for _, v := range []int{1, 2, 3} {
		if err := mb.Write(ctx, v); err != nil {
			t.Fatalf("Write(%d): %v", v, err)
		}
	}

	for _, want := range []int{1, 2, 3} {
		select {
		case got := <-mb.Receive():
			if got != want {
				t.Fatalf("Receive() = %d; want %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %d", want)
		}
	}
}

// TestMailboxWriteAfterStopFails checks that a stopped Mailbox rejects
// further writes.
func TestMailboxWriteAfterStopFails(t *testing.T) {
	mb := NewMailbox[int]()
	if err := mb.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	mb.Stop()

	if err := mb.Write(context.Background(), 1); err == nil {
		t.Fatal("Write after Stop succeeded; want an error")
	}
}

// TestPriorityMailboxDrainsHighestFirst is the BlockingActor mailbox
// variant backed by container/cqueue.PriorityQueue: a worker draining it
// sees the highest-priority value first regardless of write order, with
// ties broken by arrival order.
func TestPriorityMailboxDrainsHighestFirst(t *testing.T) {
	mb := NewPriorityMailbox[string]()
	if err := mb.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mb.Stop()

	ctx := context.Background()
	if err := mb.Write(ctx, "low", 1); err != nil {
		t.Fatalf("Write(low): %v", err)
	}
	if err := mb.Write(ctx, "high", 10); err != nil {
		t.Fatalf("Write(high): %v", err)
	}
	if err := mb.Write(ctx, "medium", 5); err != nil {
		t.Fatalf("Write(medium): %v", err)
	}

	for _, want := range []string{"high", "medium", "low"} {
		select {
		case got := <-mb.Receive():
			if got != want {
				t.Fatalf("Receive() = %q; want %q", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

// TestPriorityMailboxDrivesBlockingActor runs a PriorityMailbox as the
// queue behind a BlockingActor's Worker, the configuration spec §4.1's
// blocking-style adapter is meant to support: the worker occupies one pool
// slot for its lifetime, draining the mailbox by priority.
func TestPriorityMailboxDrivesBlockingActor(t *testing.T) {
	p, err := pool.New(2)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	mb := NewPriorityMailbox[int]()
	if err := mb.Start(); err != nil {
		t.Fatalf("mailbox Start: %v", err)
	}

	seen := make(chan int, 8)
	w := WorkerFunc(func(ctx context.Context) WorkerState {
		select {
		case v, ok := <-mb.Receive():
			if !ok {
				return WorkerStopped
			}
			seen <- v
			return WorkerRunning
		case <-ctx.Done():
			return WorkerStopped
		}
	})

	b := NewBlockingActor(p, w, nil)
	if err := b.Start(); err != nil {
		t.Fatalf("actor Start: %v", err)
	}

	ctx := context.Background()
	_ = mb.Write(ctx, 1, 1)
	_ = mb.Write(ctx, 9, 9)

	for i := 0; i < 2; i++ {
		select {
		case <-seen:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for delivery %d", i)
		}
	}

	b.Stop()
	mb.Stop()
}
