package operator

import (
	"context"
	"testing"
	"time"

	"github.com/czx-lab/flowrt/container/cqueue"
	"github.com/czx-lab/flowrt/dataflow"
	"github.com/czx-lab/flowrt/pool"
)

// TestOperatorSum mirrors the Sum-operator scenario: out <- x+y+z from
// three independently bound DFVs.
func TestOperatorSum(t *testing.T) {
	p, err := pool.New(4)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	a, b, c := dataflow.New[int](p), dataflow.New[int](p), dataflow.New[int](p)
	out := dataflow.NewDFQ[int](p)

	op, err := New[int](p, map[string]any{
		"inputs":  []Channel[int]{NewDFVChannel(a), NewDFVChannel(b), NewDFVChannel(c)},
		"outputs": []Channel[int]{out},
	}, func(emit *Emitter[int], args []int) {
		_ = emit.BindAllOutputs(args[0] + args[1] + args[2])
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	op.Start()
	defer op.Stop()

	_ = a.Bind(1)
	_ = b.Bind(2)
	_ = c.Bind(3)

	v, ok := out.GetVal(time.Second)
	if !ok || v != 6 {
		t.Fatalf("out = %v, %v; want 6, true", v, ok)
	}
}

// TestOperatorDoubleWaitSameChannel is scenario S2: inputs:[q, q], values
// 1,2,3,4 pushed in order, producing 3 then 7.
func TestOperatorDoubleWaitSameChannel(t *testing.T) {
	p, err := pool.New(4)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	q := dataflow.NewDFQ[int](p)
	out := dataflow.NewDFQ[int](p)

	op, err := New[int](p, map[string]any{
		"inputs":  []Channel[int]{q, q},
		"outputs": []Channel[int]{out},
	}, func(emit *Emitter[int], args []int) {
		_ = emit.BindAllOutputs(args[0] + args[1])
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	op.Start()
	defer op.Stop()

	for _, v := range []int{1, 2, 3, 4} {
		_ = q.LeftShift(v)
	}

	first, ok := out.GetVal(time.Second)
	if !ok || first != 3 {
		t.Fatalf("first output = %v, %v; want 3, true", first, ok)
	}
	second, ok := out.GetVal(time.Second)
	if !ok || second != 7 {
		t.Fatalf("second output = %v, %v; want 7, true", second, ok)
	}
}

// TestOperatorAtomicEmitOrdering is scenario S4: maxForks parallel
// workers each call BindAllOutputsAtomically, and every output channel
// must observe the same relative ordering of rounds.
func TestOperatorAtomicEmitOrdering(t *testing.T) {
	p, err := pool.New(8)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	in := dataflow.NewDFQ[int](p)
	outA := dataflow.NewDFQ[int](p)
	outB := dataflow.NewDFQ[int](p)
	outC := dataflow.NewDFQ[int](p)

	op, err := New[int](p, map[string]any{
		"inputs":   []Channel[int]{in},
		"outputs":  []Channel[int]{outA, outB, outC},
		"maxForks": 5,
	}, func(emit *Emitter[int], args []int) {
		_ = emit.BindAllOutputsAtomically(args[0])
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	op.Start()
	defer op.Stop()

	const n = 10
	for i := 0; i < n; i++ {
		_ = in.LeftShift(i)
	}

	var a, b, c []int
	for i := 0; i < n; i++ {
		v, ok := outA.GetVal(2 * time.Second)
		if !ok {
			t.Fatalf("outA starved at %d", i)
		}
		a = append(a, v)
		v, ok = outB.GetVal(2 * time.Second)
		if !ok {
			t.Fatalf("outB starved at %d", i)
		}
		b = append(b, v)
		v, ok = outC.GetVal(2 * time.Second)
		if !ok {
			t.Fatalf("outC starved at %d", i)
		}
		c = append(c, v)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] || b[i] != c[i] {
			t.Fatalf("round %d diverged across outputs: a=%v b=%v c=%v", i, a[i], b[i], c[i])
		}
	}
}

// TestOperatorWithXchanChannelIO exercises the ring-buffered XchanChannel
// adapter as both an operator's sole input and sole output, and checks
// GetOutput returns that same output handle.
func TestOperatorWithXchanChannelIO(t *testing.T) {
	p, err := pool.New(4)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := NewXchanChannel[int](ctx, p, cqueue.XchanConf{Bufsize: 8, Insize: 4, Outsize: 4})
	out := NewXchanChannel[int](ctx, p, cqueue.XchanConf{Bufsize: 8, Insize: 4, Outsize: 4})

	op, err := New[int](p, map[string]any{
		"inputs":  []Channel[int]{in},
		"outputs": []Channel[int]{out},
	}, func(emit *Emitter[int], args []int) {
		_ = emit.BindAllOutputs(args[0] * 2)
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	op.Start()
	defer op.Stop()

	if got := op.GetOutput(); got != Channel[int](out) {
		t.Fatalf("GetOutput = %v; want the configured out channel", got)
	}

	_ = in.LeftShift(21)

	select {
	case v := <-out.x.Out():
		if v != 42 {
			t.Fatalf("out = %d; want 42", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for operator output")
	}
}

func TestOperatorRejectsEmptyInputs(t *testing.T) {
	p, err := pool.New(2)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	_, err = New[int](p, map[string]any{
		"inputs": []Channel[int]{},
	}, func(emit *Emitter[int], args []int) {})
	if _, ok := err.(*ConfigurationError); !ok {
		t.Fatalf("err = %v (%T); want *ConfigurationError", err, err)
	}
}

func TestOperatorRejectsUnrecognizedOption(t *testing.T) {
	p, err := pool.New(2)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	q := dataflow.NewDFQ[int](p)
	_, err = New[int](p, map[string]any{
		"inputs":   []Channel[int]{q},
		"unknown0": true,
	}, func(emit *Emitter[int], args []int) {})
	if _, ok := err.(*ConfigurationError); !ok {
		t.Fatalf("err = %v (%T); want *ConfigurationError", err, err)
	}
}

func TestOperatorBodyPanicDoesNotKillFork(t *testing.T) {
	p, err := pool.New(4)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Release()

	q := dataflow.NewDFQ[int](p)
	out := dataflow.NewDFQ[int](p)

	op, err := New[int](p, map[string]any{
		"inputs":  []Channel[int]{q},
		"outputs": []Channel[int]{out},
	}, func(emit *Emitter[int], args []int) {
		if args[0] == 0 {
			panic("boom")
		}
		_ = emit.BindAllOutputs(args[0])
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	op.Start()
	defer op.Stop()

	_ = q.LeftShift(0)
	_ = q.LeftShift(5)

	v, ok := out.GetVal(time.Second)
	if !ok || v != 5 {
		t.Fatalf("out = %v, %v; want 5, true after recovering from a panicking round", v, ok)
	}
}
