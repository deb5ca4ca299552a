// Package operator implements the dataflow operator runtime (C3): a
// construct that wires one or more input channels to zero or more output
// channels through a body, re-firing every time a fresh value is
// available at every input position.
package operator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/czx-lab/flowrt/actor"
	"github.com/czx-lab/flowrt/dataflow"
	"github.com/czx-lab/flowrt/pool"
	"github.com/czx-lab/flowrt/rtmetrics"
)

// Channel is the minimal surface an operator input/output needs: async
// positional reads for gathering, and a blocking-free write for emitting.
// Both *dataflow.DFQ[T] and the DFV adapter in this package satisfy it.
type Channel[T any] interface {
	GetValAsync(attachment any, sink func(any))
	LeftShift(v T) error
}

type state int32

const (
	stateConstructed state = iota
	stateRunning
	stateStopping
	stateStopped
)

// Emitter is handed to the operator body for one round; it exposes the
// bindOutput family named in spec §4.3. It is only valid for the
// duration of that round's apply phase.
type Emitter[T any] struct {
	op *Operator[T]
}

// BindOutput writes v to the output channel at position i only.
func (e *Emitter[T]) BindOutput(i int, v T) error {
	if i < 0 || i >= len(e.op.outputs) {
		return fmt.Errorf("operator: output index %d out of range", i)
	}
	return e.op.outputs[i].LeftShift(v)
}

// BindAllOutputs writes the same v to every output channel, one at a
// time, interleavable with other rounds' emits.
func (e *Emitter[T]) BindAllOutputs(v T) error {
	for _, out := range e.op.outputs {
		if err := out.LeftShift(v); err != nil {
			return err
		}
	}
	return nil
}

// BindAllOutputValues writes vs[i] to output i for as many outputs as
// values are supplied.
func (e *Emitter[T]) BindAllOutputValues(vs ...T) error {
	for i, out := range e.op.outputs {
		if i >= len(vs) {
			break
		}
		if err := out.LeftShift(vs[i]); err != nil {
			return err
		}
	}
	return nil
}

// BindAllOutputsAtomically writes v to every output channel as one
// indivisible step with respect to every other atomic emit this operator
// performs: if round A's atomic emit begins before round B's, A's writes
// land on every output channel before B's do.
func (e *Emitter[T]) BindAllOutputsAtomically(v T) error {
	e.op.atomicMu.Lock()
	defer e.op.atomicMu.Unlock()
	return e.BindAllOutputs(v)
}

// BindAllOutputValuesAtomically is the positional-values counterpart of
// BindAllOutputsAtomically, with the same cross-round ordering guarantee.
func (e *Emitter[T]) BindAllOutputValuesAtomically(vs ...T) error {
	e.op.atomicMu.Lock()
	defer e.op.atomicMu.Unlock()
	return e.BindAllOutputValues(vs...)
}

// Body is the operator's reaction: given the positional values gathered
// this round, it emits zero or more outputs through emit before
// returning. Panics are recovered and routed to the operator's onError
// handler; they never crash the fork that raised them.
type Body[T any] func(emit *Emitter[T], args []T)

// Operator drives maxForks parallel rounds of gather-then-apply over a
// fixed set of input channels, emitting onto a fixed set of output
// channels, until Stop is called.
type Operator[T any] struct {
	name     string
	p        pool.Pool
	inputs   []Channel[T]
	outputs  []Channel[T]
	maxForks int
	body     Body[T]
	onError  func(error)

	atomicMu sync.Mutex

	st  atomic.Int32
	sup *actor.Supervisor
	wg  sync.WaitGroup
}

// recognizedKeys are the only option map keys New accepts; any other key
// is rejected with a ConfigurationError, mirroring the operator factory's
// strict-options contract described in spec §4.3.
var recognizedKeys = map[string]bool{
	"inputs":   true,
	"outputs":  true,
	"maxForks": true,
	"name":     true,
	"onError":  true,
}

// New validates opts and constructs an operator in the constructed state.
// It does not start running rounds until Start is called.
//
//	opts["inputs"]   []Channel[T]       required, non-empty
//	opts["outputs"]  []Channel[T]       optional, defaults to none
//	opts["maxForks"] int                optional, defaults to 1, must be >= 1
//	opts["name"]     string             optional, defaults to a generated id
//	opts["onError"]  func(error)        optional, defaults to the diagnostic sink
func New[T any](p pool.Pool, opts map[string]any, body Body[T]) (*Operator[T], error) {
	for k := range opts {
		if !recognizedKeys[k] {
			return nil, configErr("unrecognized option " + k)
		}
	}

	rawInputs, ok := opts["inputs"]
	if !ok {
		return nil, configErr("inputs is required")
	}
	inputs, ok := rawInputs.([]Channel[T])
	if !ok || len(inputs) == 0 {
		return nil, configErr("inputs must be a non-empty []Channel[T]")
	}

	var outputs []Channel[T]
	if rawOutputs, ok := opts["outputs"]; ok {
		outputs, ok = rawOutputs.([]Channel[T])
		if !ok {
			return nil, configErr("outputs must be a []Channel[T]")
		}
	}

	maxForks := 1
	if rawMF, ok := opts["maxForks"]; ok {
		mf, ok := rawMF.(int)
		if !ok || mf < 1 {
			return nil, configErr("maxForks must be a positive int")
		}
		maxForks = mf
	}

	name := fmt.Sprintf("operator-%p", body)
	if rawName, ok := opts["name"]; ok {
		n, ok := rawName.(string)
		if !ok || n == "" {
			return nil, configErr("name must be a non-empty string")
		}
		name = n
	}

	onError := func(err error) { reportDiagnostic(name, err) }
	if rawOnError, ok := opts["onError"]; ok {
		fn, ok := rawOnError.(func(error))
		if !ok {
			return nil, configErr("onError must be a func(error)")
		}
		onError = fn
	}

	if body == nil {
		return nil, configErr("body is required")
	}

	return &Operator[T]{
		name:     name,
		p:        p,
		inputs:   inputs,
		outputs:  outputs,
		maxForks: maxForks,
		body:     body,
		onError:  onError,
		// RestartOnPanic is off: apply already recovers a body panic
		// before it can unwind Exec, so the fork never terminates from
		// an unhandled panic in normal operation. Supervisor is kept for
		// its uniform Start/Stop over the fork set, not for restarts.
		sup: actor.NewSupervisor(actor.SupervisorConf{RestartOnPanic: false}),
	}, nil
}

// Name returns the operator's configured or generated name.
func (op *Operator[T]) Name() string { return op.name }

// GetOutput returns the operator's first output channel, the handle
// surface named in spec §6. It panics if the operator was constructed
// with no outputs; callers that configured outputs always have one.
func (op *Operator[T]) GetOutput() Channel[T] {
	return op.outputs[0]
}

// Start spawns maxForks worker actors, each independently running the
// gather/apply cycle. Calling Start more than once is a no-op.
func (op *Operator[T]) Start() {
	if !op.st.CompareAndSwap(int32(stateConstructed), int32(stateRunning)) {
		return
	}
	for i := 0; i < op.maxForks; i++ {
		id := fmt.Sprintf("%s-fork-%d", op.name, i)
		op.wg.Add(1)
		fork := &fork[T]{op: op}
		factory := func() actor.Service {
			return actor.NewBlockingActor(op.p, fork, nil).WithSupervision(op.sup, id)
		}
		op.sup.SpawnChild(id, factory)
	}
}

// gather pulls one positional value from every input, in order, and
// returns them once all are available. ok is false if the operator was
// stopped while a gather request was outstanding.
func (op *Operator[T]) gather(ctx context.Context) ([]T, bool) {
	n := len(op.inputs)
	results := make([]T, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		op.inputs[i].GetValAsync(i, func(res any) {
			defer wg.Done()
			ar, ok := res.(dataflow.AsyncResult[T])
			if !ok {
				return
			}
			results[ar.Attachment.(int)] = ar.Value
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
		return results, true
	case <-ctx.Done():
		<-done
		return results, op.running()
	}
}

func (op *Operator[T]) running() bool {
	return state(op.st.Load()) == stateRunning
}

// apply invokes the body for one round, recovering a panic into onError
// instead of letting it crash the fork.
func (op *Operator[T]) apply(args []T) {
	defer func() {
		if r := recover(); r != nil {
			rtmetrics.OperatorErrors.Inc(op.name)
			op.onError(fmt.Errorf("operator: panic in body: %v", r))
		}
	}()
	op.body(&Emitter[T]{op: op}, args)
	rtmetrics.OperatorRounds.Inc(op.name)
}

// Stop asks every fork to finish its current round and then terminate;
// no new gather is started once Stop is observed. Stop does not wait for
// in-flight forks to drain — call Join for that.
func (op *Operator[T]) Stop() {
	if !op.st.CompareAndSwap(int32(stateRunning), int32(stateStopping)) {
		return
	}
	op.sup.Stop()
}

// Join blocks until every fork has returned from its run loop.
func (op *Operator[T]) Join() {
	op.wg.Wait()
	op.st.CompareAndSwap(int32(stateStopping), int32(stateStopped))
}

// fork is the Worker driving one round of gather-then-apply for an
// operator. One is spawned per maxForks slot, each as its own
// BlockingActor occupying a pool worker for the operator's lifetime.
type fork[T any] struct {
	op *Operator[T]
}

func (f *fork[T]) Exec(ctx context.Context) actor.WorkerState {
	if !f.op.running() {
		return actor.WorkerStopped
	}
	args, ok := f.op.gather(ctx)
	if !ok {
		return actor.WorkerStopped
	}
	if !f.op.running() {
		return actor.WorkerStopped
	}
	f.op.apply(args)
	return actor.WorkerRunning
}

func (f *fork[T]) OnStop() {
	f.op.wg.Done()
}

var _ actor.Worker = (*fork[T])(nil)
var _ actor.StopableWorker = (*fork[T])(nil)
