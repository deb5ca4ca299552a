package actor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/czx-lab/flowrt/pool"
)

// BlockingActor is the adapter variant named in spec §4.1: it drives a
// Worker from a single long-running chunk that occupies one pool worker
// for the actor's whole lifetime, instead of releasing the worker between
// messages. It has no Send, Reply, receive or SendAndWait methods of its
// own; the Worker takes its input from whatever channel or Mailbox it
// reads.
type BlockingActor struct {
	p pool.Pool
	w Worker

	pid *PID

	ctx    context.Context
	cancel context.CancelFunc

	state    atomic.Int32
	done     chan struct{}
	doneOnce sync.Once

	parent  *Supervisor
	childID string
}

// NewBlockingActor wraps w so its Exec loop runs on p.
func NewBlockingActor(p pool.Pool, w Worker, pid *PID) *BlockingActor {
	if pid == nil {
		pid = DefaultPID()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BlockingActor{
		p:      p,
		w:      w,
		pid:    pid,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// WithSupervision ties this actor to a Supervisor child id: once its run
// loop terminates, the supervisor's restart policy (if any) fires exactly
// as it would for a continuation actor's child. Must be called before
// Start.
func (b *BlockingActor) WithSupervision(parent *Supervisor, childID string) *BlockingActor {
	b.parent = parent
	b.childID = childID
	return b
}

// PID returns the actor's process identifier.
func (b *BlockingActor) PID() *PID { return b.pid }

// Start submits the worker's run loop as a single task to the pool.
// Restart after Stop is not supported: Start on an already-stopped
// BlockingActor returns ErrActorStopped.
func (b *BlockingActor) Start() error {
	if !b.state.CompareAndSwap(int32(lifecycleFresh), int32(lifecycleActive)) {
		if lifecycle(b.state.Load()) == lifecycleStopped {
			return ErrActorStopped
		}
		return nil
	}
	_ = b.p.Execute(b.run)
	return nil
}

func (b *BlockingActor) run() {
	defer b.terminate()

	if sw, ok := b.w.(StartableWorker); ok {
		sw.OnStart(b.ctx)
	}

	for {
		select {
		case <-b.ctx.Done():
			return
		default:
		}
		if b.step() == WorkerStopped {
			return
		}
	}
}

func (b *BlockingActor) step() (state WorkerState) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			reportDiagnostic(b.pid.GetID(), 0, &UserError{Recovered: r, Stack: buf[:n]})
			state = WorkerStopped
		}
	}()
	return b.w.Exec(b.ctx)
}

func (b *BlockingActor) terminate() {
	if !b.state.CompareAndSwap(int32(lifecycleActive), int32(lifecycleStopped)) {
		return
	}
	if sw, ok := b.w.(StopableWorker); ok {
		sw.OnStop()
	}
	b.doneOnce.Do(func() { close(b.done) })
	if b.parent != nil {
		b.parent.onChildStop(b.childID)
	}
}

// Stop cancels the actor's context; the Worker's Exec loop is expected to
// observe ctx.Done() cooperatively and return WorkerStopped.
func (b *BlockingActor) Stop() {
	if lifecycle(b.state.Load()) != lifecycleActive {
		return
	}
	b.cancel()
}

// IsActive reports whether the actor is still running its loop.
func (b *BlockingActor) IsActive() bool {
	return lifecycle(b.state.Load()) == lifecycleActive
}

// Join blocks until the worker loop has returned, or timeout elapses.
func (b *BlockingActor) Join(timeout time.Duration) error {
	if timeout <= 0 {
		<-b.done
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}

var _ Service = (*BlockingActor)(nil)
