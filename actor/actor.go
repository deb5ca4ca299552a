package actor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/czx-lab/flowrt/pool"
	"github.com/czx-lab/flowrt/rtmetrics"
	"github.com/czx-lab/flowrt/timer"
)

// Service is the lifecycle contract shared by every schedulable unit in
// this package: the continuation-style Actor, the blocking adapter, Group,
// and Supervisor.
type Service interface {
	Start() error
	Stop()
}

type lifecycle int32

const (
	lifecycleFresh lifecycle = iota
	lifecycleActive
	lifecycleStopped
)

type timeoutKey struct{}

// FromTimeout reports whether the chunk currently executing was scheduled
// by a react timeout rather than a delivered message.
func FromTimeout(ctx context.Context) bool {
	v, _ := ctx.Value(timeoutKey{}).(bool)
	return v
}

// replyTarget is satisfied by anything capable of receiving a reply
// envelope: a full Actor[T], or the single-shot waiter used by
// SendAndWait.
type replyTarget[T any] interface {
	Service
	deliverReply(Envelope[T])
}

// Actor is the pooled, continuation-style actor described in component
// C1: its body runs as a sequence of short chunks submitted to a Pool,
// never holding a worker goroutine between chunks.
type Actor[T any] struct {
	pid  *PID
	p    pool.Pool
	disp *timer.Dispatcher
	hooks Hooks[T]
	parent *Supervisor

	mu             sync.Mutex // guards mailbox/pendingHandler (I1, atomic adopt-or-enqueue)
	mailbox        []Envelope[T]
	pendingHandler Handler[T]
	pendingTimer   *timer.Timer
	pendingSeq     uint64
	seq            atomic.Uint64

	state          atomic.Int32
	repliesEnabled atomic.Bool
	cancelled      atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

// New constructs an actor around initial, the handler that receives the
// actor's first message once Start has been called. It does not start the
// actor.
func New[T any](p pool.Pool, initial Handler[T], opts ...ActorOption[T]) *Actor[T] {
	cfg := defaultActorConfig[T]()
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, cancel := context.WithCancel(cfg.parentCtx)
	a := &Actor[T]{
		pid:    cfg.pid,
		p:      p,
		disp:   cfg.dispatcher,
		hooks:  cfg.hooks,
		parent: cfg.parent,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	a.repliesEnabled.Store(true)
	a.pendingHandler = initial
	return a
}

// PID returns the actor's process identifier.
func (a *Actor[T]) PID() *PID { return a.pid }

// Start transitions the actor from fresh to active and arms its first
// chunk. Restart after Stop is not supported: calling Start on an actor
// that has already reached the stopped state returns ErrActorStopped.
// Calling Start again on an already-active actor is a no-op that returns
// nil.
func (a *Actor[T]) Start() error {
	if !a.state.CompareAndSwap(int32(lifecycleFresh), int32(lifecycleActive)) {
		if lifecycle(a.state.Load()) == lifecycleStopped {
			return ErrActorStopped
		}
		return nil
	}
	if a.hooks != nil {
		a.hooks.AfterStart()
	}
	a.mu.Lock()
	handler := a.pendingHandler
	a.pendingHandler = nil
	if len(a.mailbox) > 0 {
		env := a.mailbox[0]
		a.mailbox = a.mailbox[1:]
		a.mu.Unlock()
		a.submit(handler, env)
		return nil
	}
	a.pendingSeq = a.seq.Add(1)
	a.pendingHandler = handler
	a.mu.Unlock()
	return nil
}

// IsActive reports whether the actor has been started and has not stopped.
func (a *Actor[T]) IsActive() bool {
	return lifecycle(a.state.Load()) == lifecycleActive
}

// Send delivers payload to the actor on behalf of sender (nil if none).
// If the actor holds an armed react handler it is adopted and scheduled
// immediately; otherwise the envelope is appended to the FIFO mailbox.
func (a *Actor[T]) Send(sender Service, payload T) error {
	if !a.IsActive() {
		return newInvalidOperation("send", ErrNotRunning)
	}
	env := Envelope[T]{Sender: sender, Payload: payload}

	a.mu.Lock()
	if a.pendingHandler != nil {
		handler := a.pendingHandler
		a.pendingHandler = nil
		if a.pendingTimer != nil {
			a.pendingTimer.Stop()
			a.pendingTimer = nil
		}
		a.mu.Unlock()
		a.submit(handler, env)
		return nil
	}
	a.mailbox = append(a.mailbox, env)
	depth := len(a.mailbox)
	a.mu.Unlock()
	rtmetrics.MailboxDepth.Set(float64(depth), a.pid.GetID())
	return nil
}

// deliverReply implements replyTarget so an Actor can be the target of
// another actor's Reply.
func (a *Actor[T]) deliverReply(env Envelope[T]) {
	if !a.IsActive() {
		return
	}
	a.mu.Lock()
	if a.pendingHandler != nil {
		handler := a.pendingHandler
		a.pendingHandler = nil
		if a.pendingTimer != nil {
			a.pendingTimer.Stop()
			a.pendingTimer = nil
		}
		a.mu.Unlock()
		a.submit(handler, env)
		return
	}
	a.mailbox = append(a.mailbox, env)
	depth := len(a.mailbox)
	a.mu.Unlock()
	rtmetrics.MailboxDepth.Set(float64(depth), a.pid.GetID())
}

// Reply sends payload back to the sender of env, if one was captured and
// replies are currently enabled.
func (a *Actor[T]) Reply(env Envelope[T], payload T) error {
	if !a.repliesEnabled.Load() {
		return newInvalidOperation("reply", ErrRepliesDisabled)
	}
	if env.Sender == nil {
		return newInvalidOperation("reply", ErrNoSender)
	}
	target, ok := env.Sender.(replyTarget[T])
	if !ok {
		return newInvalidOperation("reply", ErrNoSender)
	}
	target.deliverReply(Envelope[T]{Sender: a, Payload: payload})
	return nil
}

// ReplyIfExists is the non-erroring counterpart of Reply: it sends payload
// back to the sender of env if one was captured and replies are enabled,
// and silently does nothing otherwise (no sender, or replies disabled).
func (a *Actor[T]) ReplyIfExists(env Envelope[T], payload T) {
	_ = a.Reply(env, payload)
}

// DisableSendingReplies turns Reply into a no-op error for subsequent
// chunks.
func (a *Actor[T]) DisableSendingReplies() { a.repliesEnabled.Store(false) }

// EnableSendingReplies re-enables Reply.
func (a *Actor[T]) EnableSendingReplies() { a.repliesEnabled.Store(true) }

func (a *Actor[T]) submit(handler Handler[T], env Envelope[T]) {
	rtmetrics.ChunksInFlight.Inc(a.pid.GetID())
	if err := a.p.Execute(func() { a.runChunk(handler, env, false) }); err != nil {
		rtmetrics.ChunksInFlight.Dec(a.pid.GetID())
		// pool rejected the chunk (closed); terminate so the actor does
		// not silently wedge with an orphaned pending handler.
		a.terminate()
	}
}

func (a *Actor[T]) runChunk(handler Handler[T], env Envelope[T], timedOut bool) {
	defer rtmetrics.ChunksInFlight.Dec(a.pid.GetID())
	directive, err := a.invoke(handler, env, timedOut)
	if err != nil {
		if a.hooks != nil {
			a.hooks.OnException(err)
		}
		reportDiagnostic(a.pid.GetID(), a.seq.Load(), err)
		a.terminate()
		return
	}
	a.transition(directive)
}

func (a *Actor[T]) invoke(handler Handler[T], env Envelope[T], timedOut bool) (directive Directive[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = &UserError{Recovered: r, Stack: buf[:n]}
		}
	}()

	ctx := context.WithValue(a.ctx, timeoutKey{}, timedOut)
	return handler(ctx, env), nil
}

func (a *Actor[T]) transition(directive Directive[T]) {
	if a.cancelled.Load() {
		// transition only runs after a chunk has actually executed, so
		// reaching here with cancelled set means Stop was called while
		// this chunk was in flight: a genuine interrupt, not a mere
		// suspension. Fire the hook once, then terminate.
		if a.hooks != nil {
			a.hooks.OnInterrupt()
		}
		a.terminate()
		return
	}
	if !a.IsActive() {
		a.terminate()
		return
	}

	switch directive.kind {
	case dContinue:
		a.mu.Lock()
		if len(a.mailbox) > 0 {
			env := a.mailbox[0]
			a.mailbox = a.mailbox[1:]
			depth := len(a.mailbox)
			a.mu.Unlock()
			rtmetrics.MailboxDepth.Set(float64(depth), a.pid.GetID())
			a.submit(directive.next, env)
			return
		}
		a.pendingHandler = directive.next
		seq := a.seq.Add(1)
		a.pendingSeq = seq
		if directive.timeout > 0 {
			a.pendingTimer = a.disp.AfterFunc(directive.timeout, func() { a.onTimeout(seq, directive.next) })
		}
		a.mu.Unlock()
	default: // dStop, dNone
		a.terminate()
	}
}

func (a *Actor[T]) onTimeout(seq uint64, handler Handler[T]) {
	a.mu.Lock()
	if a.pendingHandler == nil || a.pendingSeq != seq {
		a.mu.Unlock()
		return // a message already won the race; this timeout is the loser
	}
	a.pendingHandler = nil
	a.pendingTimer = nil
	a.mu.Unlock()

	rtmetrics.ReactTimeouts.Inc(a.pid.GetID())
	if a.hooks != nil {
		a.hooks.OnTimeout()
	}
	rtmetrics.ChunksInFlight.Inc(a.pid.GetID())
	if err := a.p.Execute(func() { a.runChunk(handler, Envelope[T]{}, true) }); err != nil {
		rtmetrics.ChunksInFlight.Dec(a.pid.GetID())
	}
}

// Stop arms the cancellation flag and cancels the actor's context. If the
// actor is currently suspended on react (no chunk in flight), nothing was
// actually interrupted and it terminates immediately without the
// on-interrupt hook; otherwise termination happens cooperatively once the
// in-flight chunk returns and reaches transition, which fires the hook,
// matching the cancel-lock handoff described in spec §4.1 (Go has no
// forced thread interrupt, so cancellation here is cooperative via context
// rather than a true interrupt).
func (a *Actor[T]) Stop() {
	if !a.IsActive() {
		return
	}
	a.cancelled.Store(true)
	a.cancel()

	a.mu.Lock()
	handler := a.pendingHandler
	a.pendingHandler = nil
	a.mu.Unlock()

	if handler != nil {
		a.terminate()
	}
}

func (a *Actor[T]) terminate() {
	if !a.state.CompareAndSwap(int32(lifecycleActive), int32(lifecycleStopped)) {
		return
	}
	if a.hooks != nil {
		a.hooks.BeforeStop()
	}

	a.mu.Lock()
	drained := a.mailbox
	a.mailbox = nil
	if a.pendingTimer != nil {
		a.pendingTimer.Stop()
		a.pendingTimer = nil
	}
	a.mu.Unlock()
	rtmetrics.MailboxDepth.Set(0, a.pid.GetID())

	payloads := make([]T, 0, len(drained))
	for _, env := range drained {
		payloads = append(payloads, env.Payload)
		if a.hooks != nil {
			a.hooks.OnDeliveryError(&DeliveryError{Payload: env.Payload, Reason: ErrNotRunning})
		}
	}
	if a.hooks != nil {
		a.hooks.AfterStop(payloads)
	}

	a.doneOnce.Do(func() { close(a.done) })

	if a.parent != nil {
		a.parent.onChildStop(a.pid.GetID())
	}
}

// Join blocks until the actor has stopped, or timeout elapses if positive.
func (a *Actor[T]) Join(timeout time.Duration) error {
	if timeout <= 0 {
		<-a.done
		return nil
	}
	select {
	case <-a.done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}

var _ Service = (*Actor[any])(nil)
