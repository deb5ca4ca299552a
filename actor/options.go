package actor

import (
	"context"

	"github.com/czx-lab/flowrt/container/recycler"
	"github.com/czx-lab/flowrt/timer"
)

// mboxChanCap is the default capacity of a Mailbox's channels, used by the
// blocking-style adapter.
const mboxChanCap = 1024

type (
	option func(o *options)
	// MboxOpt configures a Mailbox used by the blocking-style adapter.
	MboxOpt option

	options struct {
		Mailbox mboxOpts
	}

	mboxOpts struct {
		ID       string
		Capacity int
		Recycler recycler.Recycler
	}
)

// Id sets the ID of the mailbox.
func Id(id string) MboxOpt {
	return func(o *options) { o.Mailbox.ID = id }
}

// Cap sets the capacity of the mailbox channel.
func Cap(cap int) MboxOpt {
	return func(o *options) { o.Mailbox.Capacity = cap }
}

// WithRecycler sets the recycler for the mailbox's internal queue.
func WithRecycler(r recycler.Recycler) MboxOpt {
	return func(o *options) { o.Mailbox.Recycler = r }
}

func newOptions(opts ...MboxOpt) options {
	opt := defaultOptions()
	for _, v := range opts {
		v(opt)
	}
	return *opt
}

func defaultOptions() *options {
	return &options{
		Mailbox: mboxOpts{
			Capacity: mboxChanCap,
			Recycler: recycler.New(),
		},
	}
}

// actorConfig holds construction-time configuration for a continuation
// style Actor[T]; it is separate from mboxOpts because it carries a
// type-parameterized Hooks[T].
type actorConfig[T any] struct {
	pid        *PID
	parentCtx  context.Context
	dispatcher *timer.Dispatcher
	hooks      Hooks[T]
	parent     *Supervisor
}

// ActorOption configures an Actor[T] at construction time.
type ActorOption[T any] func(*actorConfig[T])

func defaultActorConfig[T any]() *actorConfig[T] {
	return &actorConfig[T]{
		pid:        DefaultPID(),
		parentCtx:  context.Background(),
		dispatcher: timer.NewDispatcher(64),
		hooks:      NoopHooks[T]{},
	}
}

// WithPID assigns a specific PID instead of a freshly generated one.
func WithPID[T any](pid *PID) ActorOption[T] {
	return func(c *actorConfig[T]) { c.pid = pid }
}

// WithContext parents the actor's cancellation context.
func WithContext[T any](ctx context.Context) ActorOption[T] {
	return func(c *actorConfig[T]) { c.parentCtx = ctx }
}

// WithDispatcher shares a timer.Dispatcher across actors instead of giving
// each one its own.
func WithDispatcher[T any](d *timer.Dispatcher) ActorOption[T] {
	return func(c *actorConfig[T]) { c.dispatcher = d }
}

// WithHooks installs lifecycle hooks.
func WithHooks[T any](h Hooks[T]) ActorOption[T] {
	return func(c *actorConfig[T]) { c.hooks = h }
}

// WithParent attaches the actor to a Supervisor so panics route through
// the supervisor's restart policy.
func WithParent[T any](s *Supervisor) ActorOption[T] {
	return func(c *actorConfig[T]) { c.parent = s }
}
