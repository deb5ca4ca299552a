package actor

import (
	"context"
	"time"
)

// Envelope is the unit of delivery into an actor's mailbox. Sender is the
// Service the caller passed to Send (nil if none); it is not captured
// automatically from the calling actor.
type Envelope[T any] struct {
	Sender  Service
	Payload T
}

// Handler is a continuation: the code to run when the actor's next message
// arrives. It returns a Directive describing what the actor does after
// processing this chunk.
type Handler[T any] func(ctx context.Context, env Envelope[T]) Directive[T]

type directiveKind int8

const (
	// dNone is the zero value: fall-through, implies termination.
	dNone directiveKind = iota
	dContinue
	dStop
)

// Directive is returned by a Handler to tell the scheduler what chunk, if
// any, runs next.
type Directive[T any] struct {
	kind    directiveKind
	next    Handler[T]
	timeout time.Duration
}

// React arms handler as the continuation for the actor's next message,
// with no timeout. ReactTimeout is the variant that also schedules a
// synthetic timeout chunk.
func React[T any](handler Handler[T]) Directive[T] {
	return Directive[T]{kind: dContinue, next: handler}
}

// ReactTimeout is React with a timeout: if no message arrives within d, the
// actor is rescheduled with a timeout envelope instead.
func ReactTimeout[T any](d time.Duration, handler Handler[T]) Directive[T] {
	return Directive[T]{kind: dContinue, next: handler, timeout: d}
}

// Stop terminates the actor after the current chunk.
func Stop[T any]() Directive[T] {
	return Directive[T]{kind: dStop}
}
