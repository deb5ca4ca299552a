package actor

import "errors"

// Control signals. The scheduler acts on the Directive a chunk returns, not
// on these values; no code path in this package returns errTerminate, and
// it is never surfaced to callers of Send.
var (
	// errTerminate marks a chunk that called Stop() or fell through with
	// no continuation armed.
	errTerminate = errors.New("actor: terminate")
)

var (
	// ErrActorStopped is returned by Start on an actor that has already
	// reached the stopped state. Restart after stop is not supported.
	ErrActorStopped = errors.New("actor: already stopped")
	// ErrNotRunning is returned, wrapped, by Send when the actor has not
	// been started or has already stopped.
	ErrNotRunning = errors.New("actor: not running")
	// ErrNoSender is returned by Reply when the envelope being processed
	// carries no sender to reply to.
	ErrNoSender = errors.New("actor: no current sender")
	// ErrRepliesDisabled is returned by Reply when the actor has disabled
	// sending replies.
	ErrRepliesDisabled = errors.New("actor: replies disabled")
	// ErrGroupStarted is returned by Group.Spawn once the group has been
	// started; membership freezes at that point.
	ErrGroupStarted = errors.New("actor: group already started")
)

// InvalidOperationError wraps an operation attempted against an actor in a
// state that does not support it (send/receive on a stopped actor, reply
// with replies disabled, reply with no current sender).
type InvalidOperationError struct {
	Op  string
	Err error
}

func (e *InvalidOperationError) Error() string {
	return "actor: invalid operation " + e.Op + ": " + e.Err.Error()
}

func (e *InvalidOperationError) Unwrap() error { return e.Err }

func newInvalidOperation(op string, err error) *InvalidOperationError {
	return &InvalidOperationError{Op: op, Err: err}
}

// DeliveryError is raised against payloads still sitting in the mailbox
// when the actor stops, via the on-delivery-error hook.
type DeliveryError struct {
	Payload any
	Reason  error
}

func (e *DeliveryError) Error() string {
	return "actor: undelivered payload: " + e.Reason.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Reason }

// UserError wraps a panic recovered from a chunk body, so the on-exception
// hook and the diagnostic sink see a normal error value.
type UserError struct {
	Recovered any
	Stack     []byte
}

func (e *UserError) Error() string {
	return "actor: recovered panic in chunk"
}
