// Package pool provides the external thread pool the runtime schedules
// chunks of actor and operator work onto. The core (actor, dataflow,
// operator) never spins up its own goroutines per unit of work; it always
// submits through a Pool.
package pool

import "errors"

// ErrPoolClosed is returned by Execute once the pool has been released.
var ErrPoolClosed = errors.New("pool: closed")

// Pool is the scheduling primitive the runtime assumes. Task is run on a
// worker owned by the pool; Execute must not block on the task completing.
type Pool interface {
	// Execute submits task to run on a pool worker. It returns an error
	// only if the task could not be accepted (pool closed, queue full for
	// a non-blocking pool, etc); it never waits for task to finish.
	Execute(task func()) error
	// Running reports the number of workers currently executing a task.
	Running() int
	// Release stops accepting new work. GoPool's Release waits for
	// in-flight tasks to finish; AntsPool's returns without waiting for
	// them.
	Release()
}
