package actor

import "context"

// WorkerState is returned by Worker.Exec to tell the blocking-style
// adapter whether to keep looping.
type WorkerState int8

const (
	WorkerRunning WorkerState = iota
	WorkerStopped
)

type (
	// Worker is the body of a blocking-style actor: Exec is called
	// repeatedly, on the single pool worker the adapter occupies for its
	// lifetime, until it returns WorkerStopped.
	Worker interface {
		Exec(context.Context) WorkerState
	}

	// StartableWorker lets a Worker observe actor startup.
	StartableWorker interface {
		OnStart(context.Context)
	}

	// StopableWorker lets a Worker observe actor shutdown.
	StopableWorker interface {
		OnStop()
	}

	// WorkerFunc adapts a plain function to Worker.
	WorkerFunc func(context.Context) WorkerState
)

// Exec implements Worker.
func (f WorkerFunc) Exec(ctx context.Context) WorkerState { return f(ctx) }

var _ Worker = WorkerFunc(nil)
