package pool

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
)

// AntsPool is the default Pool, backed by github.com/panjf2000/ants/v2.
// Sizing and tuning mirror the teacher's frame.Loop worker pool: a
// preallocated, non-purging, non-blocking pool that can be grown via Tune
// when the backlog builds up.
type AntsPool struct {
	p *ants.Pool
}

// New creates an AntsPool with the given fixed size. size <= 0 means
// ants' default (math.MaxInt32, effectively unbounded).
func New(size int) (*AntsPool, error) {
	opts := []ants.Option{
		ants.WithNonblocking(true),
		ants.WithPreAlloc(size > 0),
		ants.WithDisablePurge(true),
	}
	p, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, fmt.Errorf("pool: failed to create ants pool: %w", err)
	}
	return &AntsPool{p: p}, nil
}

// Execute implements Pool.
func (a *AntsPool) Execute(task func()) error {
	if a.p.IsClosed() {
		return ErrPoolClosed
	}
	if err := a.p.Submit(task); err != nil {
		if err == ants.ErrPoolClosed {
			return ErrPoolClosed
		}
		return fmt.Errorf("pool: submit: %w", err)
	}
	return nil
}

// Running implements Pool.
func (a *AntsPool) Running() int {
	return a.p.Running()
}

// Release implements Pool.
func (a *AntsPool) Release() {
	a.p.Release()
}

// Tune adjusts the worker capacity, mirroring frame.Loop's dynamic
// scaling based on waiting task count.
func (a *AntsPool) Tune(size int) {
	a.p.Tune(size)
}

// Waiting returns the number of tasks queued and waiting for a worker.
func (a *AntsPool) Waiting() int {
	return a.p.Waiting()
}

var _ Pool = (*AntsPool)(nil)
