package actor

import (
	"sync"

	"github.com/czx-lab/flowrt/container"
	"github.com/czx-lab/flowrt/pool"
)

// Group owns a Pool and a set of actors that share it. Membership freezes
// once the group is started: Spawn after Start returns ErrGroupStarted.
type Group struct {
	mu      sync.Mutex
	pool    pool.Pool
	members *container.Xslices[Service]
	started bool
}

// NewGroup creates a Group backed by p. Actors spawned into the group
// should be constructed with the same pool so they share its scheduling.
func NewGroup(p pool.Pool) *Group {
	return &Group{pool: p, members: container.New[Service]()}
}

// Pool returns the pool backing this group, for constructing member actors
// against it.
func (g *Group) Pool() pool.Pool { return g.pool }

// Spawn attaches actors to the group. It returns ErrGroupStarted once the
// group has already been started; membership is frozen at that point.
func (g *Group) Spawn(actors ...Service) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return ErrGroupStarted
	}
	g.members.Append(actors...)
	return nil
}

// Start freezes membership and starts every member actor, returning the
// first error encountered (if any) after attempting to start them all.
func (g *Group) Start() error {
	g.mu.Lock()
	g.started = true
	g.mu.Unlock()

	var firstErr error
	g.members.Iterator(func(m Service) {
		if err := m.Start(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

// Stop stops every member actor.
func (g *Group) Stop() {
	g.members.Iterator(func(m Service) { m.Stop() })
}

var _ Service = (*Group)(nil)
