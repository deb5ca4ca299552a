package actor

import (
	"sync"
	"time"

	"github.com/czx-lab/flowrt/container/cmap"
	"github.com/czx-lab/flowrt/container/recycler"
)

// SupervisorConf configures restart behavior.
type SupervisorConf struct {
	// RestartOnPanic restarts a child whose chunk terminated via a
	// recovered panic (on-exception path).
	RestartOnPanic bool
	// MaxRestarts caps restarts within TimeWindow; 0 means unlimited.
	MaxRestarts int
	TimeWindow  time.Duration
	Recycler    recycler.Recycler
}

type childSpec struct {
	mu      sync.Mutex
	factory func() Service
	current Service
}

// Supervisor owns a set of children identified by string id, each
// constructed from a factory so it can be rebuilt after the continuation
// actor it wraps reaches its terminal stopped state. This is the restart
// policy the operator runtime's fork manager repurposes for its own
// supervised worker actors.
type Supervisor struct {
	conf     SupervisorConf
	children *cmap.CMap[string, *childSpec]
	restarts *cmap.CMap[string, []time.Time]
}

// NewSupervisor creates a Supervisor with the given configuration.
func NewSupervisor(conf SupervisorConf) *Supervisor {
	if conf.Recycler == nil {
		conf.Recycler = recycler.New()
	}
	return &Supervisor{
		conf:     conf,
		children: cmap.New[string, *childSpec]().WithRecycler(conf.Recycler),
		restarts: cmap.New[string, []time.Time]().WithRecycler(conf.Recycler),
	}
}

// SpawnChild registers a child under id, built by factory, and starts it.
// factory is retained so the child can be rebuilt on restart.
func (s *Supervisor) SpawnChild(id string, factory func() Service) {
	child := factory()
	spec := &childSpec{factory: factory, current: child}
	s.children.Set(id, spec)
	_ = child.Start()
}

// StopChild stops and forgets the child registered under id.
func (s *Supervisor) StopChild(id string) {
	if spec, ok := s.children.Get(id); ok {
		spec.mu.Lock()
		spec.current.Stop()
		spec.mu.Unlock()
		s.children.Delete(id)
	}
}

// Start starts every currently registered child, returning the first
// error encountered (if any) after attempting to start them all.
func (s *Supervisor) Start() error {
	var firstErr error
	s.children.Iterator(func(_ string, spec *childSpec) bool {
		spec.mu.Lock()
		err := spec.current.Start()
		spec.mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// Stop stops every registered child.
func (s *Supervisor) Stop() {
	s.children.Iterator(func(_ string, spec *childSpec) bool {
		spec.mu.Lock()
		spec.current.Stop()
		spec.mu.Unlock()
		return true
	})
}

// onChildStop is called by a child Actor when it reaches its terminal
// stopped state. If RestartOnPanic is set and the restart budget is not
// exhausted, a fresh instance is built from the child's factory and
// started in its place.
func (s *Supervisor) onChildStop(id string) {
	if !s.conf.RestartOnPanic {
		return
	}
	spec, ok := s.children.Get(id)
	if !ok {
		return
	}

	if s.conf.MaxRestarts > 0 {
		now := time.Now()
		times, _ := s.restarts.Get(id)
		var valid []time.Time
		for _, t := range times {
			if now.Sub(t) <= s.conf.TimeWindow {
				valid = append(valid, t)
			}
		}
		if len(valid) >= s.conf.MaxRestarts {
			s.restarts.Set(id, valid)
			return
		}
		valid = append(valid, now)
		s.restarts.Set(id, valid)
	}

	spec.mu.Lock()
	spec.current = spec.factory()
	next := spec.current
	spec.mu.Unlock()
	_ = next.Start()
}

var _ Service = (*Supervisor)(nil)
