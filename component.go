package flowrt

import (
	"runtime"
	"sync"

	"github.com/czx-lab/flowrt/xlog"
	"go.uber.org/zap"
)

var (
	defaultIsStackBuf  = false
	defaultStackBufLen = 4096
	components         []*registered
)

type (
	// ComponentConf configures panic reporting during Destroy.
	ComponentConf struct {
		IsStackBuf  bool
		StackBufLen int
	}

	// Component is a process-level runtime unit: something that owns its
	// own pool, actor groups, supervisors, or operators, and needs a
	// coordinated init/run/teardown sequence around them. Run is expected
	// to block (e.g. on a Group or Supervisor's Join-equivalent) until
	// done is signaled.
	Component interface {
		Init()
		Destroy()
		Run(done chan struct{})
	}

	registered struct {
		c   Component
		wg  sync.WaitGroup
		sig chan struct{}
	}
)

// MustConf sets panic-reporting behavior for Destroy. Call before Run.
func MustConf(conf ComponentConf) {
	defaultIsStackBuf = conf.IsStackBuf
	defaultStackBufLen = conf.StackBufLen
}

// Register adds c to the set of components Init/Run/Destroy manage. Call
// before Init.
func Register(c Component) {
	components = append(components, &registered{c: c, sig: make(chan struct{}, 1)})
}

// Init initializes every registered component, then starts each one's Run
// loop on its own goroutine.
func Init() {
	for _, r := range components {
		r.c.Init()
	}
	for _, r := range components {
		r.wg.Add(1)
		go run(r)
	}
}

// Destroy signals every component to stop, in reverse registration order,
// waiting for each one's Run loop to return before destroying the next.
func Destroy() {
	for i := len(components) - 1; i >= 0; i-- {
		r := components[i]
		r.sig <- struct{}{}
		r.wg.Wait()
		destroy(r)
	}
}

func run(r *registered) {
	r.c.Run(r.sig)
	r.wg.Done()
}

func destroy(r *registered) {
	defer func() {
		if rec := recover(); rec != nil {
			if defaultIsStackBuf {
				buf := make([]byte, defaultStackBufLen)
				l := runtime.Stack(buf, false)
				xlog.Write().Sugar().Errorf("%v: %s", rec, buf[:l])
			} else {
				xlog.Write().Error("component destroy panic", zap.Any("panic", rec))
			}
		}
	}()
	r.c.Destroy()
}
