package timer

import (
	"github.com/czx-lab/flowrt/xlog"
	"runtime"
	"time"
)

type (
	// Timer is a struct that holds a time.Timer and a callback function.
	// The Timer struct is used to manage timers in the dispatcher.
	Timer struct {
		t  *time.Timer
		cb func()
	}

	// Dispatcher is a struct that holds a channel for timers.
	// The Dispatcher struct is used to manage the timers and their callbacks.
	// It is responsible for dispatching the timers and executing their callbacks.
	Dispatcher struct {
		ChanTimer chan *Timer
		closeCh   chan struct{}
	}
)

// NewDispatcher creates a new Dispatcher with a channel for timers, and
// starts a goroutine that drains ChanTimer and invokes each fired Timer's
// callback. Call Close to stop draining and release the goroutine.
func NewDispatcher(l int) *Dispatcher {
	disp := new(Dispatcher)
	disp.ChanTimer = make(chan *Timer, l)
	disp.closeCh = make(chan struct{})
	go disp.serve()
	return disp
}

func (disp *Dispatcher) serve() {
	for {
		select {
		case t := <-disp.ChanTimer:
			t.Cb()
		case <-disp.closeCh:
			return
		}
	}
}

// Close stops the dispatcher's drain goroutine. Timers already in flight
// may still be delivered to ChanTimer after Close returns; callers that
// need a clean shutdown should Stop every outstanding Timer first.
func (disp *Dispatcher) Close() {
	select {
	case <-disp.closeCh:
	default:
		close(disp.closeCh)
	}
}

// The Stop method stops the timer and clears its callback without executing it.
// It is called when the timer is no longer needed.
func (t *Timer) Stop() {
	t.t.Stop()
	t.cb = nil
}

// Cb is a method that executes the callback function of the timer.
// It is called when the timer expires and the callback function is set.
// The method uses a deferred function to recover from any panic that may occur during the execution of the callback function.
func (t *Timer) Cb() {
	defer func() {
		t.cb = nil
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			l := runtime.Stack(buf, false)
			xlog.Write().Sugar().Errorf("timer panic error %v: %s", r, buf[:l])
		}
	}()

	if t.cb != nil {
		t.cb()
	}
}

// AfterFunc creates a new Timer that will execute the callback function after the specified duration.
// The method takes a duration and a callback function as parameters.
// It returns a pointer to the Timer struct that was created.
func (disp *Dispatcher) AfterFunc(d time.Duration, cb func()) *Timer {
	t := new(Timer)
	t.cb = cb
	t.t = time.AfterFunc(d, func() {
		disp.ChanTimer <- t
	})
	return t
}
