package operator

import (
	"context"

	"github.com/czx-lab/flowrt/container/cqueue"
	"github.com/czx-lab/flowrt/dataflow"
	"github.com/czx-lab/flowrt/pool"
)

// XchanChannel adapts a container/cqueue.Xchan — an elastic, ring-buffered
// pipe between an input and output channel — to the Channel interface, for
// operator wiring where a producer and its forks run at different rates
// and neither side should block on the other beyond the configured
// buffer.
type XchanChannel[T any] struct {
	x *cqueue.Xchan[T]
	p pool.Pool
}

// NewXchanChannel creates an XchanChannel backed by a fresh Xchan. The
// channel stops draining once ctx is done.
func NewXchanChannel[T any](ctx context.Context, p pool.Pool, conf cqueue.XchanConf) *XchanChannel[T] {
	return &XchanChannel[T]{x: cqueue.NewXchan[T](ctx, conf), p: p}
}

// LeftShift writes v to the channel's input side, blocking only as long as
// the input channel's own buffer is full.
func (c *XchanChannel[T]) LeftShift(v T) error {
	c.x.In() <- v
	return nil
}

// GetValAsync reads one value off the channel's output side on the pool,
// delivering it to sink once available. It delivers nothing if the
// channel's output closes first (ctx done).
func (c *XchanChannel[T]) GetValAsync(attachment any, sink func(any)) {
	_ = c.p.Execute(func() {
		v, ok := <-c.x.Out()
		if !ok {
			return
		}
		if attachment != nil {
			sink(dataflow.AsyncResult[T]{Attachment: attachment, Value: v})
			return
		}
		sink(v)
	})
}

var _ Channel[int] = (*XchanChannel[int])(nil)
