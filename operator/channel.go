package operator

import "github.com/czx-lab/flowrt/dataflow"

// DFVChannel adapts a single-assignment dataflow.DFV[T] to Channel[T] so
// an operator can use a DFV as an input or output: it can be written
// exactly once, and every read yields the single bound value, whereas a
// DFQ input/output yields or accepts a new value on each read or write.
type DFVChannel[T any] struct {
	v *dataflow.DFV[T]
}

// NewDFVChannel wraps v for use as an operator input or output.
func NewDFVChannel[T any](v *dataflow.DFV[T]) *DFVChannel[T] {
	return &DFVChannel[T]{v: v}
}

// GetValAsync implements Channel.
func (c *DFVChannel[T]) GetValAsync(attachment any, sink func(any)) {
	c.v.GetValAsync(attachment, sink)
}

// LeftShift implements Channel by binding v's single slot. A second call
// returns dataflow.AlreadyBoundError, matching the DFV's own semantics.
func (c *DFVChannel[T]) LeftShift(val T) error {
	return c.v.Bind(val)
}

var _ Channel[int] = (*DFVChannel[int])(nil)
