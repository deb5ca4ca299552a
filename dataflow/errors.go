package dataflow

import "errors"

// AlreadyBoundError is returned by Bind on a DFV slot that already holds a
// value. BindUnique downgrades this to success when the existing value is
// structurally equal to the one offered.
var AlreadyBoundError = errors.New("dataflow: slot already bound")

// ErrUnset is the sentinel value taxonomy entry for GetVal(timeout)
// expiring before the slot was bound. Callers should prefer the boolean
// return of GetVal to test for this rather than comparing values.
var ErrUnset = errors.New("dataflow: unset (timeout)")
