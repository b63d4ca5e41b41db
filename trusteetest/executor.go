package trusteetest

import (
	"github.com/iov-one/trustee"
)

// ExecutorCall is one recorded call to the Executor mock.
type ExecutorCall struct {
	Target  trustee.Address
	Value   int64
	Payload []byte
}

// Executor is a mock call target that records every call and returns a
// configured result.
type Executor struct {
	// Err is returned by every call. Leave nil for success.
	Err error

	// Handler, when set, is run with the store the call was given.
	// Use it to script writes the call performs downstream.
	Handler func(db trustee.KVStore) error

	calls []ExecutorCall
}

func (e *Executor) Call(ctx trustee.Context, db trustee.KVStore, target trustee.Address, value int64, payload []byte) error {
	e.calls = append(e.calls, ExecutorCall{
		Target:  target,
		Value:   value,
		Payload: payload,
	})
	if e.Handler != nil {
		if err := e.Handler(db); err != nil {
			return err
		}
	}
	return e.Err
}

// CallCount returns the number of calls made so far.
func (e *Executor) CallCount() int {
	return len(e.calls)
}

// Calls returns all recorded calls in order.
func (e *Executor) Calls() []ExecutorCall {
	return e.calls
}
