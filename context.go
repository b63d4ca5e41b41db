package trustee

import (
	"context"
	"time"

	"github.com/iov-one/trustee/errors"
)

// Context is just an alias for the standard implementation. The host
// environment is expected to attach the current block time before handing
// control to any state machine operation.
type Context = context.Context

type contextKey int

const (
	contextKeyTime contextKey = iota
)

// WithBlockTime sets the block time for the given context. The block time
// is the host's notion of "now" and is the same for every operation within
// a single block.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t)
}

// BlockTime returns the current block time or an error if not present.
func BlockTime(ctx Context) (time.Time, error) {
	val, ok := ctx.Value(contextKeyTime).(time.Time)
	if !ok {
		return time.Time{}, errors.Wrap(errors.ErrHuman, "block time not present in the context")
	}
	return val, nil
}

// IsExpired returns true if the given deadline is strictly in the past
// compared to the current block time.
//
// This function panics if the block time is not present in the context.
// This must never happen as the block time is controlled by the host and
// a missing value is a programmer error.
func IsExpired(ctx Context, deadline UnixTime) bool {
	blockNow, err := BlockTime(ctx)
	if err != nil {
		panic("block time is not present")
	}
	return deadline < AsUnixTime(blockNow)
}
