package mink

import (
	"context"
	"time"
)

// Clock is the time source handlers read through MessageContext.Now.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

type clockKey struct{}

// WithClock returns a context carrying the given clock.
// The processor prefers a context clock over its own for operations
// dispatched with that context.
func WithClock(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, clockKey{}, clock)
}

// ClockFromContext returns the clock attached with WithClock.
func ClockFromContext(ctx context.Context) (Clock, bool) {
	clock, ok := ctx.Value(clockKey{}).(Clock)
	return clock, ok && clock != nil
}
