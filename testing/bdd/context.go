package bdd

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AshkanYarmoradi/minkspec"
)

// MessageProcessor is the processor capability a scenario drives.
// *mink.Processor satisfies it.
//
// Implementations deliver the events each operation commits to the listeners
// bound to the operation's context (see mink.NotifyListeners); that is how a
// run captures its event stream.
type MessageProcessor interface {
	ExecuteCommand(ctx context.Context, handler mink.MessageHandler, command interface{}) ([]interface{}, error)
	HandleEvent(ctx context.Context, handler mink.MessageHandler, event interface{}) ([]interface{}, error)
	ExecuteQuery(ctx context.Context, query mink.QueryHandler, request interface{}) (interface{}, error)
}

//go:generate go run go.uber.org/mock/mockgen --destination=mock_processor_test.go -package=bdd -self_package=github.com/AshkanYarmoradi/minkspec/testing/bdd . MessageProcessor

// Test identifies a scenario whose event stream can be recorded.
type Test interface {
	TestID() uuid.UUID
	TestName() string
}

// TestContext holds the event streams produced during one top-level run,
// keyed by the test that produced them.
type TestContext struct {
	mu        sync.RWMutex
	processor MessageProcessor
	streams   map[uuid.UUID]*EventStream
}

// NewTestContext creates an empty TestContext for p.
func NewTestContext(p MessageProcessor) *TestContext {
	return &TestContext{
		processor: p,
		streams:   make(map[uuid.UUID]*EventStream),
	}
}

// Processor returns the processor of the run.
func (tc *TestContext) Processor() MessageProcessor {
	return tc.processor
}

// RecordEventStream stores the stream produced by test. A test can be
// recorded only once.
func (tc *TestContext) RecordEventStream(test Test, stream *EventStream) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if _, exists := tc.streams[test.TestID()]; exists {
		return &TestAlreadyRunError{Test: test.TestName()}
	}
	tc.streams[test.TestID()] = stream
	return nil
}

// EventStream returns the stream recorded for test.
func (tc *TestContext) EventStream(test Test) (*EventStream, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	stream, ok := tc.streams[test.TestID()]
	if !ok {
		return nil, &EventStreamNotFoundError{Test: test.TestName()}
	}
	return stream, nil
}

// Count returns the number of recorded streams.
func (tc *TestContext) Count() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.streams)
}

type testContextKey struct{}

// WithTestContext returns a context carrying tc.
func WithTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, testContextKey{}, tc)
}

// TestContextFrom returns the TestContext bound to ctx.
func TestContextFrom(ctx context.Context) (*TestContext, bool) {
	tc, ok := ctx.Value(testContextKey{}).(*TestContext)
	return tc, ok && tc != nil
}

// GivenContext is what a Given message is replayed against.
type GivenContext struct {
	Processor MessageProcessor
	Clock     *Clock
	Tests     *TestContext
	Logger    mink.Logger
}

// Execute runs one processor operation: the clock runs for the duration of fn
// and ctx carries both the clock and the TestContext.
func (gc *GivenContext) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx = WithTestContext(mink.WithClock(ctx, gc.Clock), gc.Tests)

	gc.Clock.Start()
	defer gc.Clock.Stop()

	return fn(ctx)
}
