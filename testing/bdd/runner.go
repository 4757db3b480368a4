package bdd

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AshkanYarmoradi/minkspec"
)

// Runnable is a prepared scenario that can be replayed as part of another
// scenario's Given phase.
type Runnable interface {
	Test
	runNested(ctx context.Context, gc *GivenContext) error
}

type operation[S any] struct {
	name    string
	kind    mink.MessageKind
	message interface{}
	invoke  func(ctx context.Context, p MessageProcessor, message interface{}) (interface{}, error)
	payload func(response interface{}, stream *EventStream) S
}

// Run is a scenario whose When operation is chosen and which is ready to run.
type Run[S any] struct {
	scenario    *Scenario
	op          operation[S]
	expectError bool
}

func newRun[S any](s *Scenario, op operation[S]) *Run[S] {
	return &Run[S]{scenario: s, op: op}
}

// TestID implements Test.
func (r *Run[S]) TestID() uuid.UUID {
	return r.scenario.id
}

// TestName implements Test.
func (r *Run[S]) TestName() string {
	return r.scenario.name
}

// ExpectError declares that the operation is expected to return an error.
// The error is then captured in the Result instead of failing the test.
func (r *Run[S]) ExpectError() *Run[S] {
	r.scenario.require("ExpectError", StateReadyToRun)
	r.expectError = true
	return r
}

// Run replays the Given history, executes the When operation and returns the
// Then state holding its Result.
//
// Errors from the Given phase, and errors from the When operation that were
// not expected, fail the test with the error unchanged. A Result that no
// assertion consumes fails the test when it finishes.
func (r *Run[S]) Run(ctx context.Context) *Then[S] {
	s := r.scenario
	s.tb.Helper()
	s.transition("Run", StateThen, StateReadyToRun)

	result, tests, err := r.execute(ctx)
	if err != nil {
		s.tb.Fatal(err)
		return nil
	}

	s.tb.Cleanup(func() {
		if !result.Verified() {
			s.tb.Error(&MissingResultError{Test: s.name})
		}
	})

	return &Then[S]{scenario: s, result: result, tests: tests}
}

// execute runs the scenario as a top-level run with a fresh TestContext.
func (r *Run[S]) execute(ctx context.Context) (*Result[S], *TestContext, error) {
	s := r.scenario
	tests := NewTestContext(s.processor)
	gc := &GivenContext{
		Processor: s.processor,
		Clock:     s.clock,
		Tests:     tests,
		Logger:    s.logger,
	}

	info := RunInfo{
		ID:        s.id,
		Name:      s.name,
		Operation: r.op.name,
		Kind:      r.op.kind,
		StartedAt: time.Now(),
	}
	if r.op.message != nil {
		if _, isFactory := r.op.message.(MessageFactory); !isFactory {
			info.MessageType = mink.MessageType(r.op.message)
		}
	}

	for _, o := range s.observers {
		ctx = o.RunStarted(ctx, info)
	}

	result, err := r.runPhases(ctx, gc)

	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeError
	case result.IsFailure():
		outcome = OutcomeFailure
	}
	for i := len(s.observers) - 1; i >= 0; i-- {
		s.observers[i].RunFinished(ctx, info, outcome, err)
	}

	return result, tests, err
}

// runNested replays the scenario inside another one. The replayed scenario
// is finished afterwards and cannot be run on its own.
func (r *Run[S]) runNested(ctx context.Context, gc *GivenContext) error {
	r.scenario.transition("Scenario", StateVerified, StateReadyToRun, StateVerified)
	_, err := r.runPhases(ctx, gc)
	return err
}

// runPhases replays the Given history against gc and executes the When
// operation once.
func (r *Run[S]) runPhases(ctx context.Context, gc *GivenContext) (*Result[S], error) {
	s := r.scenario

	if err := s.givenSequence().HandleWith(ctx, gc); err != nil {
		s.logger.Error("Given phase failed", "scenario", s.name, "error", err)
		return nil, err
	}

	message, err := resolveMessage(gc.Tests, r.op.message)
	if err != nil {
		return nil, err
	}

	response, stream, opErr := r.when(ctx, gc, message)

	if opErr != nil {
		if r.expectError {
			s.logger.Info("When operation failed as expected",
				"scenario", s.name,
				"operation", r.op.name,
				"error", opErr,
			)
			return Failure[S](opErr), nil
		}
		s.logger.Error("When operation failed",
			"scenario", s.name,
			"operation", r.op.name,
			"error", opErr,
		)
		return nil, opErr
	}

	if r.expectError {
		return nil, &TestAssertionError{
			Message: r.op.name + " was expected to return an error",
			Cause:   ErrExpectedErrorNotReturned,
		}
	}

	if err := gc.Tests.RecordEventStream(s, stream); err != nil {
		return nil, err
	}

	s.logger.Info("When operation succeeded",
		"scenario", s.name,
		"operation", r.op.name,
		"events", stream.Len(),
	)
	return Success(r.op.payload(response, stream)), nil
}

// when executes the operation with a listener bound to its context, so the
// stream holds exactly the events this operation and the operations it
// started published. Concurrent runs on the same processor are not seen.
func (r *Run[S]) when(ctx context.Context, gc *GivenContext, message interface{}) (interface{}, *EventStream, error) {
	var (
		mu       sync.Mutex
		captured []interface{}
	)
	ctx = mink.WithEventListener(ctx, func(event interface{}) {
		mu.Lock()
		defer mu.Unlock()
		captured = append(captured, event)
	})

	var response interface{}
	err := gc.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		response, opErr = r.op.invoke(ctx, gc.Processor, message)
		return opErr
	})
	if err != nil {
		return nil, nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return response, NewEventStream(captured...), nil
}
