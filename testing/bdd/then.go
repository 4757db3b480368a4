package bdd

import (
	"fmt"
)

// Then holds the Result of a run and accepts exactly one assertion on it.
// Assertion failures fail the test with a *TestAssertionError.
type Then[S any] struct {
	scenario *Scenario
	result   *Result[S]
	tests    *TestContext
}

// CommandThen is the Then state of a command or event run.
type CommandThen = Then[*EventStream]

// QueryThen is the Then state of a query run.
type QueryThen = Then[interface{}]

// Result returns the run's Result.
func (t *Then[S]) Result() *Result[S] {
	return t.result
}

// Tests returns the TestContext of the run.
func (t *Then[S]) Tests() *TestContext {
	return t.tests
}

// IsSuccess asserts that the operation succeeded and runs the optional
// assertion on its payload.
func (t *Then[S]) IsSuccess(assertion func(S) error) {
	s := t.scenario
	s.tb.Helper()
	s.transition("IsSuccess", StateVerified, StateThen)

	if err := t.result.IsSuccess(assertion); err != nil {
		s.tb.Fatal(err)
	}
}

// IsEventStream asserts that a command or event run succeeded and runs the
// optional assertion on the captured event stream.
func IsEventStream(then *CommandThen, assertion func(*EventStream) error) {
	then.scenario.tb.Helper()
	then.IsSuccess(assertion)
}

// InnerError continues an IsError assertion into the cause chain.
type InnerError struct {
	scenario *Scenario
	handle   *InnerErrorHandle
}

// Err returns the matched error.
func (ie *InnerError) Err() error {
	return ie.handle.Err()
}

// IsError asserts that the operation returned an error of type T and runs
// the optional assertion on it.
func IsError[T error, S any](then *Then[S], assertion func(T) error) *InnerError {
	s := then.scenario
	s.tb.Helper()
	s.transition("IsError", StateVerified, StateThen)

	handle, err := ErrorOf(then.result, assertion)
	if err != nil {
		s.tb.Fatal(err)
		return nil
	}
	return &InnerError{scenario: s, handle: handle}
}

// WithInnerError asserts that the cause of the matched error is a T and runs
// the optional assertion on it.
func WithInnerError[T error](ie *InnerError, assertion func(T) error) *InnerError {
	s := ie.scenario
	s.tb.Helper()

	handle, err := InnerErrorOf(ie.handle, assertion)
	if err != nil {
		s.tb.Fatal(err)
		return nil
	}
	return &InnerError{scenario: s, handle: handle}
}

// Response adapts a typed assertion to a query payload.
func Response[R any](assertion func(R) error) func(interface{}) error {
	return func(payload interface{}) error {
		typed, ok := payload.(R)
		if !ok {
			return &ResponseTypeMismatchError{
				Expected: typeName[R](),
				Actual:   fmt.Sprintf("%T", payload),
			}
		}
		if assertion == nil {
			return nil
		}
		return assertion(typed)
	}
}

// Equals returns an assertion comparing a payload with expected.
func Equals[R comparable](expected R) func(R) error {
	return func(actual R) error {
		if actual != expected {
			return fmt.Errorf("expected %v, got %v", expected, actual)
		}
		return nil
	}
}
