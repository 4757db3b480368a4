package bdd

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Use errors.Is() to check for these errors.
var (
	// ErrTestAssertionFailed is matched by every *TestAssertionError.
	ErrTestAssertionFailed = errors.New("bdd: test assertion failed")

	// ErrInvalidOperation indicates the scenario API was used out of order.
	ErrInvalidOperation = errors.New("bdd: invalid operation")

	// ErrInvalidArgument indicates a nil or otherwise unusable argument.
	ErrInvalidArgument = errors.New("bdd: invalid argument")

	// ErrArgumentOutOfRange indicates an argument outside its permitted range.
	ErrArgumentOutOfRange = errors.New("bdd: argument out of range")

	// ErrMissingResult indicates a run finished without its result being verified.
	ErrMissingResult = errors.New("bdd: result was never verified")

	// ErrTestAlreadyRun indicates an event stream was recorded twice for one test.
	ErrTestAlreadyRun = errors.New("bdd: test already run")

	// ErrEventStreamNotFound indicates no event stream was recorded for a test.
	ErrEventStreamNotFound = errors.New("bdd: event stream not found")

	// ErrEventNotFound indicates an event stream has no event at the requested index.
	ErrEventNotFound = errors.New("bdd: event not found")

	// ErrEventTypeMismatch indicates an event is not of the expected type.
	ErrEventTypeMismatch = errors.New("bdd: event type mismatch")

	// ErrExpectedErrorNotReturned indicates a run expected an error but the operation succeeded.
	ErrExpectedErrorNotReturned = errors.New("bdd: expected error was not returned")

	// ErrErrorNotReturned indicates an error assertion was made on a successful result.
	ErrErrorNotReturned = errors.New("bdd: no error was returned")

	// ErrUnexpectedError indicates a success assertion was made on a failed result.
	ErrUnexpectedError = errors.New("bdd: unexpected error")

	// ErrErrorTypeMismatch indicates the returned error is not of the expected type.
	ErrErrorTypeMismatch = errors.New("bdd: error type mismatch")

	// ErrErrorAssertionFailed indicates the assertion on a returned error failed.
	ErrErrorAssertionFailed = errors.New("bdd: error assertion failed")

	// ErrInnerErrorAbsent indicates an error has no inner error.
	ErrInnerErrorAbsent = errors.New("bdd: inner error absent")

	// ErrEventMismatch indicates an event differs from the expected value.
	ErrEventMismatch = errors.New("bdd: event mismatch")

	// ErrTimestampMismatch indicates a timestamp differs from the expected clock reading.
	ErrTimestampMismatch = errors.New("bdd: timestamp mismatch")

	// ErrResponseTypeMismatch indicates a query response is not of the expected type.
	ErrResponseTypeMismatch = errors.New("bdd: response type mismatch")
)

// TestAssertionError is the single error kind for a failed assertion.
// Cause carries the specific failure.
type TestAssertionError struct {
	Message string
	Cause   error
}

// Error returns the error message.
func (e *TestAssertionError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("bdd: test assertion failed: %s: %v", e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("bdd: test assertion failed: %v", e.Cause)
	case e.Message != "":
		return "bdd: test assertion failed: " + e.Message
	default:
		return ErrTestAssertionFailed.Error()
	}
}

// Is reports whether this error matches the target error.
func (e *TestAssertionError) Is(target error) bool {
	return target == ErrTestAssertionFailed
}

// Unwrap returns the underlying cause for errors.Unwrap().
func (e *TestAssertionError) Unwrap() error {
	return e.Cause
}

// NewTestAssertionError wraps cause. A cause that already is a
// *TestAssertionError is returned as is.
func NewTestAssertionError(cause error) *TestAssertionError {
	var existing *TestAssertionError
	if errors.As(cause, &existing) {
		return existing
	}
	return &TestAssertionError{Cause: cause}
}

// InvalidOperationError reports an operation attempted in the wrong scenario state.
// Attempted is the state the operation would have moved to, when known.
type InvalidOperationError struct {
	Operation string
	Current   string
	Attempted string
	Reason    string
}

// Error returns the error message.
func (e *InvalidOperationError) Error() string {
	msg := fmt.Sprintf("bdd: invalid operation %s in state %s", e.Operation, e.Current)
	if e.Attempted != "" {
		msg += " (attempted " + e.Attempted + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether this error matches the target error.
func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// ArgumentError reports an unusable argument.
type ArgumentError struct {
	Name   string
	Reason string
}

// Error returns the error message.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("bdd: invalid argument %s: %s", e.Name, e.Reason)
}

// Is reports whether this error matches the target error.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ArgumentOutOfRangeError reports an argument outside its permitted range.
type ArgumentOutOfRangeError struct {
	Name   string
	Value  interface{}
	Reason string
}

// Error returns the error message.
func (e *ArgumentOutOfRangeError) Error() string {
	return fmt.Sprintf("bdd: argument %s out of range (%v): %s", e.Name, e.Value, e.Reason)
}

// Is reports whether this error matches the target error.
func (e *ArgumentOutOfRangeError) Is(target error) bool {
	return target == ErrArgumentOutOfRange
}

// MissingResultError reports a run whose result was never asserted.
type MissingResultError struct {
	Test string
}

// Error returns the error message.
func (e *MissingResultError) Error() string {
	return fmt.Sprintf("bdd: result of %q was never verified; call an assertion on Then", e.Test)
}

// Is reports whether this error matches the target error.
func (e *MissingResultError) Is(target error) bool {
	return target == ErrMissingResult
}

// TestAlreadyRunError reports a second event stream recorded for one test.
type TestAlreadyRunError struct {
	Test string
}

// Error returns the error message.
func (e *TestAlreadyRunError) Error() string {
	return fmt.Sprintf("bdd: test %q has already run", e.Test)
}

// Is reports whether this error matches the target error.
func (e *TestAlreadyRunError) Is(target error) bool {
	return target == ErrTestAlreadyRun
}

// EventStreamNotFoundError reports a test without a recorded event stream.
type EventStreamNotFoundError struct {
	Test string
}

// Error returns the error message.
func (e *EventStreamNotFoundError) Error() string {
	return fmt.Sprintf("bdd: no event stream recorded for test %q", e.Test)
}

// Is reports whether this error matches the target error.
func (e *EventStreamNotFoundError) Is(target error) bool {
	return target == ErrEventStreamNotFound
}

// EventNotFoundError reports an index past the end of an event stream.
type EventNotFoundError struct {
	Index        int
	Count        int
	ExpectedType string
}

// Error returns the error message.
func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("bdd: expected event of type %s at index %d, but the stream has %d event(s)",
		e.ExpectedType, e.Index, e.Count)
}

// Is reports whether this error matches the target error.
func (e *EventNotFoundError) Is(target error) bool {
	return target == ErrEventNotFound
}

// EventCountError reports an event stream of the wrong length.
type EventCountError struct {
	Expected int
	Actual   int
	Events   []interface{}
}

// Error returns the error message.
func (e *EventCountError) Error() string {
	return fmt.Sprintf("bdd: expected %d event(s), got %d: %+v", e.Expected, e.Actual, e.Events)
}

// Is reports whether this error matches the target error.
func (e *EventCountError) Is(target error) bool {
	return target == ErrEventNotFound
}

// EventTypeMismatchError reports an event of an unexpected type.
type EventTypeMismatchError struct {
	Index    int
	Expected string
	Actual   string
}

// Error returns the error message.
func (e *EventTypeMismatchError) Error() string {
	return fmt.Sprintf("bdd: expected event of type %s at index %d, got %s", e.Expected, e.Index, e.Actual)
}

// Is reports whether this error matches the target error.
func (e *EventTypeMismatchError) Is(target error) bool {
	return target == ErrEventTypeMismatch
}

// EventMismatchError reports an event that differs from the expected value.
type EventMismatchError struct {
	Index    int
	Expected interface{}
	Actual   interface{}
}

// Error returns the error message.
func (e *EventMismatchError) Error() string {
	return fmt.Sprintf("bdd: event %d mismatch:\nexpected: %+v\nactual:   %+v", e.Index, e.Expected, e.Actual)
}

// Is reports whether this error matches the target error.
func (e *EventMismatchError) Is(target error) bool {
	return target == ErrEventMismatch
}

// ErrorNotReturnedError reports an error assertion made on a successful result.
type ErrorNotReturnedError struct {
	Expected string
}

// Error returns the error message.
func (e *ErrorNotReturnedError) Error() string {
	return fmt.Sprintf("bdd: expected error of type %s, but no error was returned", e.Expected)
}

// Is reports whether this error matches the target error.
func (e *ErrorNotReturnedError) Is(target error) bool {
	return target == ErrErrorNotReturned
}

// UnexpectedError reports a success assertion made on a failed result.
type UnexpectedError struct {
	Err error
}

// Error returns the error message.
func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("bdd: expected success, but got error %T: %v", e.Err, e.Err)
}

// Is reports whether this error matches the target error.
func (e *UnexpectedError) Is(target error) bool {
	return target == ErrUnexpectedError
}

// Unwrap returns the error that was returned by the operation.
func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// ErrorTypeMismatchError reports a returned error of an unexpected type.
type ErrorTypeMismatchError struct {
	Expected string
	Actual   string
	Err      error
}

// Error returns the error message.
func (e *ErrorTypeMismatchError) Error() string {
	return fmt.Sprintf("bdd: expected error of type %s, got %s: %v", e.Expected, e.Actual, e.Err)
}

// Is reports whether this error matches the target error.
func (e *ErrorTypeMismatchError) Is(target error) bool {
	return target == ErrErrorTypeMismatch
}

// ErrorAssertionFailedError reports a failed assertion on a returned error.
type ErrorAssertionFailedError struct {
	Type  string
	Cause error
}

// Error returns the error message.
func (e *ErrorAssertionFailedError) Error() string {
	return fmt.Sprintf("bdd: assertion on error %s failed: %v", e.Type, e.Cause)
}

// Is reports whether this error matches the target error.
func (e *ErrorAssertionFailedError) Is(target error) bool {
	return target == ErrErrorAssertionFailed
}

// Unwrap returns the assertion failure.
func (e *ErrorAssertionFailedError) Unwrap() error {
	return e.Cause
}

// InnerErrorAbsentError reports an error without an inner error.
type InnerErrorAbsentError struct {
	Expected string
	Outer    string
}

// Error returns the error message.
func (e *InnerErrorAbsentError) Error() string {
	return fmt.Sprintf("bdd: expected inner error of type %s, but %s has no inner error", e.Expected, e.Outer)
}

// Is reports whether this error matches the target error.
func (e *InnerErrorAbsentError) Is(target error) bool {
	return target == ErrInnerErrorAbsent
}

// ResponseTypeMismatchError reports a query response of an unexpected type.
type ResponseTypeMismatchError struct {
	Expected string
	Actual   string
}

// Error returns the error message.
func (e *ResponseTypeMismatchError) Error() string {
	return fmt.Sprintf("bdd: expected response of type %s, got %s", e.Expected, e.Actual)
}

// Is reports whether this error matches the target error.
func (e *ResponseTypeMismatchError) Is(target error) bool {
	return target == ErrResponseTypeMismatch
}

// TimestampMismatchError reports an event timestamp that differs from a clock reading.
type TimestampMismatchError struct {
	Expected time.Time
	Actual   time.Time
}

// Error returns the error message.
func (e *TimestampMismatchError) Error() string {
	return fmt.Sprintf("bdd: expected timestamp %s, got %s",
		e.Expected.Format(time.RFC3339Nano), e.Actual.Format(time.RFC3339Nano))
}

// Is reports whether this error matches the target error.
func (e *TimestampMismatchError) Is(target error) bool {
	return target == ErrTimestampMismatch
}
