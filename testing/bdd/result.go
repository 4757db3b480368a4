package bdd

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Result is the outcome of a scenario's When operation: either the error the
// operation returned or its success payload. Exactly one is set.
type Result[S any] struct {
	err      error
	payload  S
	verified atomic.Bool
}

// Failure creates a failed result. err must not be nil.
func Failure[S any](err error) *Result[S] {
	if err == nil {
		panic(&ArgumentError{Name: "err", Reason: "a failure needs an error"})
	}
	return &Result[S]{err: err}
}

// Success creates a successful result.
func Success[S any](payload S) *Result[S] {
	return &Result[S]{payload: payload}
}

// IsFailure reports whether the operation returned an error.
func (r *Result[S]) IsFailure() bool {
	return r.err != nil
}

// Err returns the error of a failed result.
func (r *Result[S]) Err() error {
	return r.err
}

// Payload returns the payload of a successful result.
func (r *Result[S]) Payload() S {
	return r.payload
}

// Verified reports whether an assertion has been made on the result.
func (r *Result[S]) Verified() bool {
	return r.verified.Load()
}

// consume marks the result verified. A result accepts one assertion; a second
// one panics with *InvalidOperationError.
func (r *Result[S]) consume(op string) {
	if !r.verified.CompareAndSwap(false, true) {
		panic(&InvalidOperationError{
			Operation: op,
			Current:   StateVerified.String(),
			Attempted: StateVerified.String(),
			Reason:    "a result accepts exactly one assertion",
		})
	}
}

// IsSuccess passes only for a successful result, then runs the optional
// assertion on the payload. Failures are *TestAssertionError values.
// It panics if the result was already asserted.
func (r *Result[S]) IsSuccess(assertion func(S) error) error {
	r.consume("IsSuccess")

	if r.err != nil {
		return NewTestAssertionError(&UnexpectedError{Err: r.err})
	}
	if assertion != nil {
		if err := assertion(r.payload); err != nil {
			return NewTestAssertionError(err)
		}
	}
	return nil
}

// InnerErrorHandle gives access to the error matched by ErrorOf so that its
// cause can be asserted in turn.
type InnerErrorHandle struct {
	err error
}

// Err returns the matched error.
func (h *InnerErrorHandle) Err() error {
	return h.err
}

// ErrorOf passes only for a failed result whose error is itself a T, then
// runs the optional assertion on it. Wrapped causes are not searched; use
// InnerErrorOf to walk into them. Failures are *TestAssertionError values.
// It panics if the result was already asserted.
func ErrorOf[T error, S any](r *Result[S], assertion func(T) error) (*InnerErrorHandle, error) {
	r.consume("ErrorOf")
	expected := typeName[T]()

	if r.err == nil {
		return nil, NewTestAssertionError(&ErrorNotReturnedError{Expected: expected})
	}

	target, ok := r.err.(T)
	if !ok {
		return nil, NewTestAssertionError(&ErrorTypeMismatchError{
			Expected: expected,
			Actual:   fmt.Sprintf("%T", r.err),
			Err:      r.err,
		})
	}

	if assertion != nil {
		if err := assertion(target); err != nil {
			return nil, NewTestAssertionError(&ErrorAssertionFailedError{Type: expected, Cause: err})
		}
	}
	return &InnerErrorHandle{err: target}, nil
}

// InnerErrorOf walks one level into the cause chain of the matched error and
// checks that the cause is a T, then runs the optional assertion on it.
func InnerErrorOf[T error](h *InnerErrorHandle, assertion func(T) error) (*InnerErrorHandle, error) {
	expected := typeName[T]()

	inner := errors.Unwrap(h.err)
	if inner == nil {
		return nil, NewTestAssertionError(&InnerErrorAbsentError{
			Expected: expected,
			Outer:    fmt.Sprintf("%T", h.err),
		})
	}

	typed, ok := inner.(T)
	if !ok {
		return nil, NewTestAssertionError(&ErrorTypeMismatchError{
			Expected: expected,
			Actual:   fmt.Sprintf("%T", inner),
			Err:      inner,
		})
	}

	if assertion != nil {
		if err := assertion(typed); err != nil {
			return nil, NewTestAssertionError(&ErrorAssertionFailedError{Type: expected, Cause: err})
		}
	}
	return &InnerErrorHandle{err: typed}, nil
}
