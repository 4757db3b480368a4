package bdd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type innerError struct {
	Code int
}

func (e *innerError) Error() string { return fmt.Sprintf("inner %d", e.Code) }

type outerError struct {
	Op    string
	Cause error
}

func (e *outerError) Error() string { return e.Op + ": " + e.Cause.Error() }
func (e *outerError) Unwrap() error { return e.Cause }

type plainError struct{}

func (plainError) Error() string { return "plain" }

// =============================================================================
// Result Tests
// =============================================================================

func TestResult_Constructors(t *testing.T) {
	ok := Success(42)
	assert.False(t, ok.IsFailure())
	assert.Equal(t, 42, ok.Payload())
	assert.NoError(t, ok.Err())
	assert.False(t, ok.Verified())

	cause := errors.New("nope")
	failed := Failure[int](cause)
	assert.True(t, failed.IsFailure())
	assert.Same(t, cause, failed.Err())
	assert.Zero(t, failed.Payload())

	err := panicError(t, func() { Failure[int](nil) })
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResult_IsSuccess(t *testing.T) {
	t.Run("success without assertion", func(t *testing.T) {
		r := Success("payload")
		assert.NoError(t, r.IsSuccess(nil))
		assert.True(t, r.Verified())
	})

	t.Run("assertion receives the payload", func(t *testing.T) {
		var seen string
		r := Success("payload")
		require.NoError(t, r.IsSuccess(func(p string) error {
			seen = p
			return nil
		}))
		assert.Equal(t, "payload", seen)
	})

	t.Run("assertion failure is wrapped", func(t *testing.T) {
		cause := errors.New("wrong payload")
		err := Success(1).IsSuccess(func(int) error { return cause })

		assert.ErrorIs(t, err, ErrTestAssertionFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("failure reports the unexpected error", func(t *testing.T) {
		cause := &innerError{Code: 7}
		r := Failure[string](cause)
		called := false

		err := r.IsSuccess(func(string) error {
			called = true
			return nil
		})

		assert.False(t, called)
		assert.True(t, r.Verified())
		assert.ErrorIs(t, err, ErrTestAssertionFailed)
		assert.ErrorIs(t, err, ErrUnexpectedError)

		var unexpected *UnexpectedError
		require.ErrorAs(t, err, &unexpected)
		assert.Same(t, cause, unexpected.Err)
	})

	t.Run("assertion returning an assertion error is not double wrapped", func(t *testing.T) {
		inner := &TestAssertionError{Message: "already"}
		err := Success(1).IsSuccess(func(int) error { return inner })
		assert.Same(t, inner, err)
	})
}

func TestResult_SingleUse(t *testing.T) {
	t.Run("second IsSuccess panics", func(t *testing.T) {
		r := Success(1)
		require.NoError(t, r.IsSuccess(nil))

		err := panicError(t, func() { _ = r.IsSuccess(nil) })
		var invalid *InvalidOperationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "IsSuccess", invalid.Operation)
	})

	t.Run("ErrorOf after IsSuccess panics", func(t *testing.T) {
		r := Failure[int](&innerError{Code: 1})
		require.Error(t, r.IsSuccess(nil))

		err := panicError(t, func() { _, _ = ErrorOf[*innerError](r, nil) })
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("a failed assertion still consumes the result", func(t *testing.T) {
		r := Success(1)
		_, err := ErrorOf[*innerError](r, nil)
		require.Error(t, err)

		assert.ErrorIs(t, panicError(t, func() { _ = r.IsSuccess(nil) }), ErrInvalidOperation)
	})
}

func TestErrorOf(t *testing.T) {
	t.Run("matches the error type", func(t *testing.T) {
		cause := &outerError{Op: "withdraw", Cause: &innerError{Code: 1}}
		r := Failure[int](cause)

		handle, err := ErrorOf[*outerError](r, func(e *outerError) error {
			if e.Op != "withdraw" {
				return errors.New("wrong op")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Same(t, cause, handle.Err())
		assert.True(t, r.Verified())
	})

	t.Run("a wrapped match is a type mismatch", func(t *testing.T) {
		inner := &innerError{Code: 3}
		r := Failure[int](&outerError{Op: "withdraw", Cause: inner})

		_, err := ErrorOf[*innerError](r, nil)

		var mismatch *ErrorTypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "*bdd.outerError", mismatch.Actual)
	})

	t.Run("interface types match any implementation", func(t *testing.T) {
		cause := fmt.Errorf("context: %w", &innerError{Code: 3})
		handle, err := ErrorOf[error](Failure[int](cause), nil)

		require.NoError(t, err)
		assert.Same(t, cause, handle.Err())
	})

	t.Run("success is reported", func(t *testing.T) {
		r := Success(1)
		_, err := ErrorOf[*outerError](r, nil)

		assert.ErrorIs(t, err, ErrTestAssertionFailed)
		assert.ErrorIs(t, err, ErrErrorNotReturned)
		assert.True(t, r.Verified())
	})

	t.Run("wrong type is reported", func(t *testing.T) {
		r := Failure[int](plainError{})
		_, err := ErrorOf[*outerError](r, nil)

		var mismatch *ErrorTypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "*bdd.outerError", mismatch.Expected)
		assert.Equal(t, "bdd.plainError", mismatch.Actual)
	})

	t.Run("assertion failure is reported", func(t *testing.T) {
		cause := errors.New("code mismatch")
		r := Failure[int](&innerError{Code: 1})

		_, err := ErrorOf[*innerError](r, func(*innerError) error { return cause })

		assert.ErrorIs(t, err, ErrErrorAssertionFailed)
		assert.ErrorIs(t, err, cause)
	})
}

func TestInnerErrorOf(t *testing.T) {
	inner := &innerError{Code: 9}
	r := Failure[int](&outerError{Op: "open", Cause: inner})
	handle, err := ErrorOf[*outerError](r, nil)
	require.NoError(t, err)

	t.Run("matches the cause", func(t *testing.T) {
		var code int
		next, err := InnerErrorOf[*innerError](handle, func(e *innerError) error {
			code = e.Code
			return nil
		})
		require.NoError(t, err)
		assert.Same(t, inner, next.Err())
		assert.Equal(t, 9, code)
	})

	t.Run("wrong cause type", func(t *testing.T) {
		_, err := InnerErrorOf[*outerError](handle, nil)
		assert.ErrorIs(t, err, ErrErrorTypeMismatch)
	})

	t.Run("no cause", func(t *testing.T) {
		leaf, err := InnerErrorOf[*innerError](handle, nil)
		require.NoError(t, err)

		_, err = InnerErrorOf[*innerError](leaf, nil)
		var absent *InnerErrorAbsentError
		require.ErrorAs(t, err, &absent)
		assert.Equal(t, "*bdd.innerError", absent.Outer)
		assert.ErrorIs(t, err, ErrTestAssertionFailed)
	})

	t.Run("assertion failure", func(t *testing.T) {
		_, err := InnerErrorOf[*innerError](handle, func(*innerError) error {
			return errors.New("bad code")
		})
		assert.ErrorIs(t, err, ErrErrorAssertionFailed)
	})
}
