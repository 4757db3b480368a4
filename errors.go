package mink

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrNilHandler indicates a nil handler was passed to the processor.
	ErrNilHandler = errors.New("mink: nil handler")

	// ErrNilMessage indicates a nil message was passed or published.
	ErrNilMessage = errors.New("mink: nil message")

	// ErrProcessorClosed indicates the processor has been closed.
	ErrProcessorClosed = errors.New("mink: processor closed")

	// ErrPublishNotAllowed indicates a query handler attempted to publish an event.
	ErrPublishNotAllowed = errors.New("mink: events cannot be published while executing a query")

	// ErrUnitOfWorkCompleted indicates an event was published after the unit of work completed.
	ErrUnitOfWorkCompleted = errors.New("mink: unit of work already completed")

	// ErrValidationFailed indicates message validation failed.
	ErrValidationFailed = errors.New("mink: validation failed")

	// ErrHandlerPanicked indicates a handler panicked during execution.
	ErrHandlerPanicked = errors.New("mink: handler panicked")

	// ErrMessageTypeMismatch indicates a typed handler received a message of another type.
	ErrMessageTypeMismatch = errors.New("mink: message type mismatch")

	// ErrSerializationFailed indicates message serialization/deserialization failed.
	ErrSerializationFailed = errors.New("mink: serialization failed")
)

// ValidationError represents a message validation failure.
type ValidationError struct {
	// MessageType is the type of message that failed validation.
	MessageType string

	// Field is the field that failed validation (optional).
	Field string

	// Message describes the validation failure.
	Message string

	// Cause is the underlying error (optional).
	Cause error
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mink: validation failed for message %q field %q: %s",
			e.MessageType, e.Field, e.Message)
	}
	return fmt.Sprintf("mink: validation failed for message %q: %s", e.MessageType, e.Message)
}

// Is reports whether this error matches the target error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Unwrap returns the underlying cause for errors.Unwrap().
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError.
func NewValidationError(msgType, field, message string) *ValidationError {
	return &ValidationError{
		MessageType: msgType,
		Field:       field,
		Message:     message,
	}
}

// PanicError provides detailed information about a handler panic.
type PanicError struct {
	MessageType string
	Value       interface{}
	Stack       string
	// MessageData contains a JSON representation of the message for debugging.
	MessageData string
}

// Error returns the error message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("mink: handler panicked while processing %q: %v", e.MessageType, e.Value)
}

// Is reports whether this error matches the target error.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanicked
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *PanicError) Unwrap() error {
	return ErrHandlerPanicked
}

// NewPanicError creates a new PanicError.
func NewPanicError(msgType string, value interface{}, stack, messageData string) *PanicError {
	return &PanicError{
		MessageType: msgType,
		Value:       value,
		Stack:       stack,
		MessageData: messageData,
	}
}

// MessageTypeError is returned when a typed handler receives a message it cannot handle.
type MessageTypeError struct {
	Expected string
	Actual   string
}

// Error returns the error message.
func (e *MessageTypeError) Error() string {
	return fmt.Sprintf("mink: expected message of type %s, got %s", e.Expected, e.Actual)
}

// Is reports whether this error matches the target error.
func (e *MessageTypeError) Is(target error) bool {
	return target == ErrMessageTypeMismatch
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *MessageTypeError) Unwrap() error {
	return ErrMessageTypeMismatch
}

func newMessageTypeError[T any](actual interface{}) *MessageTypeError {
	return &MessageTypeError{
		Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
		Actual:   fmt.Sprintf("%T", actual),
	}
}

// SerializationError provides detailed information about a serialization failure.
type SerializationError struct {
	MessageType string
	Operation   string // "serialize" or "deserialize"
	Cause       error
}

// Error returns the error message.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("mink: failed to %s message type %q: %v",
		e.Operation, e.MessageType, e.Cause)
}

// Is reports whether this error matches the target error.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerializationFailed
}

// Unwrap returns the underlying cause for errors.Unwrap().
func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a new SerializationError.
func NewSerializationError(msgType, operation string, cause error) *SerializationError {
	return &SerializationError{
		MessageType: msgType,
		Operation:   operation,
		Cause:       cause,
	}
}
