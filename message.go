package mink

import (
	"reflect"
)

// MessageKind identifies the entry point a message was dispatched through.
type MessageKind int

const (
	// KindCommand is a message executed through ExecuteCommand.
	KindCommand MessageKind = iota + 1

	// KindEvent is a message handled through HandleEvent.
	KindEvent

	// KindQuery is a request executed through ExecuteQuery.
	KindQuery
)

// String returns the lower-case name of the kind.
func (k MessageKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindEvent:
		return "event"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Message is the envelope routed through the middleware pipeline.
type Message struct {
	// Kind is the entry point the message was dispatched through.
	Kind MessageKind

	// Type is the message type name (e.g., "Deposit").
	Type string

	// Payload is the message value handed to the handler.
	Payload interface{}
}

// NewMessage wraps a payload in a Message envelope.
func NewMessage(kind MessageKind, payload interface{}) Message {
	return Message{
		Kind:    kind,
		Type:    MessageType(payload),
		Payload: payload,
	}
}

// TypedMessage is implemented by messages that name their own type.
type TypedMessage interface {
	MessageType() string
}

// Validator is implemented by messages that can validate themselves.
// ValidationMiddleware rejects messages whose Validate returns an error.
type Validator interface {
	Validate() error
}

// MessageType returns the type name of a message.
// Messages implementing TypedMessage name themselves; otherwise the struct
// name is used, dereferencing pointers.
func MessageType(message interface{}) string {
	if message == nil {
		return ""
	}
	if tm, ok := message.(TypedMessage); ok {
		return tm.MessageType()
	}
	t := reflect.TypeOf(message)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
