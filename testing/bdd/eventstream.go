package bdd

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/AshkanYarmoradi/minkspec"
)

// EventStream is the ordered, read-only list of events an operation published.
type EventStream struct {
	events []interface{}
}

// NewEventStream creates a stream holding a copy of events.
func NewEventStream(events ...interface{}) *EventStream {
	out := make([]interface{}, len(events))
	copy(out, events)
	return &EventStream{events: out}
}

// Len returns the number of events.
func (s *EventStream) Len() int {
	return len(s.events)
}

// At returns the event at index i.
func (s *EventStream) At(i int) (interface{}, error) {
	if i < 0 || i >= len(s.events) {
		return nil, &EventNotFoundError{Index: i, Count: len(s.events), ExpectedType: "any"}
	}
	return s.events[i], nil
}

// Events returns a copy of the events.
func (s *EventStream) Events() []interface{} {
	out := make([]interface{}, len(s.events))
	copy(out, s.events)
	return out
}

// Types returns the message type name of every event.
func (s *EventStream) Types() []string {
	types := make([]string, len(s.events))
	for i, e := range s.events {
		types[i] = mink.MessageType(e)
	}
	return types
}

// AssertCount checks the stream holds exactly n events.
func (s *EventStream) AssertCount(n int) error {
	if len(s.events) != n {
		return &EventCountError{Expected: n, Actual: len(s.events), Events: s.Events()}
	}
	return nil
}

// AssertEmpty checks the stream holds no events.
func (s *EventStream) AssertEmpty() error {
	return s.AssertCount(0)
}

// AssertEvents checks the stream equals expected, element by element.
func (s *EventStream) AssertEvents(expected ...interface{}) error {
	if err := s.AssertCount(len(expected)); err != nil {
		return err
	}
	for i, want := range expected {
		if !reflect.DeepEqual(s.events[i], want) {
			return &EventMismatchError{Index: i, Expected: want, Actual: s.events[i]}
		}
	}
	return nil
}

// String renders the stream for failure messages.
func (s *EventStream) String() string {
	var b strings.Builder
	b.WriteString("EventStream[")
	for i, e := range s.events {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s%+v", mink.MessageType(e), e)
	}
	b.WriteString("]")
	return b.String()
}

// AssertMessageAt checks that the event at index is a T, runs the optional
// assertion on it and returns it.
func AssertMessageAt[T any](s *EventStream, index int, assertion func(T) error) (T, error) {
	var zero T
	if index < 0 || index >= len(s.events) {
		return zero, &EventNotFoundError{Index: index, Count: len(s.events), ExpectedType: typeName[T]()}
	}

	typed, ok := s.events[index].(T)
	if !ok {
		return zero, &EventTypeMismatchError{
			Index:    index,
			Expected: typeName[T](),
			Actual:   fmt.Sprintf("%T", s.events[index]),
		}
	}

	if assertion != nil {
		if err := assertion(typed); err != nil {
			return zero, err
		}
	}
	return typed, nil
}

// Events returns an event stream assertion comparing the stream with expected.
func Events(expected ...interface{}) func(*EventStream) error {
	return func(s *EventStream) error {
		return s.AssertEvents(expected...)
	}
}

// NoEvents returns an event stream assertion requiring an empty stream.
func NoEvents() func(*EventStream) error {
	return func(s *EventStream) error {
		return s.AssertEmpty()
	}
}

// Message returns an event stream assertion running assertion on the event at index.
func Message[T any](index int, assertion func(T) error) func(*EventStream) error {
	return func(s *EventStream) error {
		_, err := AssertMessageAt(s, index, assertion)
		return err
	}
}

// All combines event stream assertions; the first failure wins.
func All(assertions ...func(*EventStream) error) func(*EventStream) error {
	return func(s *EventStream) error {
		for _, a := range assertions {
			if err := a(s); err != nil {
				return err
			}
		}
		return nil
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
