// Package assertions provides reusable event stream assertions.
//
// Every assertion has the shape bdd.IsEventStream expects, so they plug
// straight into a scenario:
//
//	bdd.IsEventStream(then, assertions.Types("AccountOpened", "MoneyDeposited"))
//	bdd.IsEventStream(then, assertions.None(assertions.OfType("AccountClosed")))
package assertions

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/AshkanYarmoradi/minkspec"
	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
)

// ErrStreamAssertion is matched by every failure of this package.
var ErrStreamAssertion = errors.New("assertions: event stream assertion failed")

// StreamAssertion checks a captured event stream.
type StreamAssertion = func(*bdd.EventStream) error

func failf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrStreamAssertion}, args...)...)
}

// =============================================================================
// Diffs
// =============================================================================

// DiffType represents the type of difference.
type DiffType int

const (
	// DiffMissing indicates an expected event was not present.
	DiffMissing DiffType = iota
	// DiffExtra indicates an unexpected event was present.
	DiffExtra
	// DiffMismatch indicates event data did not match.
	DiffMismatch
)

// String returns a human-readable representation of the diff type.
func (d DiffType) String() string {
	switch d {
	case DiffMissing:
		return "missing"
	case DiffExtra:
		return "extra"
	case DiffMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// EventDiff is one position where two event lists differ.
type EventDiff struct {
	Index    int
	Expected interface{}
	Actual   interface{}
	Type     DiffType
}

// Diff compares two event lists position by position.
func Diff(expected, actual []interface{}) []EventDiff {
	var diffs []EventDiff

	n := len(expected)
	if len(actual) > n {
		n = len(actual)
	}

	for i := 0; i < n; i++ {
		switch {
		case i >= len(expected):
			diffs = append(diffs, EventDiff{Index: i, Actual: actual[i], Type: DiffExtra})
		case i >= len(actual):
			diffs = append(diffs, EventDiff{Index: i, Expected: expected[i], Type: DiffMissing})
		case !reflect.DeepEqual(expected[i], actual[i]):
			diffs = append(diffs, EventDiff{Index: i, Expected: expected[i], Actual: actual[i], Type: DiffMismatch})
		}
	}

	return diffs
}

// FormatDiffs renders diffs one event per block.
func FormatDiffs(diffs []EventDiff) string {
	if len(diffs) == 0 {
		return "no differences"
	}

	var b strings.Builder
	b.WriteString("event differences:\n")
	for _, d := range diffs {
		fmt.Fprintf(&b, "  event %d (%s):\n", d.Index, d.Type)
		switch d.Type {
		case DiffExtra:
			fmt.Fprintf(&b, "    + %T %+v\n", d.Actual, d.Actual)
		case DiffMissing:
			fmt.Fprintf(&b, "    - %T %+v\n", d.Expected, d.Expected)
		case DiffMismatch:
			fmt.Fprintf(&b, "    - %T %+v\n", d.Expected, d.Expected)
			fmt.Fprintf(&b, "    + %T %+v\n", d.Actual, d.Actual)
		}
	}
	return b.String()
}

// DiffError reports the differences found by Exactly.
type DiffError struct {
	Diffs []EventDiff
}

func (e *DiffError) Error() string {
	return FormatDiffs(e.Diffs)
}

// Is reports whether target is ErrStreamAssertion.
func (e *DiffError) Is(target error) bool {
	return target == ErrStreamAssertion
}

// =============================================================================
// Whole-stream assertions
// =============================================================================

// Exactly passes when the stream equals expected, reporting every difference
// at once.
func Exactly(expected ...interface{}) StreamAssertion {
	return func(s *bdd.EventStream) error {
		if diffs := Diff(expected, s.Events()); len(diffs) > 0 {
			return &DiffError{Diffs: diffs}
		}
		return nil
	}
}

// StartsWith passes when the stream begins with expected. Later events are
// ignored.
func StartsWith(expected ...interface{}) StreamAssertion {
	return func(s *bdd.EventStream) error {
		events := s.Events()
		if len(events) < len(expected) {
			return failf("expected at least %d events, got %d", len(expected), len(events))
		}
		if diffs := Diff(expected, events[:len(expected)]); len(diffs) > 0 {
			return &DiffError{Diffs: diffs}
		}
		return nil
	}
}

// Types passes when the stream's message types are exactly types, in order.
func Types(types ...string) StreamAssertion {
	return func(s *bdd.EventStream) error {
		actual := s.Types()
		same := len(actual) == len(types)
		for i := 0; same && i < len(types); i++ {
			same = actual[i] == types[i]
		}
		if !same {
			return failf("expected types [%s], got [%s]", strings.Join(types, ", "), strings.Join(actual, ", "))
		}
		return nil
	}
}

// =============================================================================
// Matchers
// =============================================================================

// Matcher decides whether a single event satisfies a condition.
type Matcher func(event interface{}) bool

// OfType matches events whose message type is name.
func OfType(name string) Matcher {
	return func(event interface{}) bool {
		return mink.MessageType(event) == name
	}
}

// Equal matches events deeply equal to expected.
func Equal[T any](expected T) Matcher {
	return func(event interface{}) bool {
		actual, ok := event.(T)
		return ok && reflect.DeepEqual(actual, expected)
	}
}

// Where matches events of type T satisfying predicate.
func Where[T any](predicate func(T) bool) Matcher {
	return func(event interface{}) bool {
		actual, ok := event.(T)
		return ok && predicate(actual)
	}
}

// Any passes when at least one event matches.
func Any(m Matcher) StreamAssertion {
	return func(s *bdd.EventStream) error {
		if Count(s.Events(), m) == 0 {
			return failf("no event matched in %s", s)
		}
		return nil
	}
}

// Every passes when all events match. An empty stream passes.
func Every(m Matcher) StreamAssertion {
	return func(s *bdd.EventStream) error {
		for i, event := range s.Events() {
			if !m(event) {
				return failf("event %d did not match: %+v", i, event)
			}
		}
		return nil
	}
}

// None passes when no event matches.
func None(m Matcher) StreamAssertion {
	return func(s *bdd.EventStream) error {
		for i, event := range s.Events() {
			if m(event) {
				return failf("event %d unexpectedly matched: %+v", i, event)
			}
		}
		return nil
	}
}

// Times passes when exactly n events match.
func Times(m Matcher, n int) StreamAssertion {
	return func(s *bdd.EventStream) error {
		if got := Count(s.Events(), m); got != n {
			return failf("expected %d matching events, got %d", n, got)
		}
		return nil
	}
}

// Count returns the number of events that match.
func Count(events []interface{}, m Matcher) int {
	count := 0
	for _, event := range events {
		if m(event) {
			count++
		}
	}
	return count
}

// Filter returns the events that match, in order.
func Filter(events []interface{}, m Matcher) []interface{} {
	var result []interface{}
	for _, event := range events {
		if m(event) {
			result = append(result, event)
		}
	}
	return result
}
