package bdd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshkanYarmoradi/minkspec/testing/testutil"
)

func TestEventStream_Basics(t *testing.T) {
	source := []interface{}{testutil.Incremented{Amount: 1}, testutil.Incremented{Amount: 2}}
	s := NewEventStream(source...)
	source[0] = "mutated"

	assert.Equal(t, 2, s.Len())
	first, err := s.At(0)
	require.NoError(t, err)
	assert.Equal(t, testutil.Incremented{Amount: 1}, first)

	events := s.Events()
	events[1] = "mutated"
	second, _ := s.At(1)
	assert.Equal(t, testutil.Incremented{Amount: 2}, second)

	assert.Equal(t, []string{"Incremented", "Incremented"}, s.Types())
	assert.Contains(t, s.String(), "Incremented{Amount:1}")

	_, err = s.At(2)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventStream_AssertCount(t *testing.T) {
	s := NewEventStream("a")

	assert.NoError(t, s.AssertCount(1))

	err := s.AssertCount(2)
	var countErr *EventCountError
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 2, countErr.Expected)
	assert.Equal(t, 1, countErr.Actual)

	assert.NoError(t, NewEventStream().AssertEmpty())
	assert.Error(t, s.AssertEmpty())
}

func TestEventStream_AssertEvents(t *testing.T) {
	s := NewEventStream(testutil.Incremented{Amount: 1}, testutil.Incremented{Amount: 2})

	assert.NoError(t, s.AssertEvents(testutil.Incremented{Amount: 1}, testutil.Incremented{Amount: 2}))

	err := s.AssertEvents(testutil.Incremented{Amount: 1}, testutil.Incremented{Amount: 3})
	var mismatch *EventMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Index)
	assert.ErrorIs(t, err, ErrEventMismatch)

	assert.ErrorIs(t, s.AssertEvents(testutil.Incremented{Amount: 1}), ErrEventNotFound)
}

func TestAssertMessageAt(t *testing.T) {
	s := NewEventStream(testutil.Incremented{Amount: 4}, testutil.Recorded{Message: "x"})

	t.Run("typed access", func(t *testing.T) {
		e, err := AssertMessageAt[testutil.Incremented](s, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, e.Amount)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := AssertMessageAt[testutil.Incremented](s, 5, nil)

		var notFound *EventNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, 5, notFound.Index)
		assert.Equal(t, 2, notFound.Count)
		assert.Equal(t, "testutil.Incremented", notFound.ExpectedType)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := AssertMessageAt[testutil.Incremented](s, 1, nil)

		var mismatch *EventTypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "testutil.Recorded", mismatch.Actual)
	})

	t.Run("assertion error passes through", func(t *testing.T) {
		cause := errors.New("amount")
		_, err := AssertMessageAt(s, 0, func(testutil.Incremented) error { return cause })
		assert.Same(t, cause, err)
	})
}

func TestStreamAssertions(t *testing.T) {
	s := NewEventStream(testutil.Incremented{Amount: 1})

	assert.NoError(t, Events(testutil.Incremented{Amount: 1})(s))
	assert.Error(t, NoEvents()(s))
	assert.NoError(t, NoEvents()(NewEventStream()))
	assert.NoError(t, Message[testutil.Incremented](0, nil)(s))

	var calls []string
	first := func(*EventStream) error { calls = append(calls, "first"); return nil }
	failing := func(*EventStream) error { calls = append(calls, "failing"); return errors.New("x") }
	last := func(*EventStream) error { calls = append(calls, "last"); return nil }

	assert.Error(t, All(first, failing, last)(s))
	assert.Equal(t, []string{"first", "failing"}, calls)
}
