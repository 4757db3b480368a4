package assertions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
	"github.com/AshkanYarmoradi/minkspec/testing/testutil"
)

// =============================================================================
// Test Events
// =============================================================================

type TestOrderCreated struct {
	OrderID    string
	CustomerID string
}

type TestItemAdded struct {
	OrderID  string
	SKU      string
	Quantity int
}

type TestOrderShipped struct {
	OrderID string
}

func orderStream() *bdd.EventStream {
	return bdd.NewEventStream(
		TestOrderCreated{OrderID: "o-1", CustomerID: "c-1"},
		TestItemAdded{OrderID: "o-1", SKU: "SKU-1", Quantity: 2},
		TestItemAdded{OrderID: "o-1", SKU: "SKU-2", Quantity: 1},
	)
}

// =============================================================================
// Diff
// =============================================================================

func TestDiff(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		events := []interface{}{TestOrderCreated{OrderID: "1"}, TestItemAdded{OrderID: "1"}}
		assert.Empty(t, Diff(events, events))
	})

	t.Run("missing", func(t *testing.T) {
		diffs := Diff(
			[]interface{}{TestOrderCreated{OrderID: "1"}, TestItemAdded{OrderID: "1"}},
			[]interface{}{TestOrderCreated{OrderID: "1"}},
		)
		require.Len(t, diffs, 1)
		assert.Equal(t, DiffMissing, diffs[0].Type)
		assert.Equal(t, 1, diffs[0].Index)
	})

	t.Run("extra", func(t *testing.T) {
		diffs := Diff(
			[]interface{}{TestOrderCreated{OrderID: "1"}},
			[]interface{}{TestOrderCreated{OrderID: "1"}, TestItemAdded{OrderID: "1"}},
		)
		require.Len(t, diffs, 1)
		assert.Equal(t, DiffExtra, diffs[0].Type)
		assert.Equal(t, TestItemAdded{OrderID: "1"}, diffs[0].Actual)
	})

	t.Run("mismatch", func(t *testing.T) {
		diffs := Diff(
			[]interface{}{TestOrderCreated{OrderID: "1", CustomerID: "a"}},
			[]interface{}{TestOrderCreated{OrderID: "1", CustomerID: "b"}},
		)
		require.Len(t, diffs, 1)
		assert.Equal(t, DiffMismatch, diffs[0].Type)
	})
}

func TestDiffType_String(t *testing.T) {
	assert.Equal(t, "missing", DiffMissing.String())
	assert.Equal(t, "extra", DiffExtra.String())
	assert.Equal(t, "mismatch", DiffMismatch.String())
	assert.Equal(t, "unknown", DiffType(99).String())
}

func TestFormatDiffs(t *testing.T) {
	assert.Equal(t, "no differences", FormatDiffs(nil))

	out := FormatDiffs([]EventDiff{
		{Index: 0, Expected: TestOrderCreated{OrderID: "1"}, Actual: TestOrderCreated{OrderID: "2"}, Type: DiffMismatch},
		{Index: 1, Actual: TestOrderShipped{OrderID: "1"}, Type: DiffExtra},
	})

	assert.Contains(t, out, "event 0 (mismatch)")
	assert.Contains(t, out, "- assertions.TestOrderCreated")
	assert.Contains(t, out, "event 1 (extra)")
	assert.Contains(t, out, "+ assertions.TestOrderShipped")
}

// =============================================================================
// Whole-stream assertions
// =============================================================================

func TestExactly(t *testing.T) {
	s := orderStream()

	assert.NoError(t, Exactly(s.Events()...)(s))

	err := Exactly(TestOrderCreated{OrderID: "o-1", CustomerID: "c-1"})(s)
	var diffErr *DiffError
	require.ErrorAs(t, err, &diffErr)
	assert.Len(t, diffErr.Diffs, 2)
	assert.ErrorIs(t, err, ErrStreamAssertion)
}

func TestStartsWith(t *testing.T) {
	s := orderStream()

	assert.NoError(t, StartsWith(TestOrderCreated{OrderID: "o-1", CustomerID: "c-1"})(s))
	assert.NoError(t, StartsWith()(s))
	assert.ErrorIs(t, StartsWith(TestOrderCreated{OrderID: "o-2"})(s), ErrStreamAssertion)
	assert.ErrorContains(t, StartsWith(s.Events()[0], s.Events()[1], s.Events()[2], TestOrderShipped{})(s), "at least 4 events")
}

func TestTypes(t *testing.T) {
	s := orderStream()

	assert.NoError(t, Types("TestOrderCreated", "TestItemAdded", "TestItemAdded")(s))
	assert.NoError(t, Types()(bdd.NewEventStream()))

	err := Types("TestOrderCreated", "TestOrderShipped")(s)
	assert.ErrorIs(t, err, ErrStreamAssertion)
	assert.ErrorContains(t, err, "got [TestOrderCreated, TestItemAdded, TestItemAdded]")
}

// =============================================================================
// Matchers
// =============================================================================

func TestMatchers(t *testing.T) {
	created := TestOrderCreated{OrderID: "o-1", CustomerID: "c-1"}

	assert.True(t, OfType("TestOrderCreated")(created))
	assert.True(t, OfType("TestOrderCreated")(&created))
	assert.False(t, OfType("TestItemAdded")(created))

	assert.True(t, Equal(created)(created))
	assert.False(t, Equal(created)(TestOrderCreated{OrderID: "o-1"}))
	assert.False(t, Equal(created)(TestOrderShipped{OrderID: "o-1"}))

	bulk := Where(func(e TestItemAdded) bool { return e.Quantity > 1 })
	assert.True(t, bulk(TestItemAdded{Quantity: 2}))
	assert.False(t, bulk(TestItemAdded{Quantity: 1}))
	assert.False(t, bulk(created))
}

func TestMatcherAssertions(t *testing.T) {
	s := orderStream()
	items := OfType("TestItemAdded")
	shipped := OfType("TestOrderShipped")

	assert.NoError(t, Any(items)(s))
	assert.ErrorIs(t, Any(shipped)(s), ErrStreamAssertion)

	assert.NoError(t, Every(Where(func(e interface{}) bool { return e != nil }))(s))
	assert.ErrorContains(t, Every(items)(s), "event 0 did not match")
	assert.NoError(t, Every(shipped)(bdd.NewEventStream()))

	assert.NoError(t, None(shipped)(s))
	assert.ErrorContains(t, None(items)(s), "event 1 unexpectedly matched")

	assert.NoError(t, Times(items, 2)(s))
	assert.ErrorContains(t, Times(items, 3)(s), "expected 3 matching events, got 2")
}

func TestCountAndFilter(t *testing.T) {
	events := orderStream().Events()
	items := OfType("TestItemAdded")

	assert.Equal(t, 2, Count(events, items))
	assert.Equal(t, 0, Count(nil, items))

	filtered := Filter(events, items)
	require.Len(t, filtered, 2)
	assert.Equal(t, "SKU-1", filtered[0].(TestItemAdded).SKU)
	assert.Nil(t, Filter(events, OfType("TestOrderShipped")))
}

// =============================================================================
// Scenario integration
// =============================================================================

func TestAssertions_InScenario(t *testing.T) {
	ctx := testutil.Context(t)
	p := testutil.NewProcessor(t)
	accounts := testutil.NewAccounts()
	defer accounts.Attach(p)()

	then := bdd.NewScenario(t, p).
		Given().
		When().
		IsExecutedBy(accounts.OpenAccountHandler(), testutil.OpenAccount{ID: "A", Owner: "ada"}).
		Run(ctx)

	bdd.IsEventStream(then, bdd.All(
		Types("AccountOpened"),
		Any(Where(func(e testutil.AccountOpened) bool { return e.Owner == "ada" })),
		None(OfType("MoneyWithdrawn")),
	))
}

func TestAssertions_FailScenario(t *testing.T) {
	ctx := testutil.Context(t)
	p := testutil.NewProcessor(t)
	counter := testutil.NewCounter()

	mt := testutil.RunWithMockT(func(m *testutil.MockT) {
		then := bdd.NewScenario(m, p).
			Given().
			When().
			IsExecutedBy(counter.IncrementHandler(), testutil.Increment{Amount: 1}).
			Run(ctx)
		bdd.IsEventStream(then, Exactly(testutil.Incremented{Amount: 2}))
	})

	require.True(t, mt.Failed())
	assert.ErrorIs(t, mt.Err(), ErrStreamAssertion)
	assert.ErrorIs(t, mt.Err(), bdd.ErrTestAssertionFailed)
}
