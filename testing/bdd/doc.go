// Package bdd provides Given/When/Then scenarios for message processors.
//
// A scenario replays a history of messages (Given), runs exactly one
// operation (When) while capturing every event it publishes, and hands the
// outcome to exactly one assertion (Then):
//
//	func TestWithdraw_InsufficientFunds(t *testing.T) {
//	    processor := mink.NewProcessor()
//
//	    then := bdd.NewScenario(t, processor).
//	        Given().
//	        Event(accounts.OnOpened(), AccountOpened{ID: "A"}).
//	        When().
//	        IsExecutedBy(accounts.Withdraw(), Withdraw{ID: "A", Amount: 100}).
//	        ExpectError().
//	        Run(ctx)
//
//	    bdd.IsError[*InsufficientFundsError](then, nil)
//	}
//
// Time is controlled by the scenario Clock. It is handed to the processor
// through the context and can be shifted in the Given phase:
//
//	scenario.Given().
//	    TimeIs(midnight).
//	    Command(deposit, Deposit{ID: "A", Amount: 10}).
//	    TimePassed(24 * time.Hour).
//	    When().
//	    ...
//
// Misusing the fluent API panics with *InvalidOperationError or
// *ArgumentError. Failed assertions fail the test with *TestAssertionError.
// A run whose result is never asserted fails with *MissingResultError.
package bdd
