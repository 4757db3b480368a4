// Package mink provides an in-memory message processor and the primitives the
// minkspec test engine drives.
//
// A Processor executes commands, handles events and executes queries. Handlers
// publish events through the MessageContext they receive; published events are
// buffered in a unit of work and delivered to subscribers only after the handler
// completes successfully.
//
// # Quick Start
//
// Define messages as plain structs:
//
//	type Deposit struct {
//	    AccountID string
//	    Amount    int64
//	}
//
//	type MoneyDeposited struct {
//	    AccountID string
//	    Amount    int64
//	    At        time.Time
//	}
//
// Write a typed handler:
//
//	deposit := mink.NewMessageHandler(func(ctx context.Context, cmd Deposit, mc *mink.MessageContext) error {
//	    return mc.Publish(MoneyDeposited{AccountID: cmd.AccountID, Amount: cmd.Amount, At: mc.Now()})
//	})
//
// Execute it:
//
//	processor := mink.NewProcessor(
//	    mink.WithMiddleware(mink.RecoveryMiddleware(), mink.ValidationMiddleware()),
//	)
//	events, err := processor.ExecuteCommand(ctx, deposit, Deposit{AccountID: "A", Amount: 100})
//
// # Subscribing to Events
//
// Subscribers observe every committed event in publish order:
//
//	unsubscribe := processor.Subscribe(func(event interface{}) {
//	    log.Printf("published %T", event)
//	})
//	defer unsubscribe()
//
// # Queries
//
// Queries return a response and may not publish events:
//
//	balance := mink.NewQueryHandler(func(ctx context.Context, id string, mc *mink.MessageContext) (int64, error) {
//	    return accounts.Balance(id)
//	})
//	response, err := processor.ExecuteQuery(ctx, balance, "A")
//
// # Time
//
// Handlers read time through mc.Now(). The clock is taken from the context
// when one was attached with WithClock, otherwise from the processor:
//
//	ctx = mink.WithClock(ctx, myClock)
//
// # Testing
//
// The testing/bdd package drives a Processor through Given/When/Then scenarios
// and captures every event the operation under test publishes.
package mink

// Version returns the library version string.
func Version() string {
	return "0.3.0"
}
