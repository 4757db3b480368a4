package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AshkanYarmoradi/minkspec"
)

// =============================================================================
// Counter
// =============================================================================

// Increment asks the counter to add Amount.
type Increment struct {
	Amount int
}

// Incremented records that the counter grew by Amount.
type Incremented struct {
	Amount int
}

// Counter is a minimal read model fed by committed Incremented events.
type Counter struct {
	mu    sync.RWMutex
	value int
}

// NewCounter creates a zero counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Attach subscribes the counter to p and returns the unsubscribe function.
func (c *Counter) Attach(p *mink.Processor) func() {
	return p.Subscribe(c.Apply)
}

// Apply folds a committed event into the counter.
func (c *Counter) Apply(event interface{}) {
	if e, ok := event.(Incremented); ok {
		c.mu.Lock()
		c.value += e.Amount
		c.mu.Unlock()
	}
}

// Current returns the counter value.
func (c *Counter) Current() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// IncrementHandler publishes Incremented for every Increment.
func (c *Counter) IncrementHandler() *mink.GenericHandler[Increment] {
	return mink.NewMessageHandler(func(ctx context.Context, cmd Increment, mc *mink.MessageContext) error {
		return mc.Publish(Incremented{Amount: cmd.Amount})
	})
}

// ValueQuery answers with the counter value.
func (c *Counter) ValueQuery() *mink.Query[int] {
	return mink.NewQuery("CounterValue", func(ctx context.Context, mc *mink.MessageContext) (int, error) {
		return c.Current(), nil
	})
}

// =============================================================================
// Accounts
// =============================================================================

// ErrInsufficientFunds is wrapped by every *InsufficientFundsError.
var ErrInsufficientFunds = errors.New("insufficient funds")

// OpenAccount opens an account.
type OpenAccount struct {
	ID    string
	Owner string
}

// AccountOpened records an opened account.
type AccountOpened struct {
	ID    string
	Owner string
	At    time.Time
}

// Deposit adds money to an account.
type Deposit struct {
	ID     string
	Amount int64
}

// Validate implements mink.Validator.
func (d Deposit) Validate() error {
	if d.Amount <= 0 {
		return mink.NewValidationError("Deposit", "Amount", "must be positive")
	}
	return nil
}

// MoneyDeposited records a deposit.
type MoneyDeposited struct {
	ID     string
	Amount int64
	At     time.Time
}

// Withdraw takes money from an account.
type Withdraw struct {
	ID     string
	Amount int64
}

// MoneyWithdrawn records a withdrawal.
type MoneyWithdrawn struct {
	ID     string
	Amount int64
	At     time.Time
}

// BalanceOf asks for the balance of an account.
type BalanceOf struct {
	ID string
}

// InsufficientFundsError is returned when a withdrawal exceeds the balance.
type InsufficientFundsError struct {
	ID        string
	Balance   int64
	Requested int64
}

// Error implements error.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("account %s: cannot withdraw %d with balance %d", e.ID, e.Requested, e.Balance)
}

// Unwrap returns ErrInsufficientFunds.
func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// AccountNotFoundError is returned for operations on unknown accounts.
type AccountNotFoundError struct {
	ID string
}

// Error implements error.
func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.ID)
}

// AccountExistsError is returned when opening an account twice.
type AccountExistsError struct {
	ID string
}

// Error implements error.
func (e *AccountExistsError) Error() string {
	return fmt.Sprintf("account %s already exists", e.ID)
}

// Accounts is an in-memory account book updated from committed events.
type Accounts struct {
	mu       sync.RWMutex
	balances map[string]int64
}

// NewAccounts creates an empty account book.
func NewAccounts() *Accounts {
	return &Accounts{balances: make(map[string]int64)}
}

// Attach subscribes the book to p and returns the unsubscribe function.
func (a *Accounts) Attach(p *mink.Processor) func() {
	return p.Subscribe(a.Apply)
}

// Apply folds an account event into the book.
func (a *Accounts) Apply(event interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch e := event.(type) {
	case AccountOpened:
		a.balances[e.ID] = 0
	case MoneyDeposited:
		a.balances[e.ID] += e.Amount
	case MoneyWithdrawn:
		a.balances[e.ID] -= e.Amount
	}
}

// Balance returns the balance of id.
func (a *Accounts) Balance(id string) (int64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.balances[id]
	return b, ok
}

// OnEvent applies account events handed to the processor as history.
func (a *Accounts) OnEvent() mink.MessageHandler {
	return mink.MessageHandlerFunc(func(ctx context.Context, event interface{}, mc *mink.MessageContext) error {
		a.Apply(event)
		return nil
	})
}

// OpenAccountHandler handles OpenAccount.
func (a *Accounts) OpenAccountHandler() *mink.GenericHandler[OpenAccount] {
	return mink.NewMessageHandler(func(ctx context.Context, cmd OpenAccount, mc *mink.MessageContext) error {
		if _, exists := a.Balance(cmd.ID); exists {
			return &AccountExistsError{ID: cmd.ID}
		}
		return mc.Publish(AccountOpened{ID: cmd.ID, Owner: cmd.Owner, At: mc.Now()})
	})
}

// DepositHandler handles Deposit.
func (a *Accounts) DepositHandler() *mink.GenericHandler[Deposit] {
	return mink.NewMessageHandler(func(ctx context.Context, cmd Deposit, mc *mink.MessageContext) error {
		if _, exists := a.Balance(cmd.ID); !exists {
			return &AccountNotFoundError{ID: cmd.ID}
		}
		return mc.Publish(MoneyDeposited{ID: cmd.ID, Amount: cmd.Amount, At: mc.Now()})
	})
}

// WithdrawHandler handles Withdraw.
func (a *Accounts) WithdrawHandler() *mink.GenericHandler[Withdraw] {
	return mink.NewMessageHandler(func(ctx context.Context, cmd Withdraw, mc *mink.MessageContext) error {
		balance, exists := a.Balance(cmd.ID)
		if !exists {
			return &AccountNotFoundError{ID: cmd.ID}
		}
		if cmd.Amount > balance {
			return &InsufficientFundsError{ID: cmd.ID, Balance: balance, Requested: cmd.Amount}
		}
		return mc.Publish(MoneyWithdrawn{ID: cmd.ID, Amount: cmd.Amount, At: mc.Now()})
	})
}

// BalanceQuery answers BalanceOf.
func (a *Accounts) BalanceQuery() *mink.GenericQueryHandler[BalanceOf, int64] {
	return mink.NewQueryHandler(func(ctx context.Context, q BalanceOf, mc *mink.MessageContext) (int64, error) {
		balance, exists := a.Balance(q.ID)
		if !exists {
			return 0, &AccountNotFoundError{ID: q.ID}
		}
		return balance, nil
	})
}

// =============================================================================
// Recorder
// =============================================================================

// Recorded is published by a Recorder for every message it handles.
type Recorded struct {
	Message interface{}
	At      time.Time
}

// Recorder is a handler remembering every message it saw, in order.
type Recorder struct {
	mu       sync.Mutex
	messages []interface{}
	times    []time.Time
	fail     error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes the recorder return err after recording.
func (r *Recorder) FailWith(err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
	return r
}

// Handle implements mink.MessageHandler. It reads the clock once and
// publishes Recorded.
func (r *Recorder) Handle(ctx context.Context, message interface{}, mc *mink.MessageContext) error {
	now := mc.Now()

	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.times = append(r.times, now)
	fail := r.fail
	r.mu.Unlock()

	if fail != nil {
		return fail
	}
	return mc.Publish(Recorded{Message: message, At: now})
}

// Messages returns the recorded messages.
func (r *Recorder) Messages() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interface{}, len(r.messages))
	copy(out, r.messages)
	return out
}

// Times returns the clock reading taken for every recorded message.
func (r *Recorder) Times() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Time, len(r.times))
	copy(out, r.times)
	return out
}

// Failing returns a handler that always fails with err.
func Failing(err error) mink.MessageHandler {
	return mink.MessageHandlerFunc(func(ctx context.Context, message interface{}, mc *mink.MessageContext) error {
		return err
	})
}
