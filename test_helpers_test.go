package mink

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Shared message types for the root package tests.

type openAccount struct {
	ID string
}

type accountOpened struct {
	ID string
	At time.Time
}

type deposit struct {
	ID     string
	Amount int64
}

func (d deposit) Validate() error {
	if d.Amount <= 0 {
		return NewValidationError("deposit", "Amount", "amount must be positive")
	}
	return nil
}

type moneyDeposited struct {
	ID     string
	Amount int64
}

type balanceQuery struct {
	ID string
}

var errBoom = errors.New("boom")

func openAccountHandler() *GenericHandler[openAccount] {
	return NewMessageHandler(func(ctx context.Context, cmd openAccount, mc *MessageContext) error {
		return mc.Publish(accountOpened{ID: cmd.ID, At: mc.Now()})
	})
}

func depositHandler() *GenericHandler[deposit] {
	return NewMessageHandler(func(ctx context.Context, cmd deposit, mc *MessageContext) error {
		return mc.Publish(moneyDeposited{ID: cmd.ID, Amount: cmd.Amount})
	})
}

// collector records committed events.
type collector struct {
	mu     sync.Mutex
	events []interface{}
}

func (c *collector) listen(event interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *collector) all() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interface{}, len(c.events))
	copy(out, c.events)
	return out
}

// memLogger is a Logger recording messages.
type memLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *memLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *memLogger) Debug(msg string, args ...interface{}) { l.record("debug", msg) }
func (l *memLogger) Info(msg string, args ...interface{})  { l.record("info", msg) }
func (l *memLogger) Warn(msg string, args ...interface{})  { l.record("warn", msg) }
func (l *memLogger) Error(msg string, args ...interface{}) { l.record("error", msg) }

func (l *memLogger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
