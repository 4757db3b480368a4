package mink

import (
	"context"
	"sync"
	"time"
)

type unitOfWorkState int

const (
	unitOfWorkOpen unitOfWorkState = iota
	unitOfWorkCommitted
	unitOfWorkRolledBack
)

// UnitOfWork buffers the events published while a single message is processed.
// Buffered events become visible to subscribers only when the unit of work commits.
type UnitOfWork struct {
	mu     sync.Mutex
	events []interface{}
	state  unitOfWorkState
}

// NewUnitOfWork creates an open unit of work.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

// Add buffers an event.
func (u *UnitOfWork) Add(event interface{}) error {
	if event == nil {
		return ErrNilMessage
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != unitOfWorkOpen {
		return ErrUnitOfWorkCompleted
	}
	u.events = append(u.events, event)
	return nil
}

// Pending returns a copy of the buffered events in publish order.
func (u *UnitOfWork) Pending() []interface{} {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]interface{}, len(u.events))
	copy(out, u.events)
	return out
}

// Commit closes the unit of work and returns the buffered events.
func (u *UnitOfWork) Commit() ([]interface{}, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != unitOfWorkOpen {
		return nil, ErrUnitOfWorkCompleted
	}
	u.state = unitOfWorkCommitted
	events := u.events
	u.events = nil
	return events, nil
}

// Rollback discards the buffered events. Rolling back a completed unit of work
// is a no-op.
func (u *UnitOfWork) Rollback() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != unitOfWorkOpen {
		return
	}
	u.state = unitOfWorkRolledBack
	u.events = nil
}

// IsOpen reports whether events can still be added.
func (u *UnitOfWork) IsOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state == unitOfWorkOpen
}

// MessageContext is handed to handlers while a message is processed.
type MessageContext struct {
	message Message
	clock   Clock
	logger  Logger
	work    *UnitOfWork
}

func newMessageContext(msg Message, clock Clock, logger Logger, work *UnitOfWork) *MessageContext {
	return &MessageContext{
		message: msg,
		clock:   clock,
		logger:  logger,
		work:    work,
	}
}

// Message returns the envelope being processed.
func (mc *MessageContext) Message() Message {
	return mc.message
}

// Kind returns the kind of the message being processed.
func (mc *MessageContext) Kind() MessageKind {
	return mc.message.Kind
}

// Clock returns the clock for this operation.
func (mc *MessageContext) Clock() Clock {
	return mc.clock
}

// Now reads the operation clock.
func (mc *MessageContext) Now() time.Time {
	return mc.clock.Now()
}

// Logger returns the processor logger.
func (mc *MessageContext) Logger() Logger {
	return mc.logger
}

// Publish buffers an event in the current unit of work.
// Queries cannot publish.
func (mc *MessageContext) Publish(event interface{}) error {
	if mc.message.Kind == KindQuery {
		return ErrPublishNotAllowed
	}
	if err := mc.work.Add(event); err != nil {
		return err
	}
	mc.logger.Debug("Event published",
		"type", MessageType(event),
		"cause", mc.message.Type,
	)
	return nil
}

type messageContextKey struct{}

// WithMessageContext returns a context carrying mc.
func WithMessageContext(ctx context.Context, mc *MessageContext) context.Context {
	return context.WithValue(ctx, messageContextKey{}, mc)
}

// MessageContextFrom returns the MessageContext of the operation processing ctx.
func MessageContextFrom(ctx context.Context) (*MessageContext, bool) {
	mc, ok := ctx.Value(messageContextKey{}).(*MessageContext)
	return mc, ok && mc != nil
}
