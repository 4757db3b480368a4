package mink

import (
	"context"
	"sync"
	"sync/atomic"
)

// Processor executes commands, handles events and executes queries through a
// middleware pipeline. Events published by a handler are committed only when
// the whole pipeline succeeds.
type Processor struct {
	bus        *EventBus
	middleware []Middleware
	clock      Clock
	logger     Logger
	serializer Serializer
	closed     atomic.Bool
	mu         sync.RWMutex
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithMiddleware adds middleware to the processor.
func WithMiddleware(middleware ...Middleware) ProcessorOption {
	return func(p *Processor) {
		p.middleware = append(p.middleware, middleware...)
	}
}

// WithProcessorClock sets the default clock. A clock attached to the operation
// context with WithClock takes precedence.
func WithProcessorClock(clock Clock) ProcessorOption {
	return func(p *Processor) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithLogger sets the processor logger.
func WithLogger(logger Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSerializer makes the processor round-trip every published event through
// s before committing. A failing event aborts the operation.
func WithSerializer(s Serializer) ProcessorOption {
	return func(p *Processor) {
		p.serializer = s
	}
}

// WithEventBus shares an existing EventBus.
func WithEventBus(bus *EventBus) ProcessorOption {
	return func(p *Processor) {
		if bus != nil {
			p.bus = bus
		}
	}
}

// NewProcessor creates a new Processor with the given options.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		bus:        NewEventBus(),
		middleware: make([]Middleware, 0),
		clock:      SystemClock{},
		logger:     &noopLogger{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Use adds middleware to the processor.
// Middleware is executed in the order it was added.
func (p *Processor) Use(middleware ...Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware...)
}

// Subscribe registers a listener for committed events.
func (p *Processor) Subscribe(listener EventListener) func() {
	return p.bus.Subscribe(listener)
}

// SubscriberCount returns the number of event subscribers.
func (p *Processor) SubscriberCount() int {
	return p.bus.Count()
}

// MiddlewareCount returns the number of registered middleware.
func (p *Processor) MiddlewareCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.middleware)
}

// ExecuteCommand runs a command handler and returns the committed events.
func (p *Processor) ExecuteCommand(ctx context.Context, handler MessageHandler, command interface{}) ([]interface{}, error) {
	return p.handle(ctx, KindCommand, handler, command)
}

// HandleEvent runs an event handler and returns the events it published.
func (p *Processor) HandleEvent(ctx context.Context, handler MessageHandler, event interface{}) ([]interface{}, error) {
	return p.handle(ctx, KindEvent, handler, event)
}

// ExecuteQuery runs a query handler and returns its response.
func (p *Processor) ExecuteQuery(ctx context.Context, query QueryHandler, request interface{}) (interface{}, error) {
	if query == nil {
		return nil, ErrNilHandler
	}
	if request == nil {
		request = query
	}

	return p.dispatch(ctx, NewMessage(KindQuery, request), func(ctx context.Context, msg Message, mc *MessageContext) (interface{}, error) {
		return query.Execute(ctx, msg.Payload, mc)
	})
}

func (p *Processor) handle(ctx context.Context, kind MessageKind, handler MessageHandler, message interface{}) ([]interface{}, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if message == nil {
		return nil, ErrNilMessage
	}

	result, err := p.dispatch(ctx, NewMessage(kind, message), func(ctx context.Context, msg Message, mc *MessageContext) (interface{}, error) {
		if err := handler.Handle(ctx, msg.Payload, mc); err != nil {
			return nil, err
		}
		return p.commit(ctx, mc.work)
	})
	if err != nil {
		return nil, err
	}

	events, _ := result.([]interface{})
	return events, nil
}

type terminal func(ctx context.Context, msg Message, mc *MessageContext) (interface{}, error)

func (p *Processor) dispatch(ctx context.Context, msg Message, final terminal) (interface{}, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}

	p.mu.RLock()
	middleware := make([]Middleware, len(p.middleware))
	copy(middleware, p.middleware)
	p.mu.RUnlock()

	clock := p.clock
	if c, ok := ClockFromContext(ctx); ok {
		clock = c
	}

	chain := func(ctx context.Context, msg Message) (interface{}, error) {
		work := NewUnitOfWork()
		defer work.Rollback()

		mc := newMessageContext(msg, clock, p.logger, work)
		return final(WithMessageContext(ctx, mc), msg, mc)
	}

	// Apply middleware in reverse order so they execute in the order they were added
	for i := len(middleware) - 1; i >= 0; i-- {
		chain = middleware[i](chain)
	}

	return chain(ctx, msg)
}

// commit checks the data contract of every pending event, closes the unit of
// work and delivers the events to subscribers and to the listeners bound to
// ctx.
func (p *Processor) commit(ctx context.Context, work *UnitOfWork) ([]interface{}, error) {
	if p.serializer != nil {
		for _, event := range work.Pending() {
			if _, err := RoundTrip(p.serializer, event); err != nil {
				p.logger.Error("Event failed serialization",
					"type", MessageType(event),
					"error", err,
				)
				return nil, err
			}
		}
	}

	events, err := work.Commit()
	if err != nil {
		return nil, err
	}

	p.bus.Publish(events...)
	NotifyListeners(ctx, events...)
	if events == nil {
		events = []interface{}{}
	}
	return events, nil
}

// Close closes the processor, preventing further operations.
func (p *Processor) Close() error {
	p.closed.Store(true)
	return nil
}

// IsClosed returns true if the processor has been closed.
func (p *Processor) IsClosed() bool {
	return p.closed.Load()
}
