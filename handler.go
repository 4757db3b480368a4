package mink

import (
	"context"
)

// MessageHandler handles a command or an event.
// Handlers publish events through the MessageContext.
type MessageHandler interface {
	Handle(ctx context.Context, message interface{}, mc *MessageContext) error
}

// MessageHandlerFunc is a function type that implements MessageHandler.
type MessageHandlerFunc func(ctx context.Context, message interface{}, mc *MessageContext) error

// Handle calls f.
func (f MessageHandlerFunc) Handle(ctx context.Context, message interface{}, mc *MessageContext) error {
	return f(ctx, message, mc)
}

// GenericHandler is a type-safe handler for a specific message type.
// Use this to create handlers with compile-time type checking.
type GenericHandler[T any] struct {
	handler func(ctx context.Context, message T, mc *MessageContext) error
}

// NewMessageHandler creates a new GenericHandler for messages of type T.
func NewMessageHandler[T any](handler func(ctx context.Context, message T, mc *MessageContext) error) *GenericHandler[T] {
	return &GenericHandler[T]{handler: handler}
}

// Handle processes the message with type checking.
// A message of another type fails with a *MessageTypeError.
func (h *GenericHandler[T]) Handle(ctx context.Context, message interface{}, mc *MessageContext) error {
	typed, ok := message.(T)
	if !ok {
		return newMessageTypeError[T](message)
	}
	return h.handler(ctx, typed, mc)
}

// QueryHandler executes a query request and returns its response.
type QueryHandler interface {
	Execute(ctx context.Context, request interface{}, mc *MessageContext) (interface{}, error)
}

// QueryHandlerFunc is a function type that implements QueryHandler.
type QueryHandlerFunc func(ctx context.Context, request interface{}, mc *MessageContext) (interface{}, error)

// Execute calls f.
func (f QueryHandlerFunc) Execute(ctx context.Context, request interface{}, mc *MessageContext) (interface{}, error) {
	return f(ctx, request, mc)
}

// GenericQueryHandler is a type-safe query handler.
type GenericQueryHandler[Req, Resp any] struct {
	handler func(ctx context.Context, request Req, mc *MessageContext) (Resp, error)
}

// NewQueryHandler creates a query handler for requests of type Req.
func NewQueryHandler[Req, Resp any](handler func(ctx context.Context, request Req, mc *MessageContext) (Resp, error)) *GenericQueryHandler[Req, Resp] {
	return &GenericQueryHandler[Req, Resp]{handler: handler}
}

// Execute runs the query with type checking.
func (h *GenericQueryHandler[Req, Resp]) Execute(ctx context.Context, request interface{}, mc *MessageContext) (interface{}, error) {
	typed, ok := request.(Req)
	if !ok {
		return nil, newMessageTypeError[Req](request)
	}
	return h.handler(ctx, typed, mc)
}

// Query is a parameterless request producing a Resp.
// It is both the request and the handler, which suits read models that need
// nothing but the context to answer.
type Query[Resp any] struct {
	Name string
	fn   func(ctx context.Context, mc *MessageContext) (Resp, error)
}

// NewQuery creates a named parameterless query.
func NewQuery[Resp any](name string, fn func(ctx context.Context, mc *MessageContext) (Resp, error)) *Query[Resp] {
	return &Query[Resp]{Name: name, fn: fn}
}

// MessageType returns the query name.
func (q *Query[Resp]) MessageType() string {
	return q.Name
}

// Execute runs the query function. The request is ignored.
func (q *Query[Resp]) Execute(ctx context.Context, _ interface{}, mc *MessageContext) (interface{}, error) {
	return q.fn(ctx, mc)
}
