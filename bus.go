package mink

import (
	"context"
	"sync"
)

// EventListener receives committed events.
type EventListener func(event interface{})

// EventBus delivers committed events to subscribers.
// Subscribers are called in the order they subscribed.
type EventBus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners []subscription
}

type subscription struct {
	id       uint64
	listener EventListener
}

// NewEventBus creates an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener and returns a function removing it.
// The returned function is safe to call more than once.
func (b *EventBus) Subscribe(listener EventListener) func() {
	if listener == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, listener: listener})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *EventBus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers events in order. Every subscriber sees event i before event i+1.
func (b *EventBus) Publish(events ...interface{}) {
	b.mu.RLock()
	listeners := make([]subscription, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, event := range events {
		for _, s := range listeners {
			s.listener(event)
		}
	}
}

// Count returns the number of subscribers.
func (b *EventBus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

type listenerKey struct{}

// WithEventListener returns a context whose operations also deliver their
// committed events to listener. Only operations started from ctx, or from a
// context derived from it, reach the listener; other callers of the same
// processor do not.
func WithEventListener(ctx context.Context, listener EventListener) context.Context {
	if listener == nil {
		return ctx
	}
	parent := listenersFrom(ctx)
	listeners := make([]EventListener, len(parent), len(parent)+1)
	copy(listeners, parent)
	return context.WithValue(ctx, listenerKey{}, append(listeners, listener))
}

func listenersFrom(ctx context.Context) []EventListener {
	listeners, _ := ctx.Value(listenerKey{}).([]EventListener)
	return listeners
}

// NotifyListeners delivers events, in order, to the listeners bound to ctx
// with WithEventListener. Outer bindings are notified first.
func NotifyListeners(ctx context.Context, events ...interface{}) {
	listeners := listenersFrom(ctx)
	for _, event := range events {
		for _, l := range listeners {
			l(event)
		}
	}
}

// MiddlewareFunc is the function signature for message middleware.
// The result is the committed event slice for commands and events, and the
// response for queries.
type MiddlewareFunc func(ctx context.Context, msg Message) (interface{}, error)

// Middleware wraps a handler function with additional functionality.
type Middleware func(next MiddlewareFunc) MiddlewareFunc

// ChainMiddleware creates a single middleware from multiple middleware.
func ChainMiddleware(middleware ...Middleware) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}
