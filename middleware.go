package mink

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"
)

// ValidationMiddleware validates messages implementing Validator before they
// reach the handler. Invalid messages are not handled.
func ValidationMiddleware() Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			if v, ok := msg.Payload.(Validator); ok {
				if err := v.Validate(); err != nil {
					if _, typed := err.(*ValidationError); typed {
						return nil, err
					}
					return nil, &ValidationError{
						MessageType: msg.Type,
						Message:     err.Error(),
						Cause:       err,
					}
				}
			}
			return next(ctx, msg)
		}
	}
}

// RecoveryMiddleware recovers from panics in handlers and returns them as errors.
// It captures a sanitized representation of the message data for debugging.
func RecoveryMiddleware() Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (result interface{}, err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := string(debug.Stack())
					var messageData string
					if data, jsonErr := json.Marshal(msg.Payload); jsonErr == nil {
						messageData = string(data)
					}
					result = nil
					err = NewPanicError(msg.Type, r, stack, messageData)
				}
			}()
			return next(ctx, msg)
		}
	}
}

// LoggingMiddleware logs message processing.
type LoggingMiddleware struct {
	logger Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger Logger) *LoggingMiddleware {
	if logger == nil {
		logger = &noopLogger{}
	}
	return &LoggingMiddleware{logger: logger}
}

// Middleware returns the middleware function.
func (m *LoggingMiddleware) Middleware() Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			start := time.Now()

			m.logger.Debug("Processing message",
				"kind", msg.Kind.String(),
				"type", msg.Type,
			)

			result, err := next(ctx, msg)

			duration := time.Since(start)

			if err != nil {
				m.logger.Error("Message failed",
					"kind", msg.Kind.String(),
					"type", msg.Type,
					"duration", duration,
					"error", err,
				)
				return result, err
			}

			if events, ok := result.([]interface{}); ok {
				m.logger.Info("Message processed",
					"kind", msg.Kind.String(),
					"type", msg.Type,
					"duration", duration,
					"events", len(events),
				)
			} else {
				m.logger.Info("Message processed",
					"kind", msg.Kind.String(),
					"type", msg.Type,
					"duration", duration,
				)
			}

			return result, nil
		}
	}
}

// TimeoutMiddleware adds a timeout to message processing.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, msg)
		}
	}
}

// RetryConfig configures RetryMiddleware.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first one).
	MaxAttempts int

	// InitialDelay is the initial delay between retries.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay increases on each retry.
	Multiplier float64

	// ShouldRetry determines if an error should be retried.
	// If nil, all errors are retried.
	ShouldRetry func(err error) bool
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryMiddleware creates middleware that retries failed messages.
// Every attempt runs in a fresh unit of work, so a failed attempt never
// leaks events into the next one.
func RetryMiddleware(config RetryConfig) Middleware {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 1.0
	}

	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			var lastResult interface{}
			var lastErr error
			delay := config.InitialDelay

			for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
				lastResult, lastErr = next(ctx, msg)
				if lastErr == nil {
					return lastResult, nil
				}

				if attempt == config.MaxAttempts {
					break
				}
				if config.ShouldRetry != nil && !config.ShouldRetry(lastErr) {
					break
				}

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}

				delay = time.Duration(float64(delay) * config.Multiplier)
				if delay > config.MaxDelay {
					delay = config.MaxDelay
				}
			}

			return lastResult, lastErr
		}
	}
}

// MetricsCollector records message processing.
type MetricsCollector interface {
	// RecordMessage records one processed message.
	RecordMessage(kind MessageKind, msgType string, duration time.Duration, err error)
}

// MetricsMiddleware creates middleware that reports every message to collector.
func MetricsMiddleware(collector MetricsCollector) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			start := time.Now()
			result, err := next(ctx, msg)
			collector.RecordMessage(msg.Kind, msg.Type, time.Since(start), err)
			return result, err
		}
	}
}

type correlationIDKey struct{}

// CorrelationIDFromContext returns the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID returns a context with the correlation ID set.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// CorrelationIDMiddleware creates middleware that propagates correlation IDs.
// Messages exposing GetCorrelationID() seed the ID; otherwise generator is used.
func CorrelationIDMiddleware(generator func() string) Middleware {
	if generator == nil {
		generator = func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		}
	}

	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			if CorrelationIDFromContext(ctx) != "" {
				return next(ctx, msg)
			}

			var correlationID string
			if base, ok := msg.Payload.(interface{ GetCorrelationID() string }); ok {
				correlationID = base.GetCorrelationID()
			}
			if correlationID == "" {
				correlationID = generator()
			}

			return next(WithCorrelationID(ctx, correlationID), msg)
		}
	}
}

// ConditionalMiddleware applies middleware only if the condition is true.
func ConditionalMiddleware(condition func(Message) bool, middleware Middleware) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			if condition(msg) {
				return middleware(next)(ctx, msg)
			}
			return next(ctx, msg)
		}
	}
}

// MessageKindMiddleware applies middleware only for messages of the given kinds.
func MessageKindMiddleware(kinds []MessageKind, middleware Middleware) Middleware {
	kindSet := make(map[MessageKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	return ConditionalMiddleware(func(msg Message) bool {
		return kindSet[msg.Kind]
	}, middleware)
}

// MessageTypeMiddleware applies middleware only for specific message types.
func MessageTypeMiddleware(types []string, middleware Middleware) Middleware {
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	return ConditionalMiddleware(func(msg Message) bool {
		return typeSet[msg.Type]
	}, middleware)
}
