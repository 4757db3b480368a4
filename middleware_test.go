package mink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type correlatedCommand struct {
	CorrelationIDValue string
}

func (c correlatedCommand) GetCorrelationID() string {
	return c.CorrelationIDValue
}

type plainInvalid struct{}

func (plainInvalid) Validate() error { return errors.New("always invalid") }

func okHandler(ctx context.Context, msg Message) (interface{}, error) {
	return []interface{}{}, nil
}

func TestValidationMiddleware(t *testing.T) {
	t.Run("passes valid message", func(t *testing.T) {
		_, err := ValidationMiddleware()(okHandler)(context.Background(), NewMessage(KindCommand, deposit{Amount: 1}))
		require.NoError(t, err)
	})

	t.Run("blocks invalid message", func(t *testing.T) {
		called := false
		handler := func(ctx context.Context, msg Message) (interface{}, error) {
			called = true
			return nil, nil
		}

		_, err := ValidationMiddleware()(handler)(context.Background(), NewMessage(KindCommand, deposit{}))

		assert.False(t, called)
		assert.ErrorIs(t, err, ErrValidationFailed)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Amount", vErr.Field)
	})

	t.Run("wraps plain validation errors", func(t *testing.T) {
		_, err := ValidationMiddleware()(okHandler)(context.Background(), NewMessage(KindCommand, plainInvalid{}))

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "plainInvalid", vErr.MessageType)
		assert.Equal(t, "always invalid", vErr.Message)
	})

	t.Run("ignores messages without Validate", func(t *testing.T) {
		_, err := ValidationMiddleware()(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{}))
		assert.NoError(t, err)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("passes through successful handler", func(t *testing.T) {
		result, err := RecoveryMiddleware()(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{ID: "A"}))
		require.NoError(t, err)
		assert.Equal(t, []interface{}{}, result)
	})

	t.Run("converts panic to PanicError", func(t *testing.T) {
		handler := func(ctx context.Context, msg Message) (interface{}, error) {
			panic("kaboom")
		}

		result, err := RecoveryMiddleware()(handler)(context.Background(), NewMessage(KindCommand, openAccount{ID: "A"}))

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrHandlerPanicked)
		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "openAccount", panicErr.MessageType)
		assert.Equal(t, "kaboom", panicErr.Value)
		assert.Equal(t, `{"ID":"A"}`, panicErr.MessageData)
		assert.NotEmpty(t, panicErr.Stack)
	})

	t.Run("processor rolls back on panic", func(t *testing.T) {
		p := NewProcessor(WithMiddleware(RecoveryMiddleware()))
		c := &collector{}
		p.Subscribe(c.listen)
		h := MessageHandlerFunc(func(ctx context.Context, message interface{}, mc *MessageContext) error {
			_ = mc.Publish(moneyDeposited{ID: "A"})
			panic("kaboom")
		})

		_, err := p.ExecuteCommand(context.Background(), h, openAccount{ID: "A"})

		assert.ErrorIs(t, err, ErrHandlerPanicked)
		assert.Empty(t, c.all())
	})
}

func TestLoggingMiddleware(t *testing.T) {
	t.Run("logs success", func(t *testing.T) {
		logger := &memLogger{}
		mw := NewLoggingMiddleware(logger).Middleware()

		_, err := mw(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{}))

		require.NoError(t, err)
		assert.Equal(t, []string{"debug: Processing message", "info: Message processed"}, logger.Entries())
	})

	t.Run("logs failure", func(t *testing.T) {
		logger := &memLogger{}
		mw := NewLoggingMiddleware(logger).Middleware()
		handler := func(ctx context.Context, msg Message) (interface{}, error) {
			return nil, errBoom
		}

		_, err := mw(handler)(context.Background(), NewMessage(KindQuery, balanceQuery{}))

		assert.Same(t, errBoom, err)
		assert.Equal(t, []string{"debug: Processing message", "error: Message failed"}, logger.Entries())
	})

	t.Run("nil logger is tolerated", func(t *testing.T) {
		mw := NewLoggingMiddleware(nil).Middleware()
		_, err := mw(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{}))
		assert.NoError(t, err)
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	handler := func(ctx context.Context, msg Message) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := TimeoutMiddleware(10*time.Millisecond)(handler)(context.Background(), NewMessage(KindCommand, openAccount{}))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryMiddleware(t *testing.T) {
	t.Run("stops when ShouldRetry refuses", func(t *testing.T) {
		attempts := 0
		handler := func(ctx context.Context, msg Message) (interface{}, error) {
			attempts++
			return nil, errBoom
		}
		mw := RetryMiddleware(RetryConfig{
			MaxAttempts:  5,
			InitialDelay: time.Millisecond,
			ShouldRetry:  func(err error) bool { return false },
		})

		_, err := mw(handler)(context.Background(), NewMessage(KindCommand, openAccount{}))

		assert.Same(t, errBoom, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after MaxAttempts", func(t *testing.T) {
		attempts := 0
		handler := func(ctx context.Context, msg Message) (interface{}, error) {
			attempts++
			return nil, errBoom
		}

		_, err := RetryMiddleware(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})(handler)(
			context.Background(), NewMessage(KindCommand, openAccount{}))

		assert.Same(t, errBoom, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("default config", func(t *testing.T) {
		cfg := DefaultRetryConfig()
		assert.Equal(t, 3, cfg.MaxAttempts)
		assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	})
}

type recordingCollector struct {
	kinds []MessageKind
	types []string
	errs  []error
}

func (c *recordingCollector) RecordMessage(kind MessageKind, msgType string, duration time.Duration, err error) {
	c.kinds = append(c.kinds, kind)
	c.types = append(c.types, msgType)
	c.errs = append(c.errs, err)
}

func TestMetricsMiddleware(t *testing.T) {
	c := &recordingCollector{}
	mw := MetricsMiddleware(c)
	failing := func(ctx context.Context, msg Message) (interface{}, error) { return nil, errBoom }

	_, _ = mw(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{}))
	_, _ = mw(failing)(context.Background(), NewMessage(KindQuery, balanceQuery{}))

	assert.Equal(t, []MessageKind{KindCommand, KindQuery}, c.kinds)
	assert.Equal(t, []string{"openAccount", "balanceQuery"}, c.types)
	assert.NoError(t, c.errs[0])
	assert.Same(t, errBoom, c.errs[1])
}

func TestCorrelationIDMiddleware(t *testing.T) {
	capture := func(id *string) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			*id = CorrelationIDFromContext(ctx)
			return nil, nil
		}
	}

	t.Run("generates ID", func(t *testing.T) {
		var id string
		mw := CorrelationIDMiddleware(func() string { return "generated" })
		_, _ = mw(capture(&id))(context.Background(), NewMessage(KindCommand, openAccount{}))
		assert.Equal(t, "generated", id)
	})

	t.Run("takes ID from message", func(t *testing.T) {
		var id string
		mw := CorrelationIDMiddleware(func() string { return "generated" })
		_, _ = mw(capture(&id))(context.Background(), NewMessage(KindCommand, correlatedCommand{CorrelationIDValue: "from-msg"}))
		assert.Equal(t, "from-msg", id)
	})

	t.Run("keeps existing ID", func(t *testing.T) {
		var id string
		mw := CorrelationIDMiddleware(nil)
		ctx := WithCorrelationID(context.Background(), "existing")
		_, _ = mw(capture(&id))(ctx, NewMessage(KindCommand, openAccount{}))
		assert.Equal(t, "existing", id)
	})

	t.Run("default generator", func(t *testing.T) {
		var id string
		_, _ = CorrelationIDMiddleware(nil)(capture(&id))(context.Background(), NewMessage(KindCommand, openAccount{}))
		assert.NotEmpty(t, id)
	})
}

func TestConditionalMiddleware(t *testing.T) {
	count := 0
	counting := func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx context.Context, msg Message) (interface{}, error) {
			count++
			return next(ctx, msg)
		}
	}

	t.Run("by kind", func(t *testing.T) {
		count = 0
		mw := MessageKindMiddleware([]MessageKind{KindQuery}, counting)

		_, _ = mw(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{}))
		_, _ = mw(okHandler)(context.Background(), NewMessage(KindQuery, balanceQuery{}))

		assert.Equal(t, 1, count)
	})

	t.Run("by type", func(t *testing.T) {
		count = 0
		mw := MessageTypeMiddleware([]string{"deposit"}, counting)

		_, _ = mw(okHandler)(context.Background(), NewMessage(KindCommand, openAccount{}))
		_, _ = mw(okHandler)(context.Background(), NewMessage(KindCommand, deposit{}))

		assert.Equal(t, 1, count)
	})
}

func TestChainMiddleware(t *testing.T) {
	var order []string
	named := func(name string) Middleware {
		return func(next MiddlewareFunc) MiddlewareFunc {
			return func(ctx context.Context, msg Message) (interface{}, error) {
				order = append(order, name)
				return next(ctx, msg)
			}
		}
	}

	_, _ = ChainMiddleware(named("1"), named("2"), named("3"))(okHandler)(
		context.Background(), NewMessage(KindCommand, openAccount{}))

	assert.Equal(t, []string{"1", "2", "3"}, order)
}
