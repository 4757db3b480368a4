package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AshkanYarmoradi/minkspec"
	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
	"github.com/AshkanYarmoradi/minkspec/testing/testutil"
)

func newTestTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return NewTracer(WithTracerProvider(tp), WithServiceName("test-service")), recorder
}

func attrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func spanNamed(t *testing.T, spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

// =============================================================================
// Tracer Tests
// =============================================================================

func TestNewTracer(t *testing.T) {
	t.Run("creates tracer with defaults", func(t *testing.T) {
		tracer := NewTracer()

		assert.NotNil(t, tracer.Tracer())
		assert.Equal(t, DefaultServiceName, tracer.ServiceName())
	})

	t.Run("with custom service name", func(t *testing.T) {
		tracer := NewTracer(WithServiceName("bank"))
		assert.Equal(t, "bank", tracer.ServiceName())
	})

	t.Run("uses the global provider", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		prev := otel.GetTracerProvider()
		otel.SetTracerProvider(tp)
		defer otel.SetTracerProvider(prev)

		_, span := NewTracer().StartSpan(context.Background(), "global")
		span.End()

		require.Len(t, recorder.Ended(), 1)
		assert.Equal(t, "global", recorder.Ended()[0].Name())
	})
}

func TestNewStdoutProvider(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewStdoutProvider(&buf, "stdout-test")
	require.NoError(t, err)

	_, span := NewTracer(WithTracerProvider(tp)).StartSpan(context.Background(), "printed")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "printed")
	assert.Contains(t, buf.String(), "stdout-test")
}

// =============================================================================
// Middleware Tests
// =============================================================================

func TestMiddleware(t *testing.T) {
	t.Run("traces a successful command", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		p := mink.NewProcessor(mink.WithMiddleware(Middleware(tracer)))
		counter := testutil.NewCounter()

		ctx := mink.WithCorrelationID(context.Background(), "corr-1")
		_, err := p.ExecuteCommand(ctx, counter.IncrementHandler(), testutil.Increment{Amount: 2})
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		span := spans[0]

		assert.Equal(t, "message.Increment", span.Name())
		assert.Equal(t, codes.Ok, span.Status().Code)

		v, ok := attrValue(span, "mink.service")
		require.True(t, ok)
		assert.Equal(t, "test-service", v.AsString())

		v, ok = attrValue(span, "mink.message.kind")
		require.True(t, ok)
		assert.Equal(t, "command", v.AsString())

		v, ok = attrValue(span, "mink.correlation_id")
		require.True(t, ok)
		assert.Equal(t, "corr-1", v.AsString())

		v, ok = attrValue(span, "mink.events.count")
		require.True(t, ok)
		assert.Equal(t, int64(1), v.AsInt64())

		v, ok = attrValue(span, "mink.events.types")
		require.True(t, ok)
		assert.Equal(t, []string{"Incremented"}, v.AsStringSlice())
	})

	t.Run("records handler errors", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		p := mink.NewProcessor(mink.WithMiddleware(Middleware(tracer)))

		_, err := p.ExecuteCommand(context.Background(), testutil.Failing(errors.New("denied")), testutil.Increment{})
		require.Error(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "denied", spans[0].Status().Description)
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "exception", spans[0].Events()[0].Name)

		_, ok := attrValue(spans[0], "mink.events.count")
		assert.False(t, ok)
	})

	t.Run("traces queries without event attributes", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		p := mink.NewProcessor(mink.WithMiddleware(Middleware(tracer)))

		_, err := p.ExecuteQuery(context.Background(), testutil.NewCounter().ValueQuery(), nil)
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "message.CounterValue", spans[0].Name())

		_, ok := attrValue(spans[0], "mink.correlation_id")
		assert.False(t, ok)
		_, ok = attrValue(spans[0], "mink.events.count")
		assert.False(t, ok)
	})
}

// =============================================================================
// Scenario Observer Tests
// =============================================================================

func TestScenarioObserver(t *testing.T) {
	ctx := testutil.Context(t)

	t.Run("nests message spans under the scenario span", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		p := mink.NewProcessor(mink.WithMiddleware(Middleware(tracer)))
		counter := testutil.NewCounter()

		then := bdd.NewScenario(t, p,
			bdd.WithName("counter"),
			bdd.WithObserver(ScenarioObserver(tracer)),
		).
			Given().
			Command(counter.IncrementHandler(), testutil.Increment{Amount: 1}).
			When().
			IsExecutedBy(counter.IncrementHandler(), testutil.Increment{Amount: 2}).
			Run(ctx)
		bdd.IsEventStream(then, bdd.Events(testutil.Incremented{Amount: 2}))

		spans := recorder.Ended()
		require.Len(t, spans, 3)

		scenario := spanNamed(t, spans, "scenario.counter")
		assert.Equal(t, codes.Ok, scenario.Status().Code)

		v, ok := attrValue(scenario, "mink.scenario.operation")
		require.True(t, ok)
		assert.Equal(t, "IsExecutedBy", v.AsString())

		v, ok = attrValue(scenario, "mink.scenario.outcome")
		require.True(t, ok)
		assert.Equal(t, "success", v.AsString())

		v, ok = attrValue(scenario, "mink.message.type")
		require.True(t, ok)
		assert.Equal(t, "Increment", v.AsString())

		events := scenario.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "scenario.started", events[0].Name)
		assert.Equal(t, "scenario.finished", events[1].Name)

		for _, s := range spans {
			if s.Name() == "message.Increment" {
				assert.Equal(t, scenario.SpanContext().SpanID(), s.Parent().SpanID())
			}
		}
	})

	t.Run("expected errors keep the span ok", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)

		then := bdd.NewScenario(t, mink.NewProcessor(),
			bdd.WithName("rejected"),
			bdd.WithObserver(ScenarioObserver(tracer)),
		).
			Given().
			When().
			IsExecutedBy(testutil.Failing(errors.New("no")), testutil.Increment{}).
			ExpectError().
			Run(ctx)
		bdd.IsError[error](then, nil)

		scenario := spanNamed(t, recorder.Ended(), "scenario.rejected")
		assert.Equal(t, codes.Ok, scenario.Status().Code)

		v, ok := attrValue(scenario, "mink.scenario.outcome")
		require.True(t, ok)
		assert.Equal(t, "failure", v.AsString())
	})

	t.Run("run errors mark the span", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		observer := ScenarioObserver(tracer)
		info := bdd.RunInfo{Name: "broken", Operation: "IsHandledBy", Kind: mink.KindEvent}

		runCtx := observer.RunStarted(context.Background(), info)
		assert.True(t, SpanFromContext(runCtx).SpanContext().IsValid())
		observer.RunFinished(runCtx, info, bdd.OutcomeError, errors.New("replay failed"))

		scenario := spanNamed(t, recorder.Ended(), "scenario.broken")
		assert.Equal(t, codes.Error, scenario.Status().Code)
		assert.Equal(t, "replay failed", scenario.Status().Description)

		_, ok := attrValue(scenario, "mink.message.type")
		assert.False(t, ok)
	})
}

// =============================================================================
// Span Helper Tests
// =============================================================================

func TestSpanHelpers(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	ctx, span := tracer.StartSpan(context.Background(), "helpers")
	AddEvent(ctx, "checkpoint")
	SetAttributes(ctx, attribute.String("key", "value"))
	SetError(ctx, errors.New("failed"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	v, ok := attrValue(spans[0], "key")
	require.True(t, ok)
	assert.Equal(t, "value", v.AsString())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	names := make([]string, 0, len(spans[0].Events()))
	for _, e := range spans[0].Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"checkpoint", "exception"}, names)
}
