// Package tracing provides OpenTelemetry integration for minkspec.
//
// It traces message processing by a mink.Processor and wraps every scenario
// run in a span, so the spans of replayed history and of the operation under
// test nest beneath the scenario that caused them.
//
// Basic usage:
//
//	tp, _ := tracing.NewStdoutProvider(os.Stdout, "orders")
//	tracer := tracing.NewTracer(tracing.WithTracerProvider(tp))
//
//	processor := mink.NewProcessor(mink.WithMiddleware(tracing.Middleware(tracer)))
//	scenario := bdd.NewScenario(t, processor, bdd.WithObserver(tracing.ScenarioObserver(tracer)))
//
// The message middleware captures:
//   - Message kind and type
//   - Success/failure status and error details
//   - Committed event count and types
//   - Correlation IDs
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/AshkanYarmoradi/minkspec"
	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
)

const (
	// TracerName is the name of the minkspec tracer.
	TracerName = "github.com/AshkanYarmoradi/minkspec"

	// DefaultServiceName is the default service name for spans.
	DefaultServiceName = "minkspec"
)

// Tracer wraps OpenTelemetry tracer for minkspec operations.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithTracerProvider sets a custom TracerProvider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(t *Tracer) {
		t.tracer = tp.Tracer(TracerName)
	}
}

// WithServiceName sets the service name for spans.
func WithServiceName(name string) TracerOption {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// NewTracer creates a new Tracer with the global TracerProvider.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{
		tracer:      otel.Tracer(TracerName),
		serviceName: DefaultServiceName,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Tracer returns the underlying OpenTelemetry tracer.
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// NewStdoutProvider creates a TracerProvider exporting pretty-printed spans
// to w, synchronously, tagged with serviceName.
func NewStdoutProvider(w io.Writer, serviceName string) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: failed to create stdout exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	), nil
}

// =============================================================================
// Processor Middleware
// =============================================================================

// Middleware creates processor middleware that traces message processing.
func Middleware(tracer *Tracer) mink.Middleware {
	return func(next mink.MiddlewareFunc) mink.MiddlewareFunc {
		return func(ctx context.Context, msg mink.Message) (interface{}, error) {
			ctx, span := tracer.StartSpan(ctx, "message."+msg.Type,
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("mink.service", tracer.serviceName),
				attribute.String("mink.message.kind", msg.Kind.String()),
				attribute.String("mink.message.type", msg.Type),
			)

			if correlationID := mink.CorrelationIDFromContext(ctx); correlationID != "" {
				span.SetAttributes(attribute.String("mink.correlation_id", correlationID))
			}

			result, err := next(ctx, msg)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return result, err
			}

			span.SetStatus(codes.Ok, "")
			if events, ok := result.([]interface{}); ok {
				span.SetAttributes(attribute.Int("mink.events.count", len(events)))
				if len(events) > 0 {
					types := make([]string, len(events))
					for i, e := range events {
						types[i] = mink.MessageType(e)
					}
					span.SetAttributes(attribute.StringSlice("mink.events.types", types))
				}
			}

			return result, err
		}
	}
}

// =============================================================================
// Scenario Observer
// =============================================================================

type scenarioObserver struct {
	tracer *Tracer
}

// ScenarioObserver returns a bdd.Observer opening one span per scenario run.
// An expected error is a successful run; only run errors mark the span as failed.
func ScenarioObserver(tracer *Tracer) bdd.Observer {
	return &scenarioObserver{tracer: tracer}
}

func (o *scenarioObserver) RunStarted(ctx context.Context, info bdd.RunInfo) context.Context {
	ctx, span := o.tracer.StartSpan(ctx, "scenario."+info.Name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(info.StartedAt),
	)

	span.SetAttributes(
		attribute.String("mink.service", o.tracer.serviceName),
		attribute.String("mink.scenario.id", info.ID.String()),
		attribute.String("mink.scenario.name", info.Name),
		attribute.String("mink.scenario.operation", info.Operation),
		attribute.String("mink.message.kind", info.Kind.String()),
	)
	if info.MessageType != "" {
		span.SetAttributes(attribute.String("mink.message.type", info.MessageType))
	}
	span.AddEvent("scenario.started")

	return ctx
}

func (o *scenarioObserver) RunFinished(ctx context.Context, _ bdd.RunInfo, outcome bdd.Outcome, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.AddEvent("scenario.finished", trace.WithAttributes(
		attribute.String("mink.scenario.outcome", outcome.String()),
	))
	span.SetAttributes(attribute.String("mink.scenario.outcome", outcome.String()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// =============================================================================
// Span Helpers
// =============================================================================

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, opts ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, opts...)
}

// SetError sets an error on the current span.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}
