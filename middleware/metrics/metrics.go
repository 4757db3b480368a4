// Package metrics provides Prometheus metrics integration for minkspec.
//
// It records message processing by a mink.Processor and the outcome of
// every scenario run by the bdd engine.
//
// Basic usage:
//
//	metrics := metrics.New(metrics.WithMetricsServiceName("orders"))
//	prometheus.MustRegister(metrics.Collectors()...)
//
//	processor := mink.NewProcessor(mink.WithMiddleware(metrics.Middleware()))
//
//	scenario := bdd.NewScenario(t, processor, bdd.WithObserver(metrics.ScenarioObserver()))
//
// The metrics collected include:
//   - Message counts and durations by kind and type
//   - Events published per event type
//   - Scenario runs by outcome and their durations
//   - Error counts by type
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AshkanYarmoradi/minkspec"
	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
)

// Default metric labels.
const (
	LabelMessageKind = "message_kind"
	LabelMessageType = "message_type"
	LabelEventType   = "event_type"
	LabelOperation   = "operation"
	LabelOutcome     = "outcome"
	LabelStatus      = "status"
	LabelErrorType   = "error_type"
	LabelService     = "service"
)

// Status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics for minkspec.
type Metrics struct {
	namespace   string
	subsystem   string
	serviceName string

	// Message metrics
	messagesTotal        *prometheus.CounterVec
	messageDuration      *prometheus.HistogramVec
	messagesInFlight     *prometheus.GaugeVec
	eventsPublishedTotal *prometheus.CounterVec

	// Scenario metrics
	scenarioRunsTotal *prometheus.CounterVec
	scenarioDuration  *prometheus.HistogramVec

	// Error metrics
	errorsTotal *prometheus.CounterVec
}

// MetricsOption configures Metrics.
type MetricsOption func(*Metrics)

// WithNamespace sets the Prometheus namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(m *Metrics) {
		m.namespace = namespace
	}
}

// WithSubsystem sets the Prometheus subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(m *Metrics) {
		m.subsystem = subsystem
	}
}

// WithMetricsServiceName sets the service name label.
func WithMetricsServiceName(name string) MetricsOption {
	return func(m *Metrics) {
		m.serviceName = name
	}
}

// New creates a new Metrics instance with default settings.
func New(opts ...MetricsOption) *Metrics {
	m := &Metrics{
		namespace:   "minkspec",
		subsystem:   "",
		serviceName: "unknown",
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initMetrics()
	return m
}

func (m *Metrics) initMetrics() {
	m.messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "messages_total",
			Help:      "Total number of messages processed.",
		},
		[]string{LabelService, LabelMessageKind, LabelMessageType, LabelStatus},
	)

	m.messageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "message_duration_seconds",
			Help:      "Duration of message processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelService, LabelMessageKind, LabelMessageType},
	)

	m.messagesInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "messages_in_flight",
			Help:      "Number of messages currently being processed.",
		},
		[]string{LabelService, LabelMessageKind},
	)

	m.eventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_published_total",
			Help:      "Total number of events committed by message handlers.",
		},
		[]string{LabelService, LabelEventType},
	)

	m.scenarioRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "scenario_runs_total",
			Help:      "Total number of scenario runs by outcome.",
		},
		[]string{LabelService, LabelOperation, LabelOutcome},
	)

	m.scenarioDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "scenario_duration_seconds",
			Help:      "Duration of scenario runs in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelService, LabelOperation},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors by type.",
		},
		[]string{LabelService, LabelErrorType},
	)
}

// Collectors returns all Prometheus collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.messagesTotal,
		m.messageDuration,
		m.messagesInFlight,
		m.eventsPublishedTotal,
		m.scenarioRunsTotal,
		m.scenarioDuration,
		m.errorsTotal,
	}
}

// MustRegister registers all collectors with the default registry.
// Panics if registration fails.
func (m *Metrics) MustRegister() {
	prometheus.MustRegister(m.Collectors()...)
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	for _, collector := range m.Collectors() {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Processor Middleware
// =============================================================================

// Middleware returns processor middleware recording message metrics and the
// events each command or event handler committed.
func (m *Metrics) Middleware() mink.Middleware {
	return func(next mink.MiddlewareFunc) mink.MiddlewareFunc {
		return func(ctx context.Context, msg mink.Message) (interface{}, error) {
			kind := msg.Kind.String()

			m.messagesInFlight.WithLabelValues(m.serviceName, kind).Inc()
			defer m.messagesInFlight.WithLabelValues(m.serviceName, kind).Dec()

			start := time.Now()
			result, err := next(ctx, msg)
			m.RecordMessage(msg.Kind, msg.Type, time.Since(start), err)

			if events, ok := result.([]interface{}); ok && err == nil {
				for _, e := range events {
					m.eventsPublishedTotal.WithLabelValues(m.serviceName, mink.MessageType(e)).Inc()
				}
			}

			return result, err
		}
	}
}

// RecordMessage implements mink.MetricsCollector, so Metrics can also be
// plugged into mink.MetricsMiddleware.
func (m *Metrics) RecordMessage(kind mink.MessageKind, msgType string, duration time.Duration, err error) {
	m.messageDuration.WithLabelValues(m.serviceName, kind.String(), msgType).Observe(duration.Seconds())

	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.errorsTotal.WithLabelValues(m.serviceName, errorTypeName(err)).Inc()
	}
	m.messagesTotal.WithLabelValues(m.serviceName, kind.String(), msgType, status).Inc()
}

// errorTypeName extracts the error type name based on sentinel errors.
func errorTypeName(err error) string {
	if err == nil {
		return "none"
	}

	switch {
	case errors.Is(err, mink.ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, mink.ErrHandlerPanicked):
		return "handler_panicked"
	case errors.Is(err, mink.ErrSerializationFailed):
		return "serialization_failed"
	case errors.Is(err, mink.ErrMessageTypeMismatch):
		return "message_type_mismatch"
	case errors.Is(err, mink.ErrPublishNotAllowed):
		return "publish_not_allowed"
	case errors.Is(err, mink.ErrProcessorClosed):
		return "processor_closed"
	case errors.Is(err, mink.ErrNilHandler):
		return "nil_handler"
	case errors.Is(err, mink.ErrNilMessage):
		return "nil_message"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, bdd.ErrTestAssertionFailed):
		return "assertion_failed"
	case errors.Is(err, bdd.ErrTestAlreadyRun):
		return "test_already_run"
	case errors.Is(err, bdd.ErrEventStreamNotFound):
		return "event_stream_not_found"
	default:
		return "unknown"
	}
}

// =============================================================================
// Scenario Observer
// =============================================================================

type scenarioObserver struct {
	metrics *Metrics
}

// ScenarioObserver returns a bdd.Observer counting scenario runs by outcome
// and observing their durations.
func (m *Metrics) ScenarioObserver() bdd.Observer {
	return &scenarioObserver{metrics: m}
}

func (o *scenarioObserver) RunStarted(ctx context.Context, _ bdd.RunInfo) context.Context {
	return ctx
}

func (o *scenarioObserver) RunFinished(_ context.Context, info bdd.RunInfo, outcome bdd.Outcome, err error) {
	m := o.metrics
	m.scenarioDuration.WithLabelValues(m.serviceName, info.Operation).Observe(time.Since(info.StartedAt).Seconds())
	m.scenarioRunsTotal.WithLabelValues(m.serviceName, info.Operation, outcome.String()).Inc()
	if err != nil {
		m.errorsTotal.WithLabelValues(m.serviceName, errorTypeName(err)).Inc()
	}
}

// =============================================================================
// Manual Metric Recording
// =============================================================================

// RecordError records a custom error.
func (m *Metrics) RecordError(errorType string) {
	m.errorsTotal.WithLabelValues(m.serviceName, errorType).Inc()
}

// =============================================================================
// Getters for testing
// =============================================================================

// MessagesTotal returns the messages counter.
func (m *Metrics) MessagesTotal() *prometheus.CounterVec {
	return m.messagesTotal
}

// MessageDuration returns the message duration histogram.
func (m *Metrics) MessageDuration() *prometheus.HistogramVec {
	return m.messageDuration
}

// MessagesInFlight returns the in-flight messages gauge.
func (m *Metrics) MessagesInFlight() *prometheus.GaugeVec {
	return m.messagesInFlight
}

// EventsPublishedTotal returns the published events counter.
func (m *Metrics) EventsPublishedTotal() *prometheus.CounterVec {
	return m.eventsPublishedTotal
}

// ScenarioRunsTotal returns the scenario runs counter.
func (m *Metrics) ScenarioRunsTotal() *prometheus.CounterVec {
	return m.scenarioRunsTotal
}

// ScenarioDuration returns the scenario duration histogram.
func (m *Metrics) ScenarioDuration() *prometheus.HistogramVec {
	return m.scenarioDuration
}

// ErrorsTotal returns the errors counter.
func (m *Metrics) ErrorsTotal() *prometheus.CounterVec {
	return m.errorsTotal
}
