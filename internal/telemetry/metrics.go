package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// EventMetricsMeterName is the meter used by the event dispatcher
	EventMetricsMeterName = "github.com/stacklok/roster-sync/events"

	// ReconcileMetricsMeterName is the meter used by the reconciliation engine
	ReconcileMetricsMeterName = "github.com/stacklok/roster-sync/reconcile"

	// LMSMetricsMeterName is the meter used by the LMS client
	LMSMetricsMeterName = "github.com/stacklok/roster-sync/lms"
)

// EventMetrics holds the instruments for event processing.
// All methods are no-ops on a nil receiver.
type EventMetrics struct {
	eventsTotal  metric.Int64Counter
	pollDuration metric.Float64Histogram
}

// NewEventMetrics creates event metrics. Returns nil if provider is nil.
func NewEventMetrics(provider metric.MeterProvider) (*EventMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(EventMetricsMeterName)

	eventsTotal, err := meter.Int64Counter(
		"roster_sync_events_total",
		metric.WithDescription("Number of SIS change events processed, by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	pollDuration, err := meter.Float64Histogram(
		"roster_sync_event_poll_duration_seconds",
		metric.WithDescription("Duration of one event poll in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	return &EventMetrics{eventsTotal: eventsTotal, pollDuration: pollDuration}, nil
}

// RecordEvent counts one processed event
func (m *EventMetrics) RecordEvent(ctx context.Context, institution, eventType, outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("institution", institution),
		attribute.String("type", eventType),
		attribute.String("outcome", outcome),
	))
}

// RecordPollDuration records how long a poll took
func (m *EventMetrics) RecordPollDuration(ctx context.Context, duration time.Duration) {
	if m == nil {
		return
	}
	m.pollDuration.Record(ctx, duration.Seconds())
}

// ReconcileMetrics holds the instruments for reconciliation runs
type ReconcileMetrics struct {
	runDuration metric.Float64Histogram
	corrections metric.Int64Counter
	failures    metric.Int64Counter
}

// NewReconcileMetrics creates reconciliation metrics. Returns nil if provider is nil.
func NewReconcileMetrics(provider metric.MeterProvider) (*ReconcileMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ReconcileMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"roster_sync_reconcile_duration_seconds",
		metric.WithDescription("Duration of reconciliation runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600),
	)
	if err != nil {
		return nil, err
	}

	corrections, err := meter.Int64Counter(
		"roster_sync_reconcile_corrections_total",
		metric.WithDescription("Number of enrollments added or dropped by reconciliation"),
		metric.WithUnit("{enrollment}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"roster_sync_reconcile_failures_total",
		metric.WithDescription("Number of reconciliation corrections that failed"),
		metric.WithUnit("{enrollment}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReconcileMetrics{runDuration: runDuration, corrections: corrections, failures: failures}, nil
}

// RecordRunDuration records the duration of a reconciliation run
func (m *ReconcileMetrics) RecordRunDuration(ctx context.Context, institution string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("institution", institution),
		attribute.Bool("success", success),
	))
}

// RecordCorrections adds corrected and failed counts for one term. kind is "add" or "drop".
func (m *ReconcileMetrics) RecordCorrections(ctx context.Context, institution, term, kind string, corrected, failed int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("institution", institution),
		attribute.String("term", term),
		attribute.String("kind", kind),
	)
	m.corrections.Add(ctx, int64(corrected), attrs)
	m.failures.Add(ctx, int64(failed), attrs)
}

// LMSMetrics records the usage telemetry the LMS reports on every response
type LMSMetrics struct {
	rateLimitRemaining metric.Float64Gauge
	requestCost        metric.Float64Histogram
	requestsTotal      metric.Int64Counter
}

// NewLMSMetrics creates LMS client metrics. Returns nil if provider is nil.
func NewLMSMetrics(provider metric.MeterProvider) (*LMSMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(LMSMetricsMeterName)

	remaining, err := meter.Float64Gauge(
		"roster_sync_lms_rate_limit_remaining",
		metric.WithDescription("Remaining LMS rate limit budget reported by the last response"),
	)
	if err != nil {
		return nil, err
	}

	cost, err := meter.Float64Histogram(
		"roster_sync_lms_request_cost",
		metric.WithDescription("Cost of LMS requests as reported by the LMS"),
	)
	if err != nil {
		return nil, err
	}

	requestsTotal, err := meter.Int64Counter(
		"roster_sync_lms_requests_total",
		metric.WithDescription("Number of LMS API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &LMSMetrics{rateLimitRemaining: remaining, requestCost: cost, requestsTotal: requestsTotal}, nil
}

// RecordUsage records the rate limit headers of one response
func (m *LMSMetrics) RecordUsage(ctx context.Context, institution string, remaining, cost float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("institution", institution))
	m.rateLimitRemaining.Record(ctx, remaining, attrs)
	m.requestCost.Record(ctx, cost, attrs)
}

// RecordRequest counts one LMS request by method and status code
func (m *LMSMetrics) RecordRequest(ctx context.Context, institution, method string, statusCode int) {
	if m == nil {
		return
	}
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("institution", institution),
		attribute.String("method", method),
		attribute.Int("status_code", statusCode),
	))
}
