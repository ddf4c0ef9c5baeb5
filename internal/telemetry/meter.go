package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultMetricsInterval is the default interval for metric export
const DefaultMetricsInterval = 60 * time.Second

func parseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("interval must be a valid duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", s)
	}
	return d, nil
}

// newResource describes this process to the collector
func newResource(ctx context.Context, serviceName, serviceVersion string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// NewMeterProvider creates a MeterProvider exporting over OTLP/HTTP, or exposing a
// Prometheus scrape handler when the exporter is "prometheus". The handler is nil otherwise.
// Returns a no-op provider if cfg is nil or metrics are disabled.
func NewMeterProvider(ctx context.Context, cfg *Config) (metric.MeterProvider, http.Handler, error) {
	if cfg == nil || cfg.Metrics == nil || !cfg.Metrics.Enabled {
		slog.Info("Metrics disabled, using no-op meter provider")
		return noop.NewMeterProvider(), nil, nil
	}

	res, err := newResource(ctx, cfg.GetServiceName(), cfg.GetServiceVersion())
	if err != nil {
		return nil, nil, err
	}

	if cfg.Metrics.GetExporter() == ExporterPrometheus {
		registry := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(exporter))
		otel.SetMeterProvider(mp)

		slog.Info("Metrics initialized", "exporter", ExporterPrometheus)
		return mp, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
	}

	interval := DefaultMetricsInterval
	if cfg.Metrics.Interval != "" {
		d, err := parseInterval(cfg.Metrics.Interval)
		if err != nil {
			return nil, nil, err
		}
		interval = d
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.GetEndpoint())}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp)

	slog.Info("Metrics initialized",
		"exporter", ExporterOTLP,
		"endpoint", cfg.GetEndpoint(),
		"interval", interval,
		"insecure", cfg.Insecure,
	)

	return mp, nil, nil
}
