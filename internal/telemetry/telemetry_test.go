package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		cfg           *Config
		errorContains string
	}{
		{
			name: "nil config gives no-op providers",
			cfg:  nil,
		},
		{
			name: "disabled config gives no-op providers",
			cfg:  &Config{Enabled: false},
		},
		{
			name: "enabled with tracing and metrics off",
			cfg: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: false},
				Metrics: &MetricsConfig{Enabled: false},
			},
		},
		{
			name: "invalid sampling",
			cfg: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: 1.5},
			},
			errorContains: "invalid telemetry configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tel, err := New(context.Background(), tt.cfg)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tel)
			assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider())
			assert.IsType(t, metricnoop.MeterProvider{}, tel.MeterProvider())
			assert.Nil(t, tel.MetricsHandler())
			assert.NotNil(t, tel.Tracer("test"))
			assert.NoError(t, tel.Shutdown(context.Background()))
		})
	}
}

func TestNew_PrometheusExporter(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background(), &Config{
		Enabled: true,
		Metrics: &MetricsConfig{Enabled: true, Exporter: ExporterPrometheus},
	})
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(context.Background()) }()

	require.IsType(t, &sdkmetric.MeterProvider{}, tel.MeterProvider())
	require.NotNil(t, tel.MetricsHandler())

	m, err := NewEventMetrics(tel.MeterProvider())
	require.NoError(t, err)
	m.RecordEvent(context.Background(), "foothill", "student-enroll", "applied")

	rec := httptest.NewRecorder()
	tel.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roster_sync_events_total")
	assert.Contains(t, rec.Body.String(), `institution="foothill"`)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "nil config", cfg: nil},
		{name: "disabled ignores bad values", cfg: &Config{Tracing: &TracingConfig{Enabled: true, Sampling: 7}}},
		{name: "valid sampling", cfg: &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 0.5}}},
		{
			name:    "negative sampling",
			cfg:     &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: -0.1}},
			wantErr: "sampling must be between",
		},
		{
			name:    "bad metrics interval",
			cfg:     &Config{Enabled: true, Metrics: &MetricsConfig{Enabled: true, Interval: "often"}},
			wantErr: "interval must be a valid duration",
		},
		{
			name:    "unknown exporter",
			cfg:     &Config{Enabled: true, Metrics: &MetricsConfig{Enabled: true, Exporter: "statsd"}},
			wantErr: "unknown exporter",
		},
		{
			name:    "zero metrics interval",
			cfg:     &Config{Enabled: true, Metrics: &MetricsConfig{Enabled: true, Interval: "0s"}},
			wantErr: "interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.InDelta(t, DefaultSampling, (&TracingConfig{}).GetSampling(), 0.0001)
	assert.InDelta(t, 0.25, (&TracingConfig{Sampling: 0.25}).GetSampling(), 0.0001)
	assert.Equal(t, ExporterOTLP, (&MetricsConfig{}).GetExporter())
	assert.Equal(t, ExporterPrometheus, (&MetricsConfig{Exporter: ExporterPrometheus}).GetExporter())
}
