package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("nil metrics pass through", func(t *testing.T) {
		t.Parallel()

		var m *HTTPMetrics
		handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("records route pattern", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		m, err := NewHTTPMetrics(mp)
		require.NoError(t, err)

		r := chi.NewRouter()
		r.Use(m.Middleware)
		r.Get("/v1/institutions/{institution}/status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/institutions/foothill/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		var found bool
		for _, scope := range rm.ScopeMetrics {
			for _, metric := range scope.Metrics {
				if metric.Name != "roster_sync_http_requests_total" {
					continue
				}
				found = true
				sum := metric.Data.(metricdata.Sum[int64])
				require.Len(t, sum.DataPoints, 1)
				route, ok := sum.DataPoints[0].Attributes.Value("route")
				require.True(t, ok)
				assert.Equal(t, "/v1/institutions/{institution}/status", route.AsString())
			}
		}
		assert.True(t, found)
	})
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil provider pass through", func(t *testing.T) {
		t.Parallel()

		handler := TracingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("span named after route and marked failed on 5xx", func(t *testing.T) {
		t.Parallel()

		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		defer func() { _ = tp.Shutdown(context.Background()) }()

		r := chi.NewRouter()
		r.Use(TracingMiddleware(tp))
		r.Post("/v1/institutions/{institution}/reconcile", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/institutions/foothill/reconcile", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "POST /v1/institutions/{institution}/reconcile", spans[0].Name())
		assert.Equal(t, "Error", spans[0].Status().Code.String())
	})
}
