package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"storefront/internal/config"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordsPipelineEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.OrderCreated(ctx, "B2C", 40*time.Millisecond)
	m.OrderCreated(ctx, "B2B", 55*time.Millisecond)
	m.OrderFailed(ctx, "B2C", "STOCK_UNAVAILABLE", 10*time.Millisecond)
	m.Transitioned(ctx, "B2C", "PROCESSING", "CANCELLED")
	m.LedgerAdjusted(ctx, "DEBIT", false)
	m.Refunded(ctx, "B2C")
	m.IdempotentReplay(ctx, "B2C")

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["orders_created_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["order_placement_failures_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["order_transitions_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["credit_ledger_adjustments_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["order_refunds_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["order_idempotent_replays_total"]))

	hist, ok := got["order_placement_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestInitMeterProvider_ServesMetrics(t *testing.T) {
	handler, shutdown, err := InitMeterProvider(config.TelemetryConfig{ServiceName: "storefront-test"})
	require.NoError(t, err)
	defer shutdown(context.Background())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
