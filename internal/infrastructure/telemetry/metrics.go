package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"storefront/internal/config"
)

// InitMeterProvider wires an OTel meter provider to a dedicated Prometheus
// registry and returns the /metrics handler for it.
func InitMeterProvider(cfg config.TelemetryConfig) (http.Handler, func(context.Context) error, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), mp.Shutdown, nil
}

// Metrics holds the pipeline instruments. The zero value is not usable; build
// it with NewMetrics.
type Metrics struct {
	ordersCreated     metric.Int64Counter
	orderFailures     metric.Int64Counter
	placementDuration metric.Float64Histogram
	transitions       metric.Int64Counter
	refunds           metric.Int64Counter
	ledgerAdjustments metric.Int64Counter
	idempotentReplays metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.ordersCreated, err = meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders persisted, by order type")); err != nil {
		return nil, err
	}
	if m.orderFailures, err = meter.Int64Counter("order_placement_failures_total",
		metric.WithDescription("Rejected or failed order placements, by order type and error code")); err != nil {
		return nil, err
	}
	if m.placementDuration, err = meter.Float64Histogram("order_placement_duration_seconds",
		metric.WithDescription("Time spent placing an order, retries included"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.transitions, err = meter.Int64Counter("order_transitions_total",
		metric.WithDescription("Applied order status transitions")); err != nil {
		return nil, err
	}
	if m.refunds, err = meter.Int64Counter("order_refunds_total",
		metric.WithDescription("Completed refunds")); err != nil {
		return nil, err
	}
	if m.ledgerAdjustments, err = meter.Int64Counter("credit_ledger_adjustments_total",
		metric.WithDescription("Company balance adjustments, by kind and forced flag")); err != nil {
		return nil, err
	}
	if m.idempotentReplays, err = meter.Int64Counter("order_idempotent_replays_total",
		metric.WithDescription("Order creations answered from the idempotency store")); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *Metrics) OrderCreated(ctx context.Context, orderType string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("order_type", orderType))
	m.ordersCreated.Add(ctx, 1, attrs)
	m.placementDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) OrderFailed(ctx context.Context, orderType, code string, elapsed time.Duration) {
	m.orderFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order_type", orderType),
		attribute.String("code", code),
	))
	m.placementDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("order_type", orderType)))
}

func (m *Metrics) Transitioned(ctx context.Context, orderType, from, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order_type", orderType),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *Metrics) Refunded(ctx context.Context, orderType string) {
	m.refunds.Add(ctx, 1, metric.WithAttributes(attribute.String("order_type", orderType)))
}

func (m *Metrics) LedgerAdjusted(ctx context.Context, kind string, forced bool) {
	m.ledgerAdjustments.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("forced", forced),
	))
}

func (m *Metrics) IdempotentReplay(ctx context.Context, orderType string) {
	m.idempotentReplays.Add(ctx, 1, metric.WithAttributes(attribute.String("order_type", orderType)))
}
