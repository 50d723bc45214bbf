package observability

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter.
// Returns a shutdown func for graceful termination.
func SetupTracing(serviceName string) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// SetupMetrics initializes an otel meter provider backed by the Prometheus
// exporter. Scrape output is served by MetricsHandler.
func SetupMetrics() (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)
	return mp, nil
}

// MetricsHandler exposes the Prometheus scrape endpoint through gin.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Metrics holds the instruments the turn pipeline records.
type Metrics struct {
	turns           metric.Int64Counter
	upstreamLatency metric.Float64Histogram
}

// NewMetrics creates the turn pipeline instruments.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("character-dialog-service")

	turns, err := meter.Int64Counter("dialog_turns_total",
		metric.WithDescription("Completed dialog turns by outcome"))
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("dialog_upstream_latency_seconds",
		metric.WithDescription("Latency of completion vendor calls"))
	if err != nil {
		return nil, err
	}

	return &Metrics{turns: turns, upstreamLatency: latency}, nil
}

// RecordTurn counts one finished turn with its outcome label.
func (m *Metrics) RecordTurn(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordUpstreamLatency records one completion call's duration.
func (m *Metrics) RecordUpstreamLatency(ctx context.Context, vendor string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamLatency.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("vendor", vendor)))
}
