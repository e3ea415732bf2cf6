package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics mirrors the service's key measurements onto OpenTelemetry
// instruments for deployments that ship metrics over OTLP instead of (or
// alongside) the Prometheus endpoint. HTTP-level instruments come from the
// otelhttp wrapper, so only the domain families live here.
type OTelMetrics struct {
	dbConnectionsActive metric.Int64Gauge
	dbConnectionsIdle   metric.Int64Gauge
	dbConnectionsMax    metric.Int64Gauge

	presignTotal    metric.Int64Counter
	presignDuration metric.Float64Histogram

	uploadValidations metric.Int64Counter
}

// NewOTelMetrics creates instruments on the global meter provider.
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/quanghuy1242/content-api")

	m := &OTelMetrics{}
	var err error

	m.dbConnectionsActive, err = meter.Int64Gauge(
		"db.connections.active",
		metric.WithDescription("Number of active database connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db.connections.active gauge: %w", err)
	}

	m.dbConnectionsIdle, err = meter.Int64Gauge(
		"db.connections.idle",
		metric.WithDescription("Number of idle database connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db.connections.idle gauge: %w", err)
	}

	m.dbConnectionsMax, err = meter.Int64Gauge(
		"db.connections.max",
		metric.WithDescription("Maximum number of database connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db.connections.max gauge: %w", err)
	}

	m.presignTotal, err = meter.Int64Counter(
		"objectstore.presign.total",
		metric.WithDescription("Total number of pre-signed URL requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create objectstore.presign.total counter: %w", err)
	}

	m.presignDuration, err = meter.Float64Histogram(
		"objectstore.presign.duration",
		metric.WithDescription("Pre-sign operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create objectstore.presign.duration histogram: %w", err)
	}

	m.uploadValidations, err = meter.Int64Counter(
		"images.upload.validations",
		metric.WithDescription("Image upload validation checks by outcome"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create images.upload.validations counter: %w", err)
	}

	return m, nil
}

// UpdateDBConnectionStats records the current pool shape.
func (m *OTelMetrics) UpdateDBConnectionStats(ctx context.Context, active, idle, max int) {
	m.dbConnectionsActive.Record(ctx, int64(active))
	m.dbConnectionsIdle.Record(ctx, int64(idle))
	m.dbConnectionsMax.Record(ctx, int64(max))
}

// RecordPresign records one pre-sign operation. Direction is "upload" or
// "download".
func (m *OTelMetrics) RecordPresign(ctx context.Context, direction string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("direction", direction),
		attribute.Bool("error", err != nil),
	}
	m.presignTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.presignDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUploadValidation records a validate call's outcome: "confirmed",
// "pending" or "expired".
func (m *OTelMetrics) RecordUploadValidation(ctx context.Context, outcome string) {
	m.uploadValidations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
