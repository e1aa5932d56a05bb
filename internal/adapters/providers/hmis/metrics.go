package hmis

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type hmisMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var (
	hmisMetricsOnce sync.Once
	hmisMetricsOK   bool
	hmisInstance    hmisMetrics
)

func ensureHMISMetrics() bool {
	hmisMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/phr/backend/hmis")

		requestCount, err := meter.Int64Counter(
			"hmis.request.count",
			metric.WithDescription("Number of hospital system requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"hmis.request.duration",
			metric.WithDescription("Hospital system request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"hmis.request.errors",
			metric.WithDescription("Number of failed hospital system requests"),
		)
		if err != nil {
			return
		}

		hmisInstance = hmisMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
		}
		hmisMetricsOK = true
	})
	return hmisMetricsOK
}

func recordHMISMetric(ctx context.Context, operation string, statusCode int, duration time.Duration, err error) {
	if !ensureHMISMetrics() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("hmis.operation", operation),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	hmisInstance.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	hmisInstance.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		hmisInstance.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
