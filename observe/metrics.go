package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics records HTTP request metrics: totals, denials, and latency.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: recording must not panic; it is best-effort.
type RequestMetrics struct {
	totalCount   metric.Int64Counter
	deniedCount  metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewRequestMetrics creates a RequestMetrics instance with the given meter.
func NewRequestMetrics(meter metric.Meter) (*RequestMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	deniedCount, err := meter.Int64Counter(
		"http.server.denied",
		metric.WithDescription("Requests denied by the access guard (401/403)"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.server.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &RequestMetrics{
		totalCount:   totalCount,
		deniedCount:  deniedCount,
		durationHist: durationHist,
	}, nil
}

// Record records one completed request.
func (m *RequestMetrics) Record(ctx context.Context, method, path string, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.Int("http.status", status),
	)

	m.totalCount.Add(ctx, 1, opt)
	if status == 401 || status == 403 {
		m.deniedCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}
