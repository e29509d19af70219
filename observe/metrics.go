package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricCallTotal    = "guidelinely.call.total"
	MetricCallErrors   = "guidelinely.call.errors"
	MetricCallDuration = "guidelinely.call.duration_ms"
	MetricCacheHits    = "guidelinely.cache.hits"
	MetricCacheMisses  = "guidelinely.cache.misses"
)

// Metrics records call and cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records an operation with duration and error status.
	RecordCall(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordCache records the outcome of a cache lookup.
	RecordCache(ctx context.Context, meta OpMeta, hit bool)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	hitCount     metric.Int64Counter
	missCount    metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		MetricCallTotal,
		metric.WithDescription("Total number of calculation calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricCallErrors,
		metric.WithDescription("Total number of failed calculation calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricCallDuration,
		metric.WithDescription("Calculation call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	hitCount, err := meter.Int64Counter(
		MetricCacheHits,
		metric.WithDescription("Calculation results served from the cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	missCount, err := meter.Int64Counter(
		MetricCacheMisses,
		metric.WithDescription("Calculation lookups that went to the remote service"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		hitCount:     hitCount,
		missCount:    missCount,
	}, nil
}

func opAttributes(meta OpMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", meta.Name),
	}
	if meta.Media != "" {
		attrs = append(attrs, attribute.String("op.media", meta.Media))
	}
	return metric.WithAttributes(attrs...)
}

// RecordCall records metrics for one operation.
func (m *metricsImpl) RecordCall(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := opAttributes(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCache increments the hit or miss counter.
func (m *metricsImpl) RecordCache(ctx context.Context, meta OpMeta, hit bool) {
	if hit {
		m.hitCount.Add(ctx, 1, opAttributes(meta))
		return
	}
	m.missCount.Add(ctx, 1, opAttributes(meta))
}

type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordCache(ctx context.Context, meta OpMeta, hit bool) {}
