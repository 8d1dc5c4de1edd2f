package topovec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prometheus provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordFit is called after each Fit. estimator is the estimator name,
	// samples the batch size, err is nil if successful.
	RecordFit(estimator string, samples int, duration time.Duration, err error)

	// RecordTransform is called after each Transform.
	RecordTransform(estimator string, samples int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(string, int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordTransform(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount            atomic.Int64
	FitErrors           atomic.Int64
	FitSamples          atomic.Int64
	FitTotalNanos       atomic.Int64
	TransformCount      atomic.Int64
	TransformErrors     atomic.Int64
	TransformSamples    atomic.Int64
	TransformTotalNanos atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(_ string, samples int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
		return
	}
	b.FitSamples.Add(int64(samples))
}

// RecordTransform implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTransform(_ string, samples int, duration time.Duration, err error) {
	b.TransformCount.Add(1)
	b.TransformTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TransformErrors.Add(1)
		return
	}
	b.TransformSamples.Add(int64(samples))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:          b.FitCount.Load(),
		FitErrors:         b.FitErrors.Load(),
		FitSamples:        b.FitSamples.Load(),
		FitAvgNanos:       avgNanos(b.FitTotalNanos.Load(), b.FitCount.Load()),
		TransformCount:    b.TransformCount.Load(),
		TransformErrors:   b.TransformErrors.Load(),
		TransformSamples:  b.TransformSamples.Load(),
		TransformAvgNanos: avgNanos(b.TransformTotalNanos.Load(), b.TransformCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount          int64
	FitErrors         int64
	FitSamples        int64
	FitAvgNanos       int64
	TransformCount    int64
	TransformErrors   int64
	TransformSamples  int64
	TransformAvgNanos int64
}
