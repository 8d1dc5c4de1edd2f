// Package prometheus exports estimator metrics through the Prometheus client.
//
//	reg := prom.NewRegistry()
//	mc, _ := prometheus.NewCollector(prometheus.WithRegisterer(reg))
//	pe, _ := topovec.NewPersistenceEntropy(topovec.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/topovec"
)

// Collector implements topovec.MetricsCollector with Prometheus metrics
// labeled by estimator, operation, and status.
type Collector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	samples    *prometheus.CounterVec
}

var _ topovec.MetricsCollector = (*Collector)(nil)

type options struct {
	namespace  string
	registerer prometheus.Registerer
	buckets    []float64
}

// Option configures NewCollector.
type Option func(*options)

// WithNamespace sets the metric name prefix (default "topovec").
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithRegisterer registers the metrics with r instead of
// prometheus.DefaultRegisterer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(b []float64) Option {
	return func(o *options) {
		o.buckets = b
	}
}

// NewCollector creates the metrics and registers them. It fails if a metric
// with the same name is already registered.
func NewCollector(opts ...Option) (*Collector, error) {
	o := options{
		namespace:  "topovec",
		registerer: prometheus.DefaultRegisterer,
		buckets:    []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}
	for _, fn := range opts {
		fn(&o)
	}

	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "operations_total",
			Help:      "Total fit and transform calls by estimator and status",
		}, []string{"estimator", "op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of fit and transform calls",
			Buckets:   o.buckets,
		}, []string{"estimator", "op"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "samples_total",
			Help:      "Diagrams processed by successful calls",
		}, []string{"estimator", "op"}),
	}
	for _, m := range []prometheus.Collector{c.operations, c.latency, c.samples} {
		if err := o.registerer.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordFit implements topovec.MetricsCollector.
func (c *Collector) RecordFit(estimator string, samples int, d time.Duration, err error) {
	c.record(estimator, "fit", samples, d, err)
}

// RecordTransform implements topovec.MetricsCollector.
func (c *Collector) RecordTransform(estimator string, samples int, d time.Duration, err error) {
	c.record(estimator, "transform", samples, d, err)
}

func (c *Collector) record(estimator, op string, samples int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.operations.WithLabelValues(estimator, op, status).Inc()
	c.latency.WithLabelValues(estimator, op).Observe(d.Seconds())
	if err == nil {
		c.samples.WithLabelValues(estimator, op).Add(float64(samples))
	}
}
