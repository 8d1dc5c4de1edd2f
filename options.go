package topovec

import (
	"math"
	"strings"

	"github.com/hupe1980/topovec/kernel"
	"github.com/hupe1980/topovec/quantization"
)

type optionID uint16

const (
	optNJobs optionID = 1 << iota
	optLogger
	optMetrics
	optNormalize
	optNaNFill
	optMetric
	optMetricParams
	optOrder
	optQuantizer
	optQuantizerParams
	optQuantizerParamsPerDim
	optWeight
	optContrast
)

var optionNames = map[optionID]string{
	optNJobs:                 "n_jobs",
	optLogger:                "logger",
	optMetrics:               "metrics_collector",
	optNormalize:             "normalize",
	optNaNFill:               "nan_fill_value",
	optMetric:                "metric",
	optMetricParams:          "metric_params",
	optOrder:                 "order",
	optQuantizer:             "quantiser",
	optQuantizerParams:       "quantiser_params",
	optQuantizerParamsPerDim: "quantiser_params_per_dimension",
	optWeight:                "weight_function",
	optContrast:              "contrast_function",
}

const commonOptions = optNJobs | optLogger | optMetrics

type options struct {
	set optionID

	nJobs   int
	logger  *Logger
	metrics MetricsCollector

	normalize bool
	fill      bool
	fillValue float64

	metric       kernel.Metric
	metricParams kernel.Params
	order        float64 // 0 means no reduction

	quantizer       quantization.Kind
	quantizerParams quantization.Params
	perDimension    []quantization.Params
	weight          quantization.Weight
	contrast        quantization.Contrast
}

func defaultOptions() options {
	return options{
		nJobs:     1,
		logger:    NoopLogger(),
		metrics:   NoopMetricsCollector{},
		fill:      true,
		fillValue: -1,
		metric:    kernel.Landscape,
		quantizer: quantization.KMeans,
		weight:    quantization.Uniform,
		contrast:  quantization.Gaussian,
	}
}

// applyOptions applies opts over the defaults and rejects any option outside
// accepted.
func applyOptions(estimator string, accepted optionID, opts []Option) (options, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if extra := o.set &^ (accepted | commonOptions); extra != 0 {
		var names []string
		for id := optionID(1); id != 0 && id <= extra; id <<= 1 {
			if extra&id != 0 {
				names = append(names, optionNames[id])
			}
		}
		return o, configError(strings.Join(names, ", "), nil, "not accepted by "+estimator)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	return o, nil
}

// Option configures an estimator constructor.
//
// All estimators accept WithNJobs, WithLogger and WithMetricsCollector. The
// remaining options belong to a single estimator; passing them to another one
// is a configuration error.
type Option func(*options)

// WithNJobs sets the maximum number of concurrently executing work units.
// Values <= 0 use one worker per available CPU. The default is 1 (sequential).
func WithNJobs(n int) Option {
	return func(o *options) {
		o.set |= optNJobs
		o.nJobs = n
	}
}

// WithLogger configures structured logging. The default discards all output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.set |= optLogger
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics sink for fit and transform calls.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.set |= optMetrics
		o.metrics = mc
	}
}

// WithNormalize divides each entropy by the base-2 logarithm of the summed
// lifetimes. PersistenceEntropy only.
func WithNormalize(normalize bool) Option {
	return func(o *options) {
		o.set |= optNormalize
		o.normalize = normalize
	}
}

// WithNaNFillValue replaces undefined entropies with v and clamps infinities
// to the largest finite float64. The default fill value is -1.
// PersistenceEntropy only.
func WithNaNFillValue(v float64) Option {
	return func(o *options) {
		o.set |= optNaNFill
		o.fill = true
		o.fillValue = v
	}
}

// WithoutNaNFill leaves NaN and infinite entropies untouched.
// PersistenceEntropy only.
func WithoutNaNFill() Option {
	return func(o *options) {
		o.set |= optNaNFill
		o.fill = false
	}
}

// WithMetric selects the amplitude kernel. The default is kernel.Landscape.
// Amplitude only.
func WithMetric(m kernel.Metric) Option {
	return func(o *options) {
		o.set |= optMetric
		o.metric = m
	}
}

// WithMetricParams sets the kernel parameters. Zero fields select defaults.
// Amplitude only.
func WithMetricParams(p kernel.Params) Option {
	return func(o *options) {
		o.set |= optMetricParams
		o.metricParams = p
	}
}

// WithOrder reduces each row of per-dimension amplitudes to its p-norm.
// p must lie in (0, +Inf]. Amplitude only.
func WithOrder(p float64) Option {
	return func(o *options) {
		o.set |= optOrder
		o.order = p
	}
}

// WithQuantizer selects the clustering algorithm. The default is KMeans.
// ATOL only.
func WithQuantizer(k quantization.Kind) Option {
	return func(o *options) {
		o.set |= optQuantizer
		o.quantizer = k
	}
}

// WithQuantizerParams sets clustering parameters shared by every homology
// dimension. ATOL only.
func WithQuantizerParams(p quantization.Params) Option {
	return func(o *options) {
		o.set |= optQuantizerParams
		o.quantizerParams = p
	}
}

// WithQuantizerParamsPerDimension sets one parameter set per fitted homology
// dimension, in ascending dimension order. It overrides WithQuantizerParams.
// ATOL only.
func WithQuantizerParamsPerDimension(ps []quantization.Params) Option {
	return func(o *options) {
		o.set |= optQuantizerParamsPerDim
		o.perDimension = append([]quantization.Params(nil), ps...)
	}
}

// WithWeightFunction selects the point weighting. ATOL only.
func WithWeightFunction(w quantization.Weight) Option {
	return func(o *options) {
		o.set |= optWeight
		o.weight = w
	}
}

// WithContrastFunction selects the proximity law. ATOL only.
func WithContrastFunction(c quantization.Contrast) Option {
	return func(o *options) {
		o.set |= optContrast
		o.contrast = c
	}
}

func validOrder(p float64) bool {
	return !math.IsNaN(p) && p > 0
}
