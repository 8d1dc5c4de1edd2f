package topovec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/kernel"
	"github.com/hupe1980/topovec/quantization"
)

var (
	// ErrInvalidConfig is returned for unknown enumeration values, out-of-range
	// parameters and options an estimator does not accept.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFitted is returned by Transform before a successful Fit.
	ErrNotFitted = errors.New("estimator is not fitted")

	// ErrInsufficientPoints is returned when a homology dimension has fewer
	// off-diagonal points than requested clusters.
	ErrInsufficientPoints = errors.New("not enough off-diagonal points to quantize")

	// ErrEmptyBatch is returned when a batch contains no diagrams.
	ErrEmptyBatch = diagram.ErrEmptyBatch

	// ErrInvalidDiagram is returned for triples violating the diagram invariants.
	ErrInvalidDiagram = diagram.ErrInvalidDiagram

	// ErrRaggedBatch is returned when diagrams disagree on per-dimension counts.
	ErrRaggedBatch = diagram.ErrRaggedBatch
)

// ConfigError describes a rejected estimator option.
//
// It matches ErrInvalidConfig via errors.Is. The underlying error (if any) can
// be accessed via errors.Unwrap.
type ConfigError struct {
	Option string
	Value  any
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Option, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

func (e *ConfigError) Unwrap() error { return e.cause }

func configError(option string, value any, reason string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Reason: reason}
}

// translateError maps errors of the kernel and quantization packages onto the
// public sentinels.
func translateError(option string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, quantization.ErrTooFewPoints) {
		return fmt.Errorf("%w: %w", ErrInsufficientPoints, err)
	}
	if errors.Is(err, kernel.ErrInvalidParams) || errors.Is(err, quantization.ErrInvalidParams) {
		return &ConfigError{Option: option, Reason: err.Error(), cause: err}
	}
	return err
}
