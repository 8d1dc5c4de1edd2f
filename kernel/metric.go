package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParams is returned for unknown metrics or out-of-range parameters.
var ErrInvalidParams = errors.New("kernel: invalid parameters")

// Metric identifies an amplitude kernel.
type Metric int

const (
	Bottleneck Metric = iota
	Wasserstein
	Betti
	Landscape
	Silhouette
	Heat
	PersistenceImage
)

var metricNames = [...]string{
	Bottleneck:       "bottleneck",
	Wasserstein:      "wasserstein",
	Betti:            "betti",
	Landscape:        "landscape",
	Silhouette:       "silhouette",
	Heat:             "heat",
	PersistenceImage: "persistence_image",
}

func (m Metric) String() string {
	if m.Valid() {
		return metricNames[m]
	}
	return fmt.Sprintf("Unknown(%d)", int(m))
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool { return m >= Bottleneck && m <= PersistenceImage }

// Gridded reports whether m samples a functional summary on a grid.
func (m Metric) Gridded() bool { return m >= Betti }

// ParseMetric maps a metric name to its Metric.
func ParseMetric(name string) (Metric, error) {
	name = strings.ToLower(name)
	for m, n := range metricNames {
		if n == name {
			return Metric(m), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown metric %q", ErrInvalidParams, name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown metric %d", ErrInvalidParams, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	v, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
