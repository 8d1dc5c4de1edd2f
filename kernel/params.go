package kernel

import (
	"fmt"
	"math"
	"strings"
)

// Weight is the persistence weighting applied by persistence images.
type Weight int

const (
	// UniformWeight weights every pixel by one.
	UniformWeight Weight = iota
	// LinearWeight weights a pixel by its persistence coordinate.
	LinearWeight
)

func (w Weight) String() string {
	switch w {
	case UniformWeight:
		return "uniform"
	case LinearWeight:
		return "linear"
	default:
		return fmt.Sprintf("Unknown(%d)", int(w))
	}
}

// ParseWeight maps a weight name to its Weight. The empty name is uniform.
func ParseWeight(name string) (Weight, error) {
	switch strings.ToLower(name) {
	case "", "uniform", "none":
		return UniformWeight, nil
	case "linear":
		return LinearWeight, nil
	default:
		return 0, fmt.Errorf("%w: unknown weight function %q", ErrInvalidParams, name)
	}
}

// Eval returns the weight of persistence value p.
func (w Weight) Eval(p float64) float64 {
	if w == LinearWeight {
		return p
	}
	return 1
}

// MarshalText implements encoding.TextMarshaler.
func (w Weight) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weight) UnmarshalText(text []byte) error {
	v, err := ParseWeight(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Params holds metric-specific options. Zero values select the defaults;
// setting an option the metric does not accept is an error.
type Params struct {
	P       float64 `json:"p,omitempty" yaml:"p"`
	NBins   int     `json:"n_bins,omitempty" yaml:"n_bins"`
	NLayers int     `json:"n_layers,omitempty" yaml:"n_layers"`
	Power   float64 `json:"power,omitempty" yaml:"power"`
	Sigma   float64 `json:"sigma,omitempty" yaml:"sigma"`
	Weight  Weight  `json:"weight_function,omitempty" yaml:"weight_function"`
}

const (
	DefaultP       = 2.0
	DefaultNBins   = 100
	DefaultNLayers = 1
	DefaultPower   = 1.0
	DefaultSigma   = 0.1
)

type option uint8

const (
	optP option = 1 << iota
	optNBins
	optNLayers
	optPower
	optSigma
	optWeight
)

var accepted = [...]option{
	Bottleneck:       0,
	Wasserstein:      optP,
	Betti:            optP | optNBins,
	Landscape:        optP | optNBins | optNLayers,
	Silhouette:       optP | optNBins | optPower,
	Heat:             optP | optNBins | optSigma,
	PersistenceImage: optP | optNBins | optSigma | optWeight,
}

// Resolve validates p against the options m accepts and fills in defaults.
func (m Metric) Resolve(p Params) (Params, error) {
	if !m.Valid() {
		return Params{}, fmt.Errorf("%w: unknown metric %d", ErrInvalidParams, int(m))
	}
	ok := accepted[m]
	reject := func(name string) error {
		return fmt.Errorf("%w: %s is not accepted by metric %s", ErrInvalidParams, name, m)
	}

	if p.P != 0 {
		if ok&optP == 0 {
			return Params{}, reject("p")
		}
		if math.IsNaN(p.P) || p.P < 1 {
			return Params{}, fmt.Errorf("%w: p must be in [1, inf], got %g", ErrInvalidParams, p.P)
		}
	}
	if p.NBins != 0 {
		if ok&optNBins == 0 {
			return Params{}, reject("n_bins")
		}
		if p.NBins < 1 {
			return Params{}, fmt.Errorf("%w: n_bins must be >= 1, got %d", ErrInvalidParams, p.NBins)
		}
	}
	if p.NLayers != 0 {
		if ok&optNLayers == 0 {
			return Params{}, reject("n_layers")
		}
		if p.NLayers < 1 {
			return Params{}, fmt.Errorf("%w: n_layers must be >= 1, got %d", ErrInvalidParams, p.NLayers)
		}
	}
	if p.Power != 0 {
		if ok&optPower == 0 {
			return Params{}, reject("power")
		}
		if math.IsNaN(p.Power) || math.IsInf(p.Power, 0) || p.Power < 0 {
			return Params{}, fmt.Errorf("%w: power must be a positive real, got %g", ErrInvalidParams, p.Power)
		}
	}
	if p.Sigma != 0 {
		if ok&optSigma == 0 {
			return Params{}, reject("sigma")
		}
		if math.IsNaN(p.Sigma) || math.IsInf(p.Sigma, 0) || p.Sigma < 0 {
			return Params{}, fmt.Errorf("%w: sigma must be a positive real, got %g", ErrInvalidParams, p.Sigma)
		}
	}
	if p.Weight != UniformWeight {
		if ok&optWeight == 0 {
			return Params{}, reject("weight_function")
		}
		if p.Weight != LinearWeight {
			return Params{}, fmt.Errorf("%w: unknown weight function %d", ErrInvalidParams, int(p.Weight))
		}
	}

	out := Params{Weight: p.Weight}
	if ok&optP != 0 {
		out.P = orDefault(p.P, DefaultP)
	}
	if ok&optNBins != 0 {
		out.NBins = p.NBins
		if out.NBins == 0 {
			out.NBins = DefaultNBins
		}
	}
	if ok&optNLayers != 0 {
		out.NLayers = p.NLayers
		if out.NLayers == 0 {
			out.NLayers = DefaultNLayers
		}
	}
	if ok&optPower != 0 {
		out.Power = orDefault(p.Power, DefaultPower)
	}
	if ok&optSigma != 0 {
		out.Sigma = orDefault(p.Sigma, DefaultSigma)
	}
	return out, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
