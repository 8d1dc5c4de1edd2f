package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/topovec"
	"github.com/hupe1980/topovec/blobstore"
	"github.com/hupe1980/topovec/blobstore/minio"
	"github.com/hupe1980/topovec/blobstore/s3"
	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/kernel"
	"github.com/hupe1980/topovec/persistence"
	"github.com/hupe1980/topovec/quantization"
)

// Config is the YAML configuration of the topovec command.
type Config struct {
	Estimator string          `yaml:"estimator"`
	NJobs     int             `yaml:"n_jobs"`
	Log       LogConfig       `yaml:"log"`
	Entropy   EntropyConfig   `yaml:"persistence_entropy"`
	Amplitude AmplitudeConfig `yaml:"amplitude"`
	ATOL      ATOLConfig      `yaml:"atol"`
	Store     StoreConfig     `yaml:"store"`
	Save      SaveConfig      `yaml:"save"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type EntropyConfig struct {
	Normalize    bool     `yaml:"normalize"`
	NaNFill      *bool    `yaml:"nan_fill"`
	NaNFillValue *float64 `yaml:"nan_fill_value"`
}

type AmplitudeConfig struct {
	Metric       string        `yaml:"metric"`
	MetricParams kernel.Params `yaml:"metric_params"`
	Order        *float64      `yaml:"order"`
}

type ATOLConfig struct {
	Quantiser                   string                `yaml:"quantiser"`
	QuantiserParams             quantization.Params   `yaml:"quantiser_params"`
	QuantiserParamsPerDimension []quantization.Params `yaml:"quantiser_params_per_dimension"`
	WeightFunction              string                `yaml:"weight_function"`
	ContrastFunction            string                `yaml:"contrast_function"`
}

// StoreConfig selects the blob store models are written to. Kind is one of
// local (default), minio, s3, or s3-ddb.
type StoreConfig struct {
	Kind       string `yaml:"kind"`
	Path       string `yaml:"path"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Secure     bool   `yaml:"secure"`
	Bucket     string `yaml:"bucket"`
	Prefix     string `yaml:"prefix"`
	Region     string `yaml:"region"`
	Table      string `yaml:"table"`
	CacheBytes int64  `yaml:"cache_bytes"`
}

type SaveConfig struct {
	Codec       string `yaml:"codec"`
	Compression string `yaml:"compression"`
	NoOverwrite bool   `yaml:"no_overwrite"`
}

func defaultConfig() Config {
	return Config{
		Estimator: "persistence_entropy",
		NJobs:     1,
		Log:       LogConfig{Level: "warn", Format: "text"},
		Store:     StoreConfig{Kind: "local", Path: "."},
		Save:      SaveConfig{Codec: codec.Default.Name(), Compression: "zstd"},
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c LogConfig) logger() (*topovec.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return topovec.NewTextLogger(level), nil
	case "json":
		return topovec.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.Format)
	}
}

// newEstimator builds the configured estimator with the common options.
func (c Config) newEstimator(common ...topovec.Option) (topovec.Model, error) {
	opts := append([]topovec.Option(nil), common...)
	switch strings.ToLower(c.Estimator) {
	case "persistence_entropy", "entropy":
		opts = append(opts, topovec.WithNormalize(c.Entropy.Normalize))
		if c.Entropy.NaNFill != nil && !*c.Entropy.NaNFill {
			opts = append(opts, topovec.WithoutNaNFill())
		} else if c.Entropy.NaNFillValue != nil {
			opts = append(opts, topovec.WithNaNFillValue(*c.Entropy.NaNFillValue))
		}
		return topovec.NewPersistenceEntropy(opts...)
	case "amplitude":
		if c.Amplitude.Metric != "" {
			m, err := kernel.ParseMetric(c.Amplitude.Metric)
			if err != nil {
				return nil, err
			}
			opts = append(opts, topovec.WithMetric(m))
		}
		if c.Amplitude.MetricParams != (kernel.Params{}) {
			opts = append(opts, topovec.WithMetricParams(c.Amplitude.MetricParams))
		}
		if c.Amplitude.Order != nil {
			opts = append(opts, topovec.WithOrder(*c.Amplitude.Order))
		}
		return topovec.NewAmplitude(opts...)
	case "atol":
		a := c.ATOL
		if a.Quantiser != "" {
			k, err := quantization.ParseKind(a.Quantiser)
			if err != nil {
				return nil, err
			}
			opts = append(opts, topovec.WithQuantizer(k))
		}
		if a.WeightFunction != "" {
			w, err := quantization.ParseWeight(a.WeightFunction)
			if err != nil {
				return nil, err
			}
			opts = append(opts, topovec.WithWeightFunction(w))
		}
		if a.ContrastFunction != "" {
			cf, err := quantization.ParseContrast(a.ContrastFunction)
			if err != nil {
				return nil, err
			}
			opts = append(opts, topovec.WithContrastFunction(cf))
		}
		opts = append(opts, topovec.WithQuantizerParams(a.QuantiserParams))
		if a.QuantiserParamsPerDimension != nil {
			opts = append(opts, topovec.WithQuantizerParamsPerDimension(a.QuantiserParamsPerDimension))
		}
		return topovec.NewATOL(opts...)
	default:
		return nil, fmt.Errorf("unknown estimator %q: want persistence_entropy, amplitude or atol", c.Estimator)
	}
}

func (c SaveConfig) options() ([]topovec.SaveOption, error) {
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q: want one of %v", c.Codec, codec.Names())
	}
	comp, err := persistence.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	opts := []topovec.SaveOption{topovec.WithCodec(cd), topovec.WithCompression(comp)}
	if c.NoOverwrite {
		opts = append(opts, topovec.WithoutOverwrite())
	}
	return opts, nil
}

// open returns the configured store, wrapped in a read cache when
// CacheBytes is positive.
func (c StoreConfig) open(ctx context.Context) (blobstore.Store, error) {
	var (
		store blobstore.Store
		err   error
	)
	switch strings.ToLower(c.Kind) {
	case "", "local":
		store = blobstore.NewLocalStore(c.Path)
	case "minio":
		var ms *minio.Store
		ms, err = minio.Dial(c.Endpoint, c.AccessKey, c.SecretKey, c.Secure, c.Bucket, c.Prefix)
		if err == nil {
			err = ms.EnsureBucket(ctx)
		}
		store = ms
	case "s3":
		var opts []s3.Option
		if c.Prefix != "" {
			opts = append(opts, s3.WithPrefix(c.Prefix))
		}
		if c.Region != "" {
			opts = append(opts, s3.WithRegion(c.Region))
		}
		store, err = s3.New(ctx, c.Bucket, opts...)
	case "s3-ddb":
		if c.Table == "" {
			return nil, fmt.Errorf("store kind s3-ddb requires a table")
		}
		var loadOpts []func(*config.LoadOptions) error
		if c.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(c.Region))
		}
		awsCfg, lerr := config.LoadDefaultConfig(ctx, loadOpts...)
		if lerr != nil {
			return nil, fmt.Errorf("load aws config: %w", lerr)
		}
		store = s3.NewDDBCommitStoreFromConfig(awsCfg, c.Bucket, c.Prefix, c.Table)
	default:
		return nil, fmt.Errorf("unknown store kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}
	if c.CacheBytes > 0 {
		store = blobstore.NewCachingStore(store, c.CacheBytes)
	}
	return store, nil
}
