package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/topovec"
	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/kernel"
)

const trainJSON = `[
  [[0, 1, 0], [0, 2, 0], [0, 3, 0], [0, 1, 1], [0, 4, 1]],
  [[0, 1, 0], [0, 2, 0], [0, 3, 0], [0, 1, 1], [0, 4, 1]]
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFitTransformInspect(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", `
estimator: amplitude
amplitude:
  metric: bottleneck
store:
  kind: local
  path: `+filepath.Join(dir, "models")+`
save:
  compression: lz4
`)
	input := writeFile(t, dir, "train.json", trainJSON)

	out, err := run(t, "", "fit", "-c", cfg, "-i", input, "-m", "amp.tvm")
	require.NoError(t, err)
	assert.Contains(t, out, "dimensions [0 1]")
	assert.FileExists(t, filepath.Join(dir, "models", "amp.tvm"))

	out, err = run(t, trainJSON, "transform", "-c", cfg, "-m", "amp.tvm")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"H0", "H1"}, records[0])
	assert.Equal(t, []string{"1.5", "2"}, records[1])

	out, err = run(t, "", "inspect", "-c", cfg, "-m", "amp.tvm")
	require.NoError(t, err)
	var info modelInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	assert.Equal(t, "amplitude", info.Estimator)
	assert.Equal(t, "bottleneck", info.Metric)
	assert.Equal(t, []int{0, 1}, info.Dimensions)
}

func TestFit_NoOverwriteAndMetricsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", `
estimator: persistence_entropy
store:
  path: `+dir+`
save:
  no_overwrite: true
`)
	metrics := filepath.Join(dir, "metrics.prom")

	_, err := run(t, trainJSON, "fit", "-c", cfg, "-m", "pe", "--metrics-file", metrics)
	require.NoError(t, err)
	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `topovec_operations_total{estimator="PersistenceEntropy",op="fit",status="success"} 1`)

	_, err = run(t, trainJSON, "fit", "-c", cfg, "-m", "pe")
	assert.Error(t, err)
}

func TestTransform_MissingModel(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", "store:\n  path: "+dir+"\n")
	_, err := run(t, trainJSON, "transform", "-c", cfg, "-m", "missing")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	_, err = loadConfig(writeFile(t, dir, "bad.yaml", "estimatr: atol\n"))
	assert.Error(t, err)

	cfg, err = loadConfig(writeFile(t, dir, "atol.yaml", `
estimator: atol
n_jobs: 3
atol:
  quantiser: minibatchkmeans
  quantiser_params:
    n_clusters: 4
    batch_size: 32
  contrast_function: laplacian
`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NJobs)
	assert.Equal(t, 4, cfg.ATOL.QuantiserParams.NClusters)

	est, err := cfg.newEstimator()
	require.NoError(t, err)
	assert.IsType(t, &topovec.ATOL{}, est)
}

func TestNewEstimator(t *testing.T) {
	order := 2.0
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Entropy", Config{Estimator: "persistence_entropy"}, false},
		{"AmplitudeOrder", Config{Estimator: "amplitude", Amplitude: AmplitudeConfig{Metric: "heat", Order: &order}}, false},
		{"AmplitudeParams", Config{Estimator: "amplitude", Amplitude: AmplitudeConfig{
			Metric: "wasserstein", MetricParams: kernel.Params{P: 1},
		}}, false},
		{"UnknownMetric", Config{Estimator: "amplitude", Amplitude: AmplitudeConfig{Metric: "nope"}}, true},
		{"UnknownContrast", Config{Estimator: "atol", ATOL: ATOLConfig{ContrastFunction: "nope"}}, true},
		{"UnknownEstimator", Config{Estimator: "pca"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.newEstimator()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecodeBatch(t *testing.T) {
	b, err := decodeBatch([]byte(`[[[0, 1.5, 0], [0.5, 2, 1]], []]`))
	require.NoError(t, err)
	require.Len(t, b, 2)
	assert.Equal(t, diagram.Point{Birth: 0.5, Death: 2, Dim: 1}, b[0][1])
	assert.Empty(t, b[1])

	_, err = decodeBatch([]byte(`[[[0, 1, 0.5]]]`))
	assert.ErrorIs(t, err, diagram.ErrInvalidDiagram)

	_, err = decodeBatch([]byte(`{"not": "a batch"}`))
	assert.Error(t, err)
}

func TestColumnNames(t *testing.T) {
	pe, err := topovec.NewPersistenceEntropy()
	require.NoError(t, err)
	b, err := decodeBatch([]byte(trainJSON))
	require.NoError(t, err)
	require.NoError(t, pe.Fit(t.Context(), b))

	assert.Equal(t, []string{"H0", "H1"}, columnNames(pe, 2))
	assert.Equal(t, []string{"f0"}, columnNames(pe, 1))
}
