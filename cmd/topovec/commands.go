package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/topovec"
	"github.com/hupe1980/topovec/kernel"
)

func (a *app) fitCmd() *cobra.Command {
	var input, model string
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the configured estimator and save the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			X, err := readBatch(input, a.stdin)
			if err != nil {
				return err
			}
			common, err := a.commonOptions()
			if err != nil {
				return err
			}
			est, err := a.cfg.newEstimator(common...)
			if err != nil {
				return err
			}
			saveOpts, err := a.cfg.Save.options()
			if err != nil {
				return err
			}
			store, err := a.cfg.Store.open(ctx)
			if err != nil {
				return err
			}
			if err := est.Fit(ctx, X); err != nil {
				return err
			}
			if err := topovec.SaveModel(ctx, store, model, est, saveOpts...); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "fitted %T on %d diagrams, dimensions %v, saved to %s\n",
				est, len(X), est.HomologyDimensions(), model)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON diagrams (- for stdin)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name in the store")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func (a *app) transformCmd() *cobra.Command {
	var input, model string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Apply a saved model and write features as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			X, err := readBatch(input, a.stdin)
			if err != nil {
				return err
			}
			common, err := a.commonOptions()
			if err != nil {
				return err
			}
			store, err := a.cfg.Store.open(ctx)
			if err != nil {
				return err
			}
			m, err := topovec.OpenModel(ctx, store, model, common...)
			if err != nil {
				return err
			}
			out, err := m.Transform(ctx, X)
			if err != nil {
				return err
			}
			_, cols := out.Dims()
			return writeCSV(a.stdout, columnNames(m, cols), out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON diagrams (- for stdin)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name in the store")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// modelInfo is the YAML document printed by inspect.
type modelInfo struct {
	Estimator  string            `yaml:"estimator"`
	Dimensions []int             `yaml:"dimensions"`
	Metric     string            `yaml:"metric,omitempty"`
	Params     *kernel.Params    `yaml:"metric_params,omitempty"`
	Order      float64           `yaml:"order,omitempty"`
	Samplings  []kernel.Sampling `yaml:"samplings,omitempty"`
	Centers    [][3]float64      `yaml:"centers,omitempty,flow"`
	Inertias   []float64         `yaml:"inertias,omitempty,flow"`
}

func describe(m topovec.Model) modelInfo {
	info := modelInfo{Dimensions: m.HomologyDimensions()}
	switch t := m.(type) {
	case *topovec.PersistenceEntropy:
		info.Estimator = "persistence_entropy"
	case *topovec.Amplitude:
		info.Estimator = "amplitude"
		info.Metric = t.Metric().String()
		p := t.EffectiveParams()
		info.Params = &p
		info.Order = t.Order()
		info.Samplings = t.Samplings()
	case *topovec.ATOL:
		info.Estimator = "atol"
		info.Centers = t.Centers().Triples()
		info.Inertias = t.Inertias()
	}
	return info
}

func (a *app) inspectCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the fitted state of a saved model as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.cfg.Store.open(ctx)
			if err != nil {
				return err
			}
			m, err := topovec.OpenModel(ctx, store, model)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(describe(m)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name in the store")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// columnNames labels the output columns: H<dim> when there is one column
// per dimension, H<dim>_c<k> for ATOL centers, f<j> otherwise.
func columnNames(m topovec.Model, cols int) []string {
	dims := m.HomologyDimensions()
	names := make([]string, cols)
	if at, ok := m.(*topovec.ATOL); ok {
		counts := map[int]int{}
		for j, c := range at.Centers() {
			if j < cols {
				names[j] = "H" + strconv.Itoa(c.Dim) + "_c" + strconv.Itoa(counts[c.Dim])
				counts[c.Dim]++
			}
		}
		return names
	}
	if cols == len(dims) {
		for j, d := range dims {
			names[j] = "H" + strconv.Itoa(d)
		}
		return names
	}
	for j := range names {
		names[j] = "f" + strconv.Itoa(j)
	}
	return names
}
