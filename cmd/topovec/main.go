// Command topovec fits persistence-diagram vectorizers and applies saved
// models to new diagrams.
//
//	topovec fit --config cfg.yaml --input train.json --model models/entropy
//	topovec transform --config cfg.yaml --model models/entropy --input test.json
//	topovec inspect --config cfg.yaml --model models/entropy
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/topovec"
	prom "github.com/hupe1980/topovec/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds the state shared by all subcommands.
type app struct {
	cfgFile     string
	metricsFile string
	jobs        int

	cfg      Config
	registry *prometheus.Registry
	stdin    io.Reader
	stdout   io.Writer
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout}

	root := &cobra.Command{
		Use:           "topovec",
		Short:         "Vectorize persistence diagrams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("jobs") {
				cfg.NJobs = a.jobs
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.metricsFile == "" || a.registry == nil {
				return nil
			}
			return prometheus.WriteToTextfile(a.metricsFile, a.registry)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().IntVarP(&a.jobs, "jobs", "j", 1, "parallel jobs (<= 0 uses all CPUs)")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(a.fitCmd(), a.transformCmd(), a.inspectCmd())
	return root
}

// commonOptions returns the logger and metrics options for estimators.
func (a *app) commonOptions() ([]topovec.Option, error) {
	logger, err := a.cfg.Log.logger()
	if err != nil {
		return nil, err
	}
	opts := []topovec.Option{topovec.WithLogger(logger), topovec.WithNJobs(a.cfg.NJobs)}
	if a.metricsFile != "" {
		a.registry = prometheus.NewRegistry()
		mc, err := prom.NewCollector(prom.WithRegisterer(a.registry))
		if err != nil {
			return nil, err
		}
		opts = append(opts, topovec.WithMetricsCollector(mc))
	}
	return opts, nil
}
