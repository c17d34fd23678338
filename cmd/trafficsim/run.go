package main

import (
	"context"
	"fmt"
	"io"
	"time"
	"traffic-signal-sim/internal/adapters/report"
	"traffic-signal-sim/internal/client"
	"traffic-signal-sim/internal/config"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/prompt"
	"traffic-signal-sim/internal/services"
)

func (f *experimentFlags) configs() ([]domain.SimulationConfig, error) {
	if f.file != "" {
		return config.LoadPlan(f.file)
	}

	st, err := domain.ParseStrategy(f.strategy)
	if err != nil {
		return nil, err
	}

	cfg := domain.SimulationConfig{
		ArrivalMean: f.arrival,
		ServiceMean: f.service,
		Capacity:    f.lanes,
		Strategy:    st,
		Seed:        f.seed,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return []domain.SimulationConfig{cfg}, nil
}

func runLocal(ctx context.Context, out io.Writer, cfgs []domain.SimulationConfig, charts chartFlags, workers int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	batch, err := services.RunExperiments(ctx, services.RunExperimentsRequest{
		Configs: cfgs,
		Workers: workers,
	}, nil, nil)
	if err != nil {
		return err
	}

	return present(out, batch.Results, charts)
}

func runPrompt(ctx context.Context, in io.Reader, out io.Writer, charts chartFlags) error {
	fmt.Fprintln(out, "\n--- SMART TRAFFIC LIGHT SIMULATION ---")

	cfgs, err := prompt.NewSession(in, out).Experiments()
	if err != nil {
		return err
	}

	return runLocal(ctx, out, cfgs, charts, services.DefaultWorkers)
}

func runSubmit(ctx context.Context, out io.Writer, server string, timeout time.Duration, cfgs []domain.SimulationConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := client.New(server, timeout)
	if err != nil {
		return err
	}

	batchID, results, err := c.RunExperiments(ctx, cfgs)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nBatch %s\n", batchID)
	return present(out, results, chartFlags{})
}

// present prints the results table and, when charts.dir is set, writes the charts.
func present(out io.Writer, results []domain.ExperimentResult, charts chartFlags) error {
	fmt.Fprintln(out, "\nSimulation Results:")
	if err := report.WriteTable(out, results); err != nil {
		return err
	}

	if charts.dir == "" {
		return nil
	}

	format := report.FormatSVG
	if charts.format != "" {
		f, err := report.ParseFormat(charts.format)
		if err != nil {
			return err
		}
		format = f
	}

	paths, err := report.WriteCharts(charts.dir, format, results)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(out, "chart saved: %s\n", p)
	}
	fmt.Fprintf(out, "\nAll visualizations saved in the '%s' folder successfully!\n", charts.dir)
	return nil
}
