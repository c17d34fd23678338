package main

import (
	"os"
	"strconv"
	"time"
	"traffic-signal-sim/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	config.LoadDotEnv()

	rootCmd := &cobra.Command{
		Use:          "trafficsim",
		Short:        "Compare Fixed and Adaptive signal strategies at a single intersection",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(promptCmd())
	rootCmd.AddCommand(submitCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// experimentFlags describe a single experiment on the command line.
type experimentFlags struct {
	file     string
	arrival  float64
	service  float64
	lanes    int
	strategy string
	seed     uint64
}

func (f *experimentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML plan listing experiments (overrides single-experiment flags)")
	cmd.Flags().Float64Var(&f.arrival, "arrival", 10, "mean seconds between vehicle arrivals")
	cmd.Flags().Float64Var(&f.service, "service", 5, "mean seconds to serve one vehicle")
	cmd.Flags().IntVar(&f.lanes, "lanes", 1, "number of lanes served at once (1-3)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "Fixed", "signal strategy (Fixed or Adaptive)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed (0 picks one)")
}

// chartFlags choose where comparison charts go and how they are encoded.
type chartFlags struct {
	dir    string
	format string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "out", "o", config.Get("OUTPUT_DIR", "visualizations"), "directory for chart files")
	cmd.Flags().StringVar(&f.format, "format", config.Get("CHART_FORMAT", "svg"), "chart image format (svg or png)")
}

func runCmd() *cobra.Command {
	var (
		flags   experimentFlags
		charts  chartFlags
		workers int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run experiments locally, print the results table and write charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgs, err := flags.configs()
			if err != nil {
				return err
			}
			return runLocal(cmd.Context(), cmd.OutOrStdout(), cfgs, charts, workers)
		},
	}

	flags.register(cmd)
	charts.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", defaultWorkers(), "experiments simulated in parallel")
	return cmd
}

// defaultWorkers reads WORKERS, falling back to 4 when it is unset or invalid.
func defaultWorkers() int {
	n, err := strconv.Atoi(config.Get("WORKERS", "4"))
	if err != nil || n < 1 {
		return 4
	}
	return n
}

func promptCmd() *cobra.Command {
	var charts chartFlags

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Enter experiments interactively, then print results and write charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrompt(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), charts)
		},
	}

	charts.register(cmd)
	return cmd
}

func submitCmd() *cobra.Command {
	var (
		flags   experimentFlags
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Run experiments on a simulation server and print the results table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgs, err := flags.configs()
			if err != nil {
				return err
			}
			return runSubmit(cmd.Context(), cmd.OutOrStdout(), server, timeout, cfgs)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&server, "server", config.Get("SIM_SERVER", "http://localhost:8080"), "simulation server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-request timeout")
	return cmd
}
