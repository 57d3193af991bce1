package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/bench"
)

func benchCmd() *cobra.Command {
	var (
		iterations  int
		subscribers int
		selectors   int
		jsonOut     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the counter benchmark",
		Long: `Run functional updates against a {count} store observed by bound
components and report timing, render counts and GC statistics.

Each update increments count. CountDisplay components subscribe to the
whole store, DoubleDisplay components select count*2, and a single
ProgressiveDisplay selects count%4 > 0.

Examples:
  vstore bench
  vstore bench --iterations=100000 --selectors=10
  vstore bench --json=report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}

			opts := bench.OptionsFromConfig(cfg.Bench)
			if cmd.Flags().Changed("iterations") {
				opts.Iterations = iterations
			}
			if cmd.Flags().Changed("subscribers") {
				opts.Subscribers = subscribers
			}
			if cmd.Flags().Changed("selectors") {
				opts.Selectors = selectors
			}
			opts.Logger = logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBench(ctx, cmd, opts, jsonOut)
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Number of updates (default from config)")
	cmd.Flags().IntVar(&subscribers, "subscribers", 0, "Number of whole-store subscribers (default from config)")
	cmd.Flags().IntVar(&selectors, "selectors", 0, "Number of count*2 selectors (default from config)")
	cmd.Flags().StringVar(&jsonOut, "json", "", `Write the JSON report to a file ("-" for stdout)`)

	return cmd
}

func runBench(ctx context.Context, cmd *cobra.Command, opts bench.Options, jsonOut string) error {
	report, err := bench.Run(ctx, opts)
	if err != nil {
		return err
	}

	if jsonOut == "-" {
		return bench.WriteJSON(jsonOut, report)
	}
	bench.WriteSummary(cmd.OutOrStdout(), report)
	if jsonOut != "" {
		return bench.WriteJSON(jsonOut, report)
	}
	return nil
}
