package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/serve"
	"github.com/vango-dev/vstore/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		state string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a JSON store over HTTP",
		Long: `Serve a store holding a JSON document.

Routes:
  GET   /state[?path=a.b]   read the value, or the value at a gjson path
  PUT   /state              replace the value
  PATCH /state              merge an object into the value
  GET   /ws[?path=a.b]      stream the value (or a path) on every change
  GET   /metrics            Prometheus metrics
  GET   /healthz            liveness

Writes that leave the value structurally unchanged are accepted
but not published.

Examples:
  vstore serve
  vstore serve --addr=:9000 --state=initial.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("state") {
				cfg.Serve.InitialState = state
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&state, "state", "s", "", "JSON file with the initial value")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	initial, err := serve.LoadState(cfg.Serve.InitialState)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := store.NewMetrics(store.WithRegistry(registry))

	s := store.New(initial,
		store.WithName[any](cfg.Serve.StoreName),
		store.WithLogger[any](logger),
		store.WithMetrics[any](metrics))

	server := serve.NewServer(serve.ServerOptions{
		Config:     cfg,
		Store:      s,
		Gatherer:   registry,
		Registerer: registry,
		Logger:     logger,
	})

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("Serving %q on %s", s.Name(), cfg.Serve.Addr)
	info("Metrics at %s", cfg.Serve.MetricsPath)
	if cfg.Serve.InitialState == "" {
		warn("No initial state given; starting from an empty object")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		return err
	}
	fmt.Println("\n  Shut down.")
	return nil
}
