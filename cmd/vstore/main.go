package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
        _
 __   _| |_ ___  _ __ ___
 \ \ / / __/ _ \| '__/ _ \
  \ V /\__ \ (_) | | |  __/
   \_/ |___/\___/|_|  \___|
`

// configPath is the value of the persistent --config flag.
var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ce *errors.Error
		if stderrors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vstore",
		Short: "An observable value store with selectors",
		Long: `vstore is a single-value observable store for Go.

Writes are compared structurally against the current value, frozen
and published to subscribers. Selectors re-publish only when their
derived value changes. This tool exercises the store:

  • bench   run the counter benchmark through bound components
  • demo    type into a name store on a terminal screen
  • serve   serve a JSON store over HTTP and WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file or directory (default: vstore.json or vstore.yaml in the working directory)")

	rootCmd.AddCommand(
		benchCmd(),
		demoCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the configuration named by --config. A missing
// configuration in the default location yields the defaults.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.LoadOrDefault(".")
	}
	info, err := os.Stat(configPath)
	if err != nil {
		return nil, errors.New("E040").WithDetail(configPath).Wrap(err)
	}
	if info.IsDir() {
		return config.Load(configPath)
	}
	return config.LoadFile(configPath)
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// printBanner prints the vstore ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
