package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/demo"
	"github.com/vango-dev/vstore/internal/errors"
)

func demoCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Edit a name store on a terminal screen",
		Long: `Start the terminal demo.

Three components are bound to a name store: App selects the
length of the name, C1 has no hooks and Name reads the whole store.
Each line shows how often its component rendered.

Keys:
  any character  append to the name
  Backspace      delete the last character
  Ctrl-R         reverse the name
  Esc, Ctrl-C    quit

Render logs are written at debug level; redirect stderr to keep
them off the screen:
  vstore demo 2>demo.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				cfg.Demo.InitialName = name
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.New("E061").Wrap(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return demo.New(screen, cfg.Demo.InitialName, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Initial name (default from config)")

	return cmd
}
