// Package commands defines the signup CLI commands and their flags.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/notify"
	"github.com/sohamda/fantasy-football/internal/tui"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

// Root returns the root command, which runs the registration wizard.
func Root() *cobra.Command {
	var delay time.Duration
	var accessible bool
	var verbose bool

	cmd := &cobra.Command{
		Use:          "signup",
		Short:        "Register for Poly Fantasy Football",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			toasts := notify.NewChannel(notify.WithLogger(logger))
			defer toasts.Close()

			ctrl := wizard.NewController(
				catalog.Default(),
				wizard.SimulatedRegistrar{Delay: delay, Logger: logger},
				toasts,
				wizard.WithLogger(logger),
			)

			runner := tui.NewRunner(ctrl, toasts, tui.HuhPrompter{Accessible: accessible}, cmd.OutOrStdout())
			err := runner.Run(cmd.Context())
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Registration cancelled.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Simulated registration latency")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain prompts suitable for screen readers")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log wizard activity to stderr")

	cmd.AddCommand(Plans())

	return cmd
}
