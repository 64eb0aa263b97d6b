// Package cli implements the sweep command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/config"
)

// RootOptions holds global flags and the settings resolved from the
// environment.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string

	settings *config.Settings
	logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Settings returns the environment settings, or the defaults when the
// command runs without the root pre-run (as in tests).
func (o *RootOptions) Settings() config.Settings {
	if o.settings == nil {
		return config.Defaults()
	}
	return *o.settings
}

// Logger returns the configured logger, or one that discards output.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return discardLogger()
	}
	return o.logger
}

// NewRootCommand creates the root command for the sweep CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep - Minesweeper and counter state containers",
		Long: `Play Minesweeper or drive a counter from the terminal.

Every action is dispatched through a single-writer engine and journaled
with a content-addressed ID, so sessions can be traced and replayed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := config.LoadDotEnv(opts.EnvFile); err != nil {
				return WrapExitError(ExitCommandError, "failed to load environment", err)
			}
			settings, err := config.FromEnv()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			if opts.Verbose {
				settings.LogLevel = "debug"
			}
			opts.settings = &settings
			opts.logger = newLogger(cmd.ErrOrStderr(), settings.LogLevel, settings.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default .env if present)")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewCounterCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewPresetsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}
