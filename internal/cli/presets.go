package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/config"
)

// PresetsOptions holds flags for the presets command.
type PresetsOptions struct {
	*RootOptions
	File string
}

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PresetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List difficulty presets",
		Long: `List the built-in difficulty presets, plus any defined in an extra CUE
file. Extra presets are checked against the same schema as the built-ins.

Example:
  sweep presets --file ./my-presets.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPresets(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "extra CUE file with preset definitions")
	return cmd
}

func runPresets(opts *PresetsOptions, cmd *cobra.Command) error {
	var files []string
	if opts.File != "" {
		files = append(files, opts.File)
	}
	catalog, err := config.LoadPresets(files...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load presets", err)
	}

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{Status: "ok", Data: catalog.All()})
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, p := range catalog.All() {
		fmt.Fprintf(tw, "%s\t%dx%d\t%d mines\t%s\n", p.Name, p.Rows, p.Cols, p.Mines, p.Description)
	}
	return tw.Flush()
}
