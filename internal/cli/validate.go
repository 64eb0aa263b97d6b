package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/config"
	"github.com/roach88/sweep/internal/harness"
)

// FileValidation is the validation result for one file.
type FileValidation struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"` // "presets" | "scenario"
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate preset and scenario files",
		Long: `Check CUE preset files against the preset schema and YAML scenario
files against the scenario format, without running anything.

Exit codes:
  0 - All files are valid
  1 - At least one file is invalid
  2 - Command error (file not found, unsupported extension)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return WrapExitError(ExitCommandError, "file not found", err)
		}

		var fv FileValidation
		switch filepath.Ext(path) {
		case ".cue":
			fv = FileValidation{Path: path, Kind: "presets"}
			_, err := config.LoadPresets(path)
			fv.setError(err)
		case ".yaml", ".yml":
			fv = FileValidation{Path: path, Kind: "scenario"}
			_, err := harness.LoadScenario(path)
			fv.setError(err)
		default:
			return NewExitError(ExitCommandError, fmt.Sprintf("unsupported file type: %s", path))
		}

		opts.Logger().Debug("validated file", "path", path, "valid", fv.Valid)
		result.Files = append(result.Files, fv)
		if !fv.Valid {
			result.Valid = false
		}
	}

	if opts.Format == "json" {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{Status: "ok", Data: result}); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, f := range result.Files {
			if f.Valid {
				fmt.Fprintf(w, "✓ %s\n", f.Path)
			} else {
				fmt.Fprintf(w, "✗ %s\n  %s\n", f.Path, f.Error)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func (f *FileValidation) setError(err error) {
	if err == nil {
		f.Valid = true
		return
	}
	f.Error = err.Error()
	var ce *config.CompileError
	if errors.As(err, &ce) && ce.Pos.IsValid() {
		f.Line = ce.Pos.Line()
	}
}
