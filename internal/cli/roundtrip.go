package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomlang/loom/internal/printer"
)

// RoundTripResult holds the reprinted module for JSON output.
type RoundTripResult struct {
	File   string `json:"file"`
	Module string `json:"module"`
}

// NewRoundTripCommand creates the round-trip command.
func NewRoundTripCommand(rootOpts *RootOptions) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "round-trip <file>",
		Short: "Parse a module and print it back",
		Long: `Parse a textual module and print its canonical textual form.

Value and block names are renumbered in print order, so the output is the
reference spelling of the input module.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundTrip(rootOpts, args[0], outputPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the module to a file instead of stdout")

	return cmd
}

func runRoundTrip(opts *RootOptions, path, outputPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	module, err := LoadModule(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	slog.Debug("module parsed", "file", path)

	text := printer.Print(module)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			_ = formatter.Error(ErrCodeRead, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeRead, err)
		}
		if opts.Format == "json" {
			return formatter.Success(RoundTripResult{File: outputPath, Module: text})
		}
		fmt.Fprintf(formatter.Writer, "wrote %s\n", outputPath)
		return nil
	}

	if opts.Format == "json" {
		return formatter.Success(RoundTripResult{File: path, Module: text})
	}
	fmt.Fprint(formatter.Writer, text)
	return nil
}
