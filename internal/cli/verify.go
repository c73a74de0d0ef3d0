package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/loomlang/loom/internal/ir"
)

// VerifyResult holds verification results.
type VerifyResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a module against the structural and dialect rules",
		Long: `Parse a module and run the verifier over every operation.

All violations are reported, not just the first one found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runVerify(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	if err := ir.Verify(module); err != nil {
		return outputVerifyErrors(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(VerifyResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ module is valid")
	return nil
}

func outputVerifyErrors(formatter *OutputFormatter, err error) error {
	messages := verifyMessages(err)

	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeVerify, "verification failed", VerifyResult{
			Valid:  false,
			Errors: messages,
		})
		return NewExitError(ExitFailure, fmt.Sprintf("verification failed with %d error(s)", len(messages)))
	}

	fmt.Fprintln(formatter.Writer, "✗ verification failed")
	fmt.Fprintln(formatter.Writer)
	for _, msg := range messages {
		fmt.Fprintf(formatter.Writer, "  %s\n", msg)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("verification failed with %d error(s)", len(messages)))
}

// verifyMessages flattens the verifier's aggregate into one line per
// violation.
func verifyMessages(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		messages := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			messages[i] = e.Error()
		}
		return messages
	}
	return []string{err.Error()}
}
