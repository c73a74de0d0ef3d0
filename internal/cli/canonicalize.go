package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loomlang/loom/internal/affineops"
	"github.com/loomlang/loom/internal/ir"
	"github.com/loomlang/loom/internal/printer"
)

// Pipeline names the passes to run, in order. It is read from a YAML file:
//
//	passes:
//	  - fold-loop-bounds
//	  - canonicalize
//	  - verify
type Pipeline struct {
	Passes []string `yaml:"passes"`
}

// DefaultPipeline runs full canonicalization and verifies the result.
var DefaultPipeline = Pipeline{Passes: []string{"canonicalize", "verify"}}

// CanonicalizeResult holds the rewritten module for JSON output.
type CanonicalizeResult struct {
	File    string `json:"file"`
	Changes int    `json:"changes"`
	Module  string `json:"module"`
}

// passFuncs maps pipeline names to rewrites. Each returns the number of
// changes applied.
var passFuncs = map[string]func(*ir.Operation) (int, error){
	"canonicalize": func(root *ir.Operation) (int, error) {
		return affineops.Canonicalize(root), nil
	},
	"fold-loop-bounds": func(root *ir.Operation) (int, error) {
		changed := 0
		root.Walk(func(op *ir.Operation) {
			if op.Name() == affineops.ForOp && affineops.FoldLoopBounds(op) {
				changed++
			}
		})
		return changed, nil
	},
	"verify": func(root *ir.Operation) (int, error) {
		return 0, ir.Verify(root)
	},
}

// LoadPipeline reads a pass pipeline from a YAML file.
func LoadPipeline(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, err
	}
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pipeline{}, err
	}
	if len(p.Passes) == 0 {
		return Pipeline{}, fmt.Errorf("pipeline %s names no passes", path)
	}
	for _, name := range p.Passes {
		if _, ok := passFuncs[name]; !ok {
			return Pipeline{}, fmt.Errorf("unknown pass %q", name)
		}
	}
	return p, nil
}

// NewCanonicalizeCommand creates the canonicalize command.
func NewCanonicalizeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outputPath   string
		pipelinePath string
	)

	cmd := &cobra.Command{
		Use:   "canonicalize <file>",
		Short: "Run the canonicalization passes over a module",
		Long: `Parse a module, run a pass pipeline over it and print the result.

The default pipeline composes affine.apply chains into their consumers,
folds constant loop bounds, erases dead applies and verifies the result.
A custom pipeline can be given as a YAML file via --passes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanonicalize(rootOpts, args[0], outputPath, pipelinePath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the module to a file instead of stdout")
	cmd.Flags().StringVar(&pipelinePath, "passes", "", "YAML file naming the passes to run")

	return cmd
}

func runCanonicalize(opts *RootOptions, path, outputPath, pipelinePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	pipeline := DefaultPipeline
	if pipelinePath != "" {
		var err error
		if pipeline, err = LoadPipeline(pipelinePath); err != nil {
			_ = formatter.Error(ErrCodePipeline, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodePipeline, err)
		}
	}

	module, err := LoadModule(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	changes := 0
	for _, name := range pipeline.Passes {
		n, err := passFuncs[name](module)
		if err != nil {
			return outputVerifyErrors(formatter, err)
		}
		slog.Debug("pass finished", "pass", name, "changes", n)
		changes += n
	}

	text := printer.Print(module)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			_ = formatter.Error(ErrCodeRead, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeRead, err)
		}
		if opts.Format == "json" {
			return formatter.Success(CanonicalizeResult{File: outputPath, Changes: changes, Module: text})
		}
		fmt.Fprintf(formatter.Writer, "wrote %s (%d changes)\n", outputPath, changes)
		return nil
	}

	if opts.Format == "json" {
		return formatter.Success(CanonicalizeResult{File: path, Changes: changes, Module: text})
	}
	fmt.Fprint(formatter.Writer, text)
	return nil
}
