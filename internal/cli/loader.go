package cli

import (
	"errors"
	"os"

	"github.com/loomlang/loom/internal/ir"
	"github.com/loomlang/loom/internal/parser"
)

// Error codes reported in CLI output.
const (
	ErrCodeRead     = "E001" // file unreadable
	ErrCodeParse    = "E002" // module does not parse
	ErrCodeVerify   = "E003" // module does not verify
	ErrCodePipeline = "E004" // pass pipeline unusable
)

// LoadModule reads and parses a textual module. Both failure modes are
// command errors: the input never reached the verifier.
func LoadModule(path string) (*ir.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeRead, err)
	}
	op, err := parser.Parse(path, string(data))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeParse, err)
	}
	return op, nil
}

// reportLoadError prints a load failure through the formatter and returns
// the exit error for the command runner.
func reportLoadError(formatter *OutputFormatter, err error) error {
	var exitErr *ExitError
	code := ErrCodeRead
	msg := err.Error()
	if errors.As(err, &exitErr) {
		code = exitErr.Message
		if exitErr.Err != nil {
			msg = exitErr.Err.Error()
		}
	}
	_ = formatter.Error(code, msg, nil)
	return err
}
