package cli

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E003", "verification failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E003", resp.Error.Code)
	assert.Equal(t, "verification failed", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("module is valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "module is valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E002", "parse error", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E002]")
	assert.Contains(t, buf.String(), "parse error")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}
			formatter.VerboseLog("parsed %d ops", 3)
			if tt.wantLog {
				assert.Contains(t, buf.String(), "parsed 3 ops")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestExitError(t *testing.T) {
	err := NewExitError(ExitFailure, "verification failed")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "verification failed", err.Error())

	wrapped := WrapExitError(ExitCommandError, "E002", assert.AnError)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)

	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
