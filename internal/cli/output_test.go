package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/validator"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "E005", errors.New("missing")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())

	inner := errors.New("missing")
	err := WrapExitError(ExitCommandError, "E005", inner)
	assert.Equal(t, "E005: missing", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newFormatter(&RootOptions{Format: "json"}, buf, nil)
	require.NoError(t, f.Success(map[string]int{"n": 1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"n": float64(1)}, resp.Data)
}

func TestFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newFormatter(&RootOptions{Format: "json"}, buf, nil)
	require.NoError(t, f.Error(ErrCodeNotFound, "gone", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "gone", resp.Error.Message)
}

func TestFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newFormatter(&RootOptions{Format: "text", NoColor: true}, buf, nil)
	require.NoError(t, f.Error(ErrCodeBlockTypes, "bad block", nil))
	assert.Equal(t, "Error [E006]: bad block\n", buf.String())
}

func TestFormatter_Diagnostic(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newFormatter(&RootOptions{Format: "text", NoColor: true}, buf, nil)
	d := validator.Diagnostic{Line: 4, Column: 1, Code: validator.CodeExtraClosing, Message: "extra closing '}'"}
	f.Diagnostic("x.ino", d, true)
	f.Diagnostic("x.ino", d, false)
	assert.Equal(t,
		"x.ino:4:1: error E001: extra closing '}'\nx.ino:4:1: warning E001: extra closing '}'\n",
		buf.String())
}

func TestFormatter_WarnGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := newFormatter(&RootOptions{Format: "text", NoColor: true}, out, errOut)
	f.Warn("block %s skipped", "b3")
	assert.Empty(t, out.String())
	assert.Equal(t, "warning: block b3 skipped\n", errOut.String())

	errOut.Reset()
	f = newFormatter(&RootOptions{Format: "json"}, out, errOut)
	f.Warn("ignored")
	assert.Empty(t, errOut.String())
}

func TestFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := newFormatter(&RootOptions{Format: "text"}, out, errOut)
	f.VerboseLog("hidden")
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 1)
	assert.Equal(t, "shown 1\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestFormatter_Mark(t *testing.T) {
	f := newFormatter(&RootOptions{NoColor: true}, &bytes.Buffer{}, nil)
	assert.Equal(t, "✓", f.Mark(true))
	assert.Equal(t, "✗", f.Mark(false))
}
