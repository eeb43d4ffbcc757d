package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/blockc/internal/validator"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation errors, failed scenarios, failed compiles
	ExitCommandError = 2 // Command error (invalid paths, bad flags, store failures)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeInvalidFlag = "E002" // Flag value rejected
	ErrCodeNoFiles     = "E003" // No input files
	ErrCodeLoadFailed  = "E004" // Workspace file unreadable or malformed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBlockTypes  = "E006" // Custom block definitions failed to compile
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeManifest    = "E008" // blockc.toml invalid

	// Compile errors
	ErrCodeUnknownTarget    = "E101"
	ErrCodeUnknownBlockType = "E102"
	ErrCodeInvalidWorkspace = "E103"

	// Source validation
	ErrCodeSourceInvalid = "E110"

	// Project store errors
	ErrCodeProjectNotFound  = "E201"
	ErrCodeDuplicateProject = "E202"
	ErrCodeStoreFailed      = "E203"

	// Harness
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	NoColor   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut, // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		NoColor:   opts.NoColor,
	}
}

// JSON reports whether the formatter emits JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.paint(color.FgRed, "Error"), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Failure outputs an error response carrying data, such as a list of
// diagnostics.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.paint(color.FgRed, "Error"), code, message)
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// Warn prints a compile warning to the diagnostic writer in text mode.
func (f *OutputFormatter) Warn(format string, args ...any) {
	if f.JSON() {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), "%s: %s\n", f.paint(color.FgYellow, "warning"), fmt.Sprintf(format, args...))
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Diagnostic prints one validator finding as path:line:col: severity code: message.
func (f *OutputFormatter) Diagnostic(path string, d validator.Diagnostic, isError bool) {
	severity := f.paint(color.FgYellow, "warning")
	if isError {
		severity = f.paint(color.FgRed, "error")
	}
	fmt.Fprintf(f.Writer, "%s:%d:%d: %s %s: %s\n", path, d.Line, d.Column, severity, d.Code, d.Message)
}

// Mark returns a check or cross, colored.
func (f *OutputFormatter) Mark(ok bool) string {
	if ok {
		return f.paint(color.FgGreen, "✓")
	}
	return f.paint(color.FgRed, "✗")
}

func (f *OutputFormatter) paint(attr color.Attribute, s string) string {
	c := color.New(attr, color.Bold)
	if f.NoColor {
		c.DisableColor()
	}
	return c.Sprint(s)
}
