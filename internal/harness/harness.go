package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ctxlog"
	"github.com/roach88/blockc/internal/emitter"
	"github.com/roach88/blockc/internal/testutil"
	"github.com/roach88/blockc/internal/validator"
	"github.com/roach88/blockc/internal/workspace"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Source   string   `json:"source,omitempty"`
	Hash     string   `json:"hash,omitempty"`
	Warnings []string `json:"warnings"`

	// Diagnostics are the validator's findings, errors first.
	Diagnostics []string `json:"diagnostics"`

	// ErrorCode is set when compilation failed.
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	// Valid is the validator's verdict. False when compilation failed.
	Valid bool `json:"valid"`

	// Errors lists failed assertions.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failed assertion.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run compiles the scenario's workspace and evaluates its assertions.
//
// Block ids missing from the tree come from a fresh sequence generator, so
// repeated runs produce identical programs. A workspace that fails to load
// or a blocks_dir that fails to compile is an execution error, not a
// failed assertion.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("scenario", scenario.Name)

	cat := catalog.Builtin()
	if scenario.BlocksDir != "" {
		n, err := cat.RegisterDir(scenario.BlocksDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load block types: %w", err)
		}
		logger.Debug("custom block types loaded", "dir", scenario.BlocksDir, "count", n)
	}

	w, err := workspace.FromTree(cat, scenario.Workspace,
		workspace.WithIDGenerator(testutil.NewSequenceGenerator("b")))
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	ectx := emitter.Context{Target: scenario.Target, Device: scenario.Device, Catalog: cat}
	if scenario.IdleDelayMS != nil {
		ectx.IdleDelayMS = *scenario.IdleDelayMS
	}

	result := &Result{Pass: true, Warnings: []string{}, Diagnostics: []string{}}
	compiled, err := emitter.Compile(ectx, w)
	if err != nil {
		result.ErrorCode = errorCode(err)
		result.Error = err.Error()
		logger.Debug("compile failed", "code", result.ErrorCode, "error", err)
	} else {
		result.Source = compiled.Source
		result.Hash = compiled.Hash
		result.Warnings = append(result.Warnings, compiled.Warnings...)

		v := validator.Validate(compiled.Source, validator.Options{
			Language: validator.LanguageForTarget(scenario.Target),
		})
		result.Valid = v.Valid
		for _, d := range v.Errors {
			result.Diagnostics = append(result.Diagnostics, d.String())
		}
		for _, d := range v.Warnings {
			result.Diagnostics = append(result.Diagnostics, d.String())
		}
		logger.Debug("compiled", "bytes", len(compiled.Source), "warnings", len(compiled.Warnings))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// errorCode extracts the emitter code, or "" for foreign errors.
func errorCode(err error) string {
	var ee *emitter.Error
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	return ""
}
