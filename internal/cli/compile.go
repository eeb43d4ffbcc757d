package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ctxlog"
	"github.com/roach88/blockc/internal/emitter"
	"github.com/roach88/blockc/internal/validator"
	"github.com/roach88/blockc/internal/workspace"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Build   BuildFlags
	Output  string // output file path
	NoCheck bool   // skip validating the generated program
}

// CompileReport is the JSON payload of a compile.
type CompileReport struct {
	File        string            `json:"file"`
	Output      string            `json:"output,omitempty"`
	Source      string            `json:"source"`
	Target      string            `json:"target"`
	Device      string            `json:"device"`
	Extension   string            `json:"extension"`
	Hash        string            `json:"hash"`
	Size        int               `json:"size"`
	Warnings    []string          `json:"warnings"`
	Diagnostics *validator.Result `json:"diagnostics,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <workspace-file>",
		Short: "Compile a block workspace to device source",
		Long: `Compile a workspace tree (JSON, or YAML for .yaml/.yml files) into an
Arduino sketch or MicroPython script.

Target and device come from flags, then blockc.toml, then the defaults
(arduino/generic). The generated program is checked by the static
validator unless --no-check is given.

Exit codes:
  0 - Compiled
  1 - Compile failed or the generated program has validation errors
  2 - Command error (missing files, bad manifest, bad block definitions)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	addBuildFlags(cmd, &opts.Build)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoCheck, "no-check", false, "skip validating the generated program")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	settings, err := resolveSettings(cmd, opts.RootOptions, &opts.Build)
	if err != nil {
		return fail(formatter, ExitCommandError, &LoadError{Code: ErrCodeManifest, Message: err.Error()})
	}
	cat, err := loadCatalog(settings)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	w, err := loadWorkspaceFile(cat, path)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	formatter.VerboseLog("Loaded %d block(s) from %s", w.Len(), path)

	res, err := compileWorkspace(ctx, settings, cat, w)
	if err != nil {
		return fail(formatter, ExitFailure, err)
	}

	report := CompileReport{
		File:      path,
		Output:    opts.Output,
		Source:    res.Source,
		Target:    res.Target,
		Device:    res.Device,
		Extension: res.Extension,
		Hash:      res.Hash,
		Size:      len(res.Source),
		Warnings:  res.Warnings,
	}
	if !opts.NoCheck {
		check := validator.Validate(res.Source, validator.Options{Language: validator.LanguageForTarget(res.Target)})
		report.Diagnostics = &check
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(res.Source), 0644); err != nil {
			return fail(formatter, ExitCommandError,
				&LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
		}
	}

	if report.Diagnostics != nil && !report.Diagnostics.Valid {
		return outputCompileInvalid(formatter, report)
	}
	return outputCompileSuccess(formatter, report)
}

// compileWorkspace runs the emitter with the effective settings.
func compileWorkspace(ctx context.Context, s *Settings, cat *catalog.Catalog, w *workspace.Workspace) (*emitter.Result, error) {
	logger := ctxlog.FromContext(ctx)
	res, err := emitter.Compile(emitter.Context{
		Target:      s.Target,
		Device:      s.Device,
		Catalog:     cat,
		IdleDelayMS: s.IdleDelayMS,
	}, w)
	if err != nil {
		logger.Debug("compile failed", "target", s.Target, "device", s.Device, "error", err)
		return nil, err
	}
	logger.Debug("compiled", "target", res.Target, "device", res.Device,
		"bytes", len(res.Source), "warnings", len(res.Warnings), "hash", res.Hash)
	return res, nil
}

// outputCompileSuccess outputs a successful compile.
func outputCompileSuccess(f *OutputFormatter, r CompileReport) error {
	if f.JSON() {
		return f.Success(r)
	}

	for _, w := range r.Warnings {
		f.Warn("%s", w)
	}
	if r.Diagnostics != nil {
		for _, d := range r.Diagnostics.Warnings {
			f.Diagnostic(r.File, d, false)
		}
	}

	if r.Output == "" {
		fmt.Fprint(f.Writer, r.Source)
		return nil
	}
	fmt.Fprintf(f.Writer, "%s Compiled %s for %s/%s (%d bytes)\n", f.Mark(true), r.File, r.Target, r.Device, r.Size)
	fmt.Fprintf(f.Writer, "Wrote %s\n", r.Output)
	return nil
}

// outputCompileInvalid reports a program the validator rejected.
func outputCompileInvalid(f *OutputFormatter, r CompileReport) error {
	n := len(r.Diagnostics.Errors)
	msg := fmt.Sprintf("generated program has %d validation error(s)", n)
	if f.JSON() {
		if err := f.Failure(ErrCodeSourceInvalid, msg, r); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintf(f.Writer, "%s Compiled %s but the program is invalid\n", f.Mark(false), r.File)
	for _, d := range r.Diagnostics.Errors {
		f.Diagnostic(r.File, d, true)
	}
	return NewExitError(ExitFailure, msg)
}
