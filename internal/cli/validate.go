package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/blockc/internal/ctxlog"
	"github.com/roach88/blockc/internal/validator"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Language string // forced language; empty means by extension
	Jobs     int
}

// FileReport is the validation result of one source file.
type FileReport struct {
	Path string `json:"path"`
	validator.Result
}

// ValidationSummary is the JSON payload of validate.
type ValidationSummary struct {
	Valid    bool         `json:"valid"`
	Files    []FileReport `json:"files"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <source-file>...",
		Short: "Statically check generated or hand-written device source",
		Long: `Check Arduino (.ino, .c, .cpp, .h) and MicroPython (.py) sources for
unbalanced brackets, unterminated strings and comments, indentation
mistakes and common statement slips. Files are checked concurrently.

Exit codes:
  0 - No errors (warnings allowed)
  1 - At least one file has errors
  2 - Command error (unreadable file, unknown language)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "force language (c|python)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "files checked in parallel (default: GOMAXPROCS)")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)
	logger := ctxlog.FromContext(ctx)

	var forced validator.Language
	switch opts.Language {
	case "":
	case string(validator.LangC), string(validator.LangPython):
		forced = validator.Language(opts.Language)
	default:
		return fail(formatter, ExitCommandError, &LoadError{
			Code: ErrCodeInvalidFlag, Message: fmt.Sprintf("unknown language %q (want c or python)", opts.Language),
		})
	}

	langs := make([]validator.Language, len(paths))
	for i, p := range paths {
		lang, ok := validator.LanguageForPath(p)
		if forced != "" {
			lang, ok = forced, true
		}
		if !ok {
			return fail(formatter, ExitCommandError, &LoadError{
				Code: ErrCodeInvalidFlag, Message: fmt.Sprintf("cannot tell the language of %s; pass --language", p),
			})
		}
		langs[i] = lang
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine owns one index, so results need no lock.
	reports := make([]FileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", p, err)}
			}
			reports[i] = FileReport{Path: p, Result: validator.Validate(string(data), validator.Options{Language: langs[i]})}
			logger.Debug("validated", "path", p, "language", langs[i],
				"errors", len(reports[i].Errors), "warnings", len(reports[i].Warnings))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	summary := ValidationSummary{Valid: true, Files: reports}
	for _, r := range reports {
		summary.Errors += len(r.Errors)
		summary.Warnings += len(r.Warnings)
		if !r.Valid {
			summary.Valid = false
		}
	}
	return outputValidation(formatter, summary)
}

// outputValidation prints every file's findings in argument order.
func outputValidation(f *OutputFormatter, s ValidationSummary) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", s.Errors)
	if f.JSON() {
		if s.Valid {
			return f.Success(s)
		}
		if err := f.Failure(ErrCodeSourceInvalid, msg, s); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	for _, r := range s.Files {
		for _, d := range r.Errors {
			f.Diagnostic(r.Path, d, true)
		}
		for _, d := range r.Warnings {
			f.Diagnostic(r.Path, d, false)
		}
	}
	fmt.Fprintf(f.Writer, "%s %d file(s): %d error(s), %d warning(s)\n",
		f.Mark(s.Valid), len(s.Files), s.Errors, s.Warnings)
	if !s.Valid {
		return NewExitError(ExitFailure, msg)
	}
	return nil
}
