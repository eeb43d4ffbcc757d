package validator

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Diagnostic codes. E-codes are errors, W-codes warnings.
const (
	CodeExtraClosing = "E001" // closing bracket with no matching opener
	CodeUnclosed     = "E002" // opener never closed

	CodeUnterminatedString  = "W001" // string literal runs to end of line or input
	CodeUnterminatedComment = "W002" // block comment runs to end of input

	CodeIndentation = "W101" // indent differs from the expected nesting
	CodeTabIndent   = "W102" // tab in indentation

	CodeMissingTerminator = "W201" // statement line without ';'
	CodeAssignInCondition = "W202" // '=' where '==' was likely meant
	CodeUnimportedModule  = "W203" // module-qualified call without import
	CodeUnincludedLibrary = "W204" // library object used without #include
)

// Language selects the lexical rules.
type Language string

const (
	LangC      Language = "c"
	LangPython Language = "python"
)

// Options configures a validation run.
type Options struct {
	Language Language
}

// Diagnostic is one finding. Line and Column are 1-based; Column counts runes.
type Diagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: [%s] %s", d.Line, d.Column, d.Code, d.Message)
}

// Result holds the findings of one run. Errors and Warnings are never nil.
type Result struct {
	Valid    bool         `json:"valid"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// Validate runs every pass over source. Valid is true iff there are no errors.
func Validate(source string, opts Options) Result {
	lang := opts.Language
	if lang != LangPython {
		lang = LangC
	}

	s := scan(source, lang)
	warnings := s.warnings
	if lang == LangPython {
		warnings = append(warnings, checkIndentation(s.lines)...)
	}
	warnings = append(warnings, heuristics(s.lines, lang)...)

	errs := s.errors
	if errs == nil {
		errs = []Diagnostic{}
	}
	if warnings == nil {
		warnings = []Diagnostic{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// LanguageForPath picks a language from a file extension.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ino", ".c", ".cc", ".cpp", ".h", ".hpp":
		return LangC, true
	case ".py":
		return LangPython, true
	default:
		return "", false
	}
}

// LanguageForTarget maps an emitter target id to its language.
func LanguageForTarget(target string) Language {
	if target == "micropython" {
		return LangPython
	}
	return LangC
}
