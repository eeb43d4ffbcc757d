package harness

import (
	"fmt"
	"strings"
)

// AssertionError is a failed assertion with enough context to debug it.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages in assertion order.
//
// Without an error assertion, a failed compile is itself a failure and
// program assertions are skipped.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string

	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if result.ErrorCode != "" || result.Error != "" {
		if !expectsError {
			return []string{fmt.Sprintf("compile failed: %s", result.Error)}
		}
	}

	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertContains:
		if !strings.Contains(r.Source, a.Text) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("program containing %q", a.Text), Actual: "not found"}
		}
	case AssertNotContains:
		if strings.Contains(r.Source, a.Text) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("program without %q", a.Text), Actual: "found"}
		}
	case AssertOrder:
		return assertOrder(r.Source, a.Texts)
	case AssertCount:
		if n := strings.Count(r.Source, a.Text); n != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d occurrences of %q", a.Count, a.Text), Actual: fmt.Sprintf("%d", n)}
		}
	case AssertWarning:
		for _, w := range r.Warnings {
			if strings.Contains(w, a.Text) {
				return nil
			}
		}
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("warning containing %q", a.Text), Actual: fmt.Sprintf("%q", r.Warnings)}
	case AssertNoWarnings:
		if len(r.Warnings) > 0 {
			return &AssertionError{Type: a.Type, Expected: "no warnings", Actual: fmt.Sprintf("%q", r.Warnings)}
		}
	case AssertValid:
		if !r.Valid {
			return &AssertionError{Type: a.Type, Expected: "no validator errors", Actual: fmt.Sprintf("%q", r.Diagnostics)}
		}
	case AssertError:
		if r.ErrorCode != a.Code {
			actual := "compiled successfully"
			if r.Error != "" {
				actual = r.Error
			}
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("error %s", a.Code), Actual: actual}
		}
	default:
		return &AssertionError{Type: a.Type, Expected: "known assertion type", Actual: a.Type}
	}
	return nil
}

// assertOrder checks that texts appear in order. Each search starts after
// the previous match.
func assertOrder(source string, texts []string) error {
	pos := 0
	for i, text := range texts {
		idx := strings.Index(source[pos:], text)
		if idx < 0 {
			actual := "not found"
			if i > 0 {
				actual = fmt.Sprintf("not found after %q", texts[i-1])
			}
			return &AssertionError{Type: AssertOrder, Expected: fmt.Sprintf("%q in order", texts), Actual: fmt.Sprintf("%q %s", text, actual)}
		}
		pos += idx + len(text)
	}
	return nil
}
