package validator

import (
	"fmt"
	"strings"
)

const indentWidth = 4

// checkIndentation expects indentWidth spaces per nesting level. The level
// rises after a line ending in ':' and falls to whatever a shallower line
// establishes. Blank, comment-only and continuation lines are skipped.
func checkIndentation(lines []line) []Diagnostic {
	var out []Diagnostic
	level := 0
	prevJoined := false
	for _, l := range lines {
		code := strings.TrimRight(l.code, " \t\r")
		joined := prevJoined
		prevJoined = strings.HasSuffix(code, "\\")
		if l.continued || joined || strings.TrimSpace(code) == "" {
			continue
		}

		lead := l.raw[:len(l.raw)-len(strings.TrimLeft(l.raw, " \t"))]
		if strings.Contains(lead, "\t") {
			out = append(out, Diagnostic{
				Line: l.num, Column: 1, Code: CodeTabIndent,
				Message: "tab used for indentation; use spaces",
			})
			lead = strings.ReplaceAll(lead, "\t", strings.Repeat(" ", indentWidth))
		}
		indent := len(lead)

		expected := level * indentWidth
		if indent < expected {
			level = indent / indentWidth
			expected = level * indentWidth
		}
		if indent != expected {
			out = append(out, Diagnostic{
				Line: l.num, Column: indent + 1, Code: CodeIndentation,
				Message: fmt.Sprintf("expected indentation of %d spaces, found %d", expected, indent),
			})
		}
		if strings.HasSuffix(code, ":") {
			level++
		}
	}
	return out
}
