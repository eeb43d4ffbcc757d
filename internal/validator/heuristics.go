package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	cConditionRe  = regexp.MustCompile(`\b(if|while)\s*\(`)
	pyConditionRe = regexp.MustCompile(`^\s*(if|elif|while)\b`)
	qualifiedRe   = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.[A-Za-z_][A-Za-z0-9_]*\s*\(`)
	pyImportRe    = regexp.MustCompile(`^\s*import\s+(.+)$`)
	cIncludeRe    = regexp.MustCompile(`^\s*#\s*include\s*[<"]([^>"]+)[>"]`)
	cLibraryRe    = regexp.MustCompile(`\b(WiFi|Wire|SPI|EEPROM|Servo)\b`)
)

// pythonModules are module names a MicroPython program must import before
// calling through them.
var pythonModules = map[string]bool{
	"time": true, "utime": true, "machine": true, "microbit": true, "math": true,
	"random": true, "os": true, "sys": true, "json": true, "network": true,
	"socket": true, "gc": true, "struct": true, "neopixel": true, "music": true,
	"radio": true, "speech": true, "urequests": true, "ujson": true,
}

// arduinoLibraries maps library objects to the header that declares them.
var arduinoLibraries = map[string]string{
	"WiFi":   "WiFi.h",
	"Wire":   "Wire.h",
	"SPI":    "SPI.h",
	"EEPROM": "EEPROM.h",
	"Servo":  "Servo.h",
}

// Lines ending in one of these never need a terminator.
var cOpenEndings = []string{";", "{", "}", ":", ",", "(", "&&", "||", "\\", "+", "-", "*", "/", "=", "?", "<<", ">>", "|", "&"}

// cControlRe matches lines that open a construct rather than end a statement.
var cControlRe = regexp.MustCompile(`^(if|else|for|while|do|switch|case|default|#)\b|^#|^\}|^\{`)

func heuristics(lines []line, lang Language) []Diagnostic {
	var out []Diagnostic
	if lang == LangPython {
		out = append(out, assignInPythonCondition(lines)...)
		out = append(out, unimportedModules(lines)...)
		return out
	}
	out = append(out, missingTerminators(lines)...)
	out = append(out, assignInCCondition(lines)...)
	out = append(out, unincludedLibraries(lines)...)
	return out
}

func missingTerminators(lines []line) []Diagnostic {
	var out []Diagnostic
	for i, l := range lines {
		code := strings.TrimSpace(l.code)
		if code == "" || l.continued || cControlRe.MatchString(code) {
			continue
		}
		if hasAnySuffix(code, cOpenEndings) {
			continue
		}
		// The statement continues on the next line.
		if i+1 < len(lines) && lines[i+1].continued {
			continue
		}
		// A header whose body brace sits on the following line.
		if next := nextCode(lines, i); strings.HasPrefix(next, "{") {
			continue
		}
		out = append(out, Diagnostic{
			Line: l.num, Column: len([]rune(strings.TrimRight(l.code, " \t\r"))) + 1,
			Code: CodeMissingTerminator, Message: "possible missing ';'",
		})
	}
	return out
}

func nextCode(lines []line, i int) string {
	for j := i + 1; j < len(lines); j++ {
		if c := strings.TrimSpace(lines[j].code); c != "" {
			return c
		}
	}
	return ""
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func assignInCCondition(lines []line) []Diagnostic {
	var out []Diagnostic
	for _, l := range lines {
		for _, loc := range cConditionRe.FindAllStringIndex(l.code, -1) {
			open := loc[1] - 1
			end := matchParen(l.code, open)
			if col, ok := loneAssign(l.code, open+1, end); ok {
				out = append(out, assignDiagnostic(l, col))
			}
		}
	}
	return out
}

func assignInPythonCondition(lines []line) []Diagnostic {
	var out []Diagnostic
	for _, l := range lines {
		loc := pyConditionRe.FindStringIndex(l.code)
		if loc == nil {
			continue
		}
		end := strings.LastIndex(l.code, ":")
		if end < loc[1] {
			end = len(l.code)
		}
		if col, ok := loneAssign(l.code, loc[1], end); ok {
			out = append(out, assignDiagnostic(l, col))
		}
	}
	return out
}

func assignDiagnostic(l line, byteCol int) Diagnostic {
	return Diagnostic{
		Line: l.num, Column: len([]rune(l.code[:byteCol])) + 1, Code: CodeAssignInCondition,
		Message: "assignment '=' in condition; did you mean '=='?",
	}
}

// matchParen returns the byte index of the ')' closing the '(' at open, or
// the end of s.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// loneAssign finds a '=' in s[from:to] that is not part of a comparison or
// compound operator.
func loneAssign(s string, from, to int) (int, bool) {
	for i := from; i < to && i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '=' {
			i++
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>+-*/%&|^:", rune(s[i-1])) {
			continue
		}
		return i, true
	}
	return 0, false
}

func unimportedModules(lines []line) []Diagnostic {
	imported := make(map[string]bool)
	for _, l := range lines {
		m := pyImportRe.FindStringSubmatch(l.code)
		if m == nil {
			continue
		}
		for _, part := range strings.Split(m[1], ",") {
			fields := strings.Fields(part)
			if len(fields) == 0 {
				continue
			}
			name := strings.SplitN(fields[0], ".", 2)[0]
			if len(fields) == 3 && fields[1] == "as" {
				name = fields[2]
			}
			imported[name] = true
		}
	}

	var out []Diagnostic
	reported := make(map[string]bool)
	for _, l := range lines {
		for _, m := range qualifiedRe.FindAllStringSubmatchIndex(l.code, -1) {
			name := l.code[m[2]:m[3]]
			if !pythonModules[name] || imported[name] || reported[name] {
				continue
			}
			reported[name] = true
			out = append(out, Diagnostic{
				Line: l.num, Column: len([]rune(l.code[:m[2]])) + 1, Code: CodeUnimportedModule,
				Message: fmt.Sprintf("module %q is used but not imported", name),
			})
		}
	}
	return out
}

func unincludedLibraries(lines []line) []Diagnostic {
	included := make(map[string]bool)
	for _, l := range lines {
		if m := cIncludeRe.FindStringSubmatch(l.raw); m != nil {
			included[m[1]] = true
		}
	}

	var out []Diagnostic
	reported := make(map[string]bool)
	for _, l := range lines {
		if cIncludeRe.MatchString(l.raw) {
			continue
		}
		for _, m := range cLibraryRe.FindAllStringSubmatchIndex(l.code, -1) {
			name := l.code[m[2]:m[3]]
			header := arduinoLibraries[name]
			if included[header] || reported[name] {
				continue
			}
			reported[name] = true
			out = append(out, Diagnostic{
				Line: l.num, Column: len([]rune(l.code[:m[2]])) + 1, Code: CodeUnincludedLibrary,
				Message: fmt.Sprintf("%s is used without #include <%s>", name, header),
			})
		}
	}
	return out
}
