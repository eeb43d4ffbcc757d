package validator

import (
	"fmt"
	"strings"
)

// line is one source line as seen by the later passes.
type line struct {
	num int
	raw string

	// code is the line with comments removed and string contents blanked,
	// so heuristics never match inside literals.
	code string

	// continued is set when the line starts inside a string, a block
	// comment or an open bracket that does not open a block.
	continued bool
}

type state int

const (
	stNormal state = iota
	stString
	stLineComment
	stBlockComment
)

var (
	openers = map[rune]int{'(': 0, '[': 1, '{': 2}
	closers = map[rune]int{')': 0, ']': 1, '}': 2}
	opening = [3]rune{'(', '[', '{'}
)

type scanResult struct {
	lines    []line
	errors   []Diagnostic
	warnings []Diagnostic
}

// scan is the bracket-balance pass. Each bracket family keeps its own depth;
// a closer at depth zero is reported and ignored.
func scan(source string, lang Language) scanResult {
	var res scanResult
	src := []rune(source)

	var (
		depth     [3]int
		st        = stNormal
		quote     rune
		triple    bool
		strLine   int
		strCol    int
		lineNum   = 1
		lineStart = 0
		code      strings.Builder
		continued = false
		// splice is set by a backslash right before a newline inside a string.
		splice = false
	)

	endLine := func(end int) {
		res.lines = append(res.lines, line{
			num:       lineNum,
			raw:       string(src[lineStart:end]),
			code:      code.String(),
			continued: continued,
		})
		code.Reset()
	}

	for i := 0; i < len(src); i++ {
		r := src[i]
		col := i - lineStart + 1
		next := rune(0)
		if i+1 < len(src) {
			next = src[i+1]
		}

		if r == '\n' {
			if st == stString && !triple && !splice {
				res.warnings = append(res.warnings, Diagnostic{
					Line: strLine, Column: strCol, Code: CodeUnterminatedString,
					Message: "unterminated string literal",
				})
				st = stNormal
			}
			if st == stLineComment {
				st = stNormal
			}
			splice = false
			endLine(i)
			lineNum++
			lineStart = i + 1
			// C braces delimit blocks, not continuations.
			continued = st != stNormal || depth[0]+depth[1] > 0 || (lang == LangPython && depth[2] > 0)
			continue
		}

		switch st {
		case stNormal:
			switch {
			case lang == LangC && r == '/' && next == '/':
				st = stLineComment
				i++
			case lang == LangC && r == '/' && next == '*':
				st = stBlockComment
				i++
			case lang == LangPython && r == '#':
				st = stLineComment
			case r == '"' || r == '\'':
				st, quote, strLine, strCol = stString, r, lineNum, col
				triple = lang == LangPython && next == r && i+2 < len(src) && src[i+2] == r
				if triple {
					code.WriteString(string([]rune{r, r, r}))
					i += 2
				} else {
					code.WriteRune(r)
				}
			default:
				if f, ok := openers[r]; ok {
					depth[f]++
				} else if f, ok := closers[r]; ok {
					if depth[f] == 0 {
						res.errors = append(res.errors, Diagnostic{
							Line: lineNum, Column: col, Code: CodeExtraClosing,
							Message: fmt.Sprintf("extra closing '%c'", r),
						})
					} else {
						depth[f]--
					}
				}
				code.WriteRune(r)
			}

		case stString:
			switch {
			case r == '\\':
				code.WriteRune(' ')
				switch next {
				case '\n':
					splice = true
				case 0:
				default:
					code.WriteRune(' ')
					i++
				}
			case r == quote && !triple:
				st = stNormal
				code.WriteRune(r)
			case r == quote && next == r && i+2 < len(src) && src[i+2] == r:
				st = stNormal
				code.WriteString(string([]rune{r, r, r}))
				i += 2
			default:
				code.WriteRune(' ')
			}

		case stBlockComment:
			if r == '*' && next == '/' {
				st = stNormal
				i++
			}

		case stLineComment:
		}
	}
	if lineStart < len(src) || len(src) == 0 || src[len(src)-1] != '\n' {
		endLine(len(src))
	}

	switch st {
	case stString:
		res.warnings = append(res.warnings, Diagnostic{
			Line: strLine, Column: strCol, Code: CodeUnterminatedString,
			Message: "unterminated string literal",
		})
	case stBlockComment:
		res.warnings = append(res.warnings, Diagnostic{
			Line: lineNum, Column: len(src) - lineStart + 1, Code: CodeUnterminatedComment,
			Message: "unterminated block comment",
		})
	}

	endCol := len(src) - lineStart + 1
	for f, d := range depth {
		if d > 0 {
			res.errors = append(res.errors, Diagnostic{
				Line: lineNum, Column: endCol, Code: CodeUnclosed,
				Message: fmt.Sprintf("%d unclosed '%c'", d, opening[f]),
			})
		}
	}
	return res
}
