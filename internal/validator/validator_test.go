package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(ds []Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestBrackets_ExtraClosing(t *testing.T) {
	res := Validate("a(b))", Options{Language: LangC})
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, Diagnostic{Line: 1, Column: 5, Message: "extra closing ')'", Code: CodeExtraClosing}, res.Errors[0])
}

func TestBrackets_Unclosed(t *testing.T) {
	res := Validate("(a(b)", Options{Language: LangC})
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "1 unclosed '('", res.Errors[0].Message)
	assert.Equal(t, CodeUnclosed, res.Errors[0].Code)
	assert.Equal(t, 1, res.Errors[0].Line)
	assert.Equal(t, 6, res.Errors[0].Column)
}

func TestBrackets_StringLiteralIgnored(t *testing.T) {
	for _, lang := range []Language{LangC, LangPython} {
		res := Validate(`print("(unbalanced")`, Options{Language: lang})
		assert.Empty(t, res.Errors, string(lang))
		assert.True(t, res.Valid)

		res = Validate(`x = '}'`, Options{Language: lang})
		assert.Empty(t, res.Errors, string(lang))
	}
}

func TestBrackets_EscapedQuote(t *testing.T) {
	res := Validate(`s = "say \"(hi\" ok"`, Options{Language: LangPython})
	assert.Empty(t, res.Errors)
}

func TestBrackets_Comments(t *testing.T) {
	c := Validate("int x = 1; // (\n/* { [ */\n", Options{Language: LangC})
	assert.Empty(t, c.Errors)

	py := Validate("x = 1  # (\n", Options{Language: LangPython})
	assert.Empty(t, py.Errors)

	// '#' is not a comment in C.
	c = Validate("#define P(x\n", Options{Language: LangC})
	assert.Len(t, c.Errors, 1)
}

func TestBrackets_TripleQuoted(t *testing.T) {
	src := "doc = \"\"\"\n( [ {\n\"\"\"\nx = 1\n"
	res := Validate(src, Options{Language: LangPython})
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestBrackets_SeparateFamilies(t *testing.T) {
	res := Validate("(]\n", Options{Language: LangC})
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "extra closing ']'", res.Errors[0].Message)
	assert.Equal(t, "1 unclosed '('", res.Errors[1].Message)
}

func TestBrackets_Multiline(t *testing.T) {
	res := Validate("void f() {\n  g(1));\n}\n{{\n", Options{Language: LangC})
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Equal(t, 7, res.Errors[0].Column)
	assert.Equal(t, "2 unclosed '{'", res.Errors[1].Message)
}

func TestBrackets_DepthResetsAfterExtra(t *testing.T) {
	res := Validate(")(", Options{Language: LangC})
	require.Len(t, res.Errors, 2)
	assert.Equal(t, CodeExtraClosing, res.Errors[0].Code)
	assert.Equal(t, CodeUnclosed, res.Errors[1].Code)
}

func TestUnterminatedString(t *testing.T) {
	res := Validate("x = \"abc\ny = 1\n", Options{Language: LangPython})
	assert.Empty(t, res.Errors)
	assert.Contains(t, codes(res.Warnings), CodeUnterminatedString)

	res = Validate("s = \"a \\\nb\";\n", Options{Language: LangC})
	assert.NotContains(t, codes(res.Warnings), CodeUnterminatedString, "backslash-newline continues the literal")
}

func TestIndentation(t *testing.T) {
	src := strings.Join([]string{
		"def f():",
		"    x = 1",
		"      y = 2",
		"if x:",
		"  z = 3",
		"while True:",
		"    pass",
		"",
		"    # comment",
		"sleep(1)",
	}, "\n") + "\n"
	res := Validate(src, Options{Language: LangPython})
	assert.Empty(t, res.Errors, "indentation never produces errors")

	var lines []int
	for _, w := range res.Warnings {
		if w.Code == CodeIndentation {
			lines = append(lines, w.Line)
		}
	}
	assert.Equal(t, []int{3, 5}, lines)
}

func TestIndentation_ContinuationLinesSkipped(t *testing.T) {
	src := "x = foo(1,\n             2)\ny = 1 + \\\n  2\n"
	res := Validate(src, Options{Language: LangPython})
	assert.NotContains(t, codes(res.Warnings), CodeIndentation)
}

func TestIndentation_Tabs(t *testing.T) {
	res := Validate("if x:\n\ty = 1\n", Options{Language: LangPython})
	assert.Contains(t, codes(res.Warnings), CodeTabIndent)
	assert.NotContains(t, codes(res.Warnings), CodeIndentation)
}

func TestIndentation_NotForC(t *testing.T) {
	res := Validate("void f() {\n      x();\n}\n", Options{Language: LangC})
	assert.Empty(t, res.Warnings)
}

func TestHeuristics_MissingSemicolon(t *testing.T) {
	src := strings.Join([]string{
		"#include <Arduino.h>",
		"void setup()",
		"{",
		"  int x = 1",
		"  foo(1,",
		"      2);",
		"  if (x) {",
		"  }",
		"  return",
		"}",
	}, "\n") + "\n"
	res := Validate(src, Options{Language: LangC})
	assert.True(t, res.Valid)

	var lines []int
	for _, w := range res.Warnings {
		if w.Code == CodeMissingTerminator {
			lines = append(lines, w.Line)
		}
	}
	assert.Equal(t, []int{4, 9}, lines)
	assert.Equal(t, 12, res.Warnings[0].Column)
}

func TestHeuristics_AssignInCondition(t *testing.T) {
	c := Validate("if (x = 1) {\n}\nwhile (a == b) {\n}\nif (a <= b && c != d) {\n}\n", Options{Language: LangC})
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, CodeAssignInCondition, c.Warnings[0].Code)
	assert.Equal(t, 1, c.Warnings[0].Line)
	assert.Equal(t, 7, c.Warnings[0].Column)

	py := Validate("if x = 1:\n    pass\nelif y == 2:\n    pass\n", Options{Language: LangPython})
	require.Len(t, py.Warnings, 1)
	assert.Equal(t, CodeAssignInCondition, py.Warnings[0].Code)
	assert.Equal(t, 6, py.Warnings[0].Column)
}

func TestHeuristics_AssignInsideStringIgnored(t *testing.T) {
	res := Validate("if (s == \"a=b\") {\n}\n", Options{Language: LangC})
	assert.Empty(t, res.Warnings)
}

func TestHeuristics_UnimportedModule(t *testing.T) {
	res := Validate("time.sleep(1)\nmath.floor(2)\nimport math\n", Options{Language: LangPython})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, CodeUnimportedModule, res.Warnings[0].Code)
	assert.Contains(t, res.Warnings[0].Message, `"time"`)

	res = Validate("import utime as time\ntime.sleep(1)\n", Options{Language: LangPython})
	assert.Empty(t, res.Warnings)

	res = Validate("from machine import Pin\nmachine.reset()\n", Options{Language: LangPython})
	assert.Contains(t, codes(res.Warnings), CodeUnimportedModule, "from-import does not bind the module")

	res = Validate("print(\"time.sleep(1)\")\n", Options{Language: LangPython})
	assert.Empty(t, res.Warnings)
}

func TestHeuristics_UnincludedLibrary(t *testing.T) {
	res := Validate("void setup() {\n  Wire.begin();\n}\n", Options{Language: LangC})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, CodeUnincludedLibrary, res.Warnings[0].Code)

	res = Validate("#include <Wire.h>\nvoid setup() {\n  Wire.begin();\n}\n", Options{Language: LangC})
	assert.Empty(t, res.Warnings)
}

func TestValidate_NeverPanics(t *testing.T) {
	inputs := []string{
		"", "\n", "\"", "'", "\"\"\"", "/*", "\\", "((((", "))))", "#", "\x00", "\xff\xfe",
		"if (", "if x = :", "import", "import ,", "a.b(", "\t\t\t", "é(", "\"\\", "'\\\n",
		strings.Repeat("{[(", 100), strings.Repeat("\"a\\\"", 50),
	}
	for _, in := range inputs {
		for _, lang := range []Language{LangC, LangPython, ""} {
			assert.NotPanics(t, func() {
				res := Validate(in, Options{Language: lang})
				assert.NotNil(t, res.Errors)
				assert.NotNil(t, res.Warnings)
				assert.Equal(t, len(res.Errors) == 0, res.Valid)
			}, "%q", in)
		}
	}
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"blink.ino", LangC, true},
		{"src/main.CPP", LangC, true},
		{"main.py", LangPython, true},
		{"notes.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := LanguageForPath(tt.path)
		assert.Equal(t, tt.want, got, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
	}
	assert.Equal(t, LangPython, LanguageForTarget("micropython"))
	assert.Equal(t, LangC, LanguageForTarget("arduino"))
}
