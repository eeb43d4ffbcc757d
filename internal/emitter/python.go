package emitter

import (
	"strconv"

	"github.com/roach88/blockc/internal/catalog"
)

// python is MicroPython.
type python struct{}

var pythonOps = map[string]struct {
	symbol string
	order  Order
}{
	"ADD":      {"+", OrderPyAdditive},
	"MINUS":    {"-", OrderPyAdditive},
	"MULTIPLY": {"*", OrderPyMultiplicative},
	"DIVIDE":   {"/", OrderPyMultiplicative},
	"MODULO":   {"%", OrderPyMultiplicative},
	"EQ":       {"==", OrderPyRelational},
	"NEQ":      {"!=", OrderPyRelational},
	"LT":       {"<", OrderPyRelational},
	"LTE":      {"<=", OrderPyRelational},
	"GT":       {">", OrderPyRelational},
	"GTE":      {">=", OrderPyRelational},
	"AND":      {"and", OrderPyAnd},
	"OR":       {"or", OrderPyOr},
}

func (python) stmt(code string) string { return code }

// body indents a nested block, using pass when it is empty.
func (python) body(c *compilation, lines []string) []string {
	if len(lines) == 0 {
		lines = []string{"pass"}
	}
	return indent(c.e.profile.Target.Indent, lines)
}

func (p python) conditional(c *compilation, cond string, body, elseBody []string, hasElse bool) []string {
	out := []string{"if " + cond + ":"}
	out = append(out, p.body(c, body)...)
	if hasElse {
		out = append(out, "else:")
		out = append(out, p.body(c, elseBody)...)
	}
	return out
}

func (p python) repeat(c *compilation, counter string, b *Block, body []string) ([]string, error) {
	times, err := b.Value(catalog.InputTimes, OrderNone)
	if err != nil {
		return nil, err
	}
	out := []string{"for " + counter + " in range(" + times + "):"}
	return append(out, p.body(c, body)...), nil
}

func (p python) while(c *compilation, cond string, body []string) []string {
	out := []string{"while " + cond + ":"}
	return append(out, p.body(c, body)...)
}

func (python) assign(name, value string) string { return name + " = " + value }

func (python) boolean(v bool) Expr {
	if v {
		return Expr{Code: "True", Order: OrderAtomic}
	}
	return Expr{Code: "False", Order: OrderAtomic}
}

func (python) level(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

func (p python) emptyValue(kind catalog.ValueKind) Expr {
	switch kind {
	case catalog.ValueBoolean:
		return p.boolean(false)
	case catalog.ValueString:
		return Expr{Code: `""`, Order: OrderAtomic}
	default:
		return Expr{Code: "0", Order: OrderAtomic}
	}
}

func (python) binary(op string) (string, Order, bool) {
	info, ok := pythonOps[op]
	return info.symbol, info.order, ok
}

func (python) power(b *Block) (Expr, error) {
	base, err := b.Value(catalog.InputA, OrderPyExponent)
	if err != nil {
		return Expr{}, err
	}
	exp, err := b.Value(catalog.InputB, OrderPyExponent)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Code: base + " ** " + exp, Order: OrderPyExponent}, nil
}

func (python) negate(b *Block) (Expr, error) {
	v, err := b.Value(catalog.InputBool, OrderPyNot)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Code: "not " + v, Order: OrderPyNot}, nil
}

func (python) unaryOrder() Order { return OrderPyUnary }

// quote uses Go's escapes, which Python reads the same way: \xNN takes
// exactly two digits.
func (python) quote(s string) string { return strconv.Quote(s) }

func (python) reserved() []string {
	return []string{
		"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global",
		"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise",
		"return", "try", "while", "with", "yield",
		"print", "range", "str", "int", "min", "max", "getattr", "len",
		"time", "machine", "microbit", "Pin", "PWM", "ADC", "display", "sleep",
		"button_a", "button_b",
	}
}

func (p python) assemble(c *compilation, prog program) string {
	var vars []string
	for _, v := range prog.vars {
		vars = append(vars, v+" = 0")
	}

	sections := [][]string{{prog.header}, prog.preamble, vars}
	sections = append(sections, prog.procedures...)
	sections = append(sections, prog.setup)

	loop := []string{"while True:"}
	loop = append(loop, indent(c.e.profile.Target.Indent, prog.loop)...)
	loop = append(loop, c.e.profile.Target.Indent+prog.idle)
	sections = append(sections, loop)
	return joinSections(sections...)
}
