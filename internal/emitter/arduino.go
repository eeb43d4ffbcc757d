package emitter

import (
	"fmt"
	"strings"

	"github.com/roach88/blockc/internal/catalog"
)

// arduino is Arduino C++.
type arduino struct{}

var arduinoOps = map[string]struct {
	symbol string
	order  Order
}{
	"ADD":      {"+", OrderCAdditive},
	"MINUS":    {"-", OrderCAdditive},
	"MULTIPLY": {"*", OrderCMultiplicative},
	"DIVIDE":   {"/", OrderCMultiplicative},
	"MODULO":   {"%", OrderCMultiplicative},
	"EQ":       {"==", OrderCEquality},
	"NEQ":      {"!=", OrderCEquality},
	"LT":       {"<", OrderCRelational},
	"LTE":      {"<=", OrderCRelational},
	"GT":       {">", OrderCRelational},
	"GTE":      {">=", OrderCRelational},
	"AND":      {"&&", OrderCAnd},
	"OR":       {"||", OrderCOr},
}

func (arduino) stmt(code string) string { return code + ";" }

func (arduino) conditional(c *compilation, cond string, body, elseBody []string, hasElse bool) []string {
	in := c.e.profile.Target.Indent
	out := []string{"if (" + cond + ") {"}
	out = append(out, indent(in, body)...)
	if hasElse {
		out = append(out, "} else {")
		out = append(out, indent(in, elseBody)...)
	}
	return append(out, "}")
}

func (arduino) repeat(c *compilation, counter string, b *Block, body []string) ([]string, error) {
	times, err := b.Value(catalog.InputTimes, OrderCRelational)
	if err != nil {
		return nil, err
	}
	out := []string{"for (long " + counter + " = 0; " + counter + " < " + times + "; " + counter + "++) {"}
	out = append(out, b.Indent(body)...)
	return append(out, "}"), nil
}

func (arduino) while(c *compilation, cond string, body []string) []string {
	out := []string{"while (" + cond + ") {"}
	out = append(out, indent(c.e.profile.Target.Indent, body)...)
	return append(out, "}")
}

func (arduino) assign(name, value string) string { return name + " = " + value }

func (arduino) boolean(v bool) Expr {
	if v {
		return Expr{Code: "true", Order: OrderAtomic}
	}
	return Expr{Code: "false", Order: OrderAtomic}
}

func (arduino) level(on bool) string {
	if on {
		return "HIGH"
	}
	return "LOW"
}

func (a arduino) emptyValue(kind catalog.ValueKind) Expr {
	switch kind {
	case catalog.ValueBoolean:
		return a.boolean(false)
	case catalog.ValueString:
		return Expr{Code: `""`, Order: OrderAtomic}
	default:
		return Expr{Code: "0", Order: OrderAtomic}
	}
}

func (arduino) binary(op string) (string, Order, bool) {
	info, ok := arduinoOps[op]
	return info.symbol, info.order, ok
}

func (arduino) power(b *Block) (Expr, error) {
	base, err := b.Value(catalog.InputA, OrderNone)
	if err != nil {
		return Expr{}, err
	}
	exp, err := b.Value(catalog.InputB, OrderNone)
	if err != nil {
		return Expr{}, err
	}
	// pow returns double; the cast keeps integer operators such as % well formed.
	return Expr{Code: "(long)pow(" + base + ", " + exp + ")", Order: OrderCPrefix}, nil
}

func (arduino) negate(b *Block) (Expr, error) {
	v, err := b.Value(catalog.InputBool, OrderCPrefix)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Code: "!" + v, Order: OrderCPrefix}, nil
}

func (arduino) unaryOrder() Order { return OrderCPrefix }

// quote escapes control and non-ASCII bytes as three-digit octal. A C hex
// escape would swallow any hex digits that follow it.
func (arduino) quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, "\\%03o", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (arduino) reserved() []string {
	return []string{
		"auto", "bool", "break", "case", "char", "class", "const", "continue", "default",
		"delete", "do", "double", "else", "enum", "extern", "false", "float", "for", "goto",
		"if", "inline", "int", "long", "new", "private", "public", "register", "return",
		"short", "signed", "sizeof", "static", "struct", "switch", "this", "true", "typedef",
		"union", "unsigned", "void", "volatile", "while",
		"setup", "loop", "HIGH", "LOW", "INPUT", "OUTPUT", "INPUT_PULLUP", "Serial",
		"delay", "millis", "pinMode", "digitalWrite", "digitalRead", "analogRead",
		"analogWrite", "constrain", "pow", "boolean", "byte", "word", "String",
	}
}

func (arduino) assemble(c *compilation, p program) string {
	in := c.e.profile.Target.Indent
	var vars []string
	for _, v := range p.vars {
		vars = append(vars, "long "+v+" = 0;")
	}

	sections := [][]string{{p.header}, p.preamble, vars}
	sections = append(sections, p.procedures...)

	setup := []string{"void setup() {"}
	setup = append(setup, indent(in, p.setup)...)
	setup = append(setup, "}")

	loop := []string{"void loop() {"}
	loop = append(loop, indent(in, p.loop)...)
	loop = append(loop, in+p.idle, "}")

	sections = append(sections, setup, loop)
	return joinSections(sections...)
}
