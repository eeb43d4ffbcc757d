package emitter

import (
	"regexp"
	"strings"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/profile"
)

var placeholderRe = regexp.MustCompile(`\{([A-Z][A-Z0-9_]*)\}`)

// templateGenerator generates a custom block from its code template.
//
// {NAME} is replaced by the named field: literal fields by their text,
// value inputs by their expression, parenthesized unless atomic. A line
// holding only a statement-input placeholder is replaced by the nested
// chain, indented to that line's leading whitespace. Names that are not
// fields are left as written.
func templateGenerator(tmpl string) Generator {
	return func(b *Block) (Fragment, error) {
		if b.Type.Shape == catalog.ShapeValue {
			code, err := expand(b, strings.TrimRight(tmpl, "\n"))
			if err != nil {
				return Fragment{}, err
			}
			return Fragment{Expr: Expr{Code: code, Order: orderByName(b.Type.Order)}}, nil
		}

		var lines []string
		for _, line := range strings.Split(strings.TrimRight(tmpl, "\n"), "\n") {
			trimmed := strings.TrimSpace(line)
			if m := placeholderRe.FindStringSubmatch(trimmed); m != nil && m[0] == trimmed {
				if f, ok := b.Type.Field(m[1]); ok && f.Kind == catalog.FieldStatementInput {
					body, err := b.Statements(f.Name)
					if err != nil {
						return Fragment{}, err
					}
					if len(body) == 0 && b.Target() == profile.TargetMicroPython {
						body = []string{"pass"}
					}
					lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
					lines = append(lines, indent(lead, body)...)
					continue
				}
			}
			expanded, err := expand(b, line)
			if err != nil {
				return Fragment{}, err
			}
			lines = append(lines, expanded)
		}
		return Fragment{Lines: lines}, nil
	}
}

func expand(b *Block, s string) (string, error) {
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		f, ok := b.Type.Field(name)
		if !ok {
			return m
		}
		switch f.Kind {
		case catalog.FieldValueInput:
			code, err := b.Value(name, orderTemplate)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return code
		case catalog.FieldStatementInput:
			// Inline statement inputs are joined onto one line.
			body, err := b.Statements(name)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return strings.Join(body, " ")
		default:
			return b.FieldText(name)
		}
	})
	return out, firstErr
}
