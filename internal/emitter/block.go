package emitter

import (
	"fmt"
	"strings"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/profile"
	"github.com/roach88/blockc/internal/workspace"
)

// compilation is the state of one Compile call.
type compilation struct {
	e   *Emitter
	ws  *workspace.Workspace
	cat *catalog.Catalog

	used        map[profile.Primitive]bool
	includes    []string
	includeSeen map[string]bool
	names       *namer
	loopDepth   int
	warnings    []string
}

func newCompilation(e *Emitter, ws *workspace.Workspace, cat *catalog.Catalog) *compilation {
	reserved := e.lang.reserved()
	for _, prim := range profile.Primitives() {
		reserved = append(reserved, e.profile.Procedure(prim).Name)
	}
	reserved = append(reserved, e.profile.Reserved...)
	return &compilation{
		e:           e,
		ws:          ws,
		cat:         cat,
		used:        make(map[profile.Primitive]bool),
		includeSeen: make(map[string]bool),
		names:       newNamer(reserved),
	}
}

func (c *compilation) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *compilation) warningsOrEmpty() []string {
	if c.warnings == nil {
		return []string{}
	}
	return c.warnings
}

// block resolves an instance and its type.
func (c *compilation) block(id string) (*Block, error) {
	inst, err := c.ws.Get(id)
	if err != nil {
		return nil, err
	}
	t, err := c.cat.Lookup(inst.Type)
	if err != nil {
		return nil, unknownBlock(id, inst.Type, "type is not in the catalog")
	}
	return &Block{c: c, Instance: inst, Type: t}, nil
}

// statements emits the chain starting at head, unindented.
func (c *compilation) statements(head string) ([]string, error) {
	var out []string
	for _, id := range c.ws.Chain(head) {
		b, err := c.block(id)
		if err != nil {
			return nil, err
		}
		if b.Type.Shape != catalog.ShapeStatement {
			return nil, unknownBlock(id, b.Type.ID, "%s block in a statement chain", b.Type.Shape)
		}
		lines, err := c.statement(b)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

// value emits the expression of a value block.
func (c *compilation) value(id string) (Expr, error) {
	b, err := c.block(id)
	if err != nil {
		return Expr{}, err
	}
	if b.Type.Shape != catalog.ShapeValue {
		return Expr{}, unknownBlock(id, b.Type.ID, "%s block in a value input", b.Type.Shape)
	}
	if b.Type.Kind == catalog.BlockCustom {
		f, err := c.custom(b)
		if err != nil {
			return Expr{}, err
		}
		return f.Expr, nil
	}
	return c.builtinValue(b)
}

func (c *compilation) statement(b *Block) ([]string, error) {
	if b.Type.Kind == catalog.BlockCustom {
		f, err := c.custom(b)
		if err != nil {
			return nil, err
		}
		return f.Lines, nil
	}
	return c.builtinStatement(b)
}

func (c *compilation) custom(b *Block) (Fragment, error) {
	gen, ok := c.e.generator(b.Type)
	if !ok {
		return Fragment{}, unknownBlock(b.ID(), b.Type.ID, "no generator for target %s", c.e.profile.Target.ID)
	}
	for _, line := range b.Type.Includes[c.e.profile.Target.ID] {
		if !c.includeSeen[line] {
			c.includeSeen[line] = true
			c.includes = append(c.includes, line)
		}
	}
	return gen(b)
}

// call marks a primitive used and renders the call.
func (c *compilation) call(prim profile.Primitive, args ...string) string {
	c.used[prim] = true
	return c.e.profile.Procedure(prim).Name + "(" + strings.Join(args, ", ") + ")"
}

// procedures returns the definitions of used primitives in fixed order.
// Primitives sharing a procedure name are defined once.
func (c *compilation) procedures() [][]string {
	var out [][]string
	defined := make(map[string]bool)
	for _, prim := range profile.Primitives() {
		if !c.used[prim] {
			continue
		}
		proc := c.e.profile.Procedure(prim)
		if len(proc.Definition) == 0 || defined[proc.Name] {
			continue
		}
		defined[proc.Name] = true
		out = append(out, proc.Definition)
	}
	return out
}

// collectVariables reserves identifiers for every variable reachable from
// the given roots, in order of first use.
func (c *compilation) collectVariables(roots []string) error {
	var visit func(id string) error
	visit = func(id string) error {
		for _, cur := range c.ws.Chain(id) {
			b, err := c.block(cur)
			if err != nil {
				return err
			}
			if b.Type.Kind == catalog.BlockVariableSet || b.Type.Kind == catalog.BlockVariableGet {
				c.names.variable(b.FieldText(catalog.FieldVar))
			}
			for _, f := range b.Type.Fields {
				child := b.Instance.Input(f.Name)
				if child == "" {
					continue
				}
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := visit(root); err != nil {
			return err
		}
	}
	return nil
}

func (c *compilation) varNames() []string {
	return c.names.variables()
}

// loopVar returns the counter name for the current repeat nesting depth.
func (c *compilation) loopVar() string {
	return c.names.counter(c.loopDepth)
}

// triggerCondition renders the gate of a conditional trigger.
func (c *compilation) triggerCondition(b *Block) (string, error) {
	switch b.Type.Kind {
	case catalog.BlockOnButton:
		return c.call(profile.PrimButtonEvent, c.button(b)), nil
	case catalog.BlockOnCondition:
		return b.Value(catalog.InputCond, OrderNone)
	default:
		return "", unknownBlock(b.ID(), b.Type.ID, "not a conditional trigger")
	}
}

func (c *compilation) button(b *Block) string {
	return c.e.profile.Buttons[b.FieldText(catalog.FieldButton)]
}

// Block is the view of one instance handed to generators.
type Block struct {
	c        *compilation
	Instance *workspace.Instance
	Type     *catalog.BlockType
}

// ID returns the instance id.
func (b *Block) ID() string { return b.Instance.ID }

// Target returns the target id being compiled for.
func (b *Block) Target() string { return b.c.e.profile.Target.ID }

// Field returns a literal field, falling back to the schema default.
func (b *Block) Field(name string) ir.IRValue {
	if v, ok := b.Instance.Field(name); ok {
		return v
	}
	if f, ok := b.Type.Field(name); ok {
		return f.Default
	}
	return nil
}

// FieldText renders a literal field as plain text.
func (b *Block) FieldText(name string) string {
	return ir.Text(b.Field(name))
}

// Value renders the block plugged into a value input for a slot of tier
// outer. An empty input yields the default literal of its expected kind.
func (b *Block) Value(name string, outer Order) (string, error) {
	child := b.Instance.Input(name)
	if child == "" {
		kind := catalog.ValueAny
		if f, ok := b.Type.Field(name); ok {
			kind = f.Check
		}
		return b.c.e.lang.emptyValue(kind).In(outer), nil
	}
	expr, err := b.c.value(child)
	if err != nil {
		return "", err
	}
	return expr.In(outer), nil
}

// Statements renders the chain in a statement input, unindented. An empty
// input yields no lines.
func (b *Block) Statements(name string) ([]string, error) {
	return b.c.statements(b.Instance.Input(name))
}

// Indent prefixes lines with one indent level.
func (b *Block) Indent(lines []string) []string {
	return indent(b.c.e.profile.Target.Indent, lines)
}

// Call marks a primitive used and renders a call to it.
func (b *Block) Call(prim profile.Primitive, args ...string) string {
	return b.c.call(prim, args...)
}

// Variable returns the identifier of a variable name.
func (b *Block) Variable(name string) string {
	return b.c.names.variable(name)
}

func indent(prefix string, lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = prefix + l
	}
	return out
}
