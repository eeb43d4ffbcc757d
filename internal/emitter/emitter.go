package emitter

import (
	"fmt"
	"strings"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/profile"
	"github.com/roach88/blockc/internal/workspace"
)

// Context is the immutable input of one emitter.
type Context struct {
	Target string
	Device string

	// Catalog resolves block types. Nil means the workspace's own catalog.
	Catalog *catalog.Catalog

	// IdleDelayMS overrides the profile's per-iteration idle delay when positive.
	IdleDelayMS int
}

// Generator produces code for one custom block type.
type Generator func(b *Block) (Fragment, error)

// Fragment is generator output: Lines for statement blocks, Expr for value blocks.
type Fragment struct {
	Lines []string
	Expr  Expr
}

// Result is a compiled program.
type Result struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Device    string   `json:"device"`
	Extension string   `json:"extension"`
	Warnings  []string `json:"warnings"`
	Hash      string   `json:"hash"`
}

// Emitter compiles workspaces for one (target, device).
//
// Thread-safety: Compile does not mutate the Emitter, so one Emitter may
// compile several workspaces concurrently once RegisterGenerator calls are
// done.
type Emitter struct {
	ctx     Context
	profile *profile.Profile
	lang    language
	custom  map[string]Generator
}

// New builds an emitter. Custom catalog types are generated from their code
// template for the target unless RegisterGenerator overrides them.
func New(ctx Context) (*Emitter, error) {
	p, err := profile.Lookup(ctx.Target, ctx.Device)
	if err != nil {
		return nil, &Error{Code: ErrCodeUnknownTarget, Message: err.Error()}
	}
	if ctx.IdleDelayMS > 0 {
		p.IdleDelayMS = ctx.IdleDelayMS
	}

	var lang language
	switch p.Target.ID {
	case profile.TargetArduino:
		lang = arduino{}
	case profile.TargetMicroPython:
		lang = python{}
	default:
		return nil, &Error{Code: ErrCodeUnknownTarget, Message: fmt.Sprintf("no generators for target %q", p.Target.ID)}
	}

	return &Emitter{ctx: ctx, profile: p, lang: lang, custom: make(map[string]Generator)}, nil
}

// RegisterGenerator installs or replaces the generator for a custom type.
// Builtin kinds always use the builtin generators.
func (e *Emitter) RegisterGenerator(typeID string, gen Generator) error {
	if gen == nil {
		return fmt.Errorf("generator for %q is nil", typeID)
	}
	if e.ctx.Catalog != nil {
		t, err := e.ctx.Catalog.Lookup(typeID)
		if err != nil {
			return err
		}
		if t.Kind != catalog.BlockCustom {
			return fmt.Errorf("%s is a builtin block type", typeID)
		}
	}
	e.custom[typeID] = gen
	return nil
}

// Profile returns the resolved runtime profile.
func (e *Emitter) Profile() *profile.Profile {
	return e.profile
}

// generator returns the generator of a custom type for this target.
func (e *Emitter) generator(t *catalog.BlockType) (Generator, bool) {
	if gen, ok := e.custom[t.ID]; ok {
		return gen, true
	}
	if tmpl, ok := t.Code[e.profile.Target.ID]; ok {
		return templateGenerator(tmpl), true
	}
	return nil, false
}

// Compile emits the whole program. An instance whose type cannot be
// generated aborts the compile with ErrUnknownBlockType.
func (e *Emitter) Compile(w *workspace.Workspace) (*Result, error) {
	cat := e.ctx.Catalog
	if cat == nil {
		cat = w.Catalog()
	}
	c := newCompilation(e, w, cat)

	var startup, conditional []string
	for _, id := range w.TopLevel() {
		inst, err := w.Get(id)
		if err != nil {
			return nil, err
		}
		t, err := cat.Lookup(inst.Type)
		if err != nil {
			return nil, unknownBlock(id, inst.Type, "type is not in the catalog")
		}
		switch t.Trigger {
		case catalog.TriggerStartup:
			startup = append(startup, id)
		case catalog.TriggerConditional:
			conditional = append(conditional, id)
		default:
			c.warnf("block %s (%s) is not connected to a trigger and was skipped", id, inst.Type)
		}
	}
	if e.profile.Fallback() {
		c.warnings = append([]string{fmt.Sprintf("unknown device %q for %s, using the generic profile",
			e.profile.Requested, e.profile.Target.ID)}, c.warnings...)
	}
	if len(startup) > 1 {
		c.warnf("%d startup triggers; their chains run in workspace order", len(startup))
	}

	if err := c.collectVariables(append(append([]string(nil), startup...), conditional...)); err != nil {
		return nil, err
	}

	var prog program
	prog.setup = append(prog.setup, e.profile.Setup...)
	for _, id := range startup {
		inst, _ := w.Get(id)
		lines, err := c.statements(inst.Next)
		if err != nil {
			return nil, err
		}
		prog.setup = append(prog.setup, lines...)
	}
	// Conditional triggers keep workspace insertion order.
	for _, id := range conditional {
		b, err := c.block(id)
		if err != nil {
			return nil, err
		}
		cond, err := c.triggerCondition(b)
		if err != nil {
			return nil, err
		}
		body, err := c.statements(b.Instance.Next)
		if err != nil {
			return nil, err
		}
		prog.loop = append(prog.loop, e.lang.conditional(c, cond, body, nil, false)...)
	}
	prog.idle = e.lang.stmt(c.call(profile.PrimSleep, fmt.Sprint(e.profile.IdleDelayMS)))

	prog.header = fmt.Sprintf("%s Generated by blockc %s for %s/%s (%s)",
		e.profile.Target.Comment, ir.CompilerVersion, e.profile.Target.ID, e.profile.Device, e.profile.Name)
	prog.preamble = append(append([]string(nil), e.profile.Preamble...), c.includes...)
	prog.vars = c.varNames()
	prog.procedures = c.procedures()

	src := e.lang.assemble(c, prog)
	return &Result{
		Source:    src,
		Target:    e.profile.Target.ID,
		Device:    e.profile.Device,
		Extension: e.profile.Target.Extension,
		Warnings:  c.warningsOrEmpty(),
		Hash:      ir.SourceHash(src),
	}, nil
}

// Compile is a convenience for New followed by Compile.
func Compile(ctx Context, w *workspace.Workspace) (*Result, error) {
	e, err := New(ctx)
	if err != nil {
		return nil, err
	}
	return e.Compile(w)
}

// program holds assembled sections before target-specific layout.
type program struct {
	header     string
	preamble   []string
	vars       []string
	procedures [][]string
	setup      []string
	loop       []string
	idle       string
}

func joinSections(sections ...[]string) string {
	var b strings.Builder
	first := true
	for _, s := range sections {
		if len(s) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		for _, line := range s {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
