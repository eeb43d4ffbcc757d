package workspace

import (
	"maps"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/blockc/internal/ir"
)

// Instance is one placed block.
type Instance struct {
	ID   string
	Type string

	// Fields holds explicitly set literal fields. Unset fields fall back to
	// the schema default at emission time.
	Fields map[string]ir.IRValue

	// Inputs maps input names to the id of the block plugged into them.
	// For statement inputs the id is the head of the nested chain.
	Inputs map[string]string

	// Next is the following statement in the chain, or "".
	Next string
}

func (i Instance) clone() Instance {
	out := i
	out.Fields = maps.Clone(i.Fields)
	out.Inputs = maps.Clone(i.Inputs)
	if out.Fields == nil {
		out.Fields = map[string]ir.IRValue{}
	}
	if out.Inputs == nil {
		out.Inputs = map[string]string{}
	}
	return out
}

// normalized returns a copy with ids, links and field values in NFC, the
// form Serialize writes.
func (i Instance) normalized() Instance {
	out := Instance{
		ID:     norm.NFC.String(i.ID),
		Type:   norm.NFC.String(i.Type),
		Next:   norm.NFC.String(i.Next),
		Fields: make(map[string]ir.IRValue, len(i.Fields)),
		Inputs: make(map[string]string, len(i.Inputs)),
	}
	for name, v := range i.Fields {
		out.Fields[norm.NFC.String(name)] = ir.Normalize(v)
	}
	for name, id := range i.Inputs {
		out.Inputs[norm.NFC.String(name)] = norm.NFC.String(id)
	}
	return out
}

// Field returns the explicitly set value of a field.
func (i *Instance) Field(name string) (ir.IRValue, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

// Input returns the id plugged into the named input, or "".
func (i *Instance) Input(name string) string {
	return i.Inputs[name]
}

// SlotKind is the place a block can be connected.
type SlotKind int

const (
	// SlotTop is the workspace surface: the block becomes a root.
	SlotTop SlotKind = iota
	// SlotNext is the next link of a statement or event block.
	SlotNext
	// SlotInput is a named value or statement input.
	SlotInput
)

func (k SlotKind) String() string {
	switch k {
	case SlotTop:
		return "top"
	case SlotNext:
		return "next"
	case SlotInput:
		return "input"
	default:
		return "invalid"
	}
}

// Slot names a connection point.
type Slot struct {
	Kind   SlotKind
	Parent string
	Input  string
}

// Top is the top-level slot.
func Top() Slot { return Slot{Kind: SlotTop} }

// NextOf is the next link of the given block.
func NextOf(id string) Slot { return Slot{Kind: SlotNext, Parent: id} }

// InputOf is the named input of the given block.
func InputOf(id, input string) Slot { return Slot{Kind: SlotInput, Parent: id, Input: input} }

func (s Slot) String() string {
	switch s.Kind {
	case SlotTop:
		return "top"
	case SlotNext:
		return s.Parent + ".next"
	default:
		return s.Parent + "." + s.Input
	}
}

// node is an arena entry. parent records where the block is connected.
type node struct {
	inst    Instance
	parent  Slot
	deleted bool
}
