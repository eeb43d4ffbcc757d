package catalog

import (
	"fmt"
	"unicode/utf8"

	"github.com/roach88/blockc/internal/ir"
)

// Shape is the connection shape of a block type.
type Shape string

const (
	// ShapeStatement blocks chain through "next" links and sit in statement inputs.
	ShapeStatement Shape = "statement"
	// ShapeValue blocks produce an expression and plug into value inputs.
	ShapeValue Shape = "value"
	// ShapeEvent blocks are entry points: top-level only, body is the "next" chain.
	ShapeEvent Shape = "event"
)

// ValueKind is the type tag of a value output or a value-input slot.
// ValueAny means untyped: it accepts, and is accepted by, every kind.
type ValueKind string

const (
	ValueAny     ValueKind = "any"
	ValueNumber  ValueKind = "number"
	ValueBoolean ValueKind = "boolean"
	ValueString  ValueKind = "string"
)

// Accepts reports whether a value of kind other may fill a slot of kind k.
func (k ValueKind) Accepts(other ValueKind) bool {
	return k == ValueAny || other == ValueAny || k == other
}

// FieldKind is the kind of one argument slot in a block's field schema.
type FieldKind string

const (
	FieldNumber         FieldKind = "number"
	FieldDropdown       FieldKind = "dropdown"
	FieldText           FieldKind = "text"
	FieldValueInput     FieldKind = "value"
	FieldStatementInput FieldKind = "statement"
)

// Trigger classifies entry blocks.
type Trigger string

const (
	TriggerNone        Trigger = ""
	TriggerStartup     Trigger = "startup"
	TriggerConditional Trigger = "conditional"
)

// FieldSpec describes one ordered argument slot.
type FieldSpec struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`

	// Bounds for FieldNumber. Ignored unless Bounded.
	Bounded bool  `json:"bounded,omitempty"`
	Min     int64 `json:"min,omitempty"`
	Max     int64 `json:"max,omitempty"`

	// Options for FieldDropdown, in display order.
	Options []string `json:"options,omitempty"`

	// Default is used when an instance leaves the field unset.
	// Applies to number, dropdown and text fields.
	Default ir.IRValue `json:"-"`

	// Check is the expected kind of a FieldValueInput.
	Check ValueKind `json:"check,omitempty"`
}

// IsInput reports whether the field is a nested input rather than a literal field.
func (f FieldSpec) IsInput() bool {
	return f.Kind == FieldValueInput || f.Kind == FieldStatementInput
}

// Validate checks a concrete value against the field schema.
func (f FieldSpec) Validate(v ir.IRValue) error {
	switch f.Kind {
	case FieldNumber:
		n, ok := v.(ir.IRInt)
		if !ok {
			return fmt.Errorf("field %s: expected number, got %T", f.Name, v)
		}
		if f.Bounded && (int64(n) < f.Min || int64(n) > f.Max) {
			return fmt.Errorf("field %s: %d out of range [%d, %d]", f.Name, n, f.Min, f.Max)
		}
	case FieldDropdown:
		s, ok := v.(ir.IRString)
		if !ok {
			return fmt.Errorf("field %s: expected option, got %T", f.Name, v)
		}
		if !utf8.ValidString(string(s)) {
			return fmt.Errorf("field %s: option is not valid UTF-8", f.Name)
		}
		for _, opt := range f.Options {
			if opt == string(s) {
				return nil
			}
		}
		return fmt.Errorf("field %s: %q is not one of %v", f.Name, s, f.Options)
	case FieldText:
		s, ok := v.(ir.IRString)
		if !ok {
			return fmt.Errorf("field %s: expected text, got %T", f.Name, v)
		}
		if !utf8.ValidString(string(s)) {
			return fmt.Errorf("field %s: text is not valid UTF-8", f.Name)
		}
	default:
		return fmt.Errorf("field %s: %s inputs hold blocks, not values", f.Name, f.Kind)
	}
	return nil
}

// BlockType is a block-type schema.
type BlockType struct {
	ID       string    `json:"id"`
	Kind     BlockKind `json:"-"`
	Category string    `json:"category"`
	Shape    Shape     `json:"shape"`

	// Output is the kind produced by a ShapeValue block.
	Output ValueKind `json:"output,omitempty"`

	// Trigger is set on ShapeEvent blocks.
	Trigger Trigger `json:"trigger,omitempty"`

	Fields []FieldSpec `json:"fields"`

	// Code holds per-target templates for BlockCustom types, keyed by target id.
	// Placeholders of the form {NAME} are replaced with field values or
	// generated input code.
	Code map[string]string `json:"code,omitempty"`

	// Includes holds per-target preamble lines a BlockCustom type needs.
	Includes map[string][]string `json:"includes,omitempty"`

	// Order is the precedence class of a custom value block: "atomic",
	// "call" or "none" (the default, always parenthesized when substituted).
	Order string `json:"order,omitempty"`
}

// Field returns the named field spec.
func (t *BlockType) Field(name string) (FieldSpec, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Inputs returns the field specs of the given input kind, in schema order.
func (t *BlockType) Inputs(kind FieldKind) []FieldSpec {
	var out []FieldSpec
	for _, f := range t.Fields {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// HasNext reports whether instances of this type may carry a "next" link.
func (t *BlockType) HasNext() bool {
	return t.Shape == ShapeStatement || t.Shape == ShapeEvent
}

// validate checks a definition for internal consistency before registration.
func (t *BlockType) validate() error {
	if t.ID == "" {
		return fmt.Errorf("block type id is required")
	}
	switch t.Shape {
	case ShapeStatement, ShapeEvent:
		if t.Output != "" {
			return fmt.Errorf("%s: only value blocks have an output kind", t.ID)
		}
	case ShapeValue:
		if t.Output == "" {
			return fmt.Errorf("%s: value blocks need an output kind", t.ID)
		}
	default:
		return fmt.Errorf("%s: invalid shape %q", t.ID, t.Shape)
	}
	if t.Shape == ShapeEvent && t.Trigger == TriggerNone {
		return fmt.Errorf("%s: event blocks need a trigger class", t.ID)
	}
	if t.Shape != ShapeEvent && t.Trigger != TriggerNone {
		return fmt.Errorf("%s: only event blocks can be triggers", t.ID)
	}

	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field name is required", t.ID)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate field %q", t.ID, f.Name)
		}
		seen[f.Name] = true

		switch f.Kind {
		case FieldNumber:
			if f.Bounded && f.Min > f.Max {
				return fmt.Errorf("%s.%s: min %d exceeds max %d", t.ID, f.Name, f.Min, f.Max)
			}
		case FieldDropdown:
			if len(f.Options) == 0 {
				return fmt.Errorf("%s.%s: dropdown needs options", t.ID, f.Name)
			}
		case FieldText, FieldStatementInput:
		case FieldValueInput:
			if f.Check == "" {
				return fmt.Errorf("%s.%s: value input needs a check kind", t.ID, f.Name)
			}
		default:
			return fmt.Errorf("%s.%s: invalid field kind %q", t.ID, f.Name, f.Kind)
		}
		if f.Default != nil {
			if err := f.Validate(f.Default); err != nil {
				return fmt.Errorf("%s: default: %w", t.ID, err)
			}
		}
	}
	if t.Kind == BlockCustom && len(t.Code) == 0 {
		return fmt.Errorf("%s: custom block types need at least one code template", t.ID)
	}
	return nil
}
