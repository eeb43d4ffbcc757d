package catalog

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/blockc/internal/ir"
)

// CompileBlockType parses a CUE value into a custom BlockType.
//
// The value is the block struct itself, labelled with the type id:
//
//	block: servo_write: {
//		category: "motion"
//		shape:    "statement"
//		fields: [
//			{name: "PIN", kind: "number", min: 0, max: 40, default: 9},
//			{name: "ANGLE", kind: "value", check: "number"},
//		]
//		code: arduino:     "servo.write({ANGLE});"
//		includes: arduino: ["#include <Servo.h>"]
//	}
func CompileBlockType(v cue.Value) (*BlockType, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &BlockType{Kind: BlockCustom}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.ID = labels[len(labels)-1].String()
	}

	var err error
	if t.Category, err = optionalString(v, "category", "custom"); err != nil {
		return nil, err
	}

	shape, err := requiredString(v, "shape")
	if err != nil {
		return nil, err
	}
	t.Shape = Shape(shape)
	if t.Shape != ShapeStatement && t.Shape != ShapeValue {
		return nil, &CompileError{
			Field:   "shape",
			Message: fmt.Sprintf("custom blocks must be \"statement\" or \"value\", got %q", shape),
			Pos:     v.LookupPath(cue.ParsePath("shape")).Pos(),
		}
	}

	if t.Shape == ShapeValue {
		out, err := optionalString(v, "output", string(ValueAny))
		if err != nil {
			return nil, err
		}
		t.Output = ValueKind(out)
		if t.Order, err = optionalString(v, "order", "none"); err != nil {
			return nil, err
		}
	}

	if t.Fields, err = parseFields(v); err != nil {
		return nil, err
	}

	codeVal := v.LookupPath(cue.ParsePath("code"))
	if !codeVal.Exists() {
		return nil, &CompileError{Field: "code", Message: "code templates are required", Pos: v.Pos()}
	}
	if t.Code, err = parseStringMap(codeVal); err != nil {
		return nil, err
	}
	if len(t.Code) == 0 {
		return nil, &CompileError{Field: "code", Message: "at least one target template is required", Pos: codeVal.Pos()}
	}

	incVal := v.LookupPath(cue.ParsePath("includes"))
	if incVal.Exists() {
		if t.Includes, err = parseIncludes(incVal); err != nil {
			return nil, err
		}
	}

	if err := t.validate(); err != nil {
		return nil, &CompileError{Field: "block", Message: err.Error(), Pos: v.Pos()}
	}
	return t, nil
}

// parseFields reads the ordered field schema.
func parseFields(v cue.Value) ([]FieldSpec, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}
	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []FieldSpec
	for iter.Next() {
		fv := iter.Value()
		f := FieldSpec{}
		if f.Name, err = requiredString(fv, "name"); err != nil {
			return nil, err
		}
		kind, err := requiredString(fv, "kind")
		if err != nil {
			return nil, err
		}
		f.Kind = FieldKind(kind)

		minVal := fv.LookupPath(cue.ParsePath("min"))
		maxVal := fv.LookupPath(cue.ParsePath("max"))
		if minVal.Exists() || maxVal.Exists() {
			f.Bounded = true
			if f.Min, err = int64Of(minVal); err != nil {
				return nil, err
			}
			if f.Max, err = int64Of(maxVal); err != nil {
				return nil, err
			}
		}

		optsVal := fv.LookupPath(cue.ParsePath("options"))
		if optsVal.Exists() {
			optIter, err := optsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for optIter.Next() {
				s, err := optIter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				f.Options = append(f.Options, s)
			}
		}

		check, err := optionalString(fv, "check", "")
		if err != nil {
			return nil, err
		}
		f.Check = ValueKind(check)

		defVal := fv.LookupPath(cue.ParsePath("default"))
		if defVal.Exists() {
			if f.Default, err = scalarOf(defVal); err != nil {
				return nil, err
			}
		}

		fields = append(fields, f)
	}
	return fields, nil
}

func parseStringMap(v cue.Value) (map[string]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := make(map[string]string)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out[iter.Label()] = s
	}
	return out, nil
}

func parseIncludes(v cue.Value) (map[string][]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := make(map[string][]string)
	for iter.Next() {
		lines, err := iter.Value().List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		target := iter.Label()
		for lines.Next() {
			s, err := lines.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			out[target] = append(out[target], s)
		}
	}
	return out, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field, def string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func int64Of(v cue.Value) (int64, error) {
	if !v.Exists() {
		return 0, nil
	}
	n, err := v.Int64()
	if err != nil {
		return 0, &CompileError{Field: "type", Message: "bounds must be integers", Pos: v.Pos()}
	}
	return n, nil
}

// scalarOf converts a concrete CUE scalar into a field value.
// Floats are rejected: block numbers are integers.
func scalarOf(v cue.Value) (ir.IRValue, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{Field: "default", Message: "float defaults are forbidden - use int instead", Pos: v.Pos()}
	default:
		return nil, &CompileError{
			Field:   "default",
			Message: fmt.Sprintf("unsupported default kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// LoadDir loads every `block` definition from the CUE package in dir.
// Definitions are returned in declaration order.
func LoadDir(dir string) ([]BlockType, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("blocks directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileAll(value)
}

// CompileAll compiles every field under the top-level `block` struct.
func CompileAll(root cue.Value) ([]BlockType, error) {
	blocksVal := root.LookupPath(cue.ParsePath("block"))
	if !blocksVal.Exists() {
		return nil, nil
	}
	iter, err := blocksVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []BlockType
	for iter.Next() {
		t, err := CompileBlockType(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// CompileError is a block definition error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}

// RegisterDir loads the block definitions in dir and registers each one.
// It returns the number registered before the first failure.
func (c *Catalog) RegisterDir(dir string) (int, error) {
	types, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	for i, t := range types {
		if err := c.Register(t); err != nil {
			return i, fmt.Errorf("%s: %w", dir, err)
		}
	}
	return len(types), nil
}
