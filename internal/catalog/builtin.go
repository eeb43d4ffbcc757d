package catalog

import "github.com/roach88/blockc/internal/ir"

// Slot and field names shared by builtin types and their generators.
const (
	InputCond  = "COND"
	InputDo    = "DO"
	InputElse  = "ELSE"
	InputTimes = "TIMES"
	InputMS    = "MS"
	InputValue = "VALUE"
	InputText  = "TEXT"
	InputA     = "A"
	InputB     = "B"
	InputBool  = "BOOL"

	FieldPin    = "PIN"
	FieldLevel  = "LEVEL"
	FieldSpeed  = "SPEED"
	FieldButton = "BUTTON"
	FieldVar    = "VAR"
	FieldNum    = "NUM"
	FieldOp     = "OP"
	FieldString = "TEXT"
	FieldBool   = "BOOL"
)

// Pins are bounded by the largest GPIO number across supported boards.
const maxPin = 40

func pinField() FieldSpec {
	return FieldSpec{Name: FieldPin, Kind: FieldNumber, Bounded: true, Min: 0, Max: maxPin, Default: ir.IRInt(13)}
}

func speedField() FieldSpec {
	return FieldSpec{Name: FieldSpeed, Kind: FieldNumber, Bounded: true, Min: 0, Max: 255, Default: ir.IRInt(200)}
}

func buttonField() FieldSpec {
	return FieldSpec{Name: FieldButton, Kind: FieldDropdown, Options: []string{"A", "B"}, Default: ir.IRString("A")}
}

func valueInput(name string, check ValueKind) FieldSpec {
	return FieldSpec{Name: name, Kind: FieldValueInput, Check: check}
}

func statementInput(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: FieldStatementInput}
}

func dropdown(name string, def string, options ...string) FieldSpec {
	return FieldSpec{Name: name, Kind: FieldDropdown, Options: options, Default: ir.IRString(def)}
}

func statement(kind BlockKind, category string, fields ...FieldSpec) BlockType {
	return BlockType{ID: kind.String(), Kind: kind, Category: category, Shape: ShapeStatement, Fields: fields}
}

func value(kind BlockKind, category string, out ValueKind, fields ...FieldSpec) BlockType {
	return BlockType{ID: kind.String(), Kind: kind, Category: category, Shape: ShapeValue, Output: out, Fields: fields}
}

func event(kind BlockKind, trigger Trigger, fields ...FieldSpec) BlockType {
	return BlockType{ID: kind.String(), Kind: kind, Category: "events", Shape: ShapeEvent, Trigger: trigger, Fields: fields}
}

// builtinTypes returns the builtin definitions in catalog order.
func builtinTypes() []BlockType {
	return []BlockType{
		event(BlockOnStart, TriggerStartup),
		event(BlockOnButton, TriggerConditional, buttonField()),
		event(BlockOnCondition, TriggerConditional, valueInput(InputCond, ValueBoolean)),

		statement(BlockIf, "control",
			valueInput(InputCond, ValueBoolean), statementInput(InputDo), statementInput(InputElse)),
		statement(BlockRepeat, "control", valueInput(InputTimes, ValueNumber), statementInput(InputDo)),
		statement(BlockWhile, "control", valueInput(InputCond, ValueBoolean), statementInput(InputDo)),
		statement(BlockWait, "control", valueInput(InputMS, ValueNumber)),

		statement(BlockSetOutput, "pins", pinField(), dropdown(FieldLevel, "ON", "ON", "OFF")),
		statement(BlockAnalogWrite, "pins", pinField(), valueInput(InputValue, ValueNumber)),
		statement(BlockSerialPrint, "output", valueInput(InputText, ValueAny)),
		statement(BlockDisplayText, "output", valueInput(InputText, ValueAny)),

		statement(BlockMoveForward, "motion", speedField()),
		statement(BlockMoveBackward, "motion", speedField()),
		statement(BlockTurnLeft, "motion", speedField()),
		statement(BlockTurnRight, "motion", speedField()),
		statement(BlockStopMotors, "motion"),

		statement(BlockVariableSet, "variables",
			FieldSpec{Name: FieldVar, Kind: FieldText, Default: ir.IRString("item")}, valueInput(InputValue, ValueAny)),
		value(BlockVariableGet, "variables", ValueAny,
			FieldSpec{Name: FieldVar, Kind: FieldText, Default: ir.IRString("item")}),

		value(BlockDigitalRead, "pins", ValueBoolean, pinField()),
		value(BlockAnalogRead, "pins", ValueNumber, pinField()),
		value(BlockButtonPressed, "input", ValueBoolean, buttonField()),

		value(BlockNumber, "math", ValueNumber, FieldSpec{Name: FieldNum, Kind: FieldNumber, Default: ir.IRInt(0)}),
		value(BlockArithmetic, "math", ValueNumber,
			dropdown(FieldOp, "ADD", "ADD", "MINUS", "MULTIPLY", "DIVIDE", "MODULO", "POWER"),
			valueInput(InputA, ValueNumber), valueInput(InputB, ValueNumber)),
		value(BlockCompare, "logic", ValueBoolean,
			dropdown(FieldOp, "EQ", "EQ", "NEQ", "LT", "LTE", "GT", "GTE"),
			valueInput(InputA, ValueAny), valueInput(InputB, ValueAny)),
		value(BlockLogicOperation, "logic", ValueBoolean,
			dropdown(FieldOp, "AND", "AND", "OR"),
			valueInput(InputA, ValueBoolean), valueInput(InputB, ValueBoolean)),
		value(BlockLogicNegate, "logic", ValueBoolean, valueInput(InputBool, ValueBoolean)),
		value(BlockBoolean, "logic", ValueBoolean, dropdown(FieldBool, "TRUE", "TRUE", "FALSE")),
		value(BlockText, "text", ValueString, FieldSpec{Name: FieldString, Kind: FieldText, Default: ir.IRString("")}),
	}
}

// Builtin returns a new catalog holding every builtin block type.
func Builtin() *Catalog {
	c := New()
	for _, t := range builtinTypes() {
		if err := c.Register(t); err != nil {
			// Builtin definitions are static; failure is a programming error.
			panic(err)
		}
	}
	return c
}
