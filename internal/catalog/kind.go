package catalog

// BlockKind is the closed set of builtin block variants the emitter knows
// how to generate. BlockCustom marks runtime-registered types.
type BlockKind int

const (
	BlockCustom BlockKind = iota

	// Triggers
	BlockOnStart
	BlockOnButton
	BlockOnCondition

	// Control
	BlockIf
	BlockRepeat
	BlockWhile
	BlockWait

	// Pins and output
	BlockSetOutput
	BlockAnalogWrite
	BlockSerialPrint
	BlockDisplayText

	// Motion
	BlockMoveForward
	BlockMoveBackward
	BlockTurnLeft
	BlockTurnRight
	BlockStopMotors

	// Variables
	BlockVariableSet
	BlockVariableGet

	// Sensors
	BlockDigitalRead
	BlockAnalogRead
	BlockButtonPressed

	// Math, logic, text
	BlockNumber
	BlockArithmetic
	BlockCompare
	BlockLogicOperation
	BlockLogicNegate
	BlockBoolean
	BlockText

	blockKindCount
)

var kindNames = [...]string{
	BlockCustom:         "custom",
	BlockOnStart:        "on_start",
	BlockOnButton:       "on_button",
	BlockOnCondition:    "on_condition",
	BlockIf:             "controls_if",
	BlockRepeat:         "controls_repeat",
	BlockWhile:          "controls_while",
	BlockWait:           "wait_ms",
	BlockSetOutput:      "set_output",
	BlockAnalogWrite:    "analog_write",
	BlockSerialPrint:    "serial_print",
	BlockDisplayText:    "display_text",
	BlockMoveForward:    "move_forward",
	BlockMoveBackward:   "move_backward",
	BlockTurnLeft:       "turn_left",
	BlockTurnRight:      "turn_right",
	BlockStopMotors:     "stop_motors",
	BlockVariableSet:    "variables_set",
	BlockVariableGet:    "variables_get",
	BlockDigitalRead:    "digital_read",
	BlockAnalogRead:     "analog_read",
	BlockButtonPressed:  "button_pressed",
	BlockNumber:         "math_number",
	BlockArithmetic:     "math_arithmetic",
	BlockCompare:        "math_compare",
	BlockLogicOperation: "logic_operation",
	BlockLogicNegate:    "logic_negate",
	BlockBoolean:        "logic_boolean",
	BlockText:           "text",
}

// String returns the builtin type id for the kind.
func (k BlockKind) String() string {
	if k < 0 || k >= blockKindCount {
		return "invalid"
	}
	return kindNames[k]
}

// BuiltinKinds lists every builtin kind in declaration order.
func BuiltinKinds() []BlockKind {
	kinds := make([]BlockKind, 0, blockKindCount-1)
	for k := BlockOnStart; k < blockKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
