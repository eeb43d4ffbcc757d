package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/testutil"
	"github.com/roach88/blockc/internal/workspace"
)

type fields = map[string]ir.IRValue

func newWS(cat *catalog.Catalog) *workspace.Workspace {
	if cat == nil {
		cat = catalog.Builtin()
	}
	return workspace.New(cat, workspace.WithIDGenerator(testutil.NewSequenceGenerator("b")))
}

func add(t *testing.T, w *workspace.Workspace, typ string, slot workspace.Slot, f fields) string {
	t.Helper()
	id, err := w.Insert(workspace.Instance{Type: typ, Fields: f}, slot)
	require.NoError(t, err)
	return id
}

func compile(t *testing.T, w *workspace.Workspace, target, device string) *Result {
	t.Helper()
	res, err := Compile(Context{Target: target, Device: device}, w)
	require.NoError(t, err)
	return res
}

// blinkOnce is on_start -> set_output(13, ON).
func blinkOnce(t *testing.T) *workspace.Workspace {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	add(t, w, "set_output", workspace.NextOf(start), fields{"PIN": ir.IRInt(13), "LEVEL": ir.IRString("ON")})
	return w
}

func TestCompile_ArduinoStartupProgram(t *testing.T) {
	res := compile(t, blinkOnce(t), "arduino", "arduino_uno")

	want := `// Generated by blockc 0.1.0 for arduino/arduino_uno (Arduino Uno)

void bc_digital_write(int pin, int level) {
  pinMode(pin, OUTPUT);
  digitalWrite(pin, level);
}

void setup() {
  Serial.begin(9600);
  bc_digital_write(13, HIGH);
}

void loop() {
  delay(10);
}
`
	assert.Equal(t, want, res.Source)
	assert.Equal(t, "arduino", res.Target)
	assert.Equal(t, "arduino_uno", res.Device)
	assert.Equal(t, ".ino", res.Extension)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, ir.SourceHash(want), res.Hash)
}

func TestCompile_MicrobitStartupProgram(t *testing.T) {
	res := compile(t, blinkOnce(t), "micropython", "microbit")

	want := `# Generated by blockc 0.1.0 for micropython/microbit (BBC micro:bit)

from microbit import *
import microbit

def digital_write(pin, level):
    getattr(microbit, "pin" + str(pin)).write_digital(level)

digital_write(13, 1)

while True:
    sleep(10)
`
	assert.Equal(t, want, res.Source)
}

func TestCompile_StartupRegionAndSingleLoop(t *testing.T) {
	for _, tc := range []struct{ target, device, setupOpen, loopOpen, call string }{
		{"arduino", "esp32", "void setup() {", "void loop() {", "bc_digital_write(13, HIGH);"},
		{"micropython", "pico", "", "while True:", "digital_write(13, 1)"},
	} {
		t.Run(tc.target, func(t *testing.T) {
			src := compile(t, blinkOnce(t), tc.target, tc.device).Source
			require.Equal(t, 1, strings.Count(src, tc.loopOpen), "exactly one scheduling loop")

			loopAt := strings.Index(src, tc.loopOpen)
			callAt := strings.Index(src, tc.call)
			require.NotEqual(t, -1, callAt)
			assert.Less(t, callAt, loopAt, "startup code precedes the loop")
			if tc.setupOpen != "" {
				assert.Less(t, strings.Index(src, tc.setupOpen), callAt)
			}
			assert.NotContains(t, src[loopAt:], "if ", "no conditional bodies in the loop")
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	w := blinkOnce(t)
	first := compile(t, w, "arduino", "esp32")
	second := compile(t, w, "arduino", "esp32")
	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, first.Hash, second.Hash)

	// Interleaving another target does not leak state.
	compile(t, w, "micropython", "microbit")
	third := compile(t, w, "arduino", "esp32")
	assert.Equal(t, first.Source, third.Source)
}

func TestCompile_StatementOrder(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	a := add(t, w, "move_forward", workspace.NextOf(start), fields{"SPEED": ir.IRInt(100)})
	b := add(t, w, "wait_ms", workspace.NextOf(a), nil)
	num := add(t, w, "math_number", workspace.InputOf(b, "MS"), fields{"NUM": ir.IRInt(500)})
	_ = num
	add(t, w, "stop_motors", workspace.NextOf(b), nil)

	src := compile(t, w, "arduino", "generic").Source
	assertInOrder(t, src,
		"  bc_motor_forward(100);\n  delay(500);\n  bc_motor_stop();\n")
}

func TestCompile_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		outer  string
		inner  string
		target string
		want   string
	}{
		{"sum in product", "MULTIPLY", "ADD", "arduino", "Serial.println((2 + 3) * 4);"},
		{"product in sum", "ADD", "MULTIPLY", "arduino", "Serial.println(2 * 3 + 4);"},
		{"sum in product py", "MULTIPLY", "ADD", "micropython", "print((2 + 3) * 4)"},
		{"power py", "POWER", "ADD", "micropython", "print((2 + 3) ** 4)"},
		{"power c", "POWER", "ADD", "arduino", "Serial.println((long)pow(2 + 3, 4));"},
		{"power in modulo c", "MODULO", "POWER", "arduino", "Serial.println((long)pow(2, 3) % 4);"},
		{"power in modulo py", "MODULO", "POWER", "micropython", "print(2 ** 3 % 4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWS(nil)
			start := add(t, w, "on_start", workspace.Top(), nil)
			p := add(t, w, "serial_print", workspace.NextOf(start), nil)
			outer := add(t, w, "math_arithmetic", workspace.InputOf(p, "TEXT"), fields{"OP": ir.IRString(tt.outer)})
			inner := add(t, w, "math_arithmetic", workspace.InputOf(outer, "A"), fields{"OP": ir.IRString(tt.inner)})
			add(t, w, "math_number", workspace.InputOf(inner, "A"), fields{"NUM": ir.IRInt(2)})
			add(t, w, "math_number", workspace.InputOf(inner, "B"), fields{"NUM": ir.IRInt(3)})
			add(t, w, "math_number", workspace.InputOf(outer, "B"), fields{"NUM": ir.IRInt(4)})

			assert.Contains(t, compile(t, w, tt.target, "generic").Source, tt.want)
		})
	}
}

func TestCompile_LiteralNotParenthesized(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	p := add(t, w, "serial_print", workspace.NextOf(start), nil)
	add(t, w, "math_number", workspace.InputOf(p, "TEXT"), fields{"NUM": ir.IRInt(7)})

	src := compile(t, w, "arduino", "generic").Source
	assert.Contains(t, src, "Serial.println(7);")
}

func TestCompile_NegativeLiteral(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	p := add(t, w, "serial_print", workspace.NextOf(start), nil)
	mul := add(t, w, "math_arithmetic", workspace.InputOf(p, "TEXT"), fields{"OP": ir.IRString("MINUS")})
	add(t, w, "math_number", workspace.InputOf(mul, "A"), fields{"NUM": ir.IRInt(1)})
	add(t, w, "math_number", workspace.InputOf(mul, "B"), fields{"NUM": ir.IRInt(-2)})

	assert.Contains(t, compile(t, w, "arduino", "generic").Source, "Serial.println(1 - -2);")
	assert.Contains(t, compile(t, w, "micropython", "generic").Source, "print(1 - -2)")
}

func TestCompile_Negation(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	iff := add(t, w, "controls_if", workspace.NextOf(start), nil)
	not := add(t, w, "logic_negate", workspace.InputOf(iff, "COND"), nil)
	and := add(t, w, "logic_operation", workspace.InputOf(not, "BOOL"), fields{"OP": ir.IRString("AND")})
	add(t, w, "logic_boolean", workspace.InputOf(and, "A"), nil)
	add(t, w, "button_pressed", workspace.InputOf(and, "B"), nil)

	assert.Contains(t, compile(t, w, "arduino", "generic").Source, "if (!(true && bc_button_pressed(2))) {")
	assert.Contains(t, compile(t, w, "micropython", "microbit").Source, "if not (True and button_pressed(button_a)):")
}

func TestCompile_EmptyInputDefaults(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	iff := add(t, w, "controls_if", workspace.NextOf(start), nil)
	wait := add(t, w, "wait_ms", workspace.NextOf(iff), nil)
	p := add(t, w, "serial_print", workspace.NextOf(wait), nil)
	cmp := add(t, w, "math_compare", workspace.InputOf(p, "TEXT"), nil)
	_ = cmp
	txt := add(t, w, "text", workspace.Top(), nil)
	_ = txt

	c := compile(t, w, "arduino", "generic").Source
	assert.Contains(t, c, "  if (false) {\n  }\n  delay(0);\n  Serial.println(0 == 0);\n")

	py := compile(t, w, "micropython", "generic").Source
	assert.Contains(t, py, "if False:\n    pass\ntime.sleep_ms(0)\nprint(0 == 0)\n")
}

func TestCompile_IfElse(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	iff := add(t, w, "controls_if", workspace.NextOf(start), nil)
	add(t, w, "digital_read", workspace.InputOf(iff, "COND"), fields{"PIN": ir.IRInt(4)})
	add(t, w, "turn_left", workspace.InputOf(iff, "DO"), nil)
	add(t, w, "turn_right", workspace.InputOf(iff, "ELSE"), nil)

	c := compile(t, w, "arduino", "generic").Source
	assert.Contains(t, c, "  if (bc_digital_read(4)) {\n    bc_turn_left(200);\n  } else {\n    bc_turn_right(200);\n  }\n")

	py := compile(t, w, "micropython", "generic").Source
	assert.Contains(t, py, "if digital_read(4):\n    turn_left(200)\nelse:\n    turn_right(200)\n")
}

func TestCompile_NestedRepeatCounters(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	outer := add(t, w, "controls_repeat", workspace.NextOf(start), nil)
	add(t, w, "math_number", workspace.InputOf(outer, "TIMES"), fields{"NUM": ir.IRInt(3)})
	inner := add(t, w, "controls_repeat", workspace.InputOf(outer, "DO"), nil)
	add(t, w, "math_number", workspace.InputOf(inner, "TIMES"), fields{"NUM": ir.IRInt(2)})
	add(t, w, "stop_motors", workspace.InputOf(inner, "DO"), nil)

	c := compile(t, w, "arduino", "generic").Source
	assert.Contains(t, c, "  for (long count = 0; count < 3; count++) {\n"+
		"    for (long count2 = 0; count2 < 2; count2++) {\n"+
		"      bc_motor_stop();\n"+
		"    }\n"+
		"  }\n")

	py := compile(t, w, "micropython", "generic").Source
	assert.Contains(t, py, "for count in range(3):\n    for count2 in range(2):\n        motor_stop()\n")
}

func TestCompile_Variables(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	set := add(t, w, "variables_set", workspace.NextOf(start), fields{"VAR": ir.IRString("my speed")})
	add(t, w, "math_number", workspace.InputOf(set, "VALUE"), fields{"NUM": ir.IRInt(5)})
	p := add(t, w, "serial_print", workspace.NextOf(set), nil)
	add(t, w, "variables_get", workspace.InputOf(p, "TEXT"), fields{"VAR": ir.IRString("my speed")})
	set2 := add(t, w, "variables_set", workspace.NextOf(p), fields{"VAR": ir.IRString("while")})
	_ = set2

	c := compile(t, w, "arduino", "generic").Source
	assert.Contains(t, c, "long my_speed = 0;\nlong while_2 = 0;\n")
	assert.Contains(t, c, "  my_speed = 5;\n  Serial.println(my_speed);\n  while_2 = 0;\n")

	py := compile(t, w, "micropython", "generic").Source
	assert.Contains(t, py, "my_speed = 0\nwhile_2 = 0\n")
}

func TestCompile_VariablesDeclaredInFirstUseOrder(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	zeta := add(t, w, "variables_set", workspace.NextOf(start), fields{"VAR": ir.IRString("zeta")})
	add(t, w, "variables_get", workspace.InputOf(zeta, "VALUE"), fields{"VAR": ir.IRString("mid")})
	add(t, w, "variables_set", workspace.NextOf(zeta), fields{"VAR": ir.IRString("alpha")})

	c := compile(t, w, "arduino", "generic").Source
	assert.Contains(t, c, "long zeta = 0;\nlong mid = 0;\nlong alpha = 0;\n")
}

func TestCompile_VariablesAvoidProfileNames(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	pin := add(t, w, "variables_set", workspace.NextOf(start), fields{"VAR": ir.IRString("pin8")})
	add(t, w, "variables_set", workspace.NextOf(pin), fields{"VAR": ir.IRString("A0")})

	mb := compile(t, w, "micropython", "microbit").Source
	assert.Contains(t, mb, "pin8_2 = 0\nA0 = 0\n")
	assert.NotContains(t, mb, "\npin8 = 0\n")

	uno := compile(t, w, "arduino", "arduino_uno").Source
	assert.Contains(t, uno, "long pin8 = 0;\nlong A0_2 = 0;\n")
	assert.Contains(t, uno, "  A0_2 = 0;\n")
}

func TestCompile_ConditionalTriggersInInsertionOrder(t *testing.T) {
	w := newWS(nil)
	btnA := add(t, w, "on_button", workspace.Top(), fields{"BUTTON": ir.IRString("A")})
	add(t, w, "move_forward", workspace.NextOf(btnA), nil)
	cond := add(t, w, "on_condition", workspace.Top(), nil)
	add(t, w, "analog_read", workspace.InputOf(cond, "COND"), nil)
	add(t, w, "stop_motors", workspace.NextOf(cond), nil)
	btnB := add(t, w, "on_button", workspace.Top(), fields{"BUTTON": ir.IRString("B")})
	add(t, w, "move_backward", workspace.NextOf(btnB), nil)

	c := compile(t, w, "arduino", "arduino_uno").Source
	assertInOrder(t, c,
		"void loop() {\n",
		"  if (bc_button_event(2)) {\n    bc_motor_forward(200);\n  }\n",
		"  if (analogRead(13)) {\n    bc_motor_stop();\n  }\n",
		"  if (bc_button_event(3)) {\n    bc_motor_backward(200);\n  }\n",
		"  delay(10);\n}\n",
	)
	assert.Equal(t, 1, strings.Count(c, "bool bc_button_event(int pin) {"), "shared procedure defined once")
	assert.Contains(t, c, "  static bool held[64];\n")

	machine := compile(t, w, "micropython", "pico").Source
	assert.Equal(t, 1, strings.Count(machine, "_button_state = {}\n"))
	assert.Contains(t, machine, "    fired = now and not _button_state.get(pin, False)\n")
	assert.Contains(t, machine, "    if button_event(14):\n")

	py := compile(t, w, "micropython", "microbit").Source
	assertInOrder(t, py,
		"while True:\n",
		"    if button_event(button_a):\n        motor_forward(200)\n",
		"    if analog_read(13):\n        motor_stop()\n",
		"    if button_event(button_b):\n        motor_backward(200)\n",
		"    sleep(10)\n",
	)
}

func TestCompile_ReorderingTriggersReordersOutput(t *testing.T) {
	w := newWS(nil)
	a := add(t, w, "on_button", workspace.Top(), fields{"BUTTON": ir.IRString("A")})
	add(t, w, "turn_left", workspace.NextOf(a), nil)
	b := add(t, w, "on_button", workspace.Top(), fields{"BUTTON": ir.IRString("B")})
	add(t, w, "turn_right", workspace.NextOf(b), nil)

	before := compile(t, w, "arduino", "generic").Source
	assert.Less(t, strings.Index(before, "bc_turn_left(200);"), strings.Index(before, "bc_turn_right(200);"))

	// Recreate A after B: it now comes second.
	require.NoError(t, w.Delete(a))
	a2 := add(t, w, "on_button", workspace.Top(), fields{"BUTTON": ir.IRString("A")})
	left := w.TopLevel()[0]
	require.NoError(t, w.Attach(left, workspace.NextOf(a2)))

	after := compile(t, w, "arduino", "generic").Source
	assert.Greater(t, strings.Index(after, "bc_turn_left(200);"), strings.Index(after, "bc_turn_right(200);"))
}

func TestCompile_OrphansWarnAndSkip(t *testing.T) {
	w := blinkOnce(t)
	orphan := add(t, w, "move_forward", workspace.Top(), nil)
	add(t, w, "math_number", workspace.Top(), nil)

	res := compile(t, w, "arduino", "generic")
	assert.NotContains(t, res.Source, "bc_motor_forward")
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], orphan)
	assert.Contains(t, res.Warnings[0], "move_forward")
}

func TestCompile_MultipleStartupTriggers(t *testing.T) {
	w := newWS(nil)
	s1 := add(t, w, "on_start", workspace.Top(), nil)
	add(t, w, "turn_left", workspace.NextOf(s1), nil)
	s2 := add(t, w, "on_start", workspace.Top(), nil)
	add(t, w, "turn_right", workspace.NextOf(s2), nil)

	res := compile(t, w, "arduino", "generic")
	assertInOrder(t, res.Source, "  bc_turn_left(200);\n", "  bc_turn_right(200);\n", "void loop() {")
	assert.Len(t, res.Warnings, 1)
}

func TestCompile_ProceduresOnlyWhenUsed(t *testing.T) {
	res := compile(t, blinkOnce(t), "arduino", "generic")
	assert.NotContains(t, res.Source, "bc_motor_forward")
	assert.NotContains(t, res.Source, "bc_button_pressed")
}

func TestCompile_FixedProcedureOrder(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	stop := add(t, w, "stop_motors", workspace.NextOf(start), nil)
	add(t, w, "set_output", workspace.NextOf(stop), nil)

	src := compile(t, w, "arduino", "generic").Source
	assertInOrder(t, src, "void bc_digital_write(", "void bc_motor_stop(", "void setup() {")
}

func TestCompile_UnknownDeviceFallsBack(t *testing.T) {
	res := compile(t, blinkOnce(t), "arduino", "mystery-board")
	assert.Equal(t, "generic", res.Device)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "mystery-board")
	assert.Contains(t, res.Source, "bc_digital_write(13, HIGH);")
}

func TestCompile_IdleDelayOverride(t *testing.T) {
	res, err := Compile(Context{Target: "micropython", Device: "pico", IdleDelayMS: 25}, blinkOnce(t))
	require.NoError(t, err)
	assert.Contains(t, res.Source, "    time.sleep_ms(25)\n")
}

func TestNew_UnknownTarget(t *testing.T) {
	_, err := New(Context{Target: "fortran"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTarget)
	var eerr *Error
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ErrCodeUnknownTarget, eerr.Code)
}

func TestCompile_EveryBuiltinKind(t *testing.T) {
	for _, kind := range catalog.BuiltinKinds() {
		for _, target := range []string{"arduino", "micropython"} {
			t.Run(kind.String()+"/"+target, func(t *testing.T) {
				cat := catalog.Builtin()
				bt, err := cat.Lookup(kind.String())
				require.NoError(t, err)

				w := newWS(cat)
				switch bt.Shape {
				case catalog.ShapeEvent:
					add(t, w, bt.ID, workspace.Top(), nil)
				case catalog.ShapeStatement:
					start := add(t, w, "on_start", workspace.Top(), nil)
					add(t, w, bt.ID, workspace.NextOf(start), nil)
				case catalog.ShapeValue:
					start := add(t, w, "on_start", workspace.Top(), nil)
					p := add(t, w, "serial_print", workspace.NextOf(start), nil)
					add(t, w, bt.ID, workspace.InputOf(p, "TEXT"), nil)
				}
				res, err := Compile(Context{Target: target, Device: "generic"}, w)
				require.NoError(t, err)
				assert.True(t, strings.HasSuffix(res.Source, "\n"))
			})
		}
	}
}

func assertInOrder(t *testing.T, src string, parts ...string) {
	t.Helper()
	at := 0
	for _, p := range parts {
		i := strings.Index(src[at:], p)
		require.NotEqual(t, -1, i, "missing or out of order: %q\nin:\n%s", p, src)
		at += i + len(p)
	}
}

func TestArduinoQuote_OctalEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{"say \"hi\"\\", `"say \"hi\"\\"`},
		{"a\nb\tc", `"a\nb\tc"`},
		{"\x01BEEF", `"\001BEEF"`},
		{"caf\u00e9", `"caf\303\251"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, arduino{}.quote(tt.in), "%q", tt.in)
	}
}

func TestCompile_TextLiteralEscapes(t *testing.T) {
	w := newWS(nil)
	start := add(t, w, "on_start", workspace.Top(), nil)
	p := add(t, w, "serial_print", workspace.NextOf(start), nil)
	add(t, w, "text", workspace.InputOf(p, "TEXT"), fields{"TEXT": ir.IRString("\x01BEEF")})

	assert.Contains(t, compile(t, w, "arduino", "generic").Source, `Serial.println("\001BEEF");`)
	assert.Contains(t, compile(t, w, "micropython", "generic").Source, `print("\x01BEEF")`)
}
