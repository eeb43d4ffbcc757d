package profile

import "fmt"

// motorPins wires a two-channel H-bridge: a PWM pin and a direction pin per side.
type motorPins struct {
	leftSpeed, leftDir   int
	rightSpeed, rightDir int
}

type arduinoBoard struct {
	name    string
	baud    int
	motors  motorPins
	buttons [2]int
}

var arduinoBoards = map[string]arduinoBoard{
	"arduino_uno": {name: "Arduino Uno", baud: 9600, motors: motorPins{5, 4, 6, 7}, buttons: [2]int{2, 3}},
	"esp32":       {name: "ESP32 (Arduino core)", baud: 115200, motors: motorPins{25, 26, 27, 14}, buttons: [2]int{0, 35}},
	DeviceGeneric: {name: "Generic Arduino", baud: 9600, motors: motorPins{5, 4, 6, 7}, buttons: [2]int{2, 3}},
}

func arduinoProfile(device string) *Profile {
	b := arduinoBoards[device]
	in := "  "
	fn := func(sig string, body ...string) []string {
		lines := []string{sig + " {"}
		lines = append(lines, indentLines(in, body...)...)
		return append(lines, "}")
	}
	drive := func(name, leftLevel, rightLevel string) Procedure {
		m := b.motors
		return Procedure{Name: name, Definition: fn("void "+name+"(int speed)",
			fmt.Sprintf("pinMode(%d, OUTPUT);", m.leftDir),
			fmt.Sprintf("pinMode(%d, OUTPUT);", m.rightDir),
			fmt.Sprintf("digitalWrite(%d, %s);", m.leftDir, leftLevel),
			fmt.Sprintf("digitalWrite(%d, %s);", m.rightDir, rightLevel),
			fmt.Sprintf("analogWrite(%d, constrain(speed, 0, 255));", m.leftSpeed),
			fmt.Sprintf("analogWrite(%d, constrain(speed, 0, 255));", m.rightSpeed),
		)}
	}
	button := Procedure{Name: "bc_button_pressed", Definition: fn("bool bc_button_pressed(int pin)",
		"pinMode(pin, INPUT_PULLUP);",
		"return digitalRead(pin) == LOW;",
	)}
	// Fires once per press: true only when the pin goes from released to pressed.
	event := Procedure{Name: "bc_button_event", Definition: fn("bool bc_button_event(int pin)",
		"static bool held[64];",
		"pinMode(pin, INPUT_PULLUP);",
		"bool now = digitalRead(pin) == LOW;",
		"bool fired = now && !held[pin];",
		"held[pin] = now;",
		"return fired;",
	)}

	return &Profile{
		Name:  b.name,
		Setup: []string{fmt.Sprintf("Serial.begin(%d);", b.baud)},
		Procedures: map[Primitive]Procedure{
			PrimDigitalWrite: {Name: "bc_digital_write", Definition: fn("void bc_digital_write(int pin, int level)",
				"pinMode(pin, OUTPUT);",
				"digitalWrite(pin, level);",
			)},
			PrimAnalogWrite: {Name: "bc_analog_write", Definition: fn("void bc_analog_write(int pin, long value)",
				"pinMode(pin, OUTPUT);",
				"analogWrite(pin, constrain(value, 0, 255));",
			)},
			PrimDigitalRead: {Name: "bc_digital_read", Definition: fn("bool bc_digital_read(int pin)",
				"pinMode(pin, INPUT);",
				"return digitalRead(pin) == HIGH;",
			)},
			PrimAnalogRead:    {Name: "analogRead"},
			PrimButtonPressed: button,
			PrimButtonEvent:   event,
			PrimMotorForward:  drive("bc_motor_forward", "HIGH", "HIGH"),
			PrimMotorBackward: drive("bc_motor_backward", "LOW", "LOW"),
			PrimTurnLeft:      drive("bc_turn_left", "LOW", "HIGH"),
			PrimTurnRight:     drive("bc_turn_right", "HIGH", "LOW"),
			PrimMotorStop: {Name: "bc_motor_stop", Definition: fn("void bc_motor_stop()",
				fmt.Sprintf("analogWrite(%d, 0);", b.motors.leftSpeed),
				fmt.Sprintf("analogWrite(%d, 0);", b.motors.rightSpeed),
			)},
			// No display on these boards; text goes to the serial console.
			PrimShowText:    {Name: "Serial.println"},
			PrimSerialPrint: {Name: "Serial.println"},
			PrimSleep:       {Name: "delay"},
		},
		Buttons: map[string]string{
			"A": fmt.Sprint(b.buttons[0]),
			"B": fmt.Sprint(b.buttons[1]),
		},
		Reserved: arduinoReserved(),
	}
}

// arduinoReserved lists the core's pin macros and globals.
func arduinoReserved() []string {
	return []string{
		"LED_BUILTIN", "A0", "A1", "A2", "A3", "A4", "A5", "A6", "A7",
		"tone", "noTone", "micros", "delayMicroseconds", "pulseIn", "map", "abs",
		"min", "max", "random", "randomSeed", "attachInterrupt", "detachInterrupt",
		"PI", "CHANGE", "RISING", "FALLING",
	}
}
