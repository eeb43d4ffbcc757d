package profile

import "fmt"

type machineBoard struct {
	name    string
	motors  motorPins
	buttons [2]int
}

var machineBoards = map[string]machineBoard{
	"esp32":       {name: "ESP32 (MicroPython)", motors: motorPins{25, 26, 27, 14}, buttons: [2]int{0, 35}},
	"pico":        {name: "Raspberry Pi Pico", motors: motorPins{16, 17, 18, 19}, buttons: [2]int{14, 15}},
	DeviceGeneric: {name: "Generic MicroPython", motors: motorPins{16, 17, 18, 19}, buttons: [2]int{14, 15}},
}

// buttonState holds the last level seen per pin so button_event can report presses once.
const buttonState = "_button_state"

func pyDef(sig string, body ...string) []string {
	return append([]string{"def " + sig + ":"}, indentLines("    ", body...)...)
}

func micropythonProfile(device string) *Profile {
	if device == "microbit" {
		return microbitProfile()
	}
	return machineProfile(machineBoards[device])
}

// machineProfile targets boards exposing the standard machine module.
func machineProfile(b machineBoard) *Profile {
	m := b.motors
	drive := func(name string, leftLevel, rightLevel int) Procedure {
		return Procedure{Name: name, Definition: pyDef(name+"(speed)",
			fmt.Sprintf("Pin(%d, Pin.OUT).value(%d)", m.leftDir, leftLevel),
			fmt.Sprintf("Pin(%d, Pin.OUT).value(%d)", m.rightDir, rightLevel),
			fmt.Sprintf("PWM(Pin(%d)).duty_u16(min(max(speed, 0), 255) * 257)", m.leftSpeed),
			fmt.Sprintf("PWM(Pin(%d)).duty_u16(min(max(speed, 0), 255) * 257)", m.rightSpeed),
		)}
	}
	button := Procedure{Name: "button_pressed", Definition: pyDef("button_pressed(pin)",
		"return Pin(pin, Pin.IN, Pin.PULL_UP).value() == 0",
	)}
	event := Procedure{Name: "button_event", Definition: append([]string{buttonState + " = {}"},
		pyDef("button_event(pin)",
			"now = Pin(pin, Pin.IN, Pin.PULL_UP).value() == 0",
			"fired = now and not "+buttonState+".get(pin, False)",
			buttonState+"[pin] = now",
			"return fired",
		)...)}

	return &Profile{
		Name:     b.name,
		Preamble: []string{"from machine import Pin, PWM, ADC", "import time"},
		Procedures: map[Primitive]Procedure{
			PrimDigitalWrite: {Name: "digital_write", Definition: pyDef("digital_write(pin, level)",
				"Pin(pin, Pin.OUT).value(level)",
			)},
			PrimAnalogWrite: {Name: "analog_write", Definition: pyDef("analog_write(pin, value)",
				"PWM(Pin(pin)).duty_u16(min(max(value, 0), 255) * 257)",
			)},
			PrimDigitalRead: {Name: "digital_read", Definition: pyDef("digital_read(pin)",
				"return Pin(pin, Pin.IN).value() == 1",
			)},
			PrimAnalogRead: {Name: "analog_read", Definition: pyDef("analog_read(pin)",
				"return ADC(Pin(pin)).read_u16() >> 6",
			)},
			PrimButtonPressed: button,
			PrimButtonEvent:   event,
			PrimMotorForward:  drive("motor_forward", 1, 1),
			PrimMotorBackward: drive("motor_backward", 0, 0),
			PrimTurnLeft:      drive("turn_left", 0, 1),
			PrimTurnRight:     drive("turn_right", 1, 0),
			PrimMotorStop: {Name: "motor_stop", Definition: pyDef("motor_stop()",
				fmt.Sprintf("PWM(Pin(%d)).duty_u16(0)", m.leftSpeed),
				fmt.Sprintf("PWM(Pin(%d)).duty_u16(0)", m.rightSpeed),
			)},
			PrimShowText:    {Name: "print"},
			PrimSerialPrint: {Name: "print"},
			PrimSleep:       {Name: "time.sleep_ms"},
		},
		Buttons: map[string]string{
			"A": fmt.Sprint(b.buttons[0]),
			"B": fmt.Sprint(b.buttons[1]),
		},
		Reserved: []string{buttonState},
	}
}

func microbitProfile() *Profile {
	pin := `getattr(microbit, "pin" + str(pin))`
	drive := func(name string, leftLevel, rightLevel int) Procedure {
		return Procedure{Name: name, Definition: pyDef(name+"(speed)",
			fmt.Sprintf("pin8.write_digital(%d)", leftLevel),
			fmt.Sprintf("pin12.write_digital(%d)", rightLevel),
			"pin1.write_analog(min(max(speed, 0), 255) * 4)",
			"pin2.write_analog(min(max(speed, 0), 255) * 4)",
		)}
	}
	return &Profile{
		Name:     "BBC micro:bit",
		Preamble: []string{"from microbit import *", "import microbit"},
		Procedures: map[Primitive]Procedure{
			PrimDigitalWrite: {Name: "digital_write", Definition: pyDef("digital_write(pin, level)",
				pin+".write_digital(level)",
			)},
			PrimAnalogWrite: {Name: "analog_write", Definition: pyDef("analog_write(pin, value)",
				pin+".write_analog(min(max(value, 0), 255) * 4)",
			)},
			PrimDigitalRead: {Name: "digital_read", Definition: pyDef("digital_read(pin)",
				"return "+pin+".read_digital() == 1",
			)},
			PrimAnalogRead: {Name: "analog_read", Definition: pyDef("analog_read(pin)",
				"return "+pin+".read_analog()",
			)},
			PrimButtonPressed: {Name: "button_pressed", Definition: pyDef("button_pressed(button)",
				"return button.is_pressed()",
			)},
			PrimButtonEvent: {Name: "button_event", Definition: pyDef("button_event(button)",
				"return button.was_pressed()",
			)},
			PrimMotorForward:  drive("motor_forward", 1, 1),
			PrimMotorBackward: drive("motor_backward", 0, 0),
			PrimTurnLeft:      drive("turn_left", 0, 1),
			PrimTurnRight:     drive("turn_right", 1, 0),
			PrimMotorStop: {Name: "motor_stop", Definition: pyDef("motor_stop()",
				"pin1.write_analog(0)",
				"pin2.write_analog(0)",
			)},
			PrimShowText: {Name: "show_text", Definition: pyDef("show_text(value)",
				"display.scroll(str(value))",
			)},
			PrimSerialPrint: {Name: "print"},
			PrimSleep:       {Name: "sleep"},
		},
		Buttons:  map[string]string{"A": "button_a", "B": "button_b"},
		Reserved: microbitReserved(),
	}
}

// microbitReserved lists what "from microbit import *" brings into scope.
func microbitReserved() []string {
	names := []string{
		"Image", "Sound", "SoundEvent", "accelerometer", "compass", "display",
		"microphone", "speaker", "audio", "music", "pin_logo", "pin_speaker",
		"running_time", "temperature", "panic", "reset", "set_volume",
	}
	for i := 0; i <= 20; i++ {
		names = append(names, fmt.Sprintf("pin%d", i))
	}
	return names
}
