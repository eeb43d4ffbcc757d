package profile

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Target ids.
const (
	TargetArduino     = "arduino"
	TargetMicroPython = "micropython"
)

// DeviceGeneric is the fallback device of every target.
const DeviceGeneric = "generic"

// DefaultIdleDelayMS bounds the scheduling-loop rate.
const DefaultIdleDelayMS = 10

// Primitive names a hardware operation the emitter lowers through a profile.
type Primitive int

// Declaration order is the order procedure definitions are emitted in.
const (
	PrimDigitalWrite Primitive = iota
	PrimAnalogWrite
	PrimDigitalRead
	PrimAnalogRead
	PrimButtonPressed
	PrimButtonEvent
	PrimMotorForward
	PrimMotorBackward
	PrimTurnLeft
	PrimTurnRight
	PrimMotorStop
	PrimShowText
	PrimSerialPrint
	PrimSleep

	primitiveCount
)

var primitiveNames = [primitiveCount]string{
	"digital_write", "analog_write", "digital_read", "analog_read",
	"button_pressed", "button_event",
	"motor_forward", "motor_backward", "turn_left", "turn_right", "motor_stop",
	"show_text", "serial_print", "sleep",
}

func (p Primitive) String() string {
	if p < 0 || p >= primitiveCount {
		return "invalid"
	}
	return primitiveNames[p]
}

// Primitives returns every primitive in emission order.
func Primitives() []Primitive {
	out := make([]Primitive, primitiveCount)
	for i := range out {
		out[i] = Primitive(i)
	}
	return out
}

// Procedure binds a primitive to a callable name.
type Procedure struct {
	// Name is called as Name(args...).
	Name string

	// Definition is emitted once, before setup, when the primitive is used.
	// Empty means Name is provided by the platform.
	Definition []string
}

// Target describes a target language.
type Target struct {
	ID        string
	Extension string
	Indent    string
	Comment   string
}

// Profile is the runtime scaffold for one (target, device).
type Profile struct {
	Target Target
	Device string
	Name   string

	// Requested is the device id asked for, before alias resolution.
	Requested string
	fallback  bool

	Preamble []string
	Setup    []string

	Procedures map[Primitive]Procedure

	// Buttons maps button names to the argument passed to the button
	// primitives.
	Buttons map[string]string

	// Reserved are platform names the scaffold relies on. User variables
	// must not shadow them.
	Reserved []string

	IdleDelayMS int
}

// Fallback reports whether Lookup substituted the generic profile for an
// unrecognized device.
func (p *Profile) Fallback() bool {
	return p.fallback
}

// Procedure returns the binding of a primitive.
func (p *Profile) Procedure(prim Primitive) Procedure {
	return p.Procedures[prim]
}

type family struct {
	target  Target
	devices []string
	aliases map[string]string
	build   func(device string) *Profile
}

var families = []family{
	{
		target:  Target{ID: TargetArduino, Extension: ".ino", Indent: "  ", Comment: "//"},
		devices: []string{"arduino_uno", "esp32", DeviceGeneric},
		aliases: map[string]string{"arduino": "arduino_uno", "uno": "arduino_uno"},
		build:   arduinoProfile,
	},
	{
		target:  Target{ID: TargetMicroPython, Extension: ".py", Indent: "    ", Comment: "#"},
		devices: []string{"microbit", "esp32", "pico", DeviceGeneric},
		aliases: map[string]string{
			"micro:bit":         "microbit",
			"micro_bit":         "microbit",
			"raspberry_pi_pico": "pico",
			"rp2040":            "pico",
		},
		build: micropythonProfile,
	},
}

// Targets returns the supported target ids.
func Targets() []string {
	out := make([]string, len(families))
	for i, f := range families {
		out[i] = f.target.ID
	}
	return out
}

// LookupTarget returns the descriptor of a target.
func LookupTarget(target string) (Target, error) {
	f, err := findFamily(target)
	if err != nil {
		return Target{}, err
	}
	return f.target, nil
}

// Devices returns the device ids a target supports, generic last.
func Devices(target string) ([]string, error) {
	f, err := findFamily(target)
	if err != nil {
		return nil, err
	}
	return slices.Clone(f.devices), nil
}

// Lookup returns a fresh profile for (target, device). Device ids are
// matched case-insensitively and through aliases; an unknown device yields
// the generic profile and Fallback reports true.
func Lookup(target, device string) (*Profile, error) {
	f, err := findFamily(target)
	if err != nil {
		return nil, err
	}
	id := normalize(device)
	if alias, ok := f.aliases[id]; ok {
		id = alias
	}
	known := true
	switch {
	case id == "":
		id = DeviceGeneric
	case !slices.Contains(f.devices, id):
		id = DeviceGeneric
		known = false
	}
	p := f.build(id)
	p.Target = f.target
	p.Device = id
	p.Requested = device
	p.fallback = !known
	if p.IdleDelayMS == 0 {
		p.IdleDelayMS = DefaultIdleDelayMS
	}
	return p, nil
}

func findFamily(target string) (*family, error) {
	id := normalize(target)
	for i := range families {
		if families[i].target.ID == id {
			return &families[i], nil
		}
	}
	return nil, &TargetError{Target: target}
}

func normalize(id string) string {
	return cases.Fold().String(strings.TrimSpace(id))
}

// indentLines prefixes each body line with one indent level.
func indentLines(indent string, lines ...string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = indent + l
	}
	return out
}
