// Package profile holds the device runtime profiles.
//
// A Profile is keyed by (target, device) and supplies everything the
// emitter needs that depends on the hardware: the preamble, one-time setup
// lines, the procedures that lower primitives such as "move forward" to raw
// pin and peripheral operations, the button bindings and the idle delay
// appended to each scheduling-loop iteration.
//
// Lookup is a pure function. An unrecognized device falls back to the
// target's generic profile, which only uses operations every board in the
// family provides. Every profile binds every primitive.
package profile
