// Package harness runs compile scenarios against the emitter and validator.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	target: arduino
//	device: arduino_uno
//	blocks_dir: blocks        # optional, relative to the scenario file
//	idle_delay_ms: 20         # optional
//	workspace:
//	  blocks:
//	    - {id: start, type: on_start, next: led}
//	    - {id: led, type: set_output, fields: {PIN: 13}}
//	assertions:
//	  - type: contains
//	    text: "digitalWrite"
//	  - type: valid
//
// The workspace key takes the YAML tree form accepted by
// workspace.DeserializeYAML. Blocks without an id get deterministic ids
// b1, b2, and so on.
//
// # Assertion Types
//
//   - contains: the program contains text
//   - not_contains: the program does not contain text
//   - order: each of texts appears, in that order
//   - count: text appears exactly count times
//   - warning: some compile warning contains text
//   - no_warnings: the compile produced no warnings
//   - valid: the validator reports no errors
//   - error: compilation fails with the given code
//
// # Golden Files
//
// RunWithGolden compares the generated program with
// testdata/scenarios/golden/{name}.golden through goldie. The CLI test
// command reads the same files: golden/{file}.golden beside each scenario.
package harness
