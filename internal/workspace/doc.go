// Package workspace holds the assembled block program.
//
// A Workspace is an arena: a flat table of block instances keyed by id,
// linked by id through three edge kinds:
//   - next: the statement chain (singly linked, acyclic)
//   - statement inputs: the first instance of a nested chain
//   - value inputs: a single value-producing instance
//
// Every mutation is validated against the catalog before anything changes,
// so a failed Insert, Attach or SetField leaves the workspace exactly as it
// was. Deleting an instance tombstones it and detaches its inputs into
// top-level orphans; tombstones are reclaimed only by Compact.
//
// Top-level roots keep insertion order. The emitter relies on that order to
// place conditional triggers, so it is part of the contract.
package workspace
