// Package emitter turns a workspace into source text for one target and device.
//
// An Emitter is built from an immutable Context and owns its generator
// table for that (target, device). Builtin block kinds are generated by a
// closed switch per target language; custom catalog types go through a
// per-emitter runtime table seeded from their code templates.
//
// Value generators return an Expr: the code and its precedence tier. The
// consumer asks for the tier of the slot it substitutes into and the
// expression is parenthesized when needed, so operator nesting is preserved
// without redundant parentheses around atoms.
//
// Output is deterministic: the same workspace, target and device always
// produce byte-identical source.
package emitter
