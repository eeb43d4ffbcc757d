// Package validator checks program source text without compiling it.
//
// Validation works on raw text only, so it applies to emitted and
// hand-edited source alike. Three passes run over the text:
//
//  1. Bracket balance, aware of string literals and comments. Exact:
//     findings are errors.
//  2. Indentation, for Python only. Findings are warnings.
//  3. Heuristics: missing statement terminators, assignment inside a
//     condition, and modules used without an import. Pattern based and
//     best effort; findings are warnings.
//
// Validate never panics on arbitrary input.
package validator
