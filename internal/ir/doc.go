// Package ir provides the value types and canonical encoding shared by the
// block catalog, workspace model, emitter and store.
//
// This package imports nothing internal. Every other internal package may
// import ir; ir imports none of them.
//
// Key design constraints:
//   - NO float types anywhere - block field numbers are int64
//   - No null: an absent field is absent, never null
//   - Canonical JSON (RFC 8785 ordering, NFC strings) is the only
//     serialization used for hashing and persisted tree forms
package ir
