// Package catalog is the registry of block-type schemas.
//
// A BlockType's field schema is authoritative for how the emitter decodes
// arguments, and its connection shape is authoritative for what the
// workspace model permits plugging into it.
//
// Catalogs are plain values. Builtin returns a fresh catalog on every call;
// there is no process-wide registry, so two compiles never observe each
// other's custom types.
//
// Builtin block types carry a BlockKind from a closed enumeration that the
// emitter switches over. Types loaded at runtime (from CUE definitions) are
// BlockCustom and carry per-target code templates instead.
package catalog
