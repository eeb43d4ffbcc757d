package ir

// Version constants for the persisted tree form and the compiler.
const (
	// TreeVersion is the serialized workspace tree schema version.
	TreeVersion = "1"

	// CompilerVersion is the blockc compiler version.
	CompilerVersion = "0.1.0"
)
