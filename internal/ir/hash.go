package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainWorkspace = "blockc/workspace/v1"
	DomainSource    = "blockc/source/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// WorkspaceHash identifies a serialized (canonical) workspace tree.
func WorkspaceHash(canonicalTree []byte) string {
	return hashWithDomain(DomainWorkspace, canonicalTree)
}

// SourceHash identifies generated source text.
// Two compiles of the same workspace for the same target and device yield
// the same SourceHash.
func SourceHash(source string) string {
	return hashWithDomain(DomainSource, []byte(source))
}
