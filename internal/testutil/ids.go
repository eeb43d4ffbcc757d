package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator produces predictable block ids for tests.
//
// Ids are prefix + a counter starting at 1: "b1", "b2", ... for the default
// prefix. The same test with a fresh SequenceGenerator yields byte-identical
// serialized workspaces and compiled programs.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequenceGenerator creates a generator. An empty prefix means "b".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "b"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%d", g.prefix, g.seq)
}

// Reset restarts the sequence. The next Generate returns prefix + "1".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
