package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("")
	assert.Equal(t, "b1", g.Generate())
	assert.Equal(t, "b2", g.Generate())

	g.Reset()
	assert.Equal(t, "b1", g.Generate())
}

func TestSequenceGenerator_Prefix(t *testing.T) {
	g := NewSequenceGenerator("blk-")
	assert.Equal(t, "blk-1", g.Generate())
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	g := NewSequenceGenerator("x")
	var wg sync.WaitGroup
	seen := sync.Map{}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, loaded := seen.LoadOrStore(g.Generate(), true)
			assert.False(t, loaded, "duplicate id")
		}()
	}
	wg.Wait()
}
