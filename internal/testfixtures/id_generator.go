package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out deterministic "prefix-N" identifiers, standing in
// for the UUID generator the server wires in production.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

// NewIDGenerator returns a generator for the given prefix; an empty prefix
// becomes "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence, starting at prefix-1.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// NextFunc exposes Next as an injectable function.
func (g *IDGenerator) NextFunc() func() string {
	return g.Next
}

// Reset restarts the sequence at prefix-1.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.n = 0
	g.mu.Unlock()
}
