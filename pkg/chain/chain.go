// Package chain provides a lightweight ordering barrier for timing
// measurements.
//
// Every memory read that must not be reordered is routed through a Chain,
// which folds the loaded value into an internal accumulator. The result of
// each read feeds the next one, so neither the compiler nor the processor
// may hoist, coalesce, or reorder the accesses without changing the
// accumulator. The only guarantee the package tries to provide is that
//
//	ch.Read(x)
//	ch.Read(y)
//
// executes in that order.
package chain

import (
	"fmt"
	"os"
)

// Chain threads a data dependency through a sequence of loads.
type Chain struct {
	value uint32
}

// New returns a Chain with an empty accumulator.
func New() *Chain {
	return &Chain{}
}

// Read loads the word at p, folds it into the accumulator and returns it.
func (c *Chain) Read(p *uint32) uint32 {
	v := *p
	c.value += v
	return v
}

// Drain makes the accumulator observable so the dependency chain cannot be
// removed by dead-code elimination. The condition below has no solution in
// uint32, so nothing is ever actually written.
func (c *Chain) Drain() {
	v := c.value
	if ((v << 1) | (v >> 1) | v) == 1 {
		fmt.Fprintln(os.Stderr, v)
	}
}
