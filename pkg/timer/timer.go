// Package timer reads monotonic high-resolution tick counters and converts
// tick intervals to and from wall time.
//
// The preferred source on x86 is RDTSCP, which serializes against all prior
// loads before reading the timestamp counter. Monotonic is the portable
// fallback and the deterministic seat for tests.
package timer

import (
	"time"

	"github.com/ja7ad/scat/pkg/chain"
)

// Ticks is an unsigned cycle count. Only differences between two readings
// of the same Cycle are meaningful.
type Ticks uint64

// Cycle reads a monotonic tick counter.
type Cycle interface {
	// Ticks returns the current counter value, ordered after loads issued
	// through ch.
	Ticks(ch *chain.Chain) Ticks

	// Wrap returns the mask applied to tick differences. Narrow counters
	// wrap, but because measured intervals are at most a few thousand
	// ticks, unsigned subtraction modulo the counter width stays correct.
	Wrap() Ticks
}

// Delta returns end-start modulo the counter width of c.
func Delta(c Cycle, start, end Ticks) Ticks {
	return (end - start) & c.Wrap()
}

var epoch = time.Now()

// Monotonic counts wall-clock nanoseconds. It has none of the serialization
// guarantees of a cycle counter and exists for platforms without one, and
// for tests.
type Monotonic struct{}

func (Monotonic) Ticks(ch *chain.Chain) Ticks {
	_ = ch
	return Ticks(time.Since(epoch))
}

func (Monotonic) Wrap() Ticks { return ^Ticks(0) }
