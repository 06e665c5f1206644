//go:build amd64

package timer

import "github.com/ja7ad/scat/pkg/chain"

// RDTSCP32 reads the low 32 bits of the timestamp counter. It wraps roughly
// every second on current hardware; see Cycle.Wrap for why that is fine.
type RDTSCP32 struct{}

func (RDTSCP32) Ticks(ch *chain.Chain) Ticks {
	_ = ch
	return Ticks(rdtscp32())
}

func (RDTSCP32) Wrap() Ticks { return 1<<32 - 1 }

// RDTSCP64 reads the full 64-bit timestamp counter.
type RDTSCP64 struct{}

func (RDTSCP64) Ticks(ch *chain.Chain) Ticks {
	_ = ch
	return Ticks(rdtscp64())
}

func (RDTSCP64) Wrap() Ticks { return ^Ticks(0) }

// Default returns the preferred cycle source for this platform.
func Default() Cycle { return RDTSCP32{} }

func rdtscp32() uint32
func rdtscp64() uint64
