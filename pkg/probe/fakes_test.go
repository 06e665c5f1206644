package probe

import (
	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/timer"
)

// fakeBackend exposes one candidate per page without owning any memory.
type fakeBackend struct {
	pages    int
	record   bool
	accesses []Address
}

func (f *fakeBackend) Elements() []Address {
	elements := make([]Address, f.pages)
	for i := range elements {
		elements[i] = Address(i * PageSize)
	}
	return elements
}

func (f *fakeBackend) AccessElement(addr Address, ch *chain.Chain) {
	if f.record {
		f.accesses = append(f.accesses, addr)
	}
}

func (f *fakeBackend) ExtendElements(set []Address) [][]Address {
	extended := make([][]Address, 0, PageSize/CacheLineSize)
	for offset := Address(0); offset < PageSize; offset += CacheLineSize {
		sibling := make([]Address, len(set))
		for i, addr := range set {
			sibling[i] = addr + offset
		}
		extended = append(extended, sibling)
	}
	return extended
}

// simOracle models an idealized set-associative cache: an address maps to
// set (page % groups), and a candidate set evicts a witness once it holds
// at least ways congruent members.
type simOracle struct {
	groups int
	ways   int
}

func (o *simOracle) setOf(addr Address) int {
	return int(addr/PageSize) % o.groups
}

func (o *simOracle) SetEvicts(set []Address, witness Address, ch *chain.Chain) bool {
	target := o.setOf(witness)
	congruent := 0
	for _, addr := range set {
		if o.setOf(addr) == target {
			congruent++
		}
	}
	return congruent >= o.ways
}

// neverOracle refuses every set.
type neverOracle struct{}

func (neverOracle) SetEvicts(set []Address, witness Address, ch *chain.Chain) bool {
	return false
}

// stepCycle advances a fixed amount per reading.
type stepCycle struct {
	step timer.Ticks
	now  timer.Ticks
}

func (s *stepCycle) Ticks(ch *chain.Chain) timer.Ticks {
	s.now += s.step
	return s.now
}

func (s *stepCycle) Wrap() timer.Ticks { return ^timer.Ticks(0) }

// measureCycle scripts the interval closed by every second reading, so
// each evict-and-time measurement sees a chosen delta.
type measureCycle struct {
	deltas []timer.Ticks
	calls  int
	now    timer.Ticks
}

func (m *measureCycle) Ticks(ch *chain.Chain) timer.Ticks {
	if m.calls%2 == 1 {
		m.now += m.deltas[(m.calls/2)%len(m.deltas)]
	} else {
		m.now++
	}
	m.calls++
	return m.now
}

func (m *measureCycle) Wrap() timer.Ticks { return ^timer.Ticks(0) }
