package probe

import (
	crand "crypto/rand"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/ja7ad/scat/pkg/chain"
)

// Builder discovers eviction sets through an expand/contract/collect
// search. It is polymorphic over the Oracle capability, so it can run
// against the real Evicter or a simulated one.
type Builder struct {
	// ContractCount bounds the shrink passes per attempt.
	ContractCount int

	// AttemptCount bounds consecutive failed attempts before giving up.
	AttemptCount int

	// SetSize is the target eviction set size. Results land in
	// [SetSize-1, SetSize+4].
	SetSize int

	rng *rand.Rand
}

// NewBuilder returns a Builder with the default parameters and a ChaCha8
// generator seeded from the operating system.
func NewBuilder() *Builder {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic(err)
	}
	return &Builder{
		ContractCount: 10,
		AttemptCount:  20,
		SetSize:       EvictionSetSize,
		rng:           rand.New(rand.NewChaCha8(seed)),
	}
}

// Build discovers as many eviction sets as the candidates support and
// extends each by cache-line offset. An empty result is a legal
// observation, not an error.
func (b *Builder) Build(oracle Oracle, backend AddressBackend, ch *chain.Chain) [][]Address {
	lower := b.SetSize - 1
	upper := b.SetSize + 4

	candidates := slices.Clone(backend.Elements())
	var sets [][]Address
	start := time.Now()

	for attempt := 1; attempt <= b.AttemptCount; attempt++ {
		// Need the eviction set plus a witness.
		if len(candidates) <= b.SetSize {
			break
		}

		// Why shuffle? Congruent elements are spread evenly across the
		// candidates, so an unshuffled scan touches most of them before an
		// eviction set closes. Why shuffle inside the loop? A one-shot
		// shuffle keeps presenting the same failing subsequence on every
		// retry.
		b.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		remaining, set, witness, ok := b.expand(oracle, candidates, ch)
		candidates = remaining
		if !ok {
			candidates = append(candidates, witness)
			candidates = append(candidates, set...)
			continue
		}

		for contract := 0; contract < b.ContractCount; contract++ {
			candidates, set = b.contract(oracle, candidates, set, witness, ch)
			// Stop once a pass leaves the set within the accepted size.
			if len(set) <= upper {
				break
			}
		}

		if len(set) < lower || len(set) > upper {
			candidates = append(candidates, witness)
			candidates = append(candidates, set...)
			continue
		}

		candidates = b.collect(oracle, candidates, set, ch)
		sets = append(sets, set)

		attempt = 0
	}

	var all [][]Address
	for _, set := range sets {
		all = append(all, backend.ExtendElements(set)...)
	}

	slog.Info("eviction sets constructed",
		"sets", len(all), "elapsed", time.Since(start))
	return all
}

// expand pops elements into a working set until the set evicts a fresh
// witness. It only finds *an* eviction set, usually padded with elements
// mapped to other cache sets; contract strips those.
func (b *Builder) expand(oracle Oracle, candidates []Address, ch *chain.Chain) (remaining, set []Address, witness Address, ok bool) {
	set = make([]Address, 0, b.SetSize*2)
	for i := 0; i < b.SetSize-1; i++ {
		set = append(set, candidates[len(candidates)-1])
		candidates = candidates[:len(candidates)-1]
	}

	// If the set grows this big without evicting anything, assume the
	// attempt is bad and bail out. With few candidates left the half-size
	// bailout fires constantly, so let small tails scan everything.
	bailout := len(candidates) / 2
	if bailout < b.SetSize*10 {
		bailout = len(candidates)
	}

	witness = candidates[len(candidates)-1]
	candidates = candidates[:len(candidates)-1]

	for len(candidates) > 0 && len(set) < bailout {
		set = append(set, witness)
		witness = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		if oracle.SetEvicts(set, witness, ch) {
			return candidates, set, witness, true
		}
	}

	return candidates, set, witness, false
}

// contract removes elements that do not contribute to the eviction.
// Redundant elements go back to the candidates; essential ones rotate to
// the front so the back-to-front walk terminates.
func (b *Builder) contract(oracle Oracle, candidates, set []Address, witness Address, ch *chain.Chain) ([]Address, []Address) {
	index := 0

	for len(set) > 0 {
		element := set[len(set)-1]
		set = set[:len(set)-1]

		if oracle.SetEvicts(set, witness, ch) {
			candidates = append(candidates, element)
		} else {
			if index >= len(set) {
				set = append(set, element)
				break
			}
			set = append(set, set[index])
			set[index] = element
			index++
		}
	}

	return candidates, set
}

// collect removes every remaining candidate congruent with the finished
// set, so no address can appear in two eviction sets.
func (b *Builder) collect(oracle Oracle, candidates, set []Address, ch *chain.Chain) []Address {
	i := 0
	for i < len(candidates) {
		if oracle.SetEvicts(set, candidates[i], ch) {
			candidates[i] = candidates[len(candidates)-1]
			candidates = candidates[:len(candidates)-1]
		} else {
			i++
		}
	}
	return candidates
}
