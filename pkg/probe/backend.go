package probe

import (
	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/system/mem"
	"github.com/ja7ad/scat/pkg/types"
)

// Address is an opaque handle for a cache-line-aligned location inside the
// probe buffer, expressed as a byte offset from the arena base.
type Address uint32

// Channel is a dense zero-based index identifying one eviction set.
type Channel int

const (
	// CacheLineSize is the hardware line size. Two Addresses closer than
	// this map to the same line.
	CacheLineSize = 64

	// PageSize is the virtual page size. Two Addresses a multiple of this
	// apart map to the same cache set modulo the page-coloring bits.
	PageSize = 4096

	// EvictionSetSize is the target size of a discovered eviction set.
	EvictionSetSize = 16

	// DefaultBufferSize is the default probe buffer size.
	DefaultBufferSize types.Bytes = 16 << 20
)

// AddressBackend is the capability the evicter, builder and reader need
// from the memory owner.
type AddressBackend interface {
	// AccessElement performs one chain-tracked read of the word at addr.
	AccessElement(addr Address, ch *chain.Chain)

	// Elements returns the candidate addresses, one per page. Callers must
	// not mutate the returned slice.
	Elements() []Address

	// ExtendElements expands one discovered minimal set into all congruent
	// sibling sets by cache-line offset.
	ExtendElements(set []Address) [][]Address
}

// Cache owns the probe buffer and exposes it as Addresses.
type Cache struct {
	arena    *mem.Arena
	elements []Address
}

// NewCache allocates a pinned buffer of the given size (rounded up to a
// whole number of pages; zero selects DefaultBufferSize) and derives one
// candidate Address per page.
func NewCache(size types.Bytes) (*Cache, error) {
	if size == 0 {
		size = DefaultBufferSize
	}
	if r := size % PageSize; r != 0 {
		size += PageSize - r
	}

	arena, err := mem.NewArena(size)
	if err != nil {
		return nil, err
	}

	// Nonzero payloads so the chained reads cannot be constant folded.
	for offset := uintptr(0); offset < uintptr(size); offset += CacheLineSize {
		*arena.Word(offset) = uint32(offset/CacheLineSize) + 1
	}

	elements := make([]Address, 0, size/PageSize)
	for offset := Address(0); offset < Address(size); offset += PageSize {
		elements = append(elements, offset)
	}

	return &Cache{arena: arena, elements: elements}, nil
}

func (c *Cache) AccessElement(addr Address, ch *chain.Chain) {
	ch.Read(c.arena.Word(uintptr(addr)))
}

func (c *Cache) Elements() []Address { return c.elements }

// ExtendElements shifts the set by every cache-line offset within a page.
// Discovering one conflicting group at a page boundary yields the 63
// sibling sets for free, because the line-offset bits feed the cache-set
// index directly.
func (c *Cache) ExtendElements(set []Address) [][]Address {
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

// Size returns the buffer size in bytes.
func (c *Cache) Size() types.Bytes { return c.arena.Size() }

// Pinned reports whether the buffer is locked into RAM.
func (c *Cache) Pinned() bool { return c.arena.Locked() }

// Close releases the underlying arena.
func (c *Cache) Close() error { return c.arena.Close() }
