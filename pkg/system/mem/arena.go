// Package mem provides the pinned, page-aligned arena that backs the probe
// buffer. The arena is allocated once, locked into RAM where the platform
// allows it, and released by Close. Addresses handed out against an arena
// stay valid for its whole lifetime because the single backing allocation is
// kept alive by the Arena itself.
package mem

import (
	"errors"
	"unsafe"

	"github.com/ja7ad/scat/pkg/types"
)

// ErrEmptyArena is returned when a zero-sized arena is requested.
var ErrEmptyArena = errors.New("mem: arena size must be > 0")

const pageSize = 4096

// Arena owns a page-aligned buffer.
type Arena struct {
	raw    []byte // keeps the base allocation alive
	buf    []byte // page-aligned view into raw
	locked bool
}

// NewArena allocates a page-aligned buffer of the given size and pins it
// with mlock where supported. A failed lock degrades to an unpinned arena,
// it does not abort.
func NewArena(size types.Bytes) (*Arena, error) {
	if size == 0 {
		return nil, ErrEmptyArena
	}

	raw := make([]byte, uint64(size)+pageSize)
	offset := 0
	if r := uintptr(unsafe.Pointer(&raw[0])) % pageSize; r != 0 {
		offset = int(pageSize - r)
	}

	a := &Arena{raw: raw, buf: raw[offset : offset+int(size)]}
	if err := lock(a.buf); err == nil {
		a.locked = true
	}
	return a, nil
}

// Size returns the usable arena size in bytes.
func (a *Arena) Size() types.Bytes { return types.Bytes(len(a.buf)) }

// Locked reports whether the arena is pinned into RAM.
func (a *Arena) Locked() bool { return a.locked }

// Base returns the aligned start of the arena.
func (a *Arena) Base() unsafe.Pointer { return unsafe.Pointer(&a.buf[0]) }

// Word returns the 32-bit word at the given byte offset. The offset must be
// word-aligned and inside the arena.
func (a *Arena) Word(offset uintptr) *uint32 {
	return (*uint32)(unsafe.Add(a.Base(), offset))
}

// Close unpins the arena. The memory itself is reclaimed by the collector
// once the Arena is unreachable.
func (a *Arena) Close() error {
	if !a.locked {
		return nil
	}
	a.locked = false
	return unlock(a.buf)
}
