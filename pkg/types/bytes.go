package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Bytes is a uint64 wrapper representing a size in bytes.
type Bytes uint64

var units = []struct {
	suffix string
	value  Bytes
}{
	{"TiB", 1 << 40},
	{"GiB", 1 << 30},
	{"MiB", 1 << 20},
	{"KiB", 1 << 10},
}

// String returns a human-readable size with an automatic binary unit.
func (b Bytes) String() string {
	for _, u := range units {
		if b >= u.value {
			return fmt.Sprintf("%.2f %s", float64(b)/float64(u.value), u.suffix)
		}
	}
	return fmt.Sprintf("%d B", uint64(b))
}

// KiB returns the number of kibibytes.
func (b Bytes) KiB() float64 { return float64(b) / (1 << 10) }

// MiB returns the number of mebibytes.
func (b Bytes) MiB() float64 { return float64(b) / (1 << 20) }

// ParseBytes parses a size such as "16MiB", "64KiB" or a plain byte count.
// Suffix matching is case-insensitive and tolerates the final "B" being
// omitted ("16Mi").
func ParseBytes(s string) (Bytes, error) {
	trimmed := strings.TrimSpace(s)
	for _, u := range units {
		for _, suffix := range []string{u.suffix, strings.TrimSuffix(u.suffix, "B")} {
			if len(trimmed) > len(suffix) && strings.EqualFold(trimmed[len(trimmed)-len(suffix):], suffix) {
				n, err := strconv.ParseFloat(strings.TrimSpace(trimmed[:len(trimmed)-len(suffix)]), 64)
				if err != nil || n < 0 {
					return 0, fmt.Errorf("types: invalid size %q", s)
				}
				return Bytes(n * float64(u.value)), nil
			}
		}
	}
	n, err := strconv.ParseUint(strings.TrimSuffix(trimmed, "B"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("types: invalid size %q", s)
	}
	return Bytes(n), nil
}
