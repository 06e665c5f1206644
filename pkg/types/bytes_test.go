package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesString(t *testing.T) {
	assert.Equal(t, "0 B", Bytes(0).String())
	assert.Equal(t, "512 B", Bytes(512).String())
	assert.Equal(t, "1.00 KiB", Bytes(1024).String())
	assert.Equal(t, "16.00 MiB", Bytes(16<<20).String())
	assert.Equal(t, "2.50 GiB", Bytes(5<<29).String())
}

func TestBytesUnits(t *testing.T) {
	assert.InDelta(t, 1.0, Bytes(1024).KiB(), 1e-12)
	assert.InDelta(t, 16.0, Bytes(16<<20).MiB(), 1e-12)
}

func TestParseBytes(t *testing.T) {
	t.Run("plain_count", func(t *testing.T) {
		b, err := ParseBytes("4096")
		require.NoError(t, err)
		assert.Equal(t, Bytes(4096), b)
	})

	t.Run("suffixes", func(t *testing.T) {
		for input, want := range map[string]Bytes{
			"64KiB":  64 << 10,
			"16MiB":  16 << 20,
			"1GiB":   1 << 30,
			"16mib":  16 << 20,
			"16Mi":   16 << 20,
			"2.5MiB": 5 << 19,
			" 8KiB ": 8 << 10,
		} {
			b, err := ParseBytes(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, b, "input %q", input)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, input := range []string{"", "MiB", "x16MiB", "-4KiB", "lots"} {
			_, err := ParseBytes(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}
