package signal

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/scat/pkg/probe"
)

func TestSamplesToLengths(t *testing.T) {
	t.Run("identity_encoding", func(t *testing.T) {
		got := SamplesToLengths([]Sample{1, 1, 0, 0, 0, 1}, 0)
		assert.Equal(t, []Run{
			{Value: 1, Length: 2, Start: 0},
			{Value: 0, Length: 3, Start: 2},
			{Value: 1, Length: 1, Start: 5},
		}, got)
	})

	t.Run("noise_suppression", func(t *testing.T) {
		got := SamplesToLengths([]Sample{1, 1, 1, 0, 1, 1, 1}, 2)
		assert.Equal(t, []Run{{Value: 1, Length: 7, Start: 0}}, got)
	})

	t.Run("empty_input", func(t *testing.T) {
		assert.Empty(t, SamplesToLengths(nil, 0))
		assert.Empty(t, SamplesToLengths([]Sample{}, 3))
	})

	t.Run("single_sample", func(t *testing.T) {
		assert.Equal(t, []Run{{Value: 5, Length: 1, Start: 0}},
			SamplesToLengths([]Sample{5}, 0))
	})
}

func TestLengthsToSamples(t *testing.T) {
	got := LengthsToSamples([]Run{
		{Value: 1, Length: 2, Start: 0},
		{Value: 0, Length: 3, Start: 2},
	})
	assert.Equal(t, []Sample{1, 1, 0, 0, 0}, got)
	assert.Empty(t, LengthsToSamples(nil))
}

func TestRoundTripLaws(t *testing.T) {
	streams := [][]Sample{
		{1, 1, 0, 0, 0, 1},
		{0},
		{3, 3, 3},
		{1, 0, 1, 0, 1},
		{-1, -1, 0, 4, 4, 4, -1},
	}

	for _, v := range streams {
		t.Run("rle_expand_is_identity", func(t *testing.T) {
			assert.Equal(t, v, LengthsToSamples(SamplesToLengths(v, 0)))
		})
		t.Run("low_pass_zero_is_identity", func(t *testing.T) {
			assert.Equal(t, v, LowPass(v, 0))
		})
	}
}

func TestLowPass(t *testing.T) {
	// A one-sample glitch inside a long run disappears at freq 1.
	got := LowPass([]Sample{0, 0, 0, 1, 0, 0, 0}, 1)
	assert.Equal(t, []Sample{0, 0, 0, 0, 0, 0, 0}, got)
}

func TestThresholdSamples(t *testing.T) {
	t.Run("balanced_split", func(t *testing.T) {
		samples := []Sample{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
		got := ThresholdSamples(samples, 1)
		assert.Equal(t, []Sample{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1}, got)
	})

	t.Run("outputs_only_zero_and_high", func(t *testing.T) {
		samples := []Sample{7, 2, 0, 15, 4, 4, 9, 1, 12, 3}
		for _, v := range ThresholdSamples(slices.Clone(samples), 5) {
			assert.Contains(t, []Sample{0, 5}, v)
		}
	})

	t.Run("chosen_threshold_minimizes_imbalance", func(t *testing.T) {
		samples := []Sample{7, 2, 0, 15, 4, 4, 9, 1, 12, 3}
		got := ThresholdSamples(slices.Clone(samples), 1)

		ones := 0
		for _, v := range got {
			if v == 1 {
				ones++
			}
		}
		bestDifference := len(samples)
		for threshold := Sample(1); threshold < 16; threshold++ {
			count := 0
			for _, v := range samples {
				if v >= threshold {
					count++
				}
			}
			difference := 2*count - len(samples)
			if difference < 0 {
				difference = -difference
			}
			if difference < bestDifference {
				bestDifference = difference
			}
		}
		difference := 2*ones - len(samples)
		if difference < 0 {
			difference = -difference
		}
		assert.Equal(t, bestDifference, difference)
	})
}

func TestRepeat(t *testing.T) {
	v := []Sample{1, 0, 1}
	assert.Equal(t, v, Repeat(v, 1))
	assert.Len(t, Repeat(v, 4), len(v)*4)
	assert.Equal(t, []Sample{1, 0, 1, 1, 0, 1}, Repeat(v, 2))
	assert.Empty(t, Repeat(v, 0))
}

// fakeSources feeds canned streams to FindFirst.
type fakeSources struct {
	streams [][]Sample
}

func (f *fakeSources) Channels() []probe.Channel {
	channels := make([]probe.Channel, len(f.streams))
	for i := range channels {
		channels[i] = probe.Channel(i)
	}
	return channels
}

func (f *fakeSources) ReadChannel(channel probe.Channel) []Sample {
	return slices.Clone(f.streams[channel])
}

// encodeBits expands a 0/1 bit pattern into a sample stream at perBit
// samples per bit, with ones carried at the given amplitude.
func encodeBits(bits []Sample, perBit int, amplitude Sample) []Sample {
	var out []Sample
	for _, bit := range bits {
		value := Sample(0)
		if bit == 1 {
			value = amplitude
		}
		for i := 0; i < perBit; i++ {
			out = append(out, value)
		}
	}
	return out
}

func preamblePattern() []Sample {
	return []Sample{1, 0, 1, 0, 1, 1, 1, 0, 0, 0}
}

func TestFindFirstAndDecode(t *testing.T) {
	const perBit = 50

	payload := []Sample{
		1, 0,
		1, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0,
	}

	var stream []Sample
	stream = append(stream, make([]Sample, 1000)...) // silence before the lock
	stream = append(stream, encodeBits(Repeat(preamblePattern(), 3), perBit, 9)...)
	stream = append(stream, encodeBits(payload, perBit, 9)...)
	stream = append(stream, make([]Sample, 100)...)

	sources := &fakeSources{streams: [][]Sample{
		make([]Sample, 2000), // a silent decoy channel
		stream,
	}}

	known := Repeat(preamblePattern(), 3)
	sig := FindFirst(known, sources)
	require.NotNil(t, sig)

	assert.Equal(t, perBit, sig.OneTimestep)
	assert.Equal(t, perBit, sig.ZeroTimestep)
	assert.Equal(t, len(SamplesToLengths(known, 0)), sig.End-sig.Start)

	decoded := DecodeBinary(sig, len(payload))
	require.Len(t, decoded, len(payload))
	for i, bit := range decoded {
		assert.Equal(t, payload[i] == 1, bit, "bit %d", i)
	}
}

func TestFindFirstNoMatch(t *testing.T) {
	t.Run("silent_channels", func(t *testing.T) {
		sources := &fakeSources{streams: [][]Sample{make([]Sample, 3000)}}
		assert.Nil(t, FindFirst(Repeat(preamblePattern(), 3), sources))
	})

	t.Run("pattern_without_both_symbols", func(t *testing.T) {
		sources := &fakeSources{streams: [][]Sample{make([]Sample, 3000)}}
		assert.Nil(t, FindFirst([]Sample{1, 1, 1, 1}, sources))
		assert.Nil(t, FindFirst([]Sample{0, 0, 0, 0}, sources))
	})

	t.Run("no_channels", func(t *testing.T) {
		sources := &fakeSources{}
		assert.Nil(t, FindFirst(Repeat(preamblePattern(), 3), sources))
	})
}

func TestDecodeBinary(t *testing.T) {
	t.Run("short_stream_yields_fewer_bits", func(t *testing.T) {
		sig := &Signal{
			End:          0,
			Data:         []Run{{Value: 1, Length: 100, Start: 0}},
			OneTimestep:  50,
			ZeroTimestep: 50,
		}
		assert.Equal(t, []bool{true, true}, DecodeBinary(sig, 10))
	})

	t.Run("caps_at_requested_bits", func(t *testing.T) {
		sig := &Signal{
			End:          0,
			Data:         []Run{{Value: 0, Length: 500, Start: 0}},
			OneTimestep:  50,
			ZeroTimestep: 50,
		}
		assert.Len(t, DecodeBinary(sig, 3), 3)
	})

	t.Run("empty_data", func(t *testing.T) {
		sig := &Signal{OneTimestep: 1, ZeroTimestep: 1}
		assert.Empty(t, DecodeBinary(sig, 4))
	})
}
