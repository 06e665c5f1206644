package signal

import (
	"math"

	"github.com/ja7ad/scat/pkg/probe"
)

// Run is one run-length entry: Length consecutive samples of Value,
// beginning at index Start of the raw stream.
type Run struct {
	Value  Sample
	Length int
	Start  int
}

// SamplesToLengths run-length encodes samples. A run of at most minimumGap
// samples is merged into the run before it, which suppresses noise spikes
// no longer than the gap.
func SamplesToLengths(samples []Sample, minimumGap int) []Run {
	if len(samples) == 0 {
		return nil
	}

	var output []Run
	index, length, start := 1, 1, 0
	value := samples[0]

	for index < len(samples) {
		if value != samples[index] {
			if length <= minimumGap && len(output) > 0 {
				prev := output[len(output)-1]
				value = prev.Value
				start = prev.Start
				length += prev.Length
				output = output[:len(output)-1]
			} else {
				output = append(output, Run{value, length, start})
				start = index
				length = 0
				value = samples[index]
			}
		}
		index++
		length++
	}

	return append(output, Run{value, length, start})
}

// LengthsToSamples expands run-length entries back into a sample stream.
func LengthsToSamples(lengths []Run) []Sample {
	var samples []Sample
	for _, run := range lengths {
		for i := 0; i < run.Length; i++ {
			samples = append(samples, run.Value)
		}
	}
	return samples
}

// LowPass merges runs of at most freq samples into the run before them.
func LowPass(samples []Sample, freq int) []Sample {
	return LengthsToSamples(SamplesToLengths(samples, freq))
}

// ThresholdSamples binarizes samples in place: the threshold in [1, 16)
// that best balances the ones and zeros is chosen, then every sample at or
// above it becomes high and the rest become 0. Returns samples.
func ThresholdSamples(samples []Sample, high Sample) []Sample {
	var optimal Sample
	best := math.MaxInt

	for threshold := Sample(1); threshold < 16; threshold++ {
		zero, one := 0, 0
		for _, v := range samples {
			if v >= threshold {
				one++
			} else {
				zero++
			}
		}

		difference := one - zero
		if difference < 0 {
			difference = -difference
		}
		if difference < best {
			best = difference
			optimal = threshold
		}
	}

	for i, v := range samples {
		if v >= optimal {
			samples[i] = high
		} else {
			samples[i] = 0
		}
	}
	return samples
}

// Signal is a located preamble: Start and End delimit the match within
// Data, and the timesteps are the estimated samples-per-bit for one and
// zero symbols.
type Signal struct {
	Start        int
	End          int
	Data         []Run
	OneTimestep  int
	ZeroTimestep int
}

// ChannelReader is the capability FindFirst needs from a source group.
type ChannelReader interface {
	Channels() []probe.Channel
	ReadChannel(channel probe.Channel) []Sample
}

// FindFirst scans every channel of sources for the known 0/1 pattern and
// returns the first window whose run lengths match it within 40% relative
// error, or nil when no channel carries the preamble.
func FindFirst(known []Sample, sources ChannelReader) *Signal {
	signalLengths := SamplesToLengths(known, 0)

	const minimumGap = 6

	zeroSum, oneSum := 0, 0
	for _, run := range signalLengths {
		if run.Value == 0 {
			zeroSum += run.Length
		} else {
			oneSum += run.Length
		}
	}
	// A pattern without both symbols has no timestep to estimate.
	if zeroSum == 0 || oneSum == 0 {
		return nil
	}

	for _, channel := range sources.Channels() {
		data := sources.ReadChannel(channel)
		data = ThresholdSamples(data, 1)
		lengths := SamplesToLengths(data, minimumGap)

		windowStart := 0
		windowEnd := len(signalLengths)

		for windowEnd < len(lengths) {
			zeroWindow, oneWindow := 0, 0
			for i := windowStart; i < windowEnd; i++ {
				if lengths[i].Value == 0 {
					zeroWindow += lengths[i].Length
				} else {
					oneWindow += lengths[i].Length
				}
			}

			oneTimestep := oneWindow / oneSum
			zeroTimestep := zeroWindow / zeroSum
			if oneTimestep == 0 || zeroTimestep == 0 {
				windowStart++
				windowEnd++
				continue
			}

			maxTolerance := 0.0
			for i := windowStart; i < windowEnd; i++ {
				timestep := oneTimestep
				if lengths[i].Value == 0 {
					timestep = zeroTimestep
				}

				expected := signalLengths[i-windowStart].Length * timestep
				actual := lengths[i].Length

				difference := expected - actual
				if difference < 0 {
					difference = -difference
				}
				tolerance := float64(difference) / float64(expected)
				if tolerance >= maxTolerance {
					maxTolerance = tolerance
				}
			}

			if maxTolerance <= 0.4 {
				return &Signal{
					Start:        windowStart,
					End:          windowEnd,
					Data:         lengths,
					OneTimestep:  oneTimestep,
					ZeroTimestep: zeroTimestep,
				}
			}

			windowStart++
			windowEnd++
		}
	}

	return nil
}

// DecodeBinary recovers up to bits booleans from the runs following the
// matched preamble, dividing each run by the matching timestep. A stream
// that ends early yields fewer bits.
func DecodeBinary(sig *Signal, bits int) []bool {
	var results []bool

	for index := sig.End; index < len(sig.Data); index++ {
		run := sig.Data[index]

		value := run.Value == 1
		timestep := sig.ZeroTimestep
		if value {
			timestep = sig.OneTimestep
		}
		if timestep == 0 {
			continue
		}

		count := int(math.Round(float64(run.Length) / float64(timestep)))
		for i := 0; i < count; i++ {
			results = append(results, value)
			if len(results) >= bits {
				return results
			}
		}
	}

	return results
}

// Repeat concatenates count copies of input.
func Repeat(input []Sample, count int) []Sample {
	output := make([]Sample, 0, len(input)*count)
	for i := 0; i < count; i++ {
		output = append(output, input...)
	}
	return output
}
