package probe

import (
	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/timer"
)

// Sample is one probe observation: a count of evicted elements during one
// timeslot, or MissedTimeslot.
type Sample = int16

// MissedTimeslot marks a slot whose probe could not complete within its
// budget, usually because the thread was preempted.
const MissedTimeslot Sample = -1

// Reader produces per-channel sample streams at a fixed cadence. One
// Sample covers one slot of SlotLength ticks.
type Reader struct {
	// SampleCount samples per ReadChannel call.
	SampleCount int

	// SlotLength is the timeslot duration in ticks.
	SlotLength timer.Ticks

	// Threshold is the per-element eviction boundary in ticks.
	Threshold timer.Ticks
}

// NewReader returns a Reader with the default cadence.
func NewReader() *Reader {
	return &Reader{
		SampleCount: 10000,
		SlotLength:  3000,
		Threshold:   130,
	}
}

// probe counts the elements of set evicted since the previous slot, then
// busy-waits until the end of the timeslot. It returns MissedTimeslot if
// the slot was already gone on entry or if the walk overran it.
func (r *Reader) probe(st *State, set []Address, reverse bool, slotStart timer.Ticks, ch *chain.Chain) Sample {
	var count Sample
	timeStart := st.Timer.Ticks(ch)
	timeEnd := timeStart

	// The previous probe may have overrun and consumed our slot.
	if timer.Delta(st.Timer, slotStart, timeEnd) > r.SlotLength {
		return MissedTimeslot
	}

	for i := 0; i < len(set); i++ {
		index := i
		if reverse {
			index = len(set) - 1 - i
		}
		st.Backend.AccessElement(set[index], ch)
		timeEnd = st.Timer.Ticks(ch)

		if timer.Delta(st.Timer, timeStart, timeEnd) >= r.Threshold {
			count++
		}
		timeStart = timeEnd
	}

	// An interrupt during the walk invalidates the count.
	if timer.Delta(st.Timer, slotStart, timeEnd) > r.SlotLength {
		return MissedTimeslot
	}

	for timer.Delta(st.Timer, slotStart, timeEnd) < r.SlotLength {
		timeEnd = st.Timer.Ticks(ch)
	}

	return count
}

// ReadChannel produces SampleCount samples for one channel.
//
// Consecutive slots alternate forward and reverse walks. An imperfect
// eviction set can evict its own members; walking in one fixed order lets
// each newly accessed element evict another in a chain, which artificially
// inflates the count. Alternating the direction averages that bias out.
func (r *Reader) ReadChannel(st *State, channel Channel, ch *chain.Chain) []Sample {
	samples := make([]Sample, 0, r.SampleCount)
	set := st.Sets[channel]

	iterations := r.SampleCount / 2
	oddSampleCount := r.SampleCount%2 == 1

	slotStart := st.Timer.Ticks(ch)
	for i := 0; i < iterations; i++ {
		samples = append(samples, r.probe(st, set, false, slotStart, ch))
		slotStart += r.SlotLength

		samples = append(samples, r.probe(st, set, true, slotStart, ch))
		slotStart += r.SlotLength
	}
	if oddSampleCount {
		samples = append(samples, r.probe(st, set, false, slotStart, ch))
	}

	return samples
}

// ReadChannels probes each requested channel in sequence and returns one
// sample stream per channel, in argument order.
func (r *Reader) ReadChannels(st *State, channels []Channel, ch *chain.Chain) [][]Sample {
	samples := make([][]Sample, 0, len(channels))
	for _, channel := range channels {
		samples = append(samples, r.ReadChannel(st, channel, ch))
	}
	return samples
}
