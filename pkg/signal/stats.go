package signal

import "github.com/ja7ad/scat/pkg/probe"

// Stats keeps running totals over a stream of samples. Add folds in one
// batch; Summary reports the running view.
type Stats struct {
	samples int
	missed  int
	evicted int64
}

// Summary is a point-in-time view of a Stats accumulator.
type Summary struct {
	// Samples counts every observation, missed slots included.
	Samples int

	// Missed counts MissedTimeslot sentinels.
	Missed int

	// MissedRatio is Missed/Samples.
	MissedRatio float64

	// MeanEvictions is the average eviction count over completed slots.
	MeanEvictions float64
}

// Add folds one batch of samples into the accumulator.
func (s *Stats) Add(batch []Sample) {
	for _, v := range batch {
		s.samples++
		if v == probe.MissedTimeslot {
			s.missed++
			continue
		}
		s.evicted += int64(v)
	}
}

// Summary returns the running totals and averages.
func (s *Stats) Summary() Summary {
	summary := Summary{Samples: s.samples, Missed: s.missed}
	if completed := s.samples - s.missed; completed > 0 {
		summary.MeanEvictions = float64(s.evicted) / float64(completed)
	}
	if s.samples > 0 {
		summary.MissedRatio = float64(s.missed) / float64(s.samples)
	}
	return summary
}
