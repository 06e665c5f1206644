package probe

import (
	"log/slog"

	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/system/util"
	"github.com/ja7ad/scat/pkg/timer"
)

// Oracle answers whether a set of addresses evicts a witness.
type Oracle interface {
	SetEvicts(set []Address, witness Address, ch *chain.Chain) bool
}

// Evicter is the timing-based Oracle. It learns a tick threshold that
// separates a cached witness access from an evicted one, then classifies
// future measurements against it.
type Evicter struct {
	backend AddressBackend
	timer   timer.Cycle

	// SampleCount measurements per question, reduced at SamplePoint.
	SampleCount int
	SamplePoint float64

	// Threshold is the calibrated hit/miss boundary in ticks.
	Threshold timer.Ticks

	// CalibrationSeparation and CalibrationSamples control the percentiles
	// and repetitions of the hit/miss experiments.
	CalibrationSeparation float64
	CalibrationSamples    int
}

// NewEvicter borrows the backend and timer and calibrates the eviction
// threshold. It returns ErrUncalibrated when the hit and miss experiments
// do not separate; a zero threshold would make every oracle answer true and
// send the builder thrashing, so the failure is surfaced instead.
func NewEvicter(backend AddressBackend, cycle timer.Cycle, ch *chain.Chain) (*Evicter, error) {
	e := &Evicter{
		backend:               backend,
		timer:                 cycle,
		SampleCount:           5,
		SamplePoint:           0.5,
		CalibrationSeparation: 0.2,
		CalibrationSamples:    50,
	}

	threshold, err := e.calibrateThreshold(ch)
	if err != nil {
		return nil, err
	}
	e.Threshold = threshold
	return e, nil
}

// EvictAndTime accesses the witness, walks the whole set twice, then times
// one more witness access. Accessing the set once is not reliably enough to
// cache every element; two passes are.
func (e *Evicter) EvictAndTime(set []Address, witness Address, ch *chain.Chain) timer.Ticks {
	return util.SampleFunc(e.SamplePoint, e.SampleCount, func() timer.Ticks {
		// Pull the witness in, in case it was never cached to begin with.
		e.backend.AccessElement(witness, ch)

		for pass := 0; pass < 2; pass++ {
			for _, element := range set {
				e.backend.AccessElement(element, ch)
			}
		}

		start := e.timer.Ticks(ch)
		e.backend.AccessElement(witness, ch)
		return timer.Delta(e.timer, start, e.timer.Ticks(ch))
	})
}

// SetEvicts reports whether set evicts witness.
func (e *Evicter) SetEvicts(set []Address, witness Address, ch *chain.Chain) bool {
	return e.EvictAndTime(set, witness, ch) >= e.Threshold
}

// calibrateThreshold runs two experiments over the full candidate list:
// timing the last-accessed element, which should still be cached, and the
// first-accessed one, which the later accesses should have evicted. The
// threshold sits halfway between the two distributions.
func (e *Evicter) calibrateThreshold(ch *chain.Chain) (timer.Ticks, error) {
	elements := e.backend.Elements()
	if len(elements) == 0 {
		return 0, ErrNoElements
	}

	hit := util.SampleFunc(1-e.CalibrationSeparation, e.CalibrationSamples, func() timer.Ticks {
		return e.EvictAndTime(elements, elements[len(elements)-1], ch)
	})
	miss := util.SampleFunc(e.CalibrationSeparation, e.CalibrationSamples, func() timer.Ticks {
		return e.EvictAndTime(elements, elements[0], ch)
	})

	if hit >= miss {
		slog.Error("could not calibrate an eviction threshold",
			"hit", uint64(hit), "miss", uint64(miss))
		return 0, ErrUncalibrated
	}

	return hit + (miss-hit)/2, nil
}
