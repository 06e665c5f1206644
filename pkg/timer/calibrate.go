package timer

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/system/util"
)

// Settings is the measured correspondence between timer ticks and wall
// time for one Cycle.
type Settings struct {
	Ratio    float64 // nanoseconds per tick, Realtime/Ticks
	Realtime time.Duration
	Ticks    Ticks
}

// Calibration measures Settings for one Cycle by spinning a wall-clock
// budget and counting ticks, sampled several times and reduced by
// percentile. The measurement is lazy, runs at most once, and is cached for
// the lifetime of the Calibration.
type Calibration struct {
	cycle Cycle

	// Tunable before the first Settings call.
	Length      time.Duration
	SamplePoint float64
	SampleCount int

	once     sync.Once
	settings Settings
}

// NewCalibration returns an uncalibrated Calibration for c with the default
// 1 ms spin budget, median sample point, and five runs.
func NewCalibration(c Cycle) *Calibration {
	return &Calibration{
		cycle:       c,
		Length:      time.Millisecond,
		SamplePoint: 0.5,
		SampleCount: 5,
	}
}

// Settings returns the calibration result, measuring it on first use.
func (c *Calibration) Settings() Settings {
	c.once.Do(func() { c.settings = c.measure() })
	return c.settings
}

func (c *Calibration) measure() Settings {
	ch := chain.New()
	defer ch.Drain()

	runs := make([]Settings, c.SampleCount)
	for i := range runs {
		clockStart := time.Now()
		tickStart := c.cycle.Ticks(ch)

		clockEnd := clockStart
		tickEnd := tickStart
		for clockEnd.Sub(clockStart) < c.Length {
			clockEnd = time.Now()
			tickEnd = c.cycle.Ticks(ch)
		}

		elapsed := Delta(c.cycle, tickStart, tickEnd)
		if elapsed == 0 {
			elapsed = 1
		}
		realtime := clockEnd.Sub(clockStart)
		runs[i] = Settings{
			Ratio:    float64(realtime.Nanoseconds()) / float64(elapsed),
			Realtime: realtime,
			Ticks:    elapsed,
		}
	}

	slices.SortFunc(runs, func(a, b Settings) int {
		return cmp.Compare(a.Ratio, b.Ratio)
	})
	return runs[util.SampleIndex(c.SamplePoint, len(runs))]
}

// RealtimeToTicks converts a wall-clock duration to ticks of the calibrated
// cycle.
func (c *Calibration) RealtimeToTicks(d time.Duration) Ticks {
	s := c.Settings()
	return Ticks(uint64(d.Nanoseconds()) * uint64(s.Ticks) / uint64(s.Realtime.Nanoseconds()))
}

// TicksToRealtime converts a tick interval of the calibrated cycle to a
// wall-clock duration.
func (c *Calibration) TicksToRealtime(t Ticks) time.Duration {
	s := c.Settings()
	return time.Duration(uint64(t) * uint64(s.Realtime.Nanoseconds()) / uint64(s.Ticks))
}

var (
	calMu sync.Mutex
	cals  = map[Cycle]*Calibration{}
)

func calibrationFor(c Cycle) *Calibration {
	calMu.Lock()
	defer calMu.Unlock()
	cal, ok := cals[c]
	if !ok {
		cal = NewCalibration(c)
		cals[c] = cal
	}
	return cal
}

// RealtimeToTicks converts through the process-wide calibration cache for c.
func RealtimeToTicks(c Cycle, d time.Duration) Ticks {
	return calibrationFor(c).RealtimeToTicks(d)
}

// TicksToRealtime converts through the process-wide calibration cache for c.
func TicksToRealtime(c Cycle, t Ticks) time.Duration {
	return calibrationFor(c).TicksToRealtime(t)
}
