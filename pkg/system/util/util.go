package util

import (
	"cmp"
	"math"
	"slices"
)

// Sample indexes into values using percentile, a floating point number
// between zero and one. The slice is sorted ascending in place first.
// Don't rely on specific behavior, the intended use case is to roughly
// sample a given measurement.
//
//	Sample(0.0, []int{1, 2, 3, 4}) == 1
//	Sample(0.3, []int{1, 2, 3, 4}) == 2
//	Sample(0.6, []int{1, 2, 3, 4}) == 3
//	Sample(1.0, []int{1, 2, 3, 4}) == 4
func Sample[T cmp.Ordered](percentile float64, values []T) T {
	slices.Sort(values)
	return values[SampleIndex(percentile, len(values))]
}

// SampleIndex returns the index Sample selects for a slice of length n,
// round(n*percentile) clamped to [0, n-1].
func SampleIndex(percentile float64, n int) int {
	index := int(math.Round(float64(n) * percentile))
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// SampleFunc invokes fn count times and returns the chosen percentile of
// the results.
func SampleFunc[T cmp.Ordered](percentile float64, count int, fn func() T) T {
	results := make([]T, count)
	for i := range results {
		results[i] = fn()
	}
	return Sample(percentile, results)
}

// SampleManyFunc invokes fn count times and returns one value per requested
// percentile, all drawn from the same batch of results.
func SampleManyFunc[T cmp.Ordered](percentiles []float64, count int, fn func() T) []T {
	results := make([]T, count)
	for i := range results {
		results[i] = fn()
	}
	slices.Sort(results)

	outputs := make([]T, 0, len(percentiles))
	for _, percentile := range percentiles {
		outputs = append(outputs, results[SampleIndex(percentile, len(results))])
	}
	return outputs
}

// EMA is an exponential moving average over successive observations.
type EMA struct {
	alpha, prev float64
	ok          bool
}

func NewEMA(alpha float64) *EMA { return &EMA{alpha: alpha} }

func (e *EMA) Next(v float64) float64 {
	if !e.ok {
		e.prev, e.ok = v, true
		return v
	}
	e.prev = e.alpha*v + (1-e.alpha)*e.prev
	return e.prev
}

// Clamp01 clamps x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	// guard against NaN
	if math.IsNaN(x) {
		return 0
	}
	return x
}
