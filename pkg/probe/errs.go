package probe

import "errors"

var (
	// ErrUncalibrated indicates the hit/miss experiments did not separate
	// (hit >= miss), so no usable eviction threshold exists.
	ErrUncalibrated = errors.New("probe: could not calibrate an eviction threshold")

	// ErrNoElements indicates the backend exposed no candidate addresses.
	ErrNoElements = errors.New("probe: backend has no candidate elements")
)
