//go:build !amd64

package timer

// Default returns the preferred cycle source for this platform.
func Default() Cycle { return Monotonic{} }
