package probe

import (
	"io"

	"github.com/ja7ad/scat/pkg/timer"
)

// State bundles the backend, timer, calibrated evicter and the discovered
// eviction sets indexed by Channel. It is created once, shared by
// reference, and never mutated after construction.
type State struct {
	Backend AddressBackend
	Timer   timer.Cycle
	Evicter *Evicter
	Sets    [][]Address
}

// Close releases the backend's resources if it owns any.
func (s *State) Close() error {
	if closer, ok := s.Backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
