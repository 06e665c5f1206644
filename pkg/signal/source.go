// Package signal packages probe state into consumer-facing sources and
// decodes the resulting sample streams: run-length encoding, low-pass
// filtering, thresholding, preamble search and bit recovery.
package signal

import (
	"fmt"

	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/probe"
	"github.com/ja7ad/scat/pkg/timer"
	"github.com/ja7ad/scat/pkg/types"
)

// Sample is one probe observation. See probe.Sample.
type Sample = probe.Sample

// Source reads one channel of a shared probe State.
type Source struct {
	chain   *chain.Chain
	channel probe.Channel
	reader  *probe.Reader
	state   *probe.State
}

// NewSource binds a state, reader and channel into a read-once handle. The
// state is referenced, not owned; its lifetime is that of the longest
// holder.
func NewSource(state *probe.State, reader *probe.Reader, channel probe.Channel) *Source {
	return &Source{
		chain:   chain.New(),
		channel: channel,
		reader:  reader,
		state:   state,
	}
}

// Read produces one batch of samples for the source's channel.
func (s *Source) Read() []Sample {
	return s.reader.ReadChannel(s.state, s.channel, s.chain)
}

// Channel returns the channel this source observes.
func (s *Source) Channel() probe.Channel { return s.channel }

// Close drains the source's ordering barrier.
func (s *Source) Close() { s.chain.Drain() }

// Group binds a state and reader to every discovered channel.
type Group struct {
	chain    *chain.Chain
	channels []probe.Channel
	reader   *probe.Reader
	state    *probe.State
}

// NewGroup registers a source group for all channels of state.
func NewGroup(state *probe.State, reader *probe.Reader) *Group {
	channels := make([]probe.Channel, len(state.Sets))
	for i := range channels {
		channels[i] = probe.Channel(i)
	}
	return &Group{
		chain:    chain.New(),
		channels: channels,
		reader:   reader,
		state:    state,
	}
}

// Read produces one batch of samples per channel.
func (g *Group) Read() [][]Sample {
	return g.reader.ReadChannels(g.state, g.channels, g.chain)
}

// ReadChannel produces one batch of samples for a single channel.
func (g *Group) ReadChannel(channel probe.Channel) []Sample {
	return g.reader.ReadChannel(g.state, channel, g.chain)
}

// Channels returns the registered channels, a contiguous [0, N) range.
func (g *Group) Channels() []probe.Channel { return g.channels }

// Reader exposes the group's probe reader for cadence tuning.
func (g *Group) Reader() *probe.Reader { return g.reader }

// ChannelToSource downgrades the group to a single-channel Source.
func (g *Group) ChannelToSource(channel probe.Channel) *Source {
	return NewSource(g.state, g.reader, channel)
}

// Sources returns one Source per registered channel.
func (g *Group) Sources() []*Source {
	sources := make([]*Source, 0, len(g.channels))
	for _, channel := range g.channels {
		sources = append(sources, NewSource(g.state, g.reader, channel))
	}
	return sources
}

// Close drains the group's barrier and releases the shared state.
func (g *Group) Close() error {
	g.chain.Drain()
	return g.state.Close()
}

// Options configures Create. Zero values select the defaults.
type Options struct {
	// BufferSize is the probe buffer size, default 16 MiB.
	BufferSize types.Bytes

	// Cycle is the tick source, default timer.Default().
	Cycle timer.Cycle

	// Reader overrides the probe cadence. When nil a default Reader is
	// used with its per-element threshold replaced by the calibrated
	// eviction threshold.
	Reader *probe.Reader
}

// Create constructs a ready Group on the default stack: a 16 MiB pinned
// cache, the platform cycle counter, a calibrated evicter and a full set
// build.
func Create() (*Group, error) {
	return CreateOptions(Options{})
}

// CreateOptions is Create with explicit knobs.
func CreateOptions(opts Options) (*Group, error) {
	cycle := opts.Cycle
	if cycle == nil {
		cycle = timer.Default()
	}

	ch := chain.New()
	defer ch.Drain()

	cache, err := probe.NewCache(opts.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("signal: create cache: %w", err)
	}

	evicter, err := probe.NewEvicter(cache, cycle, ch)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("signal: create evicter: %w", err)
	}

	state := &probe.State{
		Backend: cache,
		Timer:   cycle,
		Evicter: evicter,
		Sets:    probe.NewBuilder().Build(evicter, cache, ch),
	}

	reader := opts.Reader
	if reader == nil {
		reader = probe.NewReader()
		reader.Threshold = evicter.Threshold
	}

	return NewGroup(state, reader), nil
}
