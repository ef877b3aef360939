// Package alloc provides the owned 2-D buffer abstraction the decoder
// uses for per-channel sample storage (spec.md §9 "Channel arrays").
//
// The reference decoder allocates one contiguous block holding an array of
// per-channel pointers followed by the per-channel sample data, for cache
// locality and single-free convenience. Go's allocator and garbage
// collector make that layout pointless to reproduce by hand; a single
// backing slice sliced into per-channel rows gets the same locality (all
// channels live in one allocation) without any unsafe pointer arithmetic,
// which is why this is plain stdlib rather than a third-party library —
// there is no buffer-pool or arena dependency anywhere in the retrieval
// pack that this would plausibly wrap.
package alloc

import "fmt"

// Channels is a (channels, samplesPerChannel) buffer: one backing slice,
// materialized into per-channel row views so decode inner loops can index
// Rows[ch][sample] directly.
type Channels struct {
	backing []float32
	Rows    [][]float32
}

// NewChannels allocates a Channels buffer, returning an error instead of
// panicking if channels*samplesPerChannel would overflow an int (spec.md
// §9 "Integer overflow guards", item 2: channel count × bytes-per-channel
// during channel-array allocation).
func NewChannels(channels, samplesPerChannel int) (*Channels, error) {
	if channels <= 0 || samplesPerChannel < 0 {
		return nil, fmt.Errorf("alloc: invalid channel buffer shape (%d, %d)", channels, samplesPerChannel)
	}
	total := channels * samplesPerChannel
	if samplesPerChannel != 0 && total/samplesPerChannel != channels {
		return nil, fmt.Errorf("alloc: channel buffer size overflow (%d * %d)", channels, samplesPerChannel)
	}

	c := &Channels{
		backing: make([]float32, total),
		Rows:    make([][]float32, channels),
	}
	for ch := 0; ch < channels; ch++ {
		c.Rows[ch] = c.backing[ch*samplesPerChannel : (ch+1)*samplesPerChannel]
	}
	return c, nil
}

// Zero clears every channel's row to zero, without reallocating.
func (c *Channels) Zero() {
	for i := range c.backing {
		c.backing[i] = 0
	}
}
