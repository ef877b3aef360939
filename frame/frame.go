// Package frame assembles one decoded audio packet: mode and window
// selection, floor and residue decode, inverse channel coupling, the
// floor·residue product, the inverse MDCT, and overlap-add against the
// previous frame's tail (spec.md §4.9).
package frame

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/floor"
	"github.com/achurch/libnogg-sub000/internal/alloc"
	"github.com/achurch/libnogg-sub000/residue"
	"github.com/achurch/libnogg-sub000/setup"
)

// Decoder holds the per-stream state a packet decode needs beyond the
// immutable Setup tables: each channel's frequency/time-domain working
// buffer and the previous frame's saved right-side tail for overlap-add
// (spec.md §3 "Channel buffer", "Previous window").
type Decoder struct {
	setup    *setup.Setup
	channels int

	coeff      [][]float32 // per channel, length Blocksize1, reused every frame
	prevWindow [][]float32 // per channel, length Blocksize1/2
	prevLength int
	haveDecoded bool
}

// NewDecoder allocates a frame Decoder for a stream with the given
// channel count, using s's precomputed tables. It panics if channels is
// invalid; Setup parsing already validates the identification header's
// channel count before a Decoder is ever constructed.
func NewDecoder(s *setup.Setup, channels int) *Decoder {
	b1 := s.Ident.Blocksize1
	coeff, err := alloc.NewChannels(channels, b1)
	if err != nil {
		panic(err)
	}
	prevWindow, err := alloc.NewChannels(channels, b1/2)
	if err != nil {
		panic(err)
	}
	return &Decoder{
		setup:      s,
		channels:   channels,
		coeff:      coeff.Rows,
		prevWindow: prevWindow.Rows,
	}
}

// Result is one packet's contribution to the output sample stream.
type Result struct {
	// Skip is true for a non-audio packet (the packet-type bit was set)
	// or a recoverable decode error; no samples were produced and the
	// caller should move on to the next packet without advancing its
	// sample position.
	Skip bool

	// Channels holds each channel's full N-sample time-domain buffer;
	// only Channels[ch][Left:Right] is valid output for this packet
	// (spec.md §4.9 step 7). The slice is owned by the Decoder and is
	// overwritten by the next Decode call.
	Channels [][]float32

	Left, Right int // the range to emit, spec.md §4.9 step 7
	N           int // this frame's blocksize (B0 or B1)

	// RightStart and RightEnd are the window's right overlap boundaries
	// (spec.md §4.9 step 3); the caller needs these, together with N, to
	// perform the granule-position fixup of spec.md §4.9 step 5.
	RightStart, RightEnd int

	// FirstFrame is true the first time Decode successfully decodes a
	// frame for this Decoder, and again for the first frame after each
	// ResetOverlap call; the caller seeds its sample-position
	// counter from RightStart-Left on this frame (spec.md §4.9 step 5).
	FirstFrame bool
}

// Decode runs the full per-packet pipeline (spec.md §4.9) over one
// reassembled Vorbis audio packet (not a header packet).
func (d *Decoder) Decode(packetData []byte) (*Result, error) {
	br := bitreader.New(packetData)
	s := d.setup

	if br.GetBits(1) != 0 {
		// Packet-type bit set: this is not an audio packet.
		return &Result{Skip: true}, nil
	}

	modeIdx := int(br.GetBits(s.ModeBits))
	if modeIdx < 0 || modeIdx >= len(s.Modes) || br.EOP() {
		return &Result{Skip: true}, nil
	}
	mode := s.Modes[modeIdx]
	mapping := s.Mappings[mode.Mapping]

	b0, b1 := s.Ident.Blocksize0, s.Ident.Blocksize1
	n := b0
	blockIdx := 0
	if mode.BlockFlag {
		n = b1
		blockIdx = 1
	}

	var leftStart, rightStart, rightEnd int
	if mode.BlockFlag {
		prevFlag := br.GetBits(1) != 0
		nextFlag := br.GetBits(1) != 0
		if prevFlag {
			leftStart = 0
		} else {
			leftStart = (b1 - b0) / 4
		}
		if nextFlag {
			rightStart, rightEnd = b1/2, b1
		} else {
			rightStart, rightEnd = (3*b1-b0)/4, (3*b1+b0)/4
		}
	} else {
		leftStart = 0
		rightStart, rightEnd = b0/2, b0
	}
	if br.EOP() {
		return &Result{Skip: true}, nil
	}

	half := n / 2

	// Floor decode (§4.5) and nonzero propagation (§4.7).
	floorDecoded := make([]floor.Decoded, d.channels)
	zeroChannel := make([]bool, d.channels)
	for ch := 0; ch < d.channels; ch++ {
		submap := mapping.Submaps[mapping.Mux[ch]]
		fc := s.Floors[submap.Floor]
		switch fc.Type {
		case setup.FloorType1:
			floorDecoded[ch] = floor.Decode1(br, fc.Floor1, s.Codebooks)
			zeroChannel[ch] = floorDecoded[ch].Unused
		default:
			return nil, ErrFloor0Unsupported
		}
	}
	reallyZero := append([]bool(nil), zeroChannel...)
	for _, step := range mapping.Coupling {
		if !zeroChannel[step.Magnitude] || !zeroChannel[step.Angle] {
			zeroChannel[step.Magnitude] = false
			zeroChannel[step.Angle] = false
		}
	}

	// Residue decode (§4.6), grouped per submap exactly as the channels
	// that share it (type 2's deinterleaving is scoped to that group,
	// not the whole stream).
	for i := range mapping.Submaps {
		var chIdx []int
		for ch := 0; ch < d.channels; ch++ {
			if mapping.Mux[ch] == i {
				chIdx = append(chIdx, ch)
			}
		}
		if len(chIdx) == 0 {
			continue
		}
		buffers := make([][]float32, len(chIdx))
		doNotDecode := make([]bool, len(chIdx))
		for k, ch := range chIdx {
			buffers[k] = d.coeff[ch][:half]
			doNotDecode[k] = zeroChannel[ch]
		}
		rc := s.Residues[mapping.Submaps[i].Residue]
		residue.Decode(br, &rc, s.Codebooks, buffers, doNotDecode, half)
	}

	// Inverse coupling (§4.7), walked in reverse.
	for i := len(mapping.Coupling) - 1; i >= 0; i-- {
		step := mapping.Coupling[i]
		magBuf := d.coeff[step.Magnitude]
		angBuf := d.coeff[step.Angle]
		for j := 0; j < half; j++ {
			m, a := magBuf[j], angBuf[j]
			var newM, newA float32
			if m > 0 {
				if a > 0 {
					newM, newA = m, m-a
				} else {
					newA, newM = m, m+a
				}
			} else {
				if a > 0 {
					newM, newA = m, m+a
				} else {
					newA, newM = m, m-a
				}
			}
			magBuf[j] = newM
			angBuf[j] = newA
		}
	}

	// Floor curve synthesis and dot product (§4.5 "after residue
	// decode"), or zeroing for channels that really had nothing.
	for ch := 0; ch < d.channels; ch++ {
		if reallyZero[ch] {
			buf := d.coeff[ch][:half]
			for i := range buf {
				buf[i] = 0
			}
			continue
		}
		submap := mapping.Submaps[mapping.Mux[ch]]
		fc := s.Floors[submap.Floor]
		floor.Synthesize(fc.Floor1, floorDecoded[ch], d.coeff[ch], n)
	}

	// Inverse MDCT (§4.8).
	for ch := 0; ch < d.channels; ch++ {
		s.MDCT[blockIdx].Inverse(d.coeff[ch][:n])
	}

	// Overlap-add (§4.9 step 6), ported from vorbis_finish_frame: the
	// same window table weights both the current frame's rising edge and
	// the previous frame's falling edge, selected by which blocksize's
	// half-length matches the saved overlap length.
	if d.haveDecoded && d.prevLength > 0 {
		weights := s.MDCT[0].Window
		if d.prevLength*2 == b1 {
			weights = s.MDCT[1].Window
		}
		for ch := 0; ch < d.channels; ch++ {
			buf := d.coeff[ch]
			prev := d.prevWindow[ch]
			for j := 0; j < d.prevLength; j++ {
				buf[leftStart+j] = buf[leftStart+j]*weights[j] + prev[j]*weights[d.prevLength-1-j]
			}
		}
	}
	firstFrame := !d.haveDecoded
	for ch := 0; ch < d.channels; ch++ {
		copy(d.prevWindow[ch], d.coeff[ch][rightStart:rightEnd])
	}
	// The saved tail always spans to rightEnd, not n: on a long block
	// followed by a short one, rightEnd < n, and the next (short) frame's
	// left window is only rightEnd-rightStart wide (vorbis_finish_frame's
	// previous_length = len - right, with len == right_end here since
	// frame-length truncation only ever happens on the stream's final,
	// already-terminal frame).
	d.prevLength = rightEnd - rightStart
	d.haveDecoded = true

	return &Result{
		Channels:   d.coeff,
		Left:       leftStart,
		Right:      rightStart,
		N:          n,
		RightStart: rightStart,
		RightEnd:   rightEnd,
		FirstFrame: firstFrame,
	}, nil
}

// ResetOverlap clears the previous-window state, e.g. after a recoverable
// decode error or a seek, to prevent bleed-through from stale data
// (spec.md §7, §4.10 "Set previous_length = 0 to prevent stale overlap").
func (d *Decoder) ResetOverlap() {
	d.prevLength = 0
	d.haveDecoded = false
}
