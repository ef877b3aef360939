package nogg

import (
	"io"

	"github.com/achurch/libnogg-sub000/frame"
	"github.com/achurch/libnogg-sub000/oggframe"
	"github.com/achurch/libnogg-sub000/seek"
	"github.com/achurch/libnogg-sub000/setup"
	"github.com/achurch/libnogg-sub000/source"
)

// Decoder is the top-level handle for one open Vorbis stream: it owns the
// byte source, the Ogg packet reader, the immutable setup tables, the
// per-frame decode pipeline, and the sample-position bookkeeping of
// spec.md §4.9 step 5.
type Decoder struct {
	src      source.ByteSource
	reader   *oggframe.Reader
	setup    *setup.Setup
	frameDec *frame.Decoder
	seekEng  *seek.Engine
	options  OpenOption

	currentLoc      int64
	currentLocValid bool

	// pending holds interleaved samples already decoded but not yet
	// handed to the caller, so Read(N) followed by Read(M) never
	// re-decodes or drops a packet's worth of samples (spec.md §8 P3).
	pending []float32

	fatal bool // sticky end-of-decode state, spec.md §7 class 3
}

// Open opens a Vorbis stream read from an in-memory buffer.
func Open(data []byte, opts OpenOption) (*Decoder, error) {
	return newDecoder(source.NewFromBytes(data), opts)
}

// OpenReader opens a Vorbis stream read sequentially from r. The result is
// not seekable.
func OpenReader(r io.Reader, opts OpenOption) (*Decoder, error) {
	return newDecoder(source.NewFromReader(r), opts)
}

// OpenReadSeeker opens a Vorbis stream read from rs, preserving seek
// support.
func OpenReadSeeker(rs io.ReadSeeker, opts OpenOption) (*Decoder, error) {
	src, err := source.NewFromReadSeeker(rs)
	if err != nil {
		return nil, err
	}
	return newDecoder(src, opts)
}

// OpenSource opens a Vorbis stream read from a caller-supplied ByteSource
// (spec.md §6 "byte-source callback set").
func OpenSource(src source.ByteSource, opts OpenOption) (*Decoder, error) {
	return newDecoder(src, opts)
}

func newDecoder(src source.ByteSource, opts OpenOption) (*Decoder, error) {
	reader := oggframe.NewReader(src, opts.has(OptionScanForNextPage))
	firstPageOffset := reader.Scanner().Offset()

	identPkt, err := reader.NextPacket()
	if err != nil {
		return nil, ErrStreamInvalid
	}
	commentPkt, err := reader.NextPacket()
	if err != nil {
		return nil, ErrStreamInvalid
	}
	setupPkt, err := reader.NextPacket()
	if err != nil {
		return nil, ErrStreamInvalid
	}

	s, err := setup.Parse(identPkt.Data, commentPkt.Data, setupPkt.Data)
	if err != nil {
		return nil, ErrDecodeSetupFailed
	}

	d := &Decoder{
		src:      src,
		reader:   reader,
		setup:    s,
		frameDec: frame.NewDecoder(s, s.Ident.Channels),
		options:  opts,
	}
	if source.Seekable(src) {
		d.seekEng = seek.NewEngine(src, reader.Scanner(), s, firstPageOffset)
	}
	return d, nil
}

// Channels returns the stream's channel count.
func (d *Decoder) Channels() int { return d.setup.Ident.Channels }

// SampleRate returns the stream's sample rate in Hz.
func (d *Decoder) SampleRate() uint32 { return d.setup.Ident.SampleRate }

// Length returns the stream's total sample count, or false if the source
// is not seekable (spec.md §4.10 "File length in samples").
func (d *Decoder) Length() (uint32, bool) {
	if d.seekEng == nil {
		return 0, false
	}
	return d.seekEng.Length()
}

// Tell returns the current decode position in samples.
func (d *Decoder) Tell() int64 {
	if !d.currentLocValid {
		return 0
	}
	return d.currentLoc - int64(len(d.pending)/d.Channels())
}

// Close releases the underlying byte source.
func (d *Decoder) Close() error { return d.src.Close() }

// Read decodes up to len(out)/Channels() sample frames of interleaved
// float32 PCM into out, in [-1, +1], returning the count of frames
// written.
func (d *Decoder) Read(out []float32) (int, Status, error) {
	if d.options.has(OptionReadInt16Only) {
		return 0, StatusOK, ErrDisabledFunction
	}
	ch := d.Channels()
	n, status, err := d.fillPending(len(out) / ch)
	if err != nil {
		return 0, status, err
	}
	copy(out, d.pending[:n*ch])
	d.pending = d.pending[n*ch:]
	return n, status, nil
}

// ReadInt16 decodes up to len(out)/Channels() sample frames of
// interleaved, rounded and saturated int16 PCM into out.
func (d *Decoder) ReadInt16(out []int16) (int, Status, error) {
	ch := d.Channels()
	n, status, err := d.fillPending(len(out) / ch)
	if err != nil {
		return 0, status, err
	}
	for i, f := range d.pending[:n*ch] {
		out[i] = floatToInt16(f)
	}
	d.pending = d.pending[n*ch:]
	return n, status, nil
}

// fillPending decodes packets until at least want sample frames are
// staged in d.pending, or the stream ends.
func (d *Decoder) fillPending(want int) (int, Status, error) {
	if want < 0 {
		return 0, StatusOK, ErrInvalidArgument
	}
	ch := d.Channels()
	status := StatusOK
	for !d.fatal && len(d.pending) < want*ch {
		st, err := d.decodeOnePacket()
		if err != nil {
			d.fatal = true
			return len(d.pending) / ch, StatusStreamEnd, err
		}
		if st == StatusRecovered {
			status = StatusRecovered
		}
	}
	have := len(d.pending) / ch
	if have > want {
		have = want
	}
	if have < want {
		status = StatusStreamEnd
	}
	return have, status, nil
}

// decodeOnePacket decodes the next audio packet, applies the
// granule-position fixup of spec.md §4.9 step 5 (ported from
// vorbis_decode_packet_rest's "Frame length and other fixups" and
// vorbis_finish_frame), and appends the packet's emitted samples to
// d.pending.
func (d *Decoder) decodeOnePacket() (Status, error) {
	pkt, err := d.reader.NextPacket()
	if err == io.EOF {
		d.fatal = true
		return StatusStreamEnd, nil
	}
	if err != nil {
		return StatusStreamEnd, err
	}

	res, ferr := d.frameDec.Decode(pkt.Data)
	if ferr != nil {
		// A per-frame decode error is recoverable: drop the frame and
		// reset overlap state so the next successfully decoded frame
		// doesn't mix against stale data (spec.md §7).
		d.frameDec.ResetOverlap()
		return StatusRecovered, nil
	}
	if res.Skip {
		return StatusOK, nil
	}

	if res.FirstFrame {
		d.currentLoc = -(int64(res.RightStart) - int64(res.Left))
		d.currentLocValid = true
	}

	length := res.RightEnd
	truncated := false
	if pkt.GranuleValid {
		if d.currentLocValid && pkt.LastPage {
			currentEnd := int64(pkt.GranulePos) - int64(res.N-res.RightEnd)
			if currentEnd < d.currentLoc+int64(res.RightEnd) {
				if currentEnd < d.currentLoc {
					length = 0
				} else {
					length = int(currentEnd - d.currentLoc)
				}
				length += res.Left
				d.currentLoc += int64(length)
				truncated = true
			}
		}
		if !truncated {
			// Non-final pages (and a final page whose granule position
			// implausibly exceeds the window, which the reference
			// decoder treats as a broken file and falls back to normal
			// processing) anchor at the window's midpoint, matching the
			// reference encoder's behavior even across a long/short
			// block boundary.
			d.currentLoc = int64(pkt.GranulePos) - int64(res.N/2-res.Left)
			d.currentLocValid = true
		}
	}
	if !truncated && d.currentLocValid {
		d.currentLoc += int64(res.RightStart - res.Left)
	}

	if res.FirstFrame {
		// The first decoded frame exists only to seed overlap-add state
		// (spec.md §4.9 "first frame discarded"); its content before any
		// genuine previous window is undefined.
		return StatusOK, nil
	}

	outEnd := res.Right
	if length < outEnd {
		outEnd = length
	}
	outLen := outEnd - res.Left
	if outLen <= 0 {
		return StatusOK, nil
	}

	base := len(d.pending)
	d.pending = append(d.pending, make([]float32, outLen*d.Channels())...)
	interleave(res.Channels, res.Left, res.Left+outLen, d.pending[base:])
	return StatusOK, nil
}

// Seek repositions decode to sample target (spec.md §4.10). Only valid on
// a seekable source.
func (d *Decoder) Seek(target uint32) error {
	if d.seekEng == nil {
		return ErrInvalidOperation
	}
	page, err := d.seekEng.CoarsePage(target)
	if err != nil {
		return err
	}
	if err := d.reader.Resync(page.StartOffset); err != nil {
		return err
	}
	d.frameDec.ResetOverlap()
	d.currentLoc = 0
	d.currentLocValid = false
	d.pending = nil
	d.fatal = false

	// Fine in-page search (spec.md §4.10 step 2): decode forward from the
	// coarse page, discarding whole frames that land entirely before the
	// target, until a frame's output range straddles or reaches it. This
	// trades the reference decoder's "decode_initial without
	// residue/IMDCT" peek optimization for reusing the ordinary
	// sequential decode loop unchanged; the top-level decoder must
	// already drive that loop for normal playback, and the two approaches
	// produce identical results (see DESIGN.md).
	for !d.currentLocValid || d.currentLoc <= int64(target) {
		frameStart := d.currentLoc
		before := len(d.pending)
		st, err := d.decodeOnePacket()
		if err != nil {
			return err
		}
		if st == StatusStreamEnd {
			return nil
		}
		if d.currentLocValid && d.currentLoc > int64(target) {
			// This frame's emitted range straddles target: keep it,
			// trimming only the leading samples that fall before target
			// rather than discarding the whole frame.
			trim := 0
			if frameStart < int64(target) {
				trim = int(int64(target)-frameStart) * d.Channels()
			}
			d.pending = append(d.pending[:before], d.pending[before+trim:]...)
			break
		}
		d.pending = d.pending[:before]
	}
	return nil
}
