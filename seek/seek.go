// Package seek implements the two-level seek search of spec.md §4.10:
// file-length discovery via the last page's granule position, a coarse
// interpolation search across probed pages, and page-level sample-span
// analysis. The remaining "fine in-page search" (spec.md §4.10 step 2) is
// driven by the top-level decoder, which already owns the ordinary
// packet-sequential decode loop this step reuses (see DESIGN.md).
package seek

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/oggframe"
	"github.com/achurch/libnogg-sub000/setup"
	"github.com/achurch/libnogg-sub000/source"
)

// maxSample is the largest sample position representable in the
// decoder's 32-bit position space (spec.md §1 explicit non-goal: "sample
// positions beyond 2^32").
const maxSample = 0xFFFFFFFE

// lengthProbeWindow is how far from the end of the stream the file-length
// query starts scanning for the last page (spec.md §4.10: "file-end-64KB").
const lengthProbeWindow = 64 * 1024

// PageInfo describes one probed page's sample span (spec.md §3 "Probed
// page").
type PageInfo struct {
	StartOffset int64 // byte offset of the page's first byte
	AfterOffset int64 // byte offset immediately following the page
	FirstSample uint32
	LastSample  uint32
	IsLastPage  bool
}

// Engine runs the coarse page search over a stream, given the packet
// scanner the ordinary decode path also uses and the stream's Setup
// tables (needed to peek each packet's mode/blockflag for stride
// computation, spec.md §4.10 "Page analyze").
type Engine struct {
	src     source.ByteSource
	scanner *oggframe.PageScanner
	setup   *setup.Setup

	firstPageOffset int64
	length          int64 // cached total sample count; -1 until known
}

// NewEngine creates a seek Engine. firstPageOffset is the byte offset of
// the stream's very first Ogg page (the lower bound for both the
// file-length probe and the coarse search).
func NewEngine(src source.ByteSource, scanner *oggframe.PageScanner, s *setup.Setup, firstPageOffset int64) *Engine {
	return &Engine{src: src, scanner: scanner, setup: s, firstPageOffset: firstPageOffset, length: -1}
}

// clampSample folds a 64-bit Ogg granule position into the decoder's
// 32-bit sample-position space (spec.md §1, §9 "Open question": treat an
// out-of-range value as saturating rather than wrapping).
func clampSample(g uint64) uint32 {
	if g > maxSample {
		return maxSample
	}
	return uint32(g)
}

// Length returns the total sample count of the stream, or false if the
// source is unseekable (spec.md §4.10 "File length in samples"). The
// result is cached after the first successful call.
func (e *Engine) Length() (uint32, bool) {
	if e.length >= 0 {
		return uint32(e.length), true
	}
	total := e.src.Length()
	if total < 0 {
		return 0, false
	}

	start := e.firstPageOffset
	if probe := total - lengthProbeWindow; probe > start {
		start = probe
	}
	if err := e.scanner.SeekTo(start); err != nil {
		return 0, false
	}

	var last uint32
	found := false
	for {
		page, _, err := e.scanner.NextPage(true)
		if err != nil {
			break
		}
		last = clampSample(page.GranulePos)
		found = true
		if page.IsLast() {
			break
		}
	}
	if !found {
		return 0, false
	}
	e.length = int64(last)
	return last, true
}

// peekBlockFlag reads just enough of an audio packet to learn its mode's
// block flag, without running the rest of frame decode (spec.md §4.10
// "decode_initial each packet without running residue/IMDCT").
func (e *Engine) peekBlockFlag(pkt []byte) (blockFlag, ok bool) {
	br := bitreader.New(pkt)
	if br.GetBits(1) != 0 {
		return false, false
	}
	idx := int(br.GetBits(e.setup.ModeBits))
	if br.EOP() || idx < 0 || idx >= len(e.setup.Modes) {
		return false, false
	}
	return e.setup.Modes[idx].BlockFlag, true
}

// windowStride returns the number of new samples a packet with block
// flag cur, following one with block flag prev, contributes (spec.md
// §4.10 "Page analyze": "the stride is B0/2 for short, (B1-B0)/4 + B0/2
// for long-adjacent-to-short, B1/2 for long-adjacent-to-long").
func (e *Engine) windowStride(prev, cur bool) int {
	b0, b1 := e.setup.Ident.Blocksize0, e.setup.Ident.Blocksize1
	switch {
	case !cur && !prev:
		return b0 / 2
	case cur && prev:
		return b1 / 2
	default:
		return (b1-b0)/4 + b0/2
	}
}

// analyzePage parses the page at the scanner's current offset and
// determines its sample span (spec.md §4.10 "Page analyze").
func (e *Engine) analyzePage() (PageInfo, error) {
	page, pageStart, err := e.scanner.NextPage(true)
	if err == oggframe.ErrPageNotFound {
		return PageInfo{}, ErrNoPageFound
	}
	if err != nil {
		return PageInfo{}, err
	}
	info := PageInfo{
		StartOffset: pageStart,
		AfterOffset: e.scanner.Offset(),
		IsLastPage:  page.IsLast(),
		LastSample:  clampSample(page.GranulePos),
	}

	if page.IsLast() {
		// The granule overloads as a packet-length marker on the final
		// page; first-sample is recorded equal to last, which disables
		// this page as a coarse-search low bound.
		info.FirstSample = info.LastSample
		return info, nil
	}

	packets := page.Packets()
	if len(packets) == 0 {
		info.FirstSample = info.LastSample
		return info, nil
	}

	blockFlags := make([]bool, len(packets))
	for i, pkt := range packets {
		bf, _ := e.peekBlockFlag(pkt)
		blockFlags[i] = bf
	}

	sample := info.LastSample
	for i := len(packets) - 1; i >= 1; i-- {
		sample -= uint32(e.windowStride(blockFlags[i-1], blockFlags[i]))
	}
	info.FirstSample = sample
	return info, nil
}

// CoarsePage runs the interpolation search of spec.md §4.10 step 1,
// returning the PageInfo of a page whose decoded span brackets the
// target sample (target falls within, or immediately follows, this
// page's contribution), ready for the caller's fine in-page search.
func (e *Engine) CoarsePage(target uint32) (PageInfo, error) {
	if e.src.Length() < 0 {
		return PageInfo{}, ErrNotSeekable
	}

	if err := e.scanner.SeekTo(e.firstPageOffset); err != nil {
		return PageInfo{}, err
	}
	low, err := e.analyzePage()
	if err != nil {
		return PageInfo{}, err
	}
	if target <= low.LastSample || low.IsLastPage {
		return low, nil
	}

	total := e.src.Length()
	if err := e.scanner.SeekTo(max64(e.firstPageOffset, total-lengthProbeWindow)); err != nil {
		return PageInfo{}, err
	}
	high, err := e.analyzePage()
	if err != nil {
		return PageInfo{}, err
	}

	for low.AfterOffset < high.StartOffset {
		byteSpan := high.StartOffset - low.StartOffset
		var f float64
		if high.FirstSample <= low.LastSample {
			f = 0.5
		} else {
			f = float64(target-low.LastSample) / float64(high.FirstSample-low.LastSample)
		}
		switch {
		case byteSpan < 8*1024:
			f = 0.5
		case byteSpan < 64*1024:
			f = 0.25 + f/2
		}
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}

		probe := low.StartOffset + 1 + int64(f*float64(high.AfterOffset-(low.StartOffset+1)))
		if probe <= low.StartOffset {
			probe = low.StartOffset + 1
		}
		if probe >= high.StartOffset {
			probe = high.StartOffset - 1
		}
		if err := e.scanner.SeekTo(probe); err != nil {
			return PageInfo{}, err
		}
		mid, err := e.analyzePage()
		if err != nil {
			return PageInfo{}, err
		}
		if mid.StartOffset <= low.StartOffset || mid.StartOffset >= high.StartOffset {
			// The probe didn't make progress (landed back on a bound);
			// accept what we have rather than loop forever.
			break
		}

		if !mid.IsLastPage && target < mid.LastSample {
			high = mid
		} else {
			low = mid
		}
	}

	if target <= low.LastSample || low.IsLastPage {
		return low, nil
	}
	return high, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
