package oggframe

import (
	"io"

	"github.com/achurch/libnogg-sub000/source"
)

// Packet is one reassembled logical-bitstream packet together with the
// framing metadata the decoder needs to track sample positions.
type Packet struct {
	Data []byte

	// GranulePos and GranuleValid describe the granule position of the
	// *page* this packet completed on — only the last packet completed
	// on a page carries a meaningful granule position (spec.md §4.2,
	// §4.9 step 5).
	GranulePos   uint64
	GranuleValid bool

	// LastPage is true if the page this packet completed on carried the
	// Ogg "end of stream" flag.
	LastPage bool

	// PageStartOffset is the byte offset of the start of the page this
	// packet completed on; used by the seek engine.
	PageStartOffset int64
}

// Reader reassembles packets for one logical bitstream from a sequence of
// Ogg pages read off a PageScanner. It matches the contract of spec.md's
// Ogg framer (§4.2): start_page / start_packet / next_segment collapse
// here into pulling whole pages and splitting them at segment boundaries,
// since every segment of an already-parsed page is available at once.
type Reader struct {
	scanner     *PageScanner
	serial      uint32
	haveSerial  bool
	pending     [][]byte // packets already split out of the current page, not yet returned
	pendingIdx  int
	carry       []byte // bytes of an in-progress packet spanning pages
	carrying    bool
	pageGranule uint64
	pageLast    bool
	pageStart   int64
	eos         bool
	scanForNext bool
}

// NewReader creates a packet reader over src. scanForNext enables the
// scan-for-next-page recovery behavior (spec.md §4.2, Open Options
// "scan-for-next-page"); when false, a malformed page is a fatal error.
func NewReader(src source.ByteSource, scanForNext bool) *Reader {
	return &Reader{
		scanner:     NewPageScanner(src),
		scanForNext: scanForNext,
	}
}

// Scanner exposes the underlying PageScanner, e.g. so a caller can read
// the offset of the most recently consumed page.
func (r *Reader) Scanner() *PageScanner { return r.scanner }

// Resync repositions the reader at the page starting at offset, for the
// seek engine's coarse jump (spec.md §4.10). Unlike constructing a fresh
// Reader, it keeps the bitstream's already-known serial number, since the
// target page is not the stream's first page and would otherwise be
// rejected by advancePage's "first page establishes the serial" check.
func (r *Reader) Resync(offset int64) error {
	if err := r.scanner.SeekTo(offset); err != nil {
		return err
	}
	r.pending = nil
	r.pendingIdx = 0
	r.carry = nil
	r.carrying = false
	r.eos = false
	return nil
}

// NextPacket returns the next reassembled packet, or io.EOF once the
// logical bitstream's last page has been fully consumed.
func (r *Reader) NextPacket() (*Packet, error) {
	for {
		if r.pendingIdx < len(r.pending) {
			data := r.pending[r.pendingIdx]
			r.pendingIdx++
			last := r.pendingIdx == len(r.pending)
			pkt := &Packet{
				Data:            data,
				PageStartOffset: r.pageStart,
			}
			if last {
				pkt.GranulePos = r.pageGranule
				pkt.GranuleValid = true
				pkt.LastPage = r.pageLast
			}
			return pkt, nil
		}
		if r.eos {
			return nil, io.EOF
		}
		if err := r.advancePage(); err != nil {
			return nil, err
		}
	}
}

// advancePage reads one more page and folds its segments into r.pending /
// r.carry, ready for NextPacket to hand out.
func (r *Reader) advancePage() error {
	for {
		page, pageStart, err := r.scanner.NextPage(r.scanForNext)
		if err != nil {
			if err == io.EOF {
				if r.carrying {
					// A packet was left dangling at end of stream;
					// the current spec treats this as a recoverable
					// truncation, not a fatal error.
					r.carrying = false
				}
				r.eos = true
				return io.EOF
			}
			return err
		}

		if !r.haveSerial {
			if !page.IsFirst() {
				return ErrInvalidPage
			}
			r.serial = page.SerialNumber
			r.haveSerial = true
		}
		if page.SerialNumber != r.serial {
			// A different logical bitstream multiplexed into the same
			// physical stream; chained/concatenated Vorbis streams are
			// explicitly out of scope (spec.md §1), so such pages are
			// skipped rather than treated as a second stream.
			continue
		}

		if page.IsContinuation() && !r.carrying {
			return ErrContinuationWithoutStart
		}
		if !page.IsContinuation() && r.carrying {
			// Prior packet never saw its continuation; drop it.
			r.carry = nil
			r.carrying = false
		}

		segs := page.packetLengths()
		payload := page.Payload
		pageComplete := !page.lastSegmentContinues()

		var packets [][]byte
		off := 0
		for i, l := range segs {
			end := off + l
			if end > len(payload) {
				end = len(payload)
			}
			chunk := payload[off:end]
			isLastSeg := i == len(segs)-1
			if r.carrying && (i == 0) {
				r.carry = append(r.carry, chunk...)
				if !(isLastSeg && !pageComplete) {
					packets = append(packets, r.carry)
					r.carry = nil
					r.carrying = false
				}
			} else if isLastSeg && !pageComplete {
				r.carry = append([]byte(nil), chunk...)
				r.carrying = true
			} else {
				packets = append(packets, chunk)
			}
			off = end
		}

		r.pending = packets
		r.pendingIdx = 0
		r.pageGranule = page.GranulePos
		r.pageLast = page.IsLast()
		r.pageStart = pageStart

		if len(packets) == 0 {
			// Page contributed nothing complete (e.g. it only carried
			// a continuation fragment); keep reading.
			if page.IsLast() {
				r.eos = true
				return io.EOF
			}
			continue
		}
		return nil
	}
}
