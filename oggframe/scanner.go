package oggframe

import (
	"io"

	"github.com/achurch/libnogg-sub000/source"
)

// readChunkSize is the amount of data pulled from the byte source on each
// refill of the scanner's internal buffer.
const readChunkSize = 4096

// PageScanner locates and parses Ogg pages from a byte source, buffering
// just enough of the stream to assemble one page at a time. It is the
// shared low-level primitive behind both sequential packet reading and the
// seek engine's page probing.
type PageScanner struct {
	src    source.ByteSource
	buf    []byte
	start  int64 // absolute offset of buf[0] in the stream
	eof    bool  // true once Read has returned 0 with no more data
}

// NewPageScanner creates a scanner reading from src, starting at whatever
// position src is currently at.
func NewPageScanner(src source.ByteSource) *PageScanner {
	return &PageScanner{src: src}
}

// Offset returns the absolute stream offset of the next byte the scanner
// will hand out (i.e. the start of the next page, once buffered data is
// consumed past a prior page).
func (s *PageScanner) Offset() int64 { return s.start }

// SeekTo repositions the scanner (and, if seekable, the underlying source)
// to an absolute byte offset, discarding any buffered data.
func (s *PageScanner) SeekTo(offset int64) error {
	if err := s.src.Seek(offset); err != nil {
		return err
	}
	s.buf = nil
	s.start = offset
	s.eof = false
	return nil
}

// fill ensures at least n bytes are buffered (or returns what it could get
// before hitting EOF).
func (s *PageScanner) fill(n int) error {
	for len(s.buf) < n && !s.eof {
		chunk := make([]byte, readChunkSize)
		read, err := s.src.Read(chunk)
		if read > 0 {
			s.buf = append(s.buf, chunk[:read]...)
		}
		if err != nil {
			return err
		}
		if read == 0 {
			s.eof = true
		}
	}
	return nil
}

// discard drops n bytes from the front of the buffer, advancing start.
func (s *PageScanner) discard(n int) {
	s.buf = s.buf[n:]
	s.start += int64(n)
}

// NextPage parses the next page at the scanner's current position. If
// scanForNext is false (the default, fail-fast behavior of spec.md §4.2),
// a malformed header at the current position is a hard error. If true, on
// a parse failure the scanner advances byte-by-byte looking for the next
// valid ("OggS" + good CRC) page header, per the scan-for-next-page open
// option.
func (s *PageScanner) NextPage(scanForNext bool) (*Page, int64, error) {
	pageStart := s.start
	if err := s.fill(headerSize); err != nil {
		return nil, 0, err
	}
	if len(s.buf) == 0 {
		return nil, 0, io.EOF
	}

	page, consumed, err := s.tryParseAt(0, scanForNext)
	if err == nil {
		s.discard(consumed)
		return page, pageStart, nil
	}
	if !scanForNext {
		return nil, 0, err
	}

	// Scan forward byte-by-byte for the next capture pattern whose CRC
	// validates.
	for {
		if err := s.fill(headerSize); err != nil {
			return nil, 0, err
		}
		idx := indexCapture(s.buf)
		if idx < 0 {
			if s.eof {
				return nil, 0, ErrPageNotFound
			}
			// Keep the tail that could still be a partial capture
			// pattern and refill.
			if len(s.buf) > 3 {
				s.discard(len(s.buf) - 3)
			}
			continue
		}
		if idx > 0 {
			s.discard(idx)
		}
		page, consumed, perr := s.tryParseAt(0, true)
		if perr == nil {
			s.discard(consumed)
			return page, s.start - int64(consumed), nil
		}
		// False positive capture pattern; skip past it and keep scanning.
		s.discard(1)
	}
}

// tryParseAt parses a page starting at buf[off:], growing the buffer as
// needed to cover the full page (header + segment table + payload).
func (s *PageScanner) tryParseAt(off int, checkCRC bool) (*Page, int, error) {
	if len(s.buf)-off < headerSize {
		if err := s.fill(off + headerSize); err != nil {
			return nil, 0, err
		}
	}
	if len(s.buf)-off < headerSize {
		return nil, 0, ErrInvalidPage
	}
	numSegments := int(s.buf[off+26])
	need := headerSize + numSegments
	if err := s.fill(off + need); err != nil {
		return nil, 0, err
	}
	if len(s.buf)-off < need {
		return nil, 0, ErrInvalidPage
	}
	payload := 0
	for _, seg := range s.buf[off+27 : off+need] {
		payload += int(seg)
	}
	need += payload
	if err := s.fill(off + need); err != nil {
		return nil, 0, err
	}
	if len(s.buf)-off < need {
		return nil, 0, ErrInvalidPage
	}
	return parsePage(s.buf[off:off+need], checkCRC)
}

func indexCapture(buf []byte) int {
	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] == 'O' && buf[i+1] == 'g' && buf[i+2] == 'g' && buf[i+3] == 'S' {
			return i
		}
	}
	return -1
}
