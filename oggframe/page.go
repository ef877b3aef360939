package oggframe

import "encoding/binary"

// Page header flag constants (RFC 3533 §6).
const (
	FlagContinuation = 0x01 // continues a packet from the previous page
	FlagFirst        = 0x02 // first page of the logical bitstream
	FlagLast         = 0x04 // last page of the logical bitstream
)

const (
	// headerSize is the fixed portion of the page header, before the
	// segment table.
	headerSize = 27

	capturePattern = "OggS"
)

// Page is a single parsed Ogg page.
type Page struct {
	Version      byte
	HeaderType   byte
	GranulePos   uint64
	SerialNumber uint32
	PageSequence uint32
	Segments     []byte // one entry per segment, 0-255
	Payload      []byte // concatenation of all segment payloads
}

func (p *Page) IsFirst() bool        { return p.HeaderType&FlagFirst != 0 }
func (p *Page) IsLast() bool         { return p.HeaderType&FlagLast != 0 }
func (p *Page) IsContinuation() bool { return p.HeaderType&FlagContinuation != 0 }

// lastSegmentContinues reports whether the final segment in the table has
// length 255, meaning the packet it belongs to is not yet terminated and
// continues onto the next page.
func (p *Page) lastSegmentContinues() bool {
	return len(p.Segments) > 0 && p.Segments[len(p.Segments)-1] == 255
}

// packetLengths splits the segment table into packet boundaries. A segment
// of length < 255 terminates a packet; a trailing run of 255s that never
// terminates describes a packet that continues onto the next page (its
// partial length is still reported, as the final entry).
func (p *Page) packetLengths() []int {
	if len(p.Segments) == 0 {
		return nil
	}
	var lens []int
	cur := 0
	for _, seg := range p.Segments {
		cur += int(seg)
		if seg < 255 {
			lens = append(lens, cur)
			cur = 0
		}
	}
	if cur > 0 || (len(lens) == 0 && len(p.Segments) > 0) {
		lens = append(lens, cur)
	}
	return lens
}

// Packets splits Payload according to packetLengths. If the page's final
// packet is incomplete (continues onto the next page), the last returned
// slice holds only the partial bytes present on this page.
func (p *Page) Packets() [][]byte {
	lens := p.packetLengths()
	if len(lens) == 0 {
		return nil
	}
	out := make([][]byte, len(lens))
	off := 0
	for i, l := range lens {
		end := off + l
		if end > len(p.Payload) {
			end = len(p.Payload)
		}
		out[i] = p.Payload[off:end]
		off = end
	}
	return out
}

// parsePage parses a single page from the front of data. It returns the
// parsed page, the number of bytes consumed, and an error. checkCRC
// selects whether the (relatively expensive, only needed when scanning
// past corruption) CRC-32 validation runs; sequential decode normally
// trusts the input and skips it (spec.md §4.2).
func parsePage(data []byte, checkCRC bool) (*Page, int, error) {
	if len(data) < headerSize {
		return nil, 0, ErrInvalidPage
	}
	if string(data[0:4]) != capturePattern {
		return nil, 0, ErrInvalidPage
	}
	version := data[4]
	if version != 0 {
		return nil, 0, ErrInvalidPage
	}

	p := &Page{
		Version:      version,
		HeaderType:   data[5],
		GranulePos:   binary.LittleEndian.Uint64(data[6:14]),
		SerialNumber: binary.LittleEndian.Uint32(data[14:18]),
		PageSequence: binary.LittleEndian.Uint32(data[18:22]),
	}
	storedCRC := binary.LittleEndian.Uint32(data[22:26])
	numSegments := int(data[26])

	total := headerSize + numSegments
	if len(data) < total {
		return nil, 0, ErrInvalidPage
	}
	p.Segments = append([]byte(nil), data[27:total]...)

	payloadSize := 0
	for _, seg := range p.Segments {
		payloadSize += int(seg)
	}
	total += payloadSize
	if len(data) < total {
		return nil, 0, ErrInvalidPage
	}
	p.Payload = append([]byte(nil), data[headerSize+numSegments:total]...)

	if checkCRC {
		buf := append([]byte(nil), data[:total]...)
		buf[22], buf[23], buf[24], buf[25] = 0, 0, 0, 0
		if CRC32(buf) != storedCRC {
			return nil, 0, ErrBadCRC
		}
	}

	return p, total, nil
}
