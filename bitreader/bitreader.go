// Package bitreader implements the LSB-first bit accumulator used to pull
// fields out of a single Vorbis packet (spec.md §4.1).
//
// Vorbis packets are handed to the decoder as whole byte slices (already
// reassembled across Ogg page boundaries by package oggframe), so unlike
// the original C decoder's get8_packet_raw, this reader never needs to
// cross a segment or page boundary itself — reaching the end of the slice
// is exactly reaching the end of the packet.
package bitreader

// invalidBits is the sentinel valid-bit count that marks the reader as
// having hit end-of-packet; once set it stays set (sticky) until Reset.
const invalidBits = -1

// Reader pulls bit fields from a packet's byte data, LSB-first.
type Reader struct {
	data      []byte
	pos       int
	acc       uint32
	validBits int // -1 (invalidBits) once EOP is reached
}

// New creates a Reader over packet, starting at bit 0.
func New(packet []byte) *Reader {
	return &Reader{data: packet}
}

// Reset rebinds the reader to a new packet and clears EOP state.
func (r *Reader) Reset(packet []byte) {
	r.data = packet
	r.pos = 0
	r.acc = 0
	r.validBits = 0
}

// EOP reports whether the reader has hit end-of-packet. Once true it
// remains true until Reset.
func (r *Reader) EOP() bool { return r.validBits == invalidBits }

// BytePosition returns the number of whole bytes consumed from the packet
// so far (bits buffered in the accumulator but not yet consumed by a
// GetBits call are not counted as "consumed").
func (r *Reader) BytePosition() int { return r.pos }

// getByteRaw pulls one raw byte from the packet, or -1 at end of packet.
func (r *Reader) getByteRaw() int {
	if r.pos >= len(r.data) {
		return -1
	}
	b := int(r.data[r.pos])
	r.pos++
	return b
}

// fillBits opportunistically refills the accumulator up to 24 valid bits,
// stopping early if the packet ends (spec.md §4.1 fill_bits).
func (r *Reader) fillBits() {
	if r.validBits < 0 || r.validBits > 24 {
		return
	}
	if r.validBits == 0 {
		r.acc = 0
	}
	for r.validBits <= 24 {
		z := r.getByteRaw()
		if z < 0 {
			return
		}
		r.acc += uint32(z) << uint(r.validBits)
		r.validBits += 8
	}
}

// GetBits returns the next n bits (0 <= n <= 32), LSB-first. Once the
// packet is exhausted mid-read, the reader becomes sticky-EOP and every
// subsequent call (including this one) returns 0.
func (r *Reader) GetBits(n int) uint32 {
	if r.validBits < 0 {
		return 0
	}
	if n == 0 {
		return 0
	}
	if r.validBits < n {
		if n > 24 {
			// The accumulator technique below can't safely hold more
			// than 24 extra bits on top of what's already buffered, so
			// split into two sub-reads (spec.md §4.1).
			lo := r.GetBits(24)
			hi := r.GetBits(n - 24)
			return lo + hi<<24
		}
		if r.validBits == 0 {
			r.acc = 0
		}
		for r.validBits < n {
			z := r.getByteRaw()
			if z < 0 {
				r.validBits = invalidBits
				return 0
			}
			r.acc += uint32(z) << uint(r.validBits)
			r.validBits += 8
		}
	}
	if r.validBits < 0 {
		return 0
	}
	mask := uint32(1)<<uint(n) - 1
	if n == 32 {
		mask = 0xFFFFFFFF
	}
	z := r.acc & mask
	r.acc >>= uint(n)
	r.validBits -= n
	return z
}

// PeekFast returns the low fastLen bits of the accumulator without
// consuming them, refilling first if necessary, for the Huffman fast-table
// lookup (spec.md §4.3). The caller consumes the matched codeword length
// itself via GetBits.
func (r *Reader) PeekFast(fastLen int) (bits uint32, ok bool) {
	r.fillBits()
	if r.validBits < fastLen {
		if r.validBits < 0 {
			return 0, false
		}
		// Not enough bits buffered for a guaranteed fast match: the
		// returned bits are zero-padded past the end of the packet, and
		// the caller checks a fast-table match against the remaining
		// bit count before consuming it.
		return r.acc & (uint32(1)<<uint(fastLen) - 1), r.validBits == fastLen
	}
	return r.acc & (uint32(1)<<uint(fastLen) - 1), true
}

// Accumulator exposes the raw accumulator and valid-bit count, for the
// sorted-table Huffman search which needs to reverse the full accumulator.
func (r *Reader) Accumulator() (acc uint32, validBits int) {
	r.fillBits()
	return r.acc, r.validBits
}

// FlushPacket discards all remaining bytes of the current packet,
// marking the reader as at end-of-packet without treating it as an error
// (spec.md §4.1 flush_packet).
func (r *Reader) FlushPacket() {
	r.pos = len(r.data)
	r.acc = 0
	r.validBits = 0
}
