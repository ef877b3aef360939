package setup

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/util"
)

const (
	packetTypeIdentification = 1
	packetTypeComment        = 3
	packetTypeSetup          = 5
)

var vorbisMagic = [6]byte{'v', 'o', 'r', 'b', 'i', 's'}

func checkHeaderPacket(data []byte, wantType byte, typeErr error) ([]byte, error) {
	if len(data) < 7 || data[0] != wantType || [6]byte(data[1:7]) != vorbisMagic {
		return nil, typeErr
	}
	return data[7:], nil
}

// ParseIdentification decodes the identification header packet
// (spec.md §4.4: "Identification packet").
func ParseIdentification(packet []byte) (Identification, error) {
	body, err := checkHeaderPacket(packet, packetTypeIdentification, ErrNotIdentification)
	if err != nil {
		return Identification{}, err
	}
	if len(body) < 23 {
		return Identification{}, ErrTruncated
	}

	br := bitreader.New(body)
	version := br.GetBits(32)
	if version != 0 {
		return Identification{}, ErrBadVersion
	}
	channels := int(br.GetBits(8))
	sampleRate := br.GetBits(32)
	bitrateMax := int32(br.GetBits(32))
	bitrateNominal := int32(br.GetBits(32))
	bitrateMin := int32(br.GetBits(32))
	blocksizeByte := byte(br.GetBits(8))
	framing := br.GetBits(8)

	if br.EOP() {
		return Identification{}, ErrTruncated
	}
	if channels <= 0 {
		return Identification{}, ErrBadChannels
	}
	if sampleRate == 0 {
		return Identification{}, ErrBadSampleRate
	}
	if framing&1 == 0 {
		return Identification{}, ErrBadFraming
	}

	b0exp := int(blocksizeByte & 0x0f)
	b1exp := int(blocksizeByte >> 4)
	b0 := 1 << uint(b0exp)
	b1 := 1 << uint(b1exp)
	if b0 < 64 || b1 > 8192 || b0 > b1 {
		return Identification{}, ErrBadBlocksize
	}
	// ilog sanity: every blocksize must be a power of two in [64,8192],
	// which the shift-by-nibble construction already guarantees, but a
	// malicious nibble value (e.g. exponent 0) is still checked above.
	_ = util.Ilog

	return Identification{
		Channels:       channels,
		SampleRate:     sampleRate,
		BitrateMaximum: bitrateMax,
		BitrateNominal: bitrateNominal,
		BitrateMinimum: bitrateMin,
		Blocksize0:     b0,
		Blocksize1:     b1,
	}, nil
}

// ValidateComment checks the comment header packet's type tag only; its
// content (vendor string, user comment list) is deliberately not exposed
// (spec.md §4.4: "Comment packet: skipped").
func ValidateComment(packet []byte) error {
	_, err := checkHeaderPacket(packet, packetTypeComment, ErrNotComment)
	return err
}
