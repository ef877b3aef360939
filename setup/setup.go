package setup

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/imdct"
	"github.com/achurch/libnogg-sub000/util"
)

// Parse builds a complete Setup from the three Vorbis header packets, in
// the strict order the bitstream format requires (spec.md §4.4).
func Parse(identPacket, commentPacket, setupPacket []byte) (*Setup, error) {
	ident, err := ParseIdentification(identPacket)
	if err != nil {
		return nil, err
	}
	if err := ValidateComment(commentPacket); err != nil {
		return nil, err
	}

	body, err := checkHeaderPacket(setupPacket, packetTypeSetup, ErrNotSetup)
	if err != nil {
		return nil, err
	}
	br := bitreader.New(body)

	books, err := parseCodebooks(br)
	if err != nil {
		return nil, err
	}
	if err := parseTimeDomainTransforms(br); err != nil {
		return nil, err
	}
	floors, err := parseFloors(br, len(books))
	if err != nil {
		return nil, err
	}
	residues, err := parseResidues(br, books)
	if err != nil {
		return nil, err
	}
	mappings, err := parseMappings(br, ident.Channels, len(floors), len(residues))
	if err != nil {
		return nil, err
	}
	modes, err := parseModes(br, len(mappings))
	if err != nil {
		return nil, err
	}

	if br.GetBits(1) != 1 {
		return nil, ErrSetupFraming
	}
	if br.EOP() {
		return nil, ErrTruncated
	}

	s := &Setup{
		Ident:     ident,
		Codebooks: books,
		Floors:    floors,
		Residues:  residues,
		Mappings:  mappings,
		Modes:     modes,
		ModeBits:  util.Ilog(int32(len(modes) - 1)),
	}
	s.MDCT[0] = imdct.New(ident.Blocksize0)
	s.MDCT[1] = imdct.New(ident.Blocksize1)

	return s, nil
}
