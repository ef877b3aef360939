package setup

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/codebook"
)

// parseResidues reads the residue count and that many residue descriptors
// (spec.md §4.4 item 4).
func parseResidues(br *bitreader.Reader, books []*codebook.Codebook) ([]ResidueConfig, error) {
	count := int(br.GetBits(6)) + 1
	residues := make([]ResidueConfig, count)

	for i := 0; i < count; i++ {
		r := ResidueConfig{}
		r.Type = int(br.GetBits(16))
		if r.Type > 2 {
			return nil, ErrInvalidResidue
		}
		r.Begin = int(br.GetBits(24))
		r.End = int(br.GetBits(24))
		r.PartitionSize = int(br.GetBits(24)) + 1
		r.Classifications = int(br.GetBits(6)) + 1
		r.Classbook = int(br.GetBits(8))
		if r.Classbook >= len(books) {
			return nil, ErrInvalidResidue
		}

		cascade := make([]uint8, r.Classifications)
		for j := range cascade {
			low := uint8(br.GetBits(3))
			var high uint8
			if br.GetBits(1) != 0 {
				high = uint8(br.GetBits(5))
			}
			cascade[j] = high<<3 | low
		}
		r.Cascade = cascade

		r.Books = make([][8]int, r.Classifications)
		for j := range r.Books {
			for k := 0; k < 8; k++ {
				if cascade[j]&(1<<uint(k)) != 0 {
					book := int(br.GetBits(8))
					if book >= len(books) {
						return nil, ErrInvalidResidue
					}
					r.Books[j][k] = book
				} else {
					r.Books[j][k] = -1
				}
			}
		}
		if br.EOP() {
			return nil, ErrTruncated
		}

		classbook := books[r.Classbook]
		classwords := classbook.Dimensions
		r.ClassWordTable = make([][]int, classbook.Entries)
		for j := 0; j < classbook.Entries; j++ {
			tuple := make([]int, classwords)
			temp := j
			for k := classwords - 1; k >= 0; k-- {
				tuple[k] = temp % r.Classifications
				temp /= r.Classifications
			}
			r.ClassWordTable[j] = tuple
		}

		residues[i] = r
	}
	return residues, nil
}
