package setup

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/codebook"
	"github.com/achurch/libnogg-sub000/util"
)

const codebookSyncPattern = 0x564342

// parseCodebooks reads the codebook count and that many codebook
// descriptors from the front of the setup packet (spec.md §4.4 item 1).
func parseCodebooks(br *bitreader.Reader) ([]*codebook.Codebook, error) {
	count := int(br.GetBits(8)) + 1
	books := make([]*codebook.Codebook, count)

	for i := 0; i < count; i++ {
		if br.GetBits(24) != codebookSyncPattern {
			return nil, ErrInvalidCodebook
		}
		dimensions := int(br.GetBits(16))
		entries := int(br.GetBits(24))
		ordered := br.GetBits(1) != 0

		lengths := make([]uint8, entries)
		sparse := false
		if ordered {
			current := 0
			length := int(br.GetBits(5)) + 1
			for current < entries {
				limit := entries - current
				runCount := int(br.GetBits(util.Ilog(int32(limit))))
				if current+runCount > entries {
					return nil, ErrInvalidCodebook
				}
				for j := 0; j < runCount; j++ {
					lengths[current+j] = uint8(length)
				}
				current += runCount
				length++
			}
		} else {
			sparse = br.GetBits(1) != 0
			for j := 0; j < entries; j++ {
				present := true
				if sparse {
					present = br.GetBits(1) != 0
				}
				if present {
					lengths[j] = uint8(br.GetBits(5)) + 1
				} else {
					lengths[j] = noCodeLengthMarker
				}
			}
		}
		if br.EOP() {
			return nil, ErrTruncated
		}

		lookupType := int(br.GetBits(4))
		var minimum, delta float32
		var sequenceP bool
		var rawValues []uint32
		if lookupType > 2 {
			return nil, ErrInvalidCodebook
		}
		if lookupType != 0 {
			minimum = unpackFloat32(br.GetBits(32))
			delta = unpackFloat32(br.GetBits(32))
			valueBits := int(br.GetBits(4)) + 1
			sequenceP = br.GetBits(1) != 0

			var lookupValues int
			if lookupType == 1 {
				lookupValues = codebook.Lookup1Values(entries, dimensions)
			} else {
				lookupValues = entries * dimensions
			}
			rawValues = make([]uint32, lookupValues)
			for j := range rawValues {
				rawValues[j] = br.GetBits(valueBits)
			}
		}
		if br.EOP() {
			return nil, ErrTruncated
		}

		book, err := codebook.New(dimensions, entries, sparse, lengths, lookupType, minimum, delta, sequenceP, rawValues)
		if err != nil {
			return nil, ErrInvalidCodebook
		}
		books[i] = book
	}

	return books, nil
}

// noCodeLengthMarker mirrors codebook.noCodeLength's sentinel value
// (255); it is unexported there, so the setup parser keeps its own copy
// rather than introduce a cross-package dependency for one constant.
const noCodeLengthMarker = 255

// parseTimeDomainTransforms reads and discards the time-domain transform
// placeholder list: every Vorbis I stream has these reserved as zero
// (spec.md §4.4 item 2).
func parseTimeDomainTransforms(br *bitreader.Reader) error {
	count := int(br.GetBits(6)) + 1
	for i := 0; i < count; i++ {
		if br.GetBits(16) != 0 {
			return ErrReservedField
		}
	}
	return nil
}
