package nogg

// OpenOption is a bitmask of open-time behavior toggles (spec.md §6
// "Open options").
type OpenOption uint32

const (
	// OptionScanForNextPage enables forward byte-scanning for the next
	// valid Ogg page after an apparent corruption, instead of failing
	// fast (spec.md §4.2 "Page-search tolerance").
	OptionScanForNextPage OpenOption = 1 << iota

	// OptionReadInt16Only rejects Read (the float32 path) with
	// ErrDisabledFunction. Decoded samples are still staged as float32
	// and converted to int16 by ReadInt16, exactly as without the option.
	OptionReadInt16Only

	// OptionDividesInCodebook and OptionDividesInResidue name the two
	// division-vs-pre-expanded-table implementation strategies spec.md
	// §6 describes as build-time options in the source decoder. This
	// port always uses the pre-expanded-table strategy (DESIGN.md
	// records why the integer-division variant was not built), so these
	// bits are accepted for API compatibility but have no effect.
	OptionDividesInCodebook
	OptionDividesInResidue
)

func (o OpenOption) has(bit OpenOption) bool { return o&bit != 0 }
