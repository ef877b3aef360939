package setup

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/util"
)

// parseMappings reads the mapping count and that many mapping descriptors
// (spec.md §4.4 item 5).
func parseMappings(br *bitreader.Reader, channels, floorCount, residueCount int) ([]Mapping, error) {
	count := int(br.GetBits(6)) + 1
	mappings := make([]Mapping, count)

	couplingBits := util.Ilog(int32(channels - 1))

	for i := 0; i < count; i++ {
		m := Mapping{}
		if br.GetBits(16) != 0 {
			return nil, ErrInvalidMapping
		}

		submapCount := 1
		if br.GetBits(1) != 0 {
			submapCount = int(br.GetBits(4)) + 1
		}

		if br.GetBits(1) != 0 {
			steps := int(br.GetBits(8)) + 1
			m.Coupling = make([]CouplingStep, steps)
			for j := range m.Coupling {
				mag := int(br.GetBits(couplingBits))
				ang := int(br.GetBits(couplingBits))
				if mag >= channels || ang >= channels || mag == ang {
					return nil, ErrInvalidMapping
				}
				m.Coupling[j] = CouplingStep{Magnitude: mag, Angle: ang}
			}
		}

		if br.GetBits(2) != 0 {
			return nil, ErrReservedField
		}

		m.Mux = make([]int, channels)
		if submapCount > 1 {
			for j := range m.Mux {
				m.Mux[j] = int(br.GetBits(4))
				if m.Mux[j] >= submapCount {
					return nil, ErrInvalidMapping
				}
			}
		}

		m.Submaps = make([]Submap, submapCount)
		for j := range m.Submaps {
			br.GetBits(8) // unused time-config placeholder (spec.md §4.4 item 5)
			floor := int(br.GetBits(8))
			residue := int(br.GetBits(8))
			if floor >= floorCount || residue >= residueCount {
				return nil, ErrInvalidMapping
			}
			m.Submaps[j] = Submap{Floor: floor, Residue: residue}
		}
		if br.EOP() {
			return nil, ErrTruncated
		}

		mappings[i] = m
	}
	return mappings, nil
}

// parseModes reads the mode count and that many mode descriptors
// (spec.md §4.4 item 6).
func parseModes(br *bitreader.Reader, mappingCount int) ([]Mode, error) {
	count := int(br.GetBits(6)) + 1
	modes := make([]Mode, count)
	for i := range modes {
		blockflag := br.GetBits(1) != 0
		windowType := br.GetBits(16)
		transformType := br.GetBits(16)
		mapping := int(br.GetBits(8))
		if windowType != 0 || transformType != 0 || mapping >= mappingCount {
			return nil, ErrInvalidMode
		}
		modes[i] = Mode{BlockFlag: blockflag, Mapping: mapping}
	}
	if br.EOP() {
		return nil, ErrTruncated
	}
	return modes, nil
}
