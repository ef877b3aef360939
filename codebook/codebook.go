// Package codebook decodes the Huffman and vector-quantization codebooks
// that back every scalar symbol and residue/floor coefficient in a Vorbis
// bitstream (spec.md §4.3).
package codebook

import "math"

// Codebook is one fully-built codebook from the setup header: its Huffman
// decode tables, plus (for lookup_type 1/2) its vector-quantization
// multiplicand table.
type Codebook struct {
	Dimensions int
	Entries    int
	Sparse     bool

	huff *huffmanTables

	LookupType   int
	SequenceP    bool
	MinimumValue float32
	DeltaValue   float32

	// Multiplicands is the pre-expanded per-component value table: one
	// row of Dimensions float32s per codebook entry (dense) or per
	// sorted position (sparse), each already scaled by DeltaValue and
	// offset by MinimumValue. Lookup type 1's divide-by-power-of-V
	// addressing is resolved once here at setup time rather than on
	// every decoded vector.
	Multiplicands []float32
}

// New builds a Codebook from its setup-header fields. lengths holds one
// entry per symbol (0 <= length) or noCodeLength for a symbol absent from
// a sparse codebook. rawValues holds the raw, unscaled VQ lookup table
// read from the bitstream (nil if lookupType == 0, i.e. a pure Huffman
// codebook with no attached vector values).
func New(dimensions, entries int, sparse bool, lengths []uint8, lookupType int, minimumValue, deltaValue float32, sequenceP bool, rawValues []uint32) (*Codebook, error) {
	built, ok := buildCodewords(lengths)
	if !ok {
		return nil, ErrInvalidSetup
	}

	c := &Codebook{
		Dimensions:   dimensions,
		Entries:      entries,
		Sparse:       sparse,
		huff:         buildHuffmanTables(built, entries, sparse),
		LookupType:   lookupType,
		SequenceP:    sequenceP,
		MinimumValue: minimumValue,
		DeltaValue:   deltaValue,
	}

	if lookupType == 0 {
		return c, nil
	}

	lookupValues := len(rawValues)
	rows := entries
	if sparse {
		rows = len(c.huff.sortedSymbols)
	}
	c.Multiplicands = make([]float32, rows*dimensions)

	switch lookupType {
	case 1:
		// lookup1_values addressing: component j of entry z indexes
		// rawValues at (z / V^j) mod V, where V = lookupValues.
		for row := 0; row < rows; row++ {
			z := row
			if sparse {
				z = int(c.huff.sortedSymbols[row])
			}
			div := 1
			for k := 0; k < dimensions; k++ {
				off := (z / div) % lookupValues
				c.Multiplicands[row*dimensions+k] = float32(rawValues[off])*deltaValue + minimumValue
				div *= lookupValues
			}
		}
	case 2:
		// lookup_type 2 lists one raw value per (entry, component)
		// pair directly, in row-major order; a sparse codebook only
		// keeps the rows for symbols that actually have a codeword.
		for row := 0; row < rows; row++ {
			z := row
			if sparse {
				z = int(c.huff.sortedSymbols[row])
			}
			for k := 0; k < dimensions; k++ {
				c.Multiplicands[row*dimensions+k] = float32(rawValues[z*dimensions+k])*deltaValue + minimumValue
			}
		}
	default:
		return nil, ErrInvalidSetup
	}

	return c, nil
}

// Lookup1Values computes the per-dimension value-table size V for lookup
// type 1, the largest V with V^dimensions <= entries (spec.md §4.3,
// "lookup1_values"; ported from the reference decoder's lookup1_values,
// which nudges the float-rounded candidate up by one when the floating
// point floor/exp/log round-trip undershoots).
func Lookup1Values(entries, dimensions int) int {
	r := int(math.Floor(math.Exp(math.Log(float64(entries)) / float64(dimensions))))
	if int(math.Floor(math.Pow(float64(r+1), float64(dimensions)))) <= entries {
		r++
	}
	return r
}

// DecodeScalar reads one plain Huffman symbol, e.g. a residue partition's
// class number via its classbook. Returns ok=false on end-of-packet.
func (c *Codebook) DecodeScalar(br accumulator) (int32, bool) {
	raw, ok := c.huff.decodeRaw(br)
	if !ok {
		return 0, false
	}
	return c.huff.symbol(raw), true
}

// DecodeVectorAdd decodes one VQ entry and adds its (up to n) components
// into output[0:n]. Used for residue type 1 (and any other "decode a
// contiguous run of lookup-table values" context).
//
// Ported from codebook_decode (the !STB_VORBIS_DIVIDES_IN_CODEBOOK /
// pre-expanded-multiplicand path, which is the one this package always
// uses — see New).
func (c *Codebook) DecodeVectorAdd(br accumulator, output []float32, n int) bool {
	raw, ok := c.huff.decodeRaw(br)
	if !ok {
		return false
	}
	if n > c.Dimensions {
		n = c.Dimensions
	}
	base := int(raw) * c.Dimensions
	var last float32
	for i := 0; i < n; i++ {
		val := c.Multiplicands[base+i]
		if c.SequenceP {
			val += last
			last = val
		}
		output[i] += val
	}
	return true
}

// DecodeVectorStep decodes one VQ entry, scattering its components into
// output at the given stride. Used for residue type 0.
//
// Ported from codebook_decode_step.
func (c *Codebook) DecodeVectorStep(br accumulator, output []float32, n, step int) bool {
	raw, ok := c.huff.decodeRaw(br)
	if !ok {
		return false
	}
	if n > c.Dimensions {
		n = c.Dimensions
	}
	base := int(raw) * c.Dimensions
	var last float32
	for i := 0; i < n; i++ {
		val := c.Multiplicands[base+i] + last
		output[i*step] += val
		if c.SequenceP {
			last = val
		}
	}
	return true
}

// DecodeDeinterleave decodes successive VQ entries into a virtual
// interleaved buffer spanning ch channel buffers, advancing (cInter,
// pInter) as it goes, until totalDecode components have been produced or
// the packet runs out. Used for residue type 2 (spec.md §4.6's
// channel-deinterleaved residue).
//
// Ported from codebook_decode_deinterleave_repeat.
func (c *Codebook) DecodeDeinterleave(br accumulator, outputs [][]float32, cInter, pInter *int, length, totalDecode int) bool {
	ch := len(outputs)
	for totalDecode > 0 {
		raw, ok := c.huff.decodeRaw(br)
		if !ok {
			return false
		}

		effective := c.Dimensions
		if *cInter+(*pInter)*ch+effective > length*ch {
			effective = length*ch - ((*pInter)*ch - *cInter)
		}

		base := int(raw) * c.Dimensions
		var last float32
		for i := 0; i < effective; i++ {
			val := c.Multiplicands[base+i]
			if c.SequenceP {
				val += last
				last = val
			}
			outputs[*cInter][*pInter] += val
			*cInter++
			if *cInter == ch {
				*cInter = 0
				*pInter++
			}
		}
		totalDecode -= effective
	}
	return true
}
