package codebook

import "github.com/achurch/libnogg-sub000/util"

// noCodeLength marks a symbol as absent from a sparse codebook (spec.md
// §4.3's "no codeword" entries).
const noCodeLength = 255

// fastHuffmanBits is the width of the direct-index acceleration table used
// for every codeword short enough to fit it. Longer codewords fall back to
// the sorted binary search below. 10 matches the table size the reference
// decoder settled on: large enough to catch the overwhelming majority of
// real codewords, small enough not to dominate memory.
const fastHuffmanBits = 10
const fastHuffmanSize = 1 << fastHuffmanBits
const fastHuffmanMask = fastHuffmanSize - 1

// codeEntry is one assigned Huffman codeword, in the order the canonical
// assignment algorithm produced it (ascending original symbol index among
// the present symbols).
type codeEntry struct {
	symbol int32
	length uint8
	code   uint32 // bit-reversed (LSB-first) form, ready to compare against the bit accumulator directly
}

// buildCodewords assigns canonical Huffman codewords to a (possibly sparse)
// list of per-symbol lengths, following the "first available leaf" rule the
// Vorbis bitstream spec requires instead of the sorted-by-frequency
// assignment most Huffman builders use (codeword order here must track
// original symbol order, not length order).
//
// Ported from compute_codewords / add_entry.
func buildCodewords(lengths []uint8) ([]codeEntry, bool) {
	var available [33]uint32 // available[i] = the next free leaf at depth i, left-justified in a 32-bit word

	n := len(lengths)
	k := 0
	for k < n && lengths[k] >= noCodeLength {
		k++
	}
	if k == n {
		// every symbol absent: a legal (if useless) codebook
		return nil, true
	}

	entries := make([]codeEntry, 0, n-k)
	entries = append(entries, codeEntry{symbol: int32(k), length: lengths[k], code: 0})
	for i := 1; i <= int(lengths[k]); i++ {
		available[i] = 1 << uint(32-i)
	}

	for i := k + 1; i < n; i++ {
		length := lengths[i]
		if length >= noCodeLength {
			continue
		}
		z := int(length)
		for z > 0 && available[z] == 0 {
			z--
		}
		if z == 0 {
			return nil, false
		}
		res := available[z]
		available[z] = 0
		entries = append(entries, codeEntry{symbol: int32(i), length: length, code: util.BitReverse32(res)})
		if z != int(length) {
			for y := int(length); y > z; y-- {
				available[y] = res + (1 << uint(32-y))
			}
		}
	}
	return entries, true
}

// huffmanTables holds the two lookup structures built from a set of
// codeEntry values: a direct-index table for short codewords, and a
// bit-reversed sorted table (searched by binary search) for everything
// else. For a sparse codebook every present symbol lands in the sorted
// table regardless of length, since there is no per-symbol dense slot to
// hold its length for the fast-table overflow case; for a dense codebook
// only codewords longer than fastHuffmanBits need the sorted fallback.
//
// Ported from compute_accelerated_huffman / compute_sorted_huffman /
// codebook_decode_scalar / codebook_decode_scalar_raw.
type huffmanTables struct {
	sparse bool

	// dense-only: one slot per symbol, in symbol order.
	denseCodes   []uint32
	denseLengths []uint8

	// populated for every sparse codebook, and for any dense codebook
	// with at least one codeword longer than fastHuffmanBits.
	sortedCodewords []uint32 // ascending, MSB-left-justified form
	sortedSymbols   []int32
	sortedLengths   []uint8

	fast       [fastHuffmanSize]int32
	fastLength [fastHuffmanSize]uint8
}

func buildHuffmanTables(entries []codeEntry, n int, sparse bool) *huffmanTables {
	t := &huffmanTables{sparse: sparse}
	for i := range t.fast {
		t.fast[i] = -1
	}

	if !sparse {
		t.denseCodes = make([]uint32, n)
		t.denseLengths = make([]uint8, n)
		for i := range t.denseLengths {
			t.denseLengths[i] = noCodeLength
		}
		for _, e := range entries {
			t.denseCodes[e.symbol] = e.code
			t.denseLengths[e.symbol] = e.length
		}
	}

	// Sorted table: sparse codebooks always need it (the fast table
	// alone can't record a symbol's length once it collides past the
	// table width), dense codebooks only for codewords the fast table
	// can't hold. For a sparse codebook this ends up holding every
	// present symbol, since decodeRaw must be able to return a sorted
	// position for every one of them (there is no dense slot to fall
	// back to).
	type sortedEntry struct {
		code   uint32 // MSB-left-justified form, for ascending sort order
		lsb    uint32 // LSB-first form, for fast-table keying
		symbol int32
		length uint8
	}
	var sorted []sortedEntry
	for _, e := range entries {
		if sparse || e.length > fastHuffmanBits {
			sorted = append(sorted, sortedEntry{code: util.BitReverse32(e.code), lsb: e.code, symbol: e.symbol, length: e.length})
		}
	}
	// insertion sort is adequate: codebooks rarely exceed a few hundred entries
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && sorted[j-1].code > sorted[j].code {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}

	// Fast table: every codeword short enough fits here regardless of
	// sparse/dense, keyed by its own LSB-first bits. A sparse
	// codebook's fast-table entries must point at the symbol's
	// position in the sorted arrays above (decodeRaw's sparse contract),
	// so this has to run after the sort, not over build order.
	if sparse {
		for pos, s := range sorted {
			if s.length > fastHuffmanBits {
				continue
			}
			z := s.lsb
			for z < fastHuffmanSize {
				t.fast[z] = int32(pos)
				t.fastLength[z] = s.length
				z += 1 << s.length
			}
		}
	} else {
		for _, e := range entries {
			if e.length > fastHuffmanBits {
				continue
			}
			z := e.code
			for z < fastHuffmanSize {
				t.fast[z] = e.symbol
				t.fastLength[z] = e.length
				z += 1 << e.length
			}
		}
	}

	// A one-entry codebook whose only codeword is 1 bit long decodes to
	// that entry whichever bit is read.
	if n == 1 && len(entries) == 1 && entries[0].length == 1 {
		for z := range t.fast {
			t.fast[z] = t.fast[0]
			t.fastLength[z] = 1
		}
	}

	t.sortedCodewords = make([]uint32, len(sorted))
	t.sortedSymbols = make([]int32, len(sorted))
	t.sortedLengths = make([]uint8, len(sorted))
	for i, s := range sorted {
		t.sortedCodewords[i] = s.code
		t.sortedSymbols[i] = s.symbol
		t.sortedLengths[i] = s.length
	}

	return t
}

// accumulator is the minimal view of a bit reader's fast path huffman
// tables need: the low bits for the fast table, and a full-width,
// bit-reversal-ready view for the sorted table's binary search.
type accumulator interface {
	PeekFast(bits int) (uint32, bool)
	Accumulator() (acc uint32, validBits int)
	GetBits(n int) uint32
}

// decodeRaw returns, for a dense codebook, the decoded symbol; for a
// sparse codebook, the index into the sorted tables (not yet mapped back
// to a symbol — VQ lookups index their multiplicand table this way
// directly, while plain symbol decode maps through sortedSymbols).
func (t *huffmanTables) decodeRaw(br accumulator) (int32, bool) {
	bits, ok := br.PeekFast(fastHuffmanBits)
	if idx := t.fast[bits&fastHuffmanMask]; idx >= 0 {
		length := int(t.fastLength[bits&fastHuffmanMask])
		if !ok {
			// Fewer than fastHuffmanBits bits remain in the packet; the
			// match counts only if the codeword fits in what is left.
			if _, validBits := br.Accumulator(); validBits < length {
				return t.decodeSorted(br)
			}
		}
		br.GetBits(length)
		return idx, true
	}
	return t.decodeSorted(br)
}

func (t *huffmanTables) decodeSorted(br accumulator) (int32, bool) {
	if len(t.sortedCodewords) == 0 {
		return t.decodeLinear(br)
	}
	acc, validBits := br.Accumulator()
	if validBits < 0 {
		return 0, false
	}
	code := util.BitReverse32(acc)
	lo, hi := 0, len(t.sortedCodewords)
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if t.sortedCodewords[mid] <= code {
			lo = mid
		} else {
			hi = mid
		}
	}
	length := t.sortedLengths[lo]
	if validBits < int(length) {
		return 0, false
	}
	br.GetBits(int(length))
	return t.sortedSymbols[lo], true
}

// decodeLinear is the fallback for small dense codebooks with no
// codeword long enough to need a sorted table (mirrors the reference
// decoder's final linear-scan branch of codebook_decode_scalar_raw).
func (t *huffmanTables) decodeLinear(br accumulator) (int32, bool) {
	acc, validBits := br.Accumulator()
	if validBits < 0 {
		return 0, false
	}
	for sym, length := range t.denseLengths {
		if length == noCodeLength {
			continue
		}
		mask := uint32(1)<<uint(length) - 1
		if t.denseCodes[sym] == acc&mask {
			if validBits < int(length) {
				return 0, false
			}
			br.GetBits(int(length))
			return int32(sym), true
		}
	}
	return 0, false
}

// symbol maps a decodeRaw result back to the real symbol value: a no-op
// for dense codebooks (decodeRaw already returns the symbol), a lookup
// through sortedSymbols for sparse ones.
func (t *huffmanTables) symbol(raw int32) int32 {
	if t.sparse {
		return t.sortedSymbols[raw]
	}
	return raw
}
