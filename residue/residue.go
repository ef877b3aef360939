// Package residue reconstructs the per-channel spectral residue vectors
// left over after floor decode (spec.md §4.6).
package residue

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/codebook"
	"github.com/achurch/libnogg-sub000/setup"
)

// Decode fills buffers[j][0:n] for every channel j with doNotDecode[j]
// false, dispatching to the type 0/1/2 layout the residue descriptor
// names. Channels with doNotDecode[j] true are left untouched by the
// type 0/1 path; type 2's deinterleaved bitstream cannot skip individual
// channels (spec.md §4.6 "type 2 channel coupling") so it still writes
// through every buffer once any channel in the mapping needs decoding.
//
// End of packet during decode is a recoverable frame error (spec.md
// §7): Decode simply returns, leaving whatever was already written in
// place for the caller to zero-fill or discard.
//
// Ported from decode_residue / residue_decode.
func Decode(br *bitreader.Reader, r *setup.ResidueConfig, books []*codebook.Codebook, buffers [][]float32, doNotDecode []bool, n int) {
	ch := len(buffers)
	for j := 0; j < ch; j++ {
		if !doNotDecode[j] {
			buf := buffers[j]
			for i := 0; i < n; i++ {
				buf[i] = 0
			}
		}
	}

	partRead := (r.End - r.Begin) / r.PartitionSize
	if partRead <= 0 {
		return
	}
	classbook := books[r.Classbook]
	classwords := classbook.Dimensions

	if r.Type == 2 && ch != 1 {
		decodeType2(br, r, books, buffers, doNotDecode, n, partRead, classbook, classwords)
		return
	}

	groups := (partRead + classwords - 1) / classwords
	partClass := make([][][]int, ch)
	for j := 0; j < ch; j++ {
		if !doNotDecode[j] {
			partClass[j] = make([][]int, groups)
		}
	}

	for pass := 0; pass < 8; pass++ {
		pcount := 0
		group := 0
		for pcount < partRead {
			if pass == 0 {
				for j := 0; j < ch; j++ {
					if doNotDecode[j] {
						continue
					}
					sym, ok := classbook.DecodeScalar(br)
					if !ok {
						return
					}
					partClass[j][group] = r.ClassWordTable[sym]
				}
			}
			for i := 0; i < classwords && pcount < partRead; i++ {
				for j := 0; j < ch; j++ {
					if doNotDecode[j] {
						continue
					}
					class := partClass[j][group][i]
					b := r.Books[class][pass]
					if b < 0 {
						continue
					}
					offset := r.Begin + pcount*r.PartitionSize
					var ok bool
					if r.Type == 0 {
						ok = decodeType0(br, books[b], buffers[j], offset, r.PartitionSize)
					} else {
						ok = decodeType1(br, books[b], buffers[j], offset, r.PartitionSize)
					}
					if !ok {
						return
					}
				}
				pcount++
			}
			group++
		}
	}
}

// decodeType0 scatters one partition's worth of VQ components across the
// channel buffer at a fixed stride, one codebook dimension set per
// starting offset (spec.md §4.6 "type 0, interleaved").
//
// Ported from residue_decode's rtype == 0 branch.
func decodeType0(br *bitreader.Reader, book *codebook.Codebook, target []float32, offset, size int) bool {
	step := size / book.Dimensions
	for k := 0; k < step; k++ {
		if !book.DecodeVectorStep(br, target[offset+k:], size-k, step) {
			return false
		}
	}
	return true
}

// decodeType1 adds successive, contiguous VQ entries into the partition
// (spec.md §4.6 "type 1, sequential"). Also used for type 2 residues
// with exactly one channel, which behave identically to type 1.
//
// Ported from residue_decode's rtype != 0 branch.
func decodeType1(br *bitreader.Reader, book *codebook.Codebook, target []float32, offset, size int) bool {
	for k := 0; k < size; {
		if !book.DecodeVectorAdd(br, target[offset:], size-k) {
			return false
		}
		k += book.Dimensions
		offset += book.Dimensions
	}
	return true
}

// decodeType2 handles the channel-deinterleaved layout (spec.md §4.6
// "type 2, channel coupling"): all channels in the submap share one
// virtual sample stream, walked via a running (channel, position)
// cursor that advances across channel boundaries mid-codeword. A
// channel's doNotDecode flag cannot skip its share of that stream
// (values would land at the wrong cursor position for every later
// channel), so it only gates whether the whole residue is skipped.
//
// Ported from decode_residue's "rtype == 2 && ch != 1" branch. The
// reference decoder special-cases ch == 1 and ch == 2 with
// division-free cursor arithmetic (z & 1 / z >> 1); since Go division
// by the small, non-zero channel count is not a measurable hotspot
// here, this always computes cursor position with % and /, which is
// arithmetically identical for every channel count.
func decodeType2(br *bitreader.Reader, r *setup.ResidueConfig, books []*codebook.Codebook, buffers [][]float32, doNotDecode []bool, n, partRead int, classbook *codebook.Codebook, classwords int) {
	ch := len(buffers)
	anyDecode := false
	for _, skip := range doNotDecode {
		if !skip {
			anyDecode = true
			break
		}
	}
	if !anyDecode {
		return
	}

	groups := (partRead + classwords - 1) / classwords
	partClass := make([][]int, groups)

	for pass := 0; pass < 8; pass++ {
		pcount := 0
		group := 0
		for pcount < partRead {
			z := r.Begin + pcount*r.PartitionSize
			cInter := z % ch
			pInter := z / ch

			if pass == 0 {
				sym, ok := classbook.DecodeScalar(br)
				if !ok {
					return
				}
				partClass[group] = r.ClassWordTable[sym]
			}

			for i := 0; i < classwords && pcount < partRead; i++ {
				class := partClass[group][i]
				b := r.Books[class][pass]
				if b >= 0 {
					if !books[b].DecodeDeinterleave(br, buffers, &cInter, &pInter, n, r.PartitionSize) {
						return
					}
				} else {
					z2 := r.Begin + (pcount+1)*r.PartitionSize
					cInter = z2 % ch
					pInter = z2 / ch
				}
				pcount++
			}
			group++
		}
	}
}
