// Package floor reconstructs the spectral envelope curve for one audio
// channel from its per-packet floor data (spec.md §4.5, §9 "discriminated
// floor type").
//
// Floor type 0's synthesis path is an explicit non-goal (spec.md §1): its
// setup-time configuration parses cleanly (package setup), but Decode1
// here is the only runtime entry point, matching type 1's amplitude
// synthesis, neighbor prediction, and line-rasterized curve.
package floor

import (
	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/codebook"
	"github.com/achurch/libnogg-sub000/setup"
)

var rangeList = [4]int{256, 128, 86, 64}
var rangeBitsList = [4]int{8, 7, 7, 6}

// unusedY marks a floor1 curve point that synthesis decided not to
// render (spec.md §4.5 step 2's "no step-2 flag" case).
const unusedY = -1

// Decoded holds one channel's type 1 floor decode result, ready for
// Synthesize once residue decode (spec.md §4.6) has populated the
// channel's coefficient buffer.
type Decoded struct {
	Unused bool // true if the channel was signalled zero or hit EOP
	Y      []int
}

// Decode1 performs spec.md §4.5 steps 1-4: reads the nonzero flag, the two
// endpoint amplitudes, and the per-partition class-coded deltas, then runs
// amplitude synthesis against the neighbor-prediction tables setup already
// built.
//
// Ported from decode_floor1.
func Decode1(br *bitreader.Reader, f *setup.Floor1Config, books []*codebook.Codebook) Decoded {
	if br.GetBits(1) == 0 {
		return Decoded{Unused: true}
	}

	idx := f.Multiplier - 1
	rangeVal := rangeList[idx]
	rangeBits := rangeBitsList[idx]

	values := len(f.XList)
	y := make([]int, values)
	y[0] = int(br.GetBits(rangeBits))
	y[1] = int(br.GetBits(rangeBits))

	offset := 2
	for _, class := range f.PartitionClass {
		cdim := f.ClassDimensions[class]
		cbits := f.ClassSubclassBits[class]
		csub := (1 << uint(cbits)) - 1

		cval := 0
		if cbits != 0 {
			book := books[f.ClassMasterBook[class]]
			v, ok := book.DecodeScalar(br)
			if !ok {
				return Decoded{Unused: true}
			}
			cval = int(v)
		}
		for j := 0; j < cdim; j++ {
			bookIndex := f.ClassSubclassBook[class][cval&csub]
			cval >>= uint(cbits)
			if bookIndex >= 0 {
				v, ok := books[bookIndex].DecodeScalar(br)
				if !ok {
					return Decoded{Unused: true}
				}
				y[offset] = int(v)
			} else {
				y[offset] = 0
			}
			offset++
		}
	}
	if br.EOP() {
		return Decoded{Unused: true}
	}

	step2 := make([]bool, values)
	step2[0], step2[1] = true, true

	for i := 2; i < values; i++ {
		low := f.LowNeighbor[i]
		high := f.HighNeighbor[i]
		predicted := renderPoint(f.XList[low], y[low], f.XList[high], y[high], f.XList[i])

		val := y[i]
		highroom := rangeVal - predicted
		lowroom := predicted
		room := lowroom * 2
		if highroom < lowroom {
			room = highroom * 2
		}

		if val != 0 {
			step2[low], step2[high], step2[i] = true, true, true
			if val >= room {
				if highroom > lowroom {
					y[i] = val - lowroom + predicted
				} else {
					y[i] = predicted - val + highroom - 1
				}
			} else if val%2 != 0 {
				y[i] = predicted - (val+1)/2
			} else {
				y[i] = predicted + val/2
			}
		} else {
			step2[i] = false
			y[i] = predicted
		}
	}

	for i := range y {
		if !step2[i] {
			y[i] = unusedY
		}
	}

	return Decoded{Y: y}
}

// renderPoint computes the Y coordinate at x along the line through
// (x0,y0)-(x1,y1), per the Vorbis I spec §9.2.6 (spec.md §4.5). Go's
// integer division already truncates toward zero like C's, so no special
// casing is needed for negative slopes.
func renderPoint(x0, y0, x1, y1, x int) int {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Synthesize rasterizes the final curve (spec.md §4.5 "after residue
// decode") into buffer[0:n/2], multiplying each coefficient by the
// inverse-dB value for the interpolated line at that position.
//
// Ported from do_floor1_final / render_line.
func Synthesize(f *setup.Floor1Config, d Decoded, buffer []float32, n int) {
	half := n / 2
	lx := 0
	ly := d.Y[0] * f.Multiplier

	// SortOrder maps XList index -> ascending rank; curve synthesis walks
	// points in ascending X order, so invert it once per call.
	order := invertSortOrder(f.SortOrder)
	for rank := 1; rank < len(order); rank++ {
		j := order[rank]
		if d.Y[j] == unusedY {
			continue
		}
		hy := d.Y[j] * f.Multiplier
		hx := f.XList[j]
		renderLine(lx, ly, hx, hy, buffer, half)
		lx, ly = hx, hy
	}
	if lx < half {
		v := inverseDBTable[clampIndex(ly)]
		for i := lx; i < half; i++ {
			buffer[i] *= v
		}
	}
}

// invertSortOrder turns Floor1Config.SortOrder (index -> rank) into
// (rank -> index), the order curve synthesis actually needs to walk.
func invertSortOrder(sortOrder []int) []int {
	inv := make([]int, len(sortOrder))
	for idx, rank := range sortOrder {
		inv[rank] = idx
	}
	return inv
}

func clampIndex(y int) int {
	if y < 0 {
		return 0
	}
	if y > 255 {
		return 255
	}
	return y
}

// renderLine draws one segment of the floor curve into output[x0:x1],
// multiplying each sample by the inverse-dB table value for the
// Bresenham-interpolated y at that x. The exact integer arithmetic here
// (not a floating-point interpolation) is mandated by the Vorbis spec so
// encoder and decoder agree on the quantized curve (spec.md §4.5).
//
// Ported from render_line.
func renderLine(x0, y0, x1, y1 int, output []float32, n int) {
	dy := y1 - y0
	adx := x1 - x0
	if adx == 0 {
		return
	}
	base := dy / adx
	ady := abs(dy) - abs(base)*adx
	sy := base + 1
	if dy < 0 {
		sy = base - 1
	}

	x, y := x0, y0
	err := 0

	if x1 > n {
		if x0 > n {
			return
		}
		x1 = n
	}
	output[x] *= inverseDBTable[clampIndex(y)]
	for x++; x < x1; x++ {
		err += ady
		if err >= adx {
			err -= adx
			y += sy
		} else {
			y += base
		}
		output[x] *= inverseDBTable[clampIndex(y)]
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
