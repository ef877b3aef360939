package setup

import "math"

// unpackFloat32 decodes the Vorbis bitstream's packed 32-bit float format
// used for codebook minimum/delta values: a sign bit, a 10-bit exponent
// (biased so that the stored value is shifted by -788), and a 21-bit
// mantissa (spec.md §4.4 item 1; ported from the reference decoder's
// float32_unpack, itself transcribed directly from the Vorbis I spec).
func unpackFloat32(x uint32) float32 {
	mantissa := x & 0x1fffff
	sign := x & 0x80000000
	exp := int((x & 0x7fe00000) >> 21)

	val := float64(mantissa)
	if sign != 0 {
		val = -val
	}
	return float32(math.Ldexp(val, exp-788))
}
