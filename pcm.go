package nogg

import "math"

// interleave writes channels[ch][start:end] for every channel,
// interleaved L,R,L,R..., into out (which must have capacity for
// (end-start)*len(channels) values), and returns the count of samples
// (frames, not values) written.
func interleave(channels [][]float32, start, end int, out []float32) int {
	n := end - start
	ch := len(channels)
	for i := 0; i < n; i++ {
		for c := 0; c < ch; c++ {
			out[i*ch+c] = channels[c][start+i]
		}
	}
	return n
}

// floatToInt16 rounds and saturates one normalized float sample to the
// decoder's 16-bit integer output range (spec.md §10 "Output layer",
// P7: "int16 output equals round-and-saturate of float output").
func floatToInt16(f float32) int16 {
	v := math.RoundToEven(float64(f) * 32767)
	switch {
	case v > 32767:
		return 32767
	case v < -32767:
		return -32767
	default:
		return int16(v)
	}
}
