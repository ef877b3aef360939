package nogg

import "testing"

func TestInterleave(t *testing.T) {
	channels := [][]float32{
		{0.1, 0.2, 0.3, 0.4},
		{1.1, 1.2, 1.3, 1.4},
	}
	out := make([]float32, 4)
	n := interleave(channels, 1, 3, out)
	if n != 2 {
		t.Fatalf("got n=%d, want 2", n)
	}
	want := []float32{0.2, 1.2, 0.3, 1.3}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %v, want %v", i, out[i], w)
		}
	}
}

func TestFloatToInt16(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1.0, 32767},
		{-1.0, -32767},
		{2.0, 32767},   // saturates above full scale
		{-2.0, -32767}, // saturates below full scale
		{0.5, 16384},   // round-to-even lands on 16383.5 -> 16384
	}
	for _, c := range cases {
		if got := floatToInt16(c.in); got != c.want {
			t.Errorf("floatToInt16(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
