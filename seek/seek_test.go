package seek

import (
	"testing"

	"github.com/achurch/libnogg-sub000/setup"
)

func testEngine(b0, b1 int) *Engine {
	s := &setup.Setup{Ident: setup.Identification{Blocksize0: b0, Blocksize1: b1}}
	return &Engine{setup: s, length: -1}
}

func TestClampSample(t *testing.T) {
	cases := []struct {
		in   uint64
		want uint32
	}{
		{0, 0},
		{1000, 1000},
		{maxSample, maxSample},
		{maxSample + 1, maxSample},
		{1 << 40, maxSample},
	}
	for _, c := range cases {
		if got := clampSample(c.in); got != c.want {
			t.Errorf("clampSample(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestWindowStride(t *testing.T) {
	e := testEngine(256, 2048)
	cases := []struct {
		prev, cur bool
		want      int
	}{
		{false, false, 128},         // short -> short: b0/2
		{true, true, 1024},          // long -> long: b1/2
		{false, true, (2048-256)/4 + 256/2}, // short -> long
		{true, false, (2048-256)/4 + 256/2}, // long -> short
	}
	for _, c := range cases {
		if got := e.windowStride(c.prev, c.cur); got != c.want {
			t.Errorf("windowStride(%v, %v) = %d, want %d", c.prev, c.cur, got, c.want)
		}
	}
}

func TestMax64(t *testing.T) {
	if got := max64(3, 5); got != 5 {
		t.Errorf("max64(3, 5) = %d, want 5", got)
	}
	if got := max64(5, 3); got != 5 {
		t.Errorf("max64(5, 3) = %d, want 5", got)
	}
}
