package residue

import (
	"testing"

	"github.com/achurch/libnogg-sub000/bitreader"
	"github.com/achurch/libnogg-sub000/codebook"
	"github.com/achurch/libnogg-sub000/setup"
)

// newOneBitBook builds a 2-entry, 1-bit-codeword codebook (codewords "0"
// and "1"), optionally attached to a lookup-type-1 VQ table.
func newOneBitBook(t *testing.T, lookupType int, rawValues []uint32) *codebook.Codebook {
	t.Helper()
	cb, err := codebook.New(1, 2, false, []uint8{1, 1}, lookupType, 0, 1, false, rawValues)
	if err != nil {
		t.Fatalf("codebook.New: %v", err)
	}
	return cb
}

// newTestSetup builds a minimal type-1 residue config with a single
// partition, single class, decoded in a single pass.
func newTestSetup(t *testing.T) (*setup.ResidueConfig, []*codebook.Codebook) {
	t.Helper()
	classbook := newOneBitBook(t, 0, nil)
	subbook := newOneBitBook(t, 1, []uint32{10, 20})
	books := []*codebook.Codebook{classbook, subbook}

	cascade := make([]uint8, 2)
	cascade[0] = 1 // class 0 carries a subbook on pass 0
	booksByClass := make([][8]int, 2)
	for i := range booksByClass {
		for p := range booksByClass[i] {
			booksByClass[i][p] = -1
		}
	}
	booksByClass[0][0] = 1 // subbook index within the books slice

	r := &setup.ResidueConfig{
		Type:            1,
		Begin:           0,
		End:             1,
		PartitionSize:   1,
		Classifications: 2,
		Classbook:       0,
		Cascade:         cascade,
		Books:           booksByClass,
		ClassWordTable:  [][]int{{0}, {1}},
	}
	return r, books
}

func TestDecodeType1SingleChannel(t *testing.T) {
	r, books := newTestSetup(t)
	// bit0 (classbook symbol) = 0 -> class 0, which carries a subbook.
	// bit1 (subbook symbol) = 1 -> decodes to Multiplicands row 1 (20).
	br := bitreader.New([]byte{0b00000010})
	buffers := [][]float32{{0}}
	Decode(br, r, books, buffers, []bool{false}, 1)

	if buffers[0][0] != 20 {
		t.Fatalf("buffers[0][0] = %v, want 20", buffers[0][0])
	}
}

func TestDecodeType1SkipsDoNotDecodeChannel(t *testing.T) {
	r, books := newTestSetup(t)
	// A do-not-decode channel's buffer is left completely untouched (not
	// even zeroed): the reference decoder passes a NULL buffer pointer
	// for it and relies on the floor-synthesis stage to zero it
	// separately. The packet is empty, so a classbook read for the
	// skipped channel would only hit end-of-packet; the test checks the
	// buffer contents, not whether the classbook was consulted.
	br := bitreader.New(nil)
	buffers := [][]float32{{5}}
	Decode(br, r, books, buffers, []bool{true}, 1)

	if buffers[0][0] != 5 {
		t.Fatalf("buffers[0][0] = %v, want 5 (untouched)", buffers[0][0])
	}
}

func TestDecodeEmptyPartitionRange(t *testing.T) {
	r, books := newTestSetup(t)
	r.Begin, r.End = 0, 0 // partRead == 0
	br := bitreader.New(nil)
	buffers := [][]float32{{7}}
	Decode(br, r, books, buffers, []bool{false}, 1)

	if buffers[0][0] != 0 {
		t.Fatalf("buffers[0][0] = %v, want 0", buffers[0][0])
	}
}

func TestDecodeType2TwoChannels(t *testing.T) {
	classbook := newOneBitBook(t, 0, nil)
	subbook := newOneBitBook(t, 1, []uint32{10, 20})
	books := []*codebook.Codebook{classbook, subbook}

	cascade := make([]uint8, 2)
	cascade[0] = 1
	booksByClass := make([][8]int, 2)
	for i := range booksByClass {
		for p := range booksByClass[i] {
			booksByClass[i][p] = -1
		}
	}
	booksByClass[0][0] = 1

	r := &setup.ResidueConfig{
		Type:            2,
		Begin:           0,
		End:             2, // two deinterleaved partitions across 2 channels
		PartitionSize:   1,
		Classifications: 2,
		Classbook:       0,
		Cascade:         cascade,
		Books:           booksByClass,
		ClassWordTable:  [][]int{{0}, {1}},
	}

	// Since classwords (the classbook's dimension) is 1 here, each of the
	// two partitions gets its own classbook symbol: bit0 = class symbol
	// for partition 0 (class 0), bit1 = its subbook symbol (0 -> 10,
	// written to channel 0 via c_inter=0), bit2 = class symbol for
	// partition 1 (class 0), bit3 = its subbook symbol (1 -> 20, written
	// to channel 1 via c_inter=1).
	br := bitreader.New([]byte{0b00001000})
	buffers := [][]float32{{0}, {0}}
	Decode(br, r, books, buffers, []bool{false, false}, 1)

	if buffers[0][0] != 10 || buffers[1][0] != 20 {
		t.Fatalf("buffers = [%v %v], want [10 20]", buffers[0][0], buffers[1][0])
	}
}
