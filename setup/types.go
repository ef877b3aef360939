// Package setup parses the three Vorbis header packets (identification,
// comment, setup) into the immutable tables the decode pipeline runs
// against: codebooks, floor and residue configurations, mappings, modes,
// and the per-blocksize IMDCT tables (spec.md §4.4).
package setup

import (
	"github.com/achurch/libnogg-sub000/codebook"
	"github.com/achurch/libnogg-sub000/imdct"
)

// Identification holds the decoded identification header fields
// (spec.md §4.4).
type Identification struct {
	Channels       int
	SampleRate     uint32
	BitrateMaximum int32
	BitrateNominal int32
	BitrateMinimum int32
	Blocksize0     int // B0, the short blocksize
	Blocksize1     int // B1, the long blocksize
}

// FloorType distinguishes the two structurally different floor curve
// representations (spec.md §9 "discriminated floor type").
type FloorType int

const (
	FloorType0 FloorType = 0
	FloorType1 FloorType = 1
)

// Floor0Config holds a floor type 0 descriptor. Parsing is fully
// supported; synthesis (the non-zero-order Floor 0 curve) is an explicit
// non-goal (spec.md §1) and fails per-frame rather than at setup time.
type Floor0Config struct {
	Order         int
	Rate          int
	BarkMapSize   int
	AmplitudeBits int
	AmplitudeOffset int
	Books         []int
}

// Floor1Config holds a floor type 1 descriptor: its class/subclass
// partitioning plus the derived X-list and neighbor-prediction tables
// (spec.md §4.4 item 3, §4.5).
type Floor1Config struct {
	PartitionClass  []int // per partition, which class it belongs to
	ClassDimensions []int // per class
	ClassSubclassBits []int
	ClassMasterBook []int // per class, -1 if none
	ClassSubclassBook [][]int // [class][subclass] -> book index, -1 if none
	Multiplier      int
	Rangebits       int

	XList []int // length = sum(class dims) + 2; X[0]=0, X[1]=2^rangebits

	// SortOrder[i] gives the position of XList[i] within the ascending
	// sort of XList; LowNeighbor/HighNeighbor give, for each position
	// in XList order, the index (also in XList order) of its nearest
	// lower/higher neighbor among the points preceding it in XList order
	// (spec.md §3: Floor 1 X-list neighbor prediction).
	SortOrder   []int
	LowNeighbor []int
	HighNeighbor []int
}

// Floor is the discriminated variant spec.md §9 calls for: a type tag
// alongside exactly one of Floor0/Floor1.
type Floor struct {
	Type   FloorType
	Floor0 *Floor0Config
	Floor1 *Floor1Config
}

// ResidueConfig holds one residue descriptor (spec.md §4.4 item 4, §4.6).
type ResidueConfig struct {
	Type           int // 0, 1, or 2
	Begin, End     int
	PartitionSize  int
	Classifications int
	Classbook      int

	// Cascade[class] is a bitmap of which of the 8 decode passes carry
	// a subbook for that class.
	Cascade []uint8
	// Books[class][pass] is the subbook index for that class/pass, or
	// -1 if Cascade says the pass is absent.
	Books [][8]int

	// ClassWordTable[code] precomputes the classbook.Entries-indexed
	// expansion of a classbook symbol into Classbook.Dimensions
	// (= classwords) per-partition class numbers, avoiding repeated
	// division/modulo against Classifications at decode time
	// (spec.md §4.4 item 4).
	ClassWordTable [][]int
}

// CouplingStep is one (magnitude, angle) channel pair (spec.md §3, §4.7).
type CouplingStep struct {
	Magnitude, Angle int
}

// Submap is one mapping's (floor, residue) pair.
type Submap struct {
	Floor, Residue int
}

// Mapping is one mapping descriptor (spec.md §4.4 item 5).
type Mapping struct {
	Submaps  []Submap
	Coupling []CouplingStep
	Mux      []int // per channel, index into Submaps
}

// Mode is one mode descriptor (spec.md §4.4 item 6).
type Mode struct {
	BlockFlag bool // true = long block (B1), false = short block (B0)
	Mapping   int
}

// Setup is every immutable table built from the three header packets,
// ready to drive per-packet frame decode (spec.md "Data Model": Codebook,
// Floor config, Residue config, Mapping, Mode are all owned by the
// decoder handle and immutable after setup).
type Setup struct {
	Ident Identification

	Codebooks []*codebook.Codebook
	Floors    []Floor
	Residues  []ResidueConfig
	Mappings  []Mapping
	Modes     []Mode
	ModeBits  int

	// MDCT[0] is the short-block (B0) transform, MDCT[1] the long-block
	// (B1) transform; index by a mode's BlockFlag.
	MDCT [2]*imdct.Tables
}
