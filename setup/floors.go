package setup

import "github.com/achurch/libnogg-sub000/bitreader"

// parseFloors reads the floor count and that many floor descriptors
// (spec.md §4.4 item 3).
func parseFloors(br *bitreader.Reader, codebookCount int) ([]Floor, error) {
	count := int(br.GetBits(6)) + 1
	floors := make([]Floor, count)

	for i := 0; i < count; i++ {
		floorType := int(br.GetBits(16))
		switch floorType {
		case 0:
			f, err := parseFloor0(br, codebookCount)
			if err != nil {
				return nil, err
			}
			floors[i] = Floor{Type: FloorType0, Floor0: f}
		case 1:
			f, err := parseFloor1(br, codebookCount)
			if err != nil {
				return nil, err
			}
			floors[i] = Floor{Type: FloorType1, Floor1: f}
		default:
			return nil, ErrInvalidFloor
		}
		if br.EOP() {
			return nil, ErrTruncated
		}
	}
	return floors, nil
}

func parseFloor0(br *bitreader.Reader, codebookCount int) (*Floor0Config, error) {
	f := &Floor0Config{}
	f.Order = int(br.GetBits(8))
	f.Rate = int(br.GetBits(16))
	f.BarkMapSize = int(br.GetBits(16))
	f.AmplitudeBits = int(br.GetBits(6))
	f.AmplitudeOffset = int(br.GetBits(8))
	numBooks := int(br.GetBits(4)) + 1
	f.Books = make([]int, numBooks)
	for j := range f.Books {
		f.Books[j] = int(br.GetBits(8))
		if f.Books[j] >= codebookCount {
			return nil, ErrInvalidFloor
		}
	}
	return f, nil
}

func parseFloor1(br *bitreader.Reader, codebookCount int) (*Floor1Config, error) {
	f := &Floor1Config{}
	partitions := int(br.GetBits(5))
	f.PartitionClass = make([]int, partitions)

	maxClass := -1
	for j := 0; j < partitions; j++ {
		f.PartitionClass[j] = int(br.GetBits(4))
		if f.PartitionClass[j] > maxClass {
			maxClass = f.PartitionClass[j]
		}
	}

	numClasses := maxClass + 1
	f.ClassDimensions = make([]int, numClasses)
	f.ClassSubclassBits = make([]int, numClasses)
	f.ClassMasterBook = make([]int, numClasses)
	f.ClassSubclassBook = make([][]int, numClasses)
	for c := 0; c < numClasses; c++ {
		f.ClassDimensions[c] = int(br.GetBits(3)) + 1
		f.ClassSubclassBits[c] = int(br.GetBits(2))
		f.ClassMasterBook[c] = -1
		if f.ClassSubclassBits[c] != 0 {
			f.ClassMasterBook[c] = int(br.GetBits(8))
			if f.ClassMasterBook[c] >= codebookCount {
				return nil, ErrInvalidFloor
			}
		}
		subclasses := 1 << uint(f.ClassSubclassBits[c])
		f.ClassSubclassBook[c] = make([]int, subclasses)
		for k := 0; k < subclasses; k++ {
			book := int(br.GetBits(8)) - 1
			if book >= codebookCount {
				return nil, ErrInvalidFloor
			}
			f.ClassSubclassBook[c][k] = book
		}
	}

	f.Multiplier = int(br.GetBits(2)) + 1
	f.Rangebits = int(br.GetBits(4))

	xlist := []int{0, 1 << uint(f.Rangebits)}
	for j := 0; j < partitions; j++ {
		c := f.PartitionClass[j]
		for k := 0; k < f.ClassDimensions[c]; k++ {
			if len(xlist) >= 65 {
				return nil, ErrInvalidFloor
			}
			xlist = append(xlist, int(br.GetBits(f.Rangebits)))
		}
	}
	f.XList = xlist

	n := len(xlist)
	f.SortOrder = sortOrderOf(xlist)
	f.LowNeighbor = make([]int, n)
	f.HighNeighbor = make([]int, n)
	for j := 2; j < n; j++ {
		xj := xlist[j]
		low, lowIdx := xlist[0], 0
		high, highIdx := xlist[1], 1
		for k := 2; k < j; k++ {
			if xlist[k] > low && xlist[k] < xj {
				low, lowIdx = xlist[k], k
			}
			if xlist[k] < high && xlist[k] > xj {
				high, highIdx = xlist[k], k
			}
		}
		f.LowNeighbor[j] = lowIdx
		f.HighNeighbor[j] = highIdx
	}

	return f, nil
}

// sortOrderOf returns, for each index into xlist, the position that index
// occupies within the ascending sort of xlist (spec.md §4.4 item 3: "a
// parallel sorted-order permutation is stored for line rendering").
func sortOrderOf(xlist []int) []int {
	n := len(xlist)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// insertion sort: floor X-lists are at most 65 entries
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && xlist[order[j-1]] > xlist[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	rank := make([]int, n)
	for pos, idx := range order {
		rank[idx] = pos
	}
	return rank
}
