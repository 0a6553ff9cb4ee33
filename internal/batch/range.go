package batch

import "fmt"

// IndexRange is an inclusive range of request indices.
type IndexRange struct {
	From uint64
	To   uint64
}

// Len returns the number of indices in the range.
func (r IndexRange) Len() uint64 {
	return r.To - r.From + 1
}

// SplitRange splits [from, to] into consecutive chunks of at most size indices.
func SplitRange(from, to, size uint64) ([]IndexRange, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to index must be >= from index")
	}

	total := to - from + 1
	ranges := make([]IndexRange, 0, (total+size-1)/size)
	for start := from; ; start += size {
		if to-start < size {
			ranges = append(ranges, IndexRange{From: start, To: to})
			return ranges, nil
		}
		ranges = append(ranges, IndexRange{From: start, To: start + size - 1})
	}
}
