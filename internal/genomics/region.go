package genomics

import "fmt"

// Region is a closed 1-based genomic interval.
type Region struct {
	Chrom string `json:"chrom"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// WindowAround returns the region spanning pos plus/minus flank bases.
// Start is clamped at 1 so windows near the chromosome head stay valid.
func WindowAround(chrom string, pos, flank int64) Region {
	start := pos - flank
	if start < 1 {
		start = 1
	}
	return Region{Chrom: chrom, Start: start, End: pos + flank}
}

// Length returns the number of bases the region spans.
func (r Region) Length() int64 {
	return r.End - r.Start + 1
}

// String renders the conventional chrom:start-end form used by the
// reference sequence service.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}
