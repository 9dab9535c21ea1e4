package genomics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "ACGTACGT", Clean(" acgt\nAC GT\r\n"))
	assert.Equal(t, "ACGT", Clean("\"acgt\""))
	assert.Equal(t, "", Clean("  \n\t"))
}

func TestGCContent(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want float64
	}{
		{name: "empty", seq: "", want: 0},
		{name: "all gc", seq: "GGCC", want: 1.0},
		{name: "no gc", seq: "ATAT", want: 0},
		{name: "half", seq: "ACGT", want: 0.5},
		{name: "lowercase", seq: "acgt", want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GCContent(tt.seq), 1e-9)
		})
	}
}

func TestLongestHomopolymer(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want int
	}{
		{name: "empty", seq: "", want: 0},
		{name: "no repeats", seq: "ACGTACGT", want: 1},
		{name: "run in middle", seq: "ACGTTTTACG", want: 4},
		{name: "run at end", seq: "ACGGGGG", want: 5},
		{name: "case insensitive", seq: "AaaA", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestHomopolymer(tt.seq))
		})
	}
}

func TestValidGuide(t *testing.T) {
	assert.True(t, ValidGuide("ACGTACGTACGTACGTACGT"))
	assert.True(t, ValidGuide("acgtacgtacgtacgtacgt"))
	assert.False(t, ValidGuide("ACGTACGTACGTACGTACG"), "19 nt")
	assert.False(t, ValidGuide("ACGTACGTACGTACGTACGTA"), "21 nt")
	assert.False(t, ValidGuide("ACGTACGTACGTACGTACGN"), "ambiguity code")
	assert.False(t, ValidGuide(strings.Repeat("X", GuideLength)))
	assert.False(t, ValidGuide(""))
}

func TestMatchesPAM(t *testing.T) {
	tests := []struct {
		site string
		pat  string
		want bool
	}{
		{site: "AGG", pat: "NGG", want: true},
		{site: "GGG", pat: "NGG", want: true},
		{site: "agg", pat: "ngg", want: true},
		{site: "ATT", pat: "NGG", want: false},
		{site: "NGG", pat: "NGG", want: true}, // echoed pattern still matches
		{site: "AG", pat: "NGG", want: false},
		{site: "", pat: "NGG", want: false},
		{site: "AXG", pat: "NGG", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.site+"_vs_"+tt.pat, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesPAM(tt.site, tt.pat))
		})
	}
}
