package genomics

import (
	"strings"
	"unicode"
)

// GuideLength is the canonical spacer length for the supported nuclease.
const GuideLength = 20

// iupac maps one-letter nucleotide codes to the base sets they admit.
var iupac = map[byte]string{
	'A': "A",
	'C': "C",
	'G': "G",
	'T': "T",
	'R': "AG",
	'Y': "CT",
	'S': "CG",
	'W': "AT",
	'K': "GT",
	'M': "AC",
	'B': "CGT",
	'D': "AGT",
	'H': "ACT",
	'V': "ACG",
	'N': "ACGT",
}

// Clean strips whitespace and quote characters from a raw sequence and
// uppercases the bases. FASTA-ish payloads from the reference service come
// through here before any length or content checks.
func Clean(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// GCContent returns the G+C fraction of seq in [0,1]. Case-insensitive.
// An empty sequence reports 0.
func GCContent(seq string) float64 {
	if seq == "" {
		return 0
	}
	gc := 0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'g', 'C', 'c':
			gc++
		}
	}
	return float64(gc) / float64(len(seq))
}

// LongestHomopolymer returns the length of the longest run of one repeated
// base in seq, case-insensitively. Long runs (poly-T in particular) are a
// known liability for spacer synthesis and expression.
func LongestHomopolymer(seq string) int {
	if seq == "" {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(seq); i++ {
		if upperByte(seq[i]) == upperByte(seq[i-1]) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

// ValidGuide reports whether seq is a well-formed spacer: exactly
// GuideLength unambiguous ACGT bases (either case).
func ValidGuide(seq string) bool {
	if len(seq) != GuideLength {
		return false
	}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'a', 'C', 'c', 'G', 'g', 'T', 't':
		default:
			return false
		}
	}
	return true
}

// MatchesPAM reports whether site satisfies the IUPAC pattern pat
// (e.g. "AGG" against "NGG"). Both sides may use ambiguity codes; a
// position matches when the two base sets intersect. Lengths must agree.
func MatchesPAM(site, pat string) bool {
	site = Clean(site)
	pat = Clean(pat)
	if len(site) == 0 || len(site) != len(pat) {
		return false
	}
	for i := 0; i < len(site); i++ {
		setS, okS := iupac[site[i]]
		setP, okP := iupac[pat[i]]
		if !okS || !okP {
			return false
		}
		if !setsIntersect(setS, setP) {
			return false
		}
	}
	return true
}

func setsIntersect(a, b string) bool {
	for i := 0; i < len(a); i++ {
		if strings.IndexByte(b, a[i]) >= 0 {
			return true
		}
	}
	return false
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
