// Package genomics holds the leaf domain types shared across the pipeline:
// patient variants, genomic regions, and small nucleotide-sequence helpers.
package genomics

import "fmt"

// Variant is one patient mutation as supplied by the caller. Gene symbol is
// the only required field; coordinates and protein annotation are optional
// and gate which evidence signals can be collected for it.
type Variant struct {
	Gene  string `json:"gene"`
	Chrom string `json:"chrom,omitempty"`
	Pos   int64  `json:"pos,omitempty"` // 1-based
	Ref   string `json:"ref,omitempty"`
	Alt   string `json:"alt,omitempty"`
	HGVSp string `json:"hgvs_p,omitempty"` // e.g. "p.L858R"
}

// HasCoordinates reports whether the variant carries a usable genomic
// position (chromosome plus positive 1-based position).
func (v *Variant) HasCoordinates() bool {
	return v != nil && v.Chrom != "" && v.Pos > 0
}

// HasProteinChange reports whether the variant carries an HGVS protein
// annotation.
func (v *Variant) HasProteinChange() bool {
	return v != nil && v.HGVSp != ""
}

// Label renders a short identifier for rationale lines and logs:
// "EGFR p.L858R", "KRAS chr12:25245350 C>T", or just the gene symbol.
func (v *Variant) Label() string {
	if v == nil {
		return ""
	}
	if v.HGVSp != "" {
		return fmt.Sprintf("%s %s", v.Gene, v.HGVSp)
	}
	if v.HasCoordinates() {
		if v.Ref != "" && v.Alt != "" {
			return fmt.Sprintf("%s %s:%d %s>%s", v.Gene, v.Chrom, v.Pos, v.Ref, v.Alt)
		}
		return fmt.Sprintf("%s %s:%d", v.Gene, v.Chrom, v.Pos)
	}
	return v.Gene
}
