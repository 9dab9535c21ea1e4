// Package design turns a locked target gene into candidate guide
// sequences. It resolves the anchoring variant, fetches the surrounding
// reference window, and delegates sequence proposal to the guide design
// collaborator. Candidates are never synthesized locally.
package design

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"oncostrike/internal/genomics"
	"oncostrike/internal/scorers"
)

// PAMPattern is the protospacer-adjacent motif requested from the design
// collaborator. Cas9-only for now.
const PAMPattern = "NGG"

// minWindowLength is the shortest reference window worth designing
// against.
const minWindowLength = 30

// MissingCoordinatesError reports that no mutation for the target gene
// carried genomic coordinates, so no reference window can be anchored.
// Transcript-level coordinate lookup is an explicit non-feature here.
type MissingCoordinatesError struct {
	Gene string
}

func (e *MissingCoordinatesError) Error() string {
	return fmt.Sprintf("no mutation with genomic coordinates for target gene %s", e.Gene)
}

// SequenceFetchError reports that the reference window could not be
// obtained or was too short to use.
type SequenceFetchError struct {
	Region genomics.Region
	Reason string
}

func (e *SequenceFetchError) Error() string {
	return fmt.Sprintf("reference window %s unusable: %s", e.Region, e.Reason)
}

// Candidate is one guide proposal from the design collaborator, annotated
// with locally computed sequence features and its anchoring context.
type Candidate struct {
	Sequence      string          `json:"sequence"`
	PAM           string          `json:"pam"`
	GCContent     float64         `json:"gc_content"`
	Homopolymer   int             `json:"homopolymer"`
	EfficacyProxy *float64        `json:"efficacy_proxy,omitempty"`
	TargetGene    string          `json:"target_gene"`
	SourceRegion  genomics.Region `json:"source_region"`

	// SourceSequence is the reference window the guide was designed
	// against. Carried for downstream efficacy scoring, not serialized:
	// it is identical across one request's candidates.
	SourceSequence string `json:"-"`
}

// ReferenceFetcher fetches a reference sequence window. Implemented by
// scorers.Reference.
type ReferenceFetcher interface {
	Fetch(ctx context.Context, region genomics.Region) (string, error)
}

// GuideDesigner proposes guide sequences against a target window.
// Implemented by scorers.GuideDesign.
type GuideDesigner interface {
	Design(ctx context.Context, targetSeq, pam string, num int) ([]scorers.DesignedGuide, error)
}

// Generator runs the design stage.
type Generator struct {
	ref      ReferenceFetcher
	designer GuideDesigner
	log      *zap.Logger
}

// NewGenerator creates a generator over the reference and design clients.
func NewGenerator(ref ReferenceFetcher, designer GuideDesigner, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{ref: ref, designer: designer, log: log}
}

// Design produces up to n candidates for targetGene. The window flank
// comes from the caller's ruleset snapshot so a concurrent reload cannot
// split one request across two configurations. Errors here are the
// recoverable kind: the orchestrator records them as warnings instead of
// failing the request.
func (g *Generator) Design(ctx context.Context, targetGene string, mutations []genomics.Variant, n, window int) ([]Candidate, error) {
	variant := coordinateVariant(targetGene, mutations)
	if variant == nil {
		return nil, &MissingCoordinatesError{Gene: targetGene}
	}

	region := genomics.WindowAround(variant.Chrom, variant.Pos, int64(window))
	seq, err := g.ref.Fetch(ctx, region)
	if err != nil {
		return nil, &SequenceFetchError{Region: region, Reason: err.Error()}
	}
	if len(seq) < minWindowLength {
		return nil, &SequenceFetchError{
			Region: region,
			Reason: fmt.Sprintf("sequence is %d bp, need at least %d", len(seq), minWindowLength),
		}
	}

	start := time.Now()
	guides, err := g.designer.Design(ctx, seq, PAMPattern, n)
	if err != nil {
		return nil, fmt.Errorf("guide design for %s: %w", targetGene, err)
	}

	out := make([]Candidate, 0, len(guides))
	for _, gd := range guides {
		out = append(out, g.annotate(gd, targetGene, region, seq))
	}

	g.log.Debug("candidates designed",
		zap.String("gene", targetGene),
		zap.String("region", region.String()),
		zap.String("anchor", variant.Label()),
		zap.Int("requested", n),
		zap.Int("returned", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// annotate fills the locally computed features for one designed guide. The
// collaborator's own GC value wins when present; malformed sequences and
// off-pattern PAMs are kept and flagged in the log, never dropped.
func (g *Generator) annotate(gd scorers.DesignedGuide, targetGene string, region genomics.Region, windowSeq string) Candidate {
	seq := genomics.Clean(gd.Sequence)
	c := Candidate{
		Sequence:       seq,
		PAM:            gd.PAM,
		Homopolymer:    genomics.LongestHomopolymer(seq),
		EfficacyProxy:  gd.SpacerEfficacyHeuristic,
		TargetGene:     targetGene,
		SourceRegion:   region,
		SourceSequence: windowSeq,
	}
	if gd.GC != nil {
		c.GCContent = *gd.GC
	} else {
		c.GCContent = genomics.GCContent(seq)
	}

	if !genomics.ValidGuide(seq) {
		g.log.Warn("designed guide is not a 20-nt spacer",
			zap.String("gene", targetGene),
			zap.String("sequence", seq))
	}
	if gd.PAM != "" && !genomics.MatchesPAM(gd.PAM, PAMPattern) {
		g.log.Warn("designed guide PAM deviates from requested pattern",
			zap.String("gene", targetGene),
			zap.String("pam", gd.PAM),
			zap.String("want", PAMPattern))
	}
	return c
}

// coordinateVariant returns a copy of the first mutation for gene that
// carries full genomic coordinates, nil when there is none.
func coordinateVariant(gene string, mutations []genomics.Variant) *genomics.Variant {
	for i := range mutations {
		if !strings.EqualFold(mutations[i].Gene, gene) {
			continue
		}
		if mutations[i].HasCoordinates() {
			v := mutations[i]
			return &v
		}
	}
	return nil
}
