package signals

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oncostrike/internal/genomics"
	"oncostrike/internal/scorers"
)

// FunctionalityScorer scores a protein-level change.
type FunctionalityScorer interface {
	Score(ctx context.Context, gene, hgvsP string) (float64, error)
}

// EssentialityScorer scores gene essentiality given matched variants.
type EssentialityScorer interface {
	Score(ctx context.Context, gene string, variants []genomics.Variant) (float64, error)
}

// RegulatoryScorer scores a coordinate-level variant's regulatory impact.
type RegulatoryScorer interface {
	Score(ctx context.Context, chrom string, pos int64, ref, alt string) (float64, error)
}

// ChromatinScorer scores chromatin accessibility around a position.
type ChromatinScorer interface {
	Score(ctx context.Context, chrom string, pos int64) (scorers.ChromatinResult, error)
}

// Reading methods recorded for successful collections. Chromatin reports
// whatever provenance method the collaborator used instead.
const (
	methodFunctionality = "functionality_model"
	methodEssentiality  = "essentiality_model"
	methodRegulatory    = "regulatory_model"
)

// Collector gathers the four evidence signals for one gene concurrently.
// Every sub-call's failure is isolated: a failed or skipped signal becomes
// a typed Reading, never an error, so collection always completes.
type Collector struct {
	functionality FunctionalityScorer
	essentiality  EssentialityScorer
	regulatory    RegulatoryScorer
	chromatin     ChromatinScorer
	log           *zap.Logger
}

// NewCollector creates a signal collector over the four scorer clients.
func NewCollector(f FunctionalityScorer, e EssentialityScorer, r RegulatoryScorer, ch ChromatinScorer, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		functionality: f,
		essentiality:  e,
		regulatory:    r,
		chromatin:     ch,
		log:           log,
	}
}

// Collect gathers all four signals for gene. variant is the patient
// mutation matched to the gene and may be nil; it gates which scorers have
// enough input to be called at all. Completion order never matters.
func (c *Collector) Collect(ctx context.Context, gene string, variant *genomics.Variant) Bundle {
	start := time.Now()
	var bundle Bundle

	eg, egCtx := errgroup.WithContext(ctx)

	// Each goroutine writes its own bundle field and always returns nil:
	// one signal failing must not cancel the others.
	eg.Go(func() error {
		bundle.Functionality = c.collectFunctionality(egCtx, gene, variant)
		return nil
	})
	eg.Go(func() error {
		bundle.Essentiality = c.collectEssentiality(egCtx, gene, variant)
		return nil
	})
	eg.Go(func() error {
		bundle.Regulatory = c.collectRegulatory(egCtx, variant)
		return nil
	})
	eg.Go(func() error {
		bundle.Chromatin = c.collectChromatin(egCtx, variant)
		return nil
	})

	_ = eg.Wait()

	c.log.Debug("signals collected",
		zap.String("gene", gene),
		zap.Bool("has_variant", variant != nil),
		zap.Duration("elapsed", time.Since(start)))
	return bundle
}

func (c *Collector) collectFunctionality(ctx context.Context, gene string, variant *genomics.Variant) Reading {
	if !variant.HasProteinChange() {
		return Skipped("no protein change annotation")
	}
	value, err := c.functionality.Score(ctx, gene, variant.HGVSp)
	if err != nil {
		c.log.Debug("functionality degraded", zap.String("gene", gene), zap.Error(err))
		return Degraded(err)
	}
	return OK(value, methodFunctionality)
}

func (c *Collector) collectEssentiality(ctx context.Context, gene string, variant *genomics.Variant) Reading {
	variants := []genomics.Variant{}
	if variant != nil {
		variants = append(variants, *variant)
	}
	value, err := c.essentiality.Score(ctx, gene, variants)
	if err != nil {
		c.log.Debug("essentiality degraded", zap.String("gene", gene), zap.Error(err))
		return Degraded(err)
	}
	return OK(value, methodEssentiality)
}

func (c *Collector) collectRegulatory(ctx context.Context, variant *genomics.Variant) Reading {
	if !variant.HasCoordinates() {
		return Skipped("no genomic coordinates")
	}
	value, err := c.regulatory.Score(ctx, variant.Chrom, variant.Pos, variant.Ref, variant.Alt)
	if err != nil {
		c.log.Debug("regulatory degraded", zap.String("chrom", variant.Chrom), zap.Error(err))
		return Degraded(err)
	}
	return OK(value, methodRegulatory)
}

func (c *Collector) collectChromatin(ctx context.Context, variant *genomics.Variant) Reading {
	if !variant.HasCoordinates() {
		return Skipped("no genomic coordinates")
	}
	res, err := c.chromatin.Score(ctx, variant.Chrom, variant.Pos)
	if err != nil {
		c.log.Debug("chromatin degraded", zap.String("chrom", variant.Chrom), zap.Error(err))
		return Degraded(err)
	}
	return OK(res.Score, res.Method)
}
