// Package targetlock selects the single most evidence-supported gene for a
// mission step. It fans signal collection out across the mission's gene
// sets, fuses the four evidence signals under the configured weights, and
// produces a deterministic ranking with explainable rationale.
package targetlock

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oncostrike/internal/genomics"
	"oncostrike/internal/ruleset"
	"oncostrike/internal/signals"
)

// MethodWeightedMultiSignal tags results produced by this selector in
// provenance.
const MethodWeightedMultiSignal = "weighted_multi_signal_v1"

// maxConsidered caps how many runners-up a lock reports.
const maxConsidered = 3

// SignalCollector gathers the four evidence signals for one gene.
// Implemented by signals.Collector.
type SignalCollector interface {
	Collect(ctx context.Context, gene string, variant *genomics.Variant) signals.Bundle
}

// ValidatedTarget is the selected gene with its full evidence and the
// rationale lines explaining the selection.
type ValidatedTarget struct {
	GeneScore
	Rationale []string `json:"rationale"`
}

// ConsideredTarget is one runner-up, reported for transparency.
type ConsideredTarget struct {
	Gene      string  `json:"gene"`
	RankScore float64 `json:"rank_score"`
	Rationale string  `json:"rationale"`
}

// Lock is the outcome of target selection for one request.
type Lock struct {
	Validated  ValidatedTarget    `json:"validated_target"`
	Considered []ConsideredTarget `json:"considered_targets"`
	Method     string             `json:"method"`
}

// Config configures the selector.
type Config struct {
	// GeneConcurrency bounds how many genes are signal-scored at once.
	GeneConcurrency int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{GeneConcurrency: 4}
}

// Selector runs the target-lock stage.
type Selector struct {
	rules     *ruleset.Store
	collector SignalCollector
	cfg       Config
	log       *zap.Logger
}

// NewSelector creates a selector over the ruleset store and a signal
// collector.
func NewSelector(rules *ruleset.Store, collector SignalCollector, cfg Config, log *zap.Logger) *Selector {
	if cfg.GeneConcurrency < 1 {
		cfg.GeneConcurrency = DefaultConfig().GeneConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{rules: rules, collector: collector, cfg: cfg, log: log}
}

// Lock selects the target gene for missionStep given the patient's
// mutations. It returns *UnmappedMissionError for an unconfigured mission
// and *NoCandidatesError when every candidate gene scored zero on every
// signal; any other degradation is absorbed into the readings themselves.
func (s *Selector) Lock(ctx context.Context, missionStep string, mutations []genomics.Variant) (*Lock, error) {
	rs := s.rules.Snapshot()

	genes := rs.GenesForMission(missionStep)
	if genes == nil {
		return nil, &UnmappedMissionError{MissionStep: missionStep}
	}

	start := time.Now()
	scores := make([]GeneScore, len(genes))

	// Bounded fan-out across the mission's genes; each gene's four signal
	// calls fan out again inside the collector.
	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.cfg.GeneConcurrency)
	for i, gene := range genes {
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			variant := matchVariant(gene, mutations)
			bundle := s.collector.Collect(egCtx, gene, variant)
			scores[i] = scoreGene(rs, gene, bundle, variant != nil)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	allZero := true
	for i := range scores {
		if !scores[i].Signals.AllZero() {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, &NoCandidatesError{MissionStep: missionStep, GenesTried: genes}
	}

	sortByRank(scores)

	top := scores[0]
	lock := &Lock{
		Validated: ValidatedTarget{
			GeneScore: top,
			Rationale: rationaleFor(top),
		},
		Considered: consideredFrom(scores[1:]),
		Method:     MethodWeightedMultiSignal,
	}

	s.log.Info("target locked",
		zap.String("mission", missionStep),
		zap.String("gene", top.Gene),
		zap.Float64("rank_score", top.RankScore),
		zap.Int("genes_evaluated", len(genes)),
		zap.Duration("elapsed", time.Since(start)))
	return lock, nil
}

// scoreGene fuses one gene's bundle under the snapshot's weights, zeroing
// and renormalizing around stub readings.
func scoreGene(rs *ruleset.Ruleset, gene string, bundle signals.Bundle, inMutations bool) GeneScore {
	weights := Renormalize(rs.TargetLockWeights(), bundle)
	score := GeneScore{
		Gene:        gene,
		RankScore:   fuse(weights, bundle),
		Signals:     bundle,
		InMutations: inMutations,
	}
	score.ThresholdsPassed = thresholdsPassed(rs, bundle)
	return score
}

// consideredFrom takes the leading runners-up and re-sorts them for
// presentation: descending rank score, then gene ascending. The selection
// itself already happened under the normative ranking tuple.
func consideredFrom(rest []GeneScore) []ConsideredTarget {
	n := len(rest)
	if n > maxConsidered {
		n = maxConsidered
	}

	picked := make([]GeneScore, n)
	copy(picked, rest[:n])
	sortByPresentation(picked)

	out := make([]ConsideredTarget, n)
	for i, gs := range picked {
		out[i] = ConsideredTarget{
			Gene:      gs.Gene,
			RankScore: gs.RankScore,
			Rationale: consideredRationale(gs),
		}
	}
	return out
}

func consideredRationale(gs GeneScore) string {
	if gs.Signals.AllZero() {
		return "no signal evidence"
	}
	return "rank_score " + formatScore(gs.RankScore) + "; thresholds passed: " + passedSummary(gs.ThresholdsPassed)
}

func matchVariant(gene string, mutations []genomics.Variant) *genomics.Variant {
	for i := range mutations {
		if strings.EqualFold(mutations[i].Gene, gene) {
			v := mutations[i]
			return &v
		}
	}
	return nil
}
