// Package assassin produces the final composite ranking for candidate
// guides, fusing model-estimated efficacy, the safety screen result, and
// the validated target's own confidence.
package assassin

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"oncostrike/internal/genomics"
	"oncostrike/internal/ruleset"
	"oncostrike/internal/safety"
	"oncostrike/internal/scorers"
)

const (
	// MethodML tags efficacy estimates from the spacer efficacy model.
	MethodML = "ml_v1"
	// MethodHeuristicProxy tags the generator-supplied proxy, or the
	// neutral default, used when the model could not be consulted.
	MethodHeuristicProxy = "heuristic_proxy"

	// neutralEfficacy stands in when no proxy is available either.
	neutralEfficacy = 0.5
)

// Ranked is a fully scored candidate ready for the final response.
type Ranked struct {
	safety.Evaluated
	Efficacy       float64 `json:"efficacy"`
	Delta          float64 `json:"delta"`
	Confidence     float64 `json:"confidence"`
	EfficacyMethod string  `json:"efficacy_method"`
	MissionFit     float64 `json:"mission_fit"`
	AssassinScore  float64 `json:"assassin_score"`
}

// EfficacyEstimator predicts cut efficacy for one guide. Implemented by
// scorers.Efficacy.
type EfficacyEstimator interface {
	Score(ctx context.Context, guide, targetSeq string, windowSize int) (scorers.EfficacyEstimate, error)
}

// Scorer runs the score fusion stage.
type Scorer struct {
	estimator EfficacyEstimator
	log       *zap.Logger
}

// NewScorer creates a scorer over the efficacy client.
func NewScorer(estimator EfficacyEstimator, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{estimator: estimator, log: log}
}

// Score fuses each candidate's scores under the snapshot's weights and
// returns the list stable-sorted by descending composite score. missionFit
// is the validated target's rank score, constant across the batch. Score
// never returns an error: efficacy failures fall back to the generator's
// proxy, then to the neutral default.
func (s *Scorer) Score(ctx context.Context, evaluated []safety.Evaluated, missionFit float64, weights ruleset.AssassinWeights, window int) []Ranked {
	if len(evaluated) == 0 {
		return nil
	}

	start := time.Now()
	out := make([]Ranked, len(evaluated))
	for i, ev := range evaluated {
		out[i] = s.scoreOne(ctx, ev, missionFit, weights, window)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssassinScore > out[j].AssassinScore
	})

	s.log.Debug("candidates ranked",
		zap.Int("candidates", len(out)),
		zap.Float64("mission_fit", missionFit),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

func (s *Scorer) scoreOne(ctx context.Context, ev safety.Evaluated, missionFit float64, weights ruleset.AssassinWeights, window int) Ranked {
	r := Ranked{Evaluated: ev, MissionFit: missionFit}

	if !genomics.ValidGuide(ev.Sequence) {
		// A malformed sequence is kept and scored on the proxy, never
		// dropped.
		s.log.Debug("sequence is not a 20-nt guide, scoring on proxy",
			zap.String("sequence", ev.Sequence))
		r.Efficacy = proxyEfficacy(ev)
		r.EfficacyMethod = MethodHeuristicProxy
	} else if est, err := s.estimator.Score(ctx, ev.Sequence, ev.SourceSequence, window); err != nil {
		s.log.Warn("efficacy model unavailable, scoring on proxy",
			zap.String("sequence", ev.Sequence),
			zap.Error(err))
		r.Efficacy = proxyEfficacy(ev)
		r.EfficacyMethod = MethodHeuristicProxy
	} else {
		r.Efficacy = est.Score
		r.Delta = est.Delta
		r.Confidence = est.Confidence
		r.EfficacyMethod = MethodML
	}

	r.AssassinScore = clamp01(weights.Efficacy*r.Efficacy +
		weights.Safety*ev.SafetyScore +
		weights.MissionFit*missionFit)
	return r
}

func proxyEfficacy(ev safety.Evaluated) float64 {
	if ev.EfficacyProxy != nil {
		return *ev.EfficacyProxy
	}
	return neutralEfficacy
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
