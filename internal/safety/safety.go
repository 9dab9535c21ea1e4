// Package safety runs the off-target heuristic screen over designed
// candidates. The screen degrades instead of failing: every candidate
// leaves this stage carrying a safety score, and how that score was
// obtained is recorded on the candidate itself.
package safety

import (
	"context"
	"time"

	"go.uber.org/zap"

	"oncostrike/internal/design"
	"oncostrike/internal/scorers"
)

const (
	// MethodHeuristic tags scores produced by the off-target collaborator.
	MethodHeuristic = "heuristic_v1"
	// MethodPlaceholder tags the neutral score substituted when no screen
	// result was available.
	MethodPlaceholder = "placeholder"

	// NeutralScore stands in when the screen could not score a guide.
	NeutralScore = 0.5

	StatusOK          = "ok"
	StatusError       = "error"       // the whole batch call failed
	StatusUnavailable = "unavailable" // batch succeeded but this guide was missing
)

// Evaluated is a candidate with its safety screen outcome attached.
type Evaluated struct {
	design.Candidate
	SafetyScore  float64 `json:"safety_score"`
	SafetyMethod string  `json:"safety_method"`
	SafetyStatus string  `json:"safety_status"`
}

// OffTargetScreen scores a batch of guide sequences. Implemented by
// scorers.OffTarget.
type OffTargetScreen interface {
	ScoreBatch(ctx context.Context, guides []string) (map[string]scorers.OffTargetScore, error)
}

// Evaluator runs the safety stage.
type Evaluator struct {
	screen OffTargetScreen
	log    *zap.Logger
}

// NewEvaluator creates an evaluator over the off-target screen client.
func NewEvaluator(screen OffTargetScreen, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{screen: screen, log: log}
}

// Evaluate screens all candidates in one batch call. It never returns an
// error: a failed batch yields neutral placeholder scores for everything,
// a guide missing from a successful batch gets the placeholder alone.
func (e *Evaluator) Evaluate(ctx context.Context, candidates []design.Candidate) []Evaluated {
	if len(candidates) == 0 {
		return nil
	}

	guides := make([]string, len(candidates))
	for i, c := range candidates {
		guides[i] = c.Sequence
	}

	start := time.Now()
	scores, err := e.screen.ScoreBatch(ctx, guides)
	if err != nil {
		e.log.Warn("off-target screen failed, substituting neutral safety",
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
		out := make([]Evaluated, len(candidates))
		for i, c := range candidates {
			out[i] = placeholder(c, StatusError)
		}
		return out
	}

	out := make([]Evaluated, len(candidates))
	for i, c := range candidates {
		score, ok := scores[c.Sequence]
		if !ok {
			e.log.Warn("guide missing from off-target screen result",
				zap.String("sequence", c.Sequence))
			out[i] = placeholder(c, StatusUnavailable)
			continue
		}
		out[i] = Evaluated{
			Candidate:    c,
			SafetyScore:  score.HeuristicScore,
			SafetyMethod: MethodHeuristic,
			SafetyStatus: StatusOK,
		}
	}

	e.log.Debug("safety screen complete",
		zap.Int("candidates", len(candidates)),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

func placeholder(c design.Candidate, status string) Evaluated {
	return Evaluated{
		Candidate:    c,
		SafetyScore:  NeutralScore,
		SafetyMethod: MethodPlaceholder,
		SafetyStatus: status,
	}
}
