package intercept

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oncostrike/internal/assassin"
	"oncostrike/internal/audit"
	"oncostrike/internal/design"
	"oncostrike/internal/genomics"
	"oncostrike/internal/ruleset"
	"oncostrike/internal/safety"
	"oncostrike/internal/targetlock"
)

// TargetSelector runs the target-lock stage. Implemented by
// targetlock.Selector.
type TargetSelector interface {
	Lock(ctx context.Context, missionStep string, mutations []genomics.Variant) (*targetlock.Lock, error)
}

// CandidateDesigner runs the design stage. Implemented by
// design.Generator.
type CandidateDesigner interface {
	Design(ctx context.Context, targetGene string, mutations []genomics.Variant, n, window int) ([]design.Candidate, error)
}

// SafetyEvaluator runs the safety stage. Implemented by safety.Evaluator.
type SafetyEvaluator interface {
	Evaluate(ctx context.Context, candidates []design.Candidate) []safety.Evaluated
}

// CandidateScorer runs score fusion. Implemented by assassin.Scorer.
type CandidateScorer interface {
	Score(ctx context.Context, evaluated []safety.Evaluated, missionFit float64, weights ruleset.AssassinWeights, window int) []assassin.Ranked
}

// Pipeline wires the stages together. One Intercept call is one strictly
// sequential pass; the ruleset is snapshotted once at entry so a reload
// cannot split a request across two configurations.
type Pipeline struct {
	rules     *ruleset.Store
	selector  TargetSelector
	designer  CandidateDesigner
	evaluator SafetyEvaluator
	scorer    CandidateScorer
	trail     *audit.Log
	log       *zap.Logger
}

// NewPipeline assembles the orchestrator from its stages. A nil trail
// disables audit recording.
func NewPipeline(rules *ruleset.Store, selector TargetSelector, designer CandidateDesigner, evaluator SafetyEvaluator, scorer CandidateScorer, trail *audit.Log, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		rules:     rules,
		selector:  selector,
		designer:  designer,
		evaluator: evaluator,
		scorer:    scorer,
		trail:     trail,
		log:       log,
	}
}

// Intercept runs one request through target lock, design, safety, score,
// and assembly. Target-lock failures are the only error return; design
// failures downgrade to warnings with an empty candidate list, and the
// safety and score stages cannot fail outward at all.
func (p *Pipeline) Intercept(ctx context.Context, req Request) (*InterceptionResult, error) {
	started := time.Now()
	requestID := uuid.NewString()
	rs := p.rules.Snapshot()

	log := p.log.With(
		zap.String("request_id", requestID),
		zap.String("mission", req.MissionStep))

	stageMethods := make(map[string]string, 4)
	var warnings []string

	lock, err := p.selector.Lock(ctx, req.MissionStep, req.Mutations)
	if err != nil {
		log.Warn("target lock failed", zap.Error(err))
		p.trail.Record(audit.Event{
			RequestID:      requestID,
			MissionStep:    req.MissionStep,
			RulesetVersion: rs.Version,
			ElapsedMS:      time.Since(started).Milliseconds(),
			Outcome:        audit.OutcomeError,
			Error:          err.Error(),
		})
		return nil, err
	}
	stageMethods[StageTargetLock] = lock.Method

	num := p.candidateCount(req.Options, rs, log)
	candidates, err := p.designer.Design(ctx, lock.Validated.Gene, req.Mutations, num, rs.Design.WindowSize)
	switch {
	case err != nil:
		stageMethods[StageDesign] = MethodSkipped
		warnings = append(warnings, fmt.Sprintf("design stage skipped: %v", err))
		log.Warn("design stage skipped", zap.Error(err))
		candidates = nil
	case len(candidates) == 0:
		stageMethods[StageDesign] = MethodGuideCollab
		warnings = append(warnings, "design produced no candidates")
	default:
		stageMethods[StageDesign] = MethodGuideCollab
	}

	var ranked []assassin.Ranked
	if len(candidates) == 0 {
		stageMethods[StageSafety] = MethodSkipped
		stageMethods[StageScore] = MethodSkipped
	} else {
		evaluated := p.evaluator.Evaluate(ctx, candidates)
		stageMethods[StageSafety] = MethodOffTargetBatch

		ranked = p.scorer.Score(ctx, evaluated, lock.Validated.RankScore, rs.Weights.Assassin, rs.Design.WindowSize)
		stageMethods[StageScore] = MethodAssassinFusion
	}

	if len(ranked) < 2 {
		warnings = append(warnings, "fewer than 2 candidates produced")
	}

	result := &InterceptionResult{
		RequestID:         requestID,
		MissionStep:       req.MissionStep,
		MissionObjective:  missionObjective(req.MissionStep),
		PatientID:         req.PatientID,
		Disease:           req.Disease,
		ValidatedTarget:   lock.Validated,
		ConsideredTargets: lock.Considered,
		Candidates:        ranked,
		Rationale:         assembleRationale(req.MissionStep, lock),
		RUONotice:         RUONotice,
		Provenance: Provenance{
			RequestID:      requestID,
			RulesetVersion: rs.Version,
			StageMethods:   stageMethods,
			Warnings:       warnings,
			StartedAt:      started.UTC(),
			ElapsedMS:      time.Since(started).Milliseconds(),
		},
	}

	p.trail.Record(audit.Event{
		RequestID:      requestID,
		MissionStep:    req.MissionStep,
		TargetGene:     lock.Validated.Gene,
		RankScore:      lock.Validated.RankScore,
		Candidates:     len(ranked),
		Warnings:       len(warnings),
		RulesetVersion: rs.Version,
		ElapsedMS:      result.Provenance.ElapsedMS,
		Outcome:        audit.OutcomeOK,
	})

	log.Info("interception complete",
		zap.String("gene", lock.Validated.Gene),
		zap.Int("candidates", len(ranked)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("elapsed", time.Since(started)))
	return result, nil
}

// candidateCount resolves how many guides to request, honoring the
// per-request override within [1, 10].
func (p *Pipeline) candidateCount(opts *Options, rs *ruleset.Ruleset, log *zap.Logger) int {
	if opts == nil || opts.NumCandidates == 0 {
		return rs.NumCandidatesPerTarget
	}
	n := opts.NumCandidates
	if n < minCandidates {
		log.Warn("candidate override below minimum, clamping",
			zap.Int("requested", n), zap.Int("using", minCandidates))
		return minCandidates
	}
	if n > maxCandidates {
		log.Warn("candidate override above maximum, clamping",
			zap.Int("requested", n), zap.Int("using", maxCandidates))
		return maxCandidates
	}
	return n
}

func assembleRationale(missionStep string, lock *targetlock.Lock) []string {
	out := make([]string, 0, len(lock.Validated.Rationale)+1)
	out = append(out, fmt.Sprintf("locked %s for mission %q (rank score %.2f)",
		lock.Validated.Gene, missionStep, lock.Validated.RankScore))
	out = append(out, lock.Validated.Rationale...)
	return out
}

// missionObjective renders the human-readable restatement of a mission
// step, e.g. "disrupt local invasion".
func missionObjective(missionStep string) string {
	return "disrupt " + strings.ReplaceAll(missionStep, "_", " ")
}
