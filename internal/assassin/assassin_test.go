package assassin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oncostrike/internal/design"
	"oncostrike/internal/ruleset"
	"oncostrike/internal/safety"
	"oncostrike/internal/scorers"
)

type fakeEstimator struct {
	estimates map[string]scorers.EfficacyEstimate
	err       error
	calls     int
	targetSeq string
	window    int
}

func (f *fakeEstimator) Score(ctx context.Context, guide, targetSeq string, windowSize int) (scorers.EfficacyEstimate, error) {
	f.calls++
	f.targetSeq = targetSeq
	f.window = windowSize
	if f.err != nil {
		return scorers.EfficacyEstimate{}, f.err
	}
	return f.estimates[guide], nil
}

func defaultWeights() ruleset.AssassinWeights {
	return ruleset.Default().Weights.Assassin
}

func evaluated(seq string, safetyScore float64, proxy *float64) safety.Evaluated {
	return safety.Evaluated{
		Candidate: design.Candidate{
			Sequence:       seq,
			EfficacyProxy:  proxy,
			SourceSequence: "ACGTACGTACGTACGTACGTACGTACGTACGT",
		},
		SafetyScore:  safetyScore,
		SafetyMethod: safety.MethodHeuristic,
		SafetyStatus: safety.StatusOK,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestScoreUsesModelForValidGuides(t *testing.T) {
	est := &fakeEstimator{estimates: map[string]scorers.EfficacyEstimate{
		"ACGTACGTACGTACGTACGT": {Score: 0.9, Delta: 0.12, Confidence: 0.88},
	}}
	sc := NewScorer(est, zap.NewNop())

	got := sc.Score(context.Background(),
		[]safety.Evaluated{evaluated("ACGTACGTACGTACGTACGT", 0.8, nil)},
		0.7, defaultWeights(), 150)

	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, MethodML, r.EfficacyMethod)
	assert.InDelta(t, 0.9, r.Efficacy, 1e-9)
	assert.InDelta(t, 0.12, r.Delta, 1e-9)
	assert.InDelta(t, 0.88, r.Confidence, 1e-9)
	assert.InDelta(t, 0.7, r.MissionFit, 1e-9)

	// 0.5*0.9 + 0.3*0.8 + 0.2*0.7
	assert.InDelta(t, 0.83, r.AssassinScore, 1e-9)

	assert.Equal(t, 1, est.calls)
	assert.Equal(t, "ACGTACGTACGTACGTACGTACGTACGTACGT", est.targetSeq)
	assert.Equal(t, 150, est.window)
}

func TestScoreFallsBackToProxyOnModelFailure(t *testing.T) {
	est := &fakeEstimator{err: errors.New("model offline")}
	sc := NewScorer(est, zap.NewNop())

	got := sc.Score(context.Background(),
		[]safety.Evaluated{evaluated("ACGTACGTACGTACGTACGT", 0.8, floatPtr(0.77))},
		0.7, defaultWeights(), 150)

	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, MethodHeuristicProxy, r.EfficacyMethod)
	assert.InDelta(t, 0.77, r.Efficacy, 1e-9)
	assert.Zero(t, r.Delta)
	assert.Zero(t, r.Confidence)

	// The composite is still computed and present.
	assert.InDelta(t, 0.5*0.77+0.3*0.8+0.2*0.7, r.AssassinScore, 1e-9)
}

func TestScoreMalformedSequenceSkipsModel(t *testing.T) {
	est := &fakeEstimator{}
	sc := NewScorer(est, zap.NewNop())

	got := sc.Score(context.Background(),
		[]safety.Evaluated{evaluated("ACGTACGT", 0.5, floatPtr(0.6))},
		0.5, defaultWeights(), 150)

	require.Len(t, got, 1)
	assert.Equal(t, MethodHeuristicProxy, got[0].EfficacyMethod)
	assert.InDelta(t, 0.6, got[0].Efficacy, 1e-9)
	assert.Zero(t, est.calls)
}

func TestScoreNeutralWhenProxyAbsent(t *testing.T) {
	est := &fakeEstimator{err: errors.New("model offline")}
	sc := NewScorer(est, zap.NewNop())

	got := sc.Score(context.Background(),
		[]safety.Evaluated{evaluated("ACGTACGTACGTACGTACGT", 0.5, nil)},
		0.5, defaultWeights(), 150)

	require.Len(t, got, 1)
	assert.InDelta(t, neutralEfficacy, got[0].Efficacy, 1e-9)
	assert.Equal(t, MethodHeuristicProxy, got[0].EfficacyMethod)
}

func TestScoreSortsDescending(t *testing.T) {
	est := &fakeEstimator{estimates: map[string]scorers.EfficacyEstimate{
		"ACGTACGTACGTACGTACGT": {Score: 0.4},
		"GGGGACGTACGTACGTACGT": {Score: 0.95},
		"TTTTACGTACGTACGTACGT": {Score: 0.7},
	}}
	sc := NewScorer(est, zap.NewNop())

	got := sc.Score(context.Background(), []safety.Evaluated{
		evaluated("ACGTACGTACGTACGTACGT", 0.5, nil),
		evaluated("GGGGACGTACGTACGTACGT", 0.5, nil),
		evaluated("TTTTACGTACGTACGTACGT", 0.5, nil),
	}, 0.5, defaultWeights(), 150)

	require.Len(t, got, 3)
	assert.Equal(t, "GGGGACGTACGTACGTACGT", got[0].Sequence)
	assert.Equal(t, "TTTTACGTACGTACGTACGT", got[1].Sequence)
	assert.Equal(t, "ACGTACGTACGTACGTACGT", got[2].Sequence)
	assert.GreaterOrEqual(t, got[0].AssassinScore, got[1].AssassinScore)
	assert.GreaterOrEqual(t, got[1].AssassinScore, got[2].AssassinScore)
}

func TestScoreTiesKeepInputOrder(t *testing.T) {
	est := &fakeEstimator{err: errors.New("model offline")}
	sc := NewScorer(est, zap.NewNop())

	got := sc.Score(context.Background(), []safety.Evaluated{
		evaluated("TTTTACGTACGTACGTACGT", 0.5, nil),
		evaluated("ACGTACGTACGTACGTACGT", 0.5, nil),
	}, 0.5, defaultWeights(), 150)

	require.Len(t, got, 2)
	assert.Equal(t, "TTTTACGTACGTACGTACGT", got[0].Sequence)
	assert.Equal(t, "ACGTACGTACGTACGTACGT", got[1].Sequence)
}

func TestScoreClampsComposite(t *testing.T) {
	est := &fakeEstimator{estimates: map[string]scorers.EfficacyEstimate{
		"ACGTACGTACGTACGTACGT": {Score: 1.0},
	}}
	sc := NewScorer(est, zap.NewNop())

	over := ruleset.AssassinWeights{Efficacy: 1, Safety: 1, MissionFit: 1}
	got := sc.Score(context.Background(),
		[]safety.Evaluated{evaluated("ACGTACGTACGTACGTACGT", 1.0, nil)},
		1.0, over, 150)

	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].AssassinScore)
}

func TestScoreEmptyInput(t *testing.T) {
	sc := NewScorer(&fakeEstimator{}, zap.NewNop())
	assert.Nil(t, sc.Score(context.Background(), nil, 0.5, defaultWeights(), 150))
}
