package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oncostrike/internal/design"
	"oncostrike/internal/scorers"
)

type fakeScreen struct {
	scores map[string]scorers.OffTargetScore
	err    error
	guides []string
	calls  int
}

func (f *fakeScreen) ScoreBatch(ctx context.Context, guides []string) (map[string]scorers.OffTargetScore, error) {
	f.calls++
	f.guides = guides
	return f.scores, f.err
}

func candidate(seq string) design.Candidate {
	return design.Candidate{Sequence: seq, PAM: "AGG", TargetGene: "VEGFA"}
}

func TestEvaluateAppliesScreenScores(t *testing.T) {
	screen := &fakeScreen{scores: map[string]scorers.OffTargetScore{
		"ACGTACGTACGTACGTACGT": {HeuristicScore: 0.91, GCContent: 0.5, Homopolymer: 1},
		"GGGGACGTACGTACGTACGT": {HeuristicScore: 0.34, GCContent: 0.6, Homopolymer: 4},
	}}
	ev := NewEvaluator(screen, zap.NewNop())

	got := ev.Evaluate(context.Background(), []design.Candidate{
		candidate("ACGTACGTACGTACGTACGT"),
		candidate("GGGGACGTACGTACGTACGT"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"ACGTACGTACGTACGTACGT", "GGGGACGTACGTACGTACGT"}, screen.guides)

	assert.InDelta(t, 0.91, got[0].SafetyScore, 1e-9)
	assert.Equal(t, MethodHeuristic, got[0].SafetyMethod)
	assert.Equal(t, StatusOK, got[0].SafetyStatus)
	assert.Equal(t, "VEGFA", got[0].TargetGene)

	assert.InDelta(t, 0.34, got[1].SafetyScore, 1e-9)
}

func TestEvaluateBatchFailureIsNeutral(t *testing.T) {
	screen := &fakeScreen{err: errors.New("screen offline")}
	ev := NewEvaluator(screen, zap.NewNop())

	got := ev.Evaluate(context.Background(), []design.Candidate{
		candidate("ACGTACGTACGTACGTACGT"),
		candidate("GGGGACGTACGTACGTACGT"),
	})

	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, NeutralScore, e.SafetyScore)
		assert.Equal(t, MethodPlaceholder, e.SafetyMethod)
		assert.Equal(t, StatusError, e.SafetyStatus)
	}
}

func TestEvaluateMissingEntryIsUnavailable(t *testing.T) {
	screen := &fakeScreen{scores: map[string]scorers.OffTargetScore{
		"ACGTACGTACGTACGTACGT": {HeuristicScore: 0.8},
	}}
	ev := NewEvaluator(screen, zap.NewNop())

	got := ev.Evaluate(context.Background(), []design.Candidate{
		candidate("ACGTACGTACGTACGTACGT"),
		candidate("GGGGACGTACGTACGTACGT"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, StatusOK, got[0].SafetyStatus)

	assert.Equal(t, NeutralScore, got[1].SafetyScore)
	assert.Equal(t, MethodPlaceholder, got[1].SafetyMethod)
	assert.Equal(t, StatusUnavailable, got[1].SafetyStatus)
}

func TestEvaluateEmptyInputSkipsCall(t *testing.T) {
	screen := &fakeScreen{}
	ev := NewEvaluator(screen, zap.NewNop())

	assert.Nil(t, ev.Evaluate(context.Background(), nil))
	assert.Zero(t, screen.calls)
}
