package targetlock

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"oncostrike/internal/ruleset"
	"oncostrike/internal/signals"
)

// GeneScore is the per-gene outcome of weighted signal fusion.
type GeneScore struct {
	Gene             string           `json:"gene"`
	RankScore        float64          `json:"rank_score"`
	Signals          signals.Bundle   `json:"signals"`
	ThresholdsPassed []signals.Signal `json:"thresholds_passed"`
	InMutations      bool             `json:"in_mutations"`
}

// Renormalize returns the effective weight vector for a bundle: any signal
// whose reading is a stub gets weight exactly 0 and the remaining weights
// are rescaled to sum to 1.0 again. Without stubs the input is returned
// unchanged. The input map is never mutated.
func Renormalize(weights map[signals.Signal]float64, bundle signals.Bundle) map[signals.Signal]float64 {
	stubbed := false
	for _, s := range signals.All() {
		if bundle.Get(s).Stub() && weights[s] != 0 {
			stubbed = true
			break
		}
	}
	if !stubbed {
		return weights
	}

	out := make(map[signals.Signal]float64, len(weights))
	remaining := 0.0
	for s, w := range weights {
		if bundle.Get(s).Stub() {
			out[s] = 0
			continue
		}
		out[s] = w
		remaining += w
	}
	if remaining <= 0 {
		return out
	}
	for s, w := range out {
		out[s] = w / remaining
	}
	return out
}

// fuse computes the clamped weighted rank score for a bundle under the
// effective weights.
func fuse(weights map[signals.Signal]float64, bundle signals.Bundle) float64 {
	sum := 0.0
	for s, w := range weights {
		sum += w * bundle.Get(s).Value
	}
	return clamp01(sum)
}

// thresholdsPassed returns, in canonical signal order, the signals whose
// reading meets the configured threshold. A stub reading never passes,
// whatever its raw value.
func thresholdsPassed(rs *ruleset.Ruleset, bundle signals.Bundle) []signals.Signal {
	var passed []signals.Signal
	for _, s := range signals.All() {
		r := bundle.Get(s)
		if r.Stub() {
			continue
		}
		if r.Value >= rs.Threshold(s) {
			passed = append(passed, s)
		}
	}
	return passed
}

// rationaleFor renders the explanation lines for a scored gene: one line
// per non-zero signal, the thresholds summary, and the mutation note.
func rationaleFor(score GeneScore) []string {
	var lines []string
	for _, s := range signals.All() {
		r := score.Signals.Get(s)
		if r.Value <= 0 {
			continue
		}
		line := fmt.Sprintf("%s %.2f via %s", s, r.Value, r.Method)
		if r.Stub() {
			line += " (stub, excluded from fusion)"
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("thresholds passed: %s", passedSummary(score.ThresholdsPassed)))
	if score.InMutations {
		lines = append(lines, "gene carries a patient mutation")
	}
	return lines
}

func passedSummary(passed []signals.Signal) string {
	if len(passed) == 0 {
		return "none"
	}
	names := make([]string, len(passed))
	for i, s := range passed {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// sortByRank orders scores by the normative ranking tuple: mutated genes
// first, then descending rank score, then gene symbol ascending.
func sortByRank(scores []GeneScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].InMutations != scores[j].InMutations {
			return scores[i].InMutations
		}
		if scores[i].RankScore != scores[j].RankScore {
			return scores[i].RankScore > scores[j].RankScore
		}
		return scores[i].Gene < scores[j].Gene
	})
}

// sortByPresentation orders runners-up for display: descending rank score,
// then gene symbol ascending.
func sortByPresentation(scores []GeneScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].RankScore != scores[j].RankScore {
			return scores[i].RankScore > scores[j].RankScore
		}
		return scores[i].Gene < scores[j].Gene
	})
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
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
