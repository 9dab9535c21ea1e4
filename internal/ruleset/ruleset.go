// Package ruleset loads and validates the versioned ruleset document that
// drives target selection: mission-to-gene-set mappings, signal thresholds,
// and the fusion weight vectors. A ruleset is immutable once loaded; the
// Store swaps whole snapshots atomically so readers never observe a
// partially-updated document.
package ruleset

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"oncostrike/internal/signals"
)

// weightSumTolerance is the allowed deviation of a weight vector's sum
// from 1.0.
const weightSumTolerance = 0.01

// ConfigError reports a malformed or inconsistent ruleset document.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid ruleset: %s", e.Reason)
	}
	return fmt.Sprintf("invalid ruleset %s: %s", e.Path, e.Reason)
}

// Ruleset is the full configuration document.
type Ruleset struct {
	Version string `yaml:"version" json:"version"`

	// MissionToGeneSets maps a mission step to the ordered gene set names
	// considered for it.
	MissionToGeneSets map[string][]string `yaml:"mission_to_gene_sets" json:"mission_to_gene_sets"`

	// GeneSets holds the curated gene symbol lists, by set name.
	GeneSets map[string][]string `yaml:"gene_sets" json:"gene_sets"`

	// Thresholds holds the per-signal pass threshold, keyed by signal name.
	// Missing signals default to 0.6.
	Thresholds map[string]float64 `yaml:"thresholds" json:"thresholds"`

	Weights Weights `yaml:"weights" json:"weights"`

	// NumCandidatesPerTarget is how many guides to request per validated
	// target. Zero means the default of 3.
	NumCandidatesPerTarget int `yaml:"num_candidates_per_target" json:"num_candidates_per_target"`

	Design DesignConfig `yaml:"design" json:"design"`
}

// Weights holds the two fusion weight vectors.
type Weights struct {
	// TargetLock weighs the four evidence signals, keyed by signal name.
	TargetLock map[string]float64 `yaml:"target_lock" json:"target_lock"`

	Assassin AssassinWeights `yaml:"assassin" json:"assassin"`
}

// AssassinWeights weighs the components of the final composite score.
type AssassinWeights struct {
	Efficacy   float64 `yaml:"efficacy" json:"efficacy"`
	Safety     float64 `yaml:"safety" json:"safety"`
	MissionFit float64 `yaml:"mission_fit" json:"mission_fit"`
}

// DesignConfig holds the candidate-generation parameters.
type DesignConfig struct {
	// WindowSize is the flank, in bases, fetched on each side of the
	// anchoring variant. Zero means the default of 150.
	WindowSize int `yaml:"window_size" json:"window_size"`
}

// Default returns the embedded default ruleset, used when no document path
// is configured.
func Default() *Ruleset {
	return &Ruleset{
		Version: "2026.08.1",

		MissionToGeneSets: map[string][]string{
			"angiogenesis":   {"vegf_axis"},
			"local_invasion": {"emt_drivers", "mmp_family"},
			"proliferation":  {"cell_cycle_drivers"},
		},

		GeneSets: map[string][]string{
			"vegf_axis":          {"VEGFA", "VEGFR1", "VEGFR2"},
			"emt_drivers":        {"SNAI1", "SNAI2", "TWIST1", "ZEB1"},
			"mmp_family":         {"MMP2", "MMP9", "MMP14"},
			"cell_cycle_drivers": {"CCND1", "CDK4", "CDK6", "MYC"},
		},

		Thresholds: map[string]float64{
			string(signals.SignalFunctionality): 0.6,
			string(signals.SignalEssentiality):  0.6,
			string(signals.SignalRegulatory):    0.6,
			string(signals.SignalChromatin):     0.6,
		},

		Weights: Weights{
			TargetLock: map[string]float64{
				string(signals.SignalFunctionality): 0.3,
				string(signals.SignalEssentiality):  0.3,
				string(signals.SignalRegulatory):    0.2,
				string(signals.SignalChromatin):     0.2,
			},
			Assassin: AssassinWeights{
				Efficacy:   0.5,
				Safety:     0.3,
				MissionFit: 0.2,
			},
		},

		NumCandidatesPerTarget: 3,

		Design: DesignConfig{
			WindowSize: 150,
		},
	}
}

// Load reads and validates a ruleset document from a YAML file.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("failed to read: %v", err)}
	}

	rs := &Ruleset{}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("failed to parse: %v", err)}
	}

	rs.fillDefaults()
	if err := rs.validate(path); err != nil {
		return nil, err
	}
	return rs, nil
}

// fillDefaults fills omitted optional fields. Explicitly invalid values are
// left alone for validate to reject.
func (r *Ruleset) fillDefaults() {
	if r.Thresholds == nil {
		r.Thresholds = map[string]float64{}
	}
	for _, s := range signals.All() {
		if _, ok := r.Thresholds[string(s)]; !ok {
			r.Thresholds[string(s)] = 0.6
		}
	}
	if r.NumCandidatesPerTarget == 0 {
		r.NumCandidatesPerTarget = 3
	}
	if r.Design.WindowSize == 0 {
		r.Design.WindowSize = 150
	}
}

// validate checks the document's internal consistency. The weight vectors
// are checked against the signal enum here, at load time, so scoring never
// has to tolerate unknown or missing weight keys.
func (r *Ruleset) validate(path string) error {
	fail := func(format string, args ...any) error {
		return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
	}

	if r.Version == "" {
		return fail("missing version")
	}
	if len(r.MissionToGeneSets) == 0 {
		return fail("no mission steps configured")
	}

	for mission, setNames := range r.MissionToGeneSets {
		if len(setNames) == 0 {
			return fail("mission %q has no gene sets", mission)
		}
		for _, name := range setNames {
			genes, ok := r.GeneSets[name]
			if !ok {
				return fail("mission %q references unknown gene set %q", mission, name)
			}
			if len(genes) == 0 {
				return fail("gene set %q is empty", name)
			}
		}
	}

	for name, value := range r.Thresholds {
		if !signals.ValidName(name) {
			return fail("threshold for unknown signal %q", name)
		}
		if value < 0 || value > 1 {
			return fail("threshold for %q out of range: %g", name, value)
		}
	}

	if len(r.Weights.TargetLock) == 0 {
		return fail("weights.target_lock is missing")
	}
	sum := 0.0
	for name, w := range r.Weights.TargetLock {
		if !signals.ValidName(name) {
			return fail("target_lock weight for unknown signal %q", name)
		}
		if w < 0 {
			return fail("target_lock weight for %q is negative", name)
		}
		sum += w
	}
	for _, s := range signals.All() {
		if _, ok := r.Weights.TargetLock[string(s)]; !ok {
			return fail("target_lock weight for %q is missing", s)
		}
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fail("target_lock weights sum to %.4f, want 1.0", sum)
	}

	aw := r.Weights.Assassin
	if aw.Efficacy < 0 || aw.Safety < 0 || aw.MissionFit < 0 {
		return fail("assassin weights must be non-negative")
	}
	if s := aw.Efficacy + aw.Safety + aw.MissionFit; math.Abs(s-1.0) > weightSumTolerance {
		return fail("assassin weights sum to %.4f, want 1.0", s)
	}

	if r.NumCandidatesPerTarget < 1 {
		return fail("num_candidates_per_target must be positive, got %d", r.NumCandidatesPerTarget)
	}
	if r.Design.WindowSize < 1 {
		return fail("design.window_size must be positive, got %d", r.Design.WindowSize)
	}

	return nil
}

// GenesForMission returns the ordered union of the mission's gene sets,
// first occurrence winning on duplicates. Returns nil for an unmapped
// mission.
func (r *Ruleset) GenesForMission(mission string) []string {
	setNames, ok := r.MissionToGeneSets[mission]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var genes []string
	for _, name := range setNames {
		for _, gene := range r.GeneSets[name] {
			if seen[gene] {
				continue
			}
			seen[gene] = true
			genes = append(genes, gene)
		}
	}
	return genes
}

// Threshold returns the pass threshold for s.
func (r *Ruleset) Threshold(s signals.Signal) float64 {
	return r.Thresholds[string(s)]
}

// TargetLockWeights returns the target-lock weight vector keyed by signal.
// The returned map is a fresh copy; callers may mutate it (renormalization
// does).
func (r *Ruleset) TargetLockWeights() map[signals.Signal]float64 {
	out := make(map[signals.Signal]float64, len(r.Weights.TargetLock))
	for name, w := range r.Weights.TargetLock {
		out[signals.Signal(name)] = w
	}
	return out
}

// Missions returns the configured mission steps, sorted.
func (r *Ruleset) Missions() []string {
	out := make([]string, 0, len(r.MissionToGeneSets))
	for m := range r.MissionToGeneSets {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
