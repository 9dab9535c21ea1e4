// Package intercept orchestrates one research request through the
// pipeline stages: target lock, candidate design, safety screen, score
// fusion, and response assembly. Only target lock can fail the request;
// everything downstream degrades into warnings carried by provenance.
package intercept

import (
	"time"

	"oncostrike/internal/assassin"
	"oncostrike/internal/genomics"
	"oncostrike/internal/targetlock"
)

// Stage keys as they appear in provenance method tags.
const (
	StageTargetLock = "target_lock"
	StageDesign     = "design"
	StageSafety     = "safety"
	StageScore      = "score"
)

// Stage method tags.
const (
	MethodGuideCollab    = "guide_collab_v1"
	MethodOffTargetBatch = "offtarget_screen_v1"
	MethodAssassinFusion = "assassin_fusion_v1"
	MethodSkipped        = "skipped"
)

// Bounds for the per-request candidate count override.
const (
	minCandidates = 1
	maxCandidates = 10
)

// RUONotice is attached verbatim to every response.
const RUONotice = "Research use only. Computational screening output, not for clinical decision-making."

// Options carries per-request overrides.
type Options struct {
	// NumCandidates overrides the ruleset's per-target candidate count.
	// Clamped to [1, 10]; zero means the ruleset value applies.
	NumCandidates int `json:"num_candidates,omitempty"`
}

// Request is one interception request as received from the caller.
type Request struct {
	MissionStep string             `json:"mission_step"`
	Mutations   []genomics.Variant `json:"mutations"`
	PatientID   string             `json:"patient_id,omitempty"`
	Disease     string             `json:"disease,omitempty"`
	Options     *Options           `json:"options,omitempty"`
}

// Provenance self-describes how a response was produced: which stage ran
// with which method, what degraded along the way, and under which ruleset.
type Provenance struct {
	RequestID      string            `json:"request_id"`
	RulesetVersion string            `json:"ruleset_version"`
	StageMethods   map[string]string `json:"stage_methods"`
	Warnings       []string          `json:"warnings,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	ElapsedMS      int64             `json:"elapsed_ms"`
}

// InterceptionResult is the assembled response. It is built once and never
// mutated afterwards.
type InterceptionResult struct {
	RequestID         string                        `json:"request_id"`
	MissionStep       string                        `json:"mission_step"`
	MissionObjective  string                        `json:"mission_objective"`
	PatientID         string                        `json:"patient_id,omitempty"`
	Disease           string                        `json:"disease,omitempty"`
	ValidatedTarget   targetlock.ValidatedTarget    `json:"validated_target"`
	ConsideredTargets []targetlock.ConsideredTarget `json:"considered_targets"`
	Candidates        []assassin.Ranked             `json:"candidates"`
	Rationale         []string                      `json:"rationale"`
	RUONotice         string                        `json:"ruo_notice"`
	Provenance        Provenance                    `json:"provenance"`
}
