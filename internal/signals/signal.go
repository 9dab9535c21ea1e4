// Package signals defines the four evidence signals the target-lock stage
// fuses, the typed outcome of collecting each one, and the concurrent
// collector that gathers them per gene.
package signals

import "oncostrike/internal/scorers"

// Signal names one evidence axis.
type Signal string

const (
	SignalFunctionality Signal = "functionality"
	SignalEssentiality  Signal = "essentiality"
	SignalRegulatory    Signal = "regulatory"
	SignalChromatin     Signal = "chromatin"
)

// All returns the four signals in canonical order.
func All() []Signal {
	return []Signal{SignalFunctionality, SignalEssentiality, SignalRegulatory, SignalChromatin}
}

// ValidName reports whether name is a known signal. Ruleset validation
// checks threshold and weight keys against this at load time, so unknown
// names fail configuration instead of being ignored at scoring time.
func ValidName(name string) bool {
	switch Signal(name) {
	case SignalFunctionality, SignalEssentiality, SignalRegulatory, SignalChromatin:
		return true
	}
	return false
}

// ReadingStatus classifies how a reading was obtained.
type ReadingStatus string

const (
	// StatusOK means the collaborator answered.
	StatusOK ReadingStatus = "ok"
	// StatusDegraded means the call failed and the neutral 0.0 was
	// substituted.
	StatusDegraded ReadingStatus = "degraded"
	// StatusSkipped means prerequisites were missing and no call was made.
	StatusSkipped ReadingStatus = "skipped"
)

// Reading is the typed outcome of one signal collection. Substituting a
// neutral value on failure is not an exception path here: it is an ordinary
// state a Reading can be in, inspectable by callers and serialized into
// provenance.
type Reading struct {
	Value  float64       `json:"value"`
	Method string        `json:"method,omitempty"`
	Status ReadingStatus `json:"status"`
	Err    string        `json:"error,omitempty"`
}

// OK builds a successful reading.
func OK(value float64, method string) Reading {
	return Reading{Value: value, Method: method, Status: StatusOK}
}

// Degraded builds the neutral reading recorded when a collaborator call
// failed.
func Degraded(err error) Reading {
	r := Reading{Status: StatusDegraded}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}

// Skipped builds the reading recorded when prerequisites were missing and
// no call was attempted.
func Skipped(reason string) Reading {
	return Reading{Status: StatusSkipped, Err: reason}
}

// Stub reports whether the reading came from a collaborator's deterministic
// fallback path rather than genuine inference. Stub readings are excluded
// from weighted fusion and can never pass a threshold.
func (r Reading) Stub() bool {
	return r.Method == scorers.MethodDeterministicFallback
}

// Bundle holds one reading per signal for a single gene.
type Bundle struct {
	Functionality Reading `json:"functionality"`
	Essentiality  Reading `json:"essentiality"`
	Regulatory    Reading `json:"regulatory"`
	Chromatin     Reading `json:"chromatin"`
}

// Get returns the reading for s. Unknown signals return a zero Reading.
func (b Bundle) Get(s Signal) Reading {
	switch s {
	case SignalFunctionality:
		return b.Functionality
	case SignalEssentiality:
		return b.Essentiality
	case SignalRegulatory:
		return b.Regulatory
	case SignalChromatin:
		return b.Chromatin
	}
	return Reading{}
}

// AllZero reports whether every reading in the bundle carries value 0.
// A gene whose bundle is all-zero contributed no evidence at all.
func (b Bundle) AllZero() bool {
	for _, s := range All() {
		if b.Get(s).Value != 0 {
			return false
		}
	}
	return true
}
