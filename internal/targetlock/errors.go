package targetlock

import "fmt"

// UnmappedMissionError reports a mission step with no configured gene sets.
type UnmappedMissionError struct {
	MissionStep string
}

func (e *UnmappedMissionError) Error() string {
	return fmt.Sprintf("mission step %q has no configured gene sets", e.MissionStep)
}

// NoCandidatesError reports that every candidate gene scored zero on every
// signal, leaving nothing to target. This is the pipeline's only fatal
// failure after configuration load.
type NoCandidatesError struct {
	MissionStep string
	GenesTried  []string
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no target for mission %q: all %d candidate genes scored zero on every signal",
		e.MissionStep, len(e.GenesTried))
}
