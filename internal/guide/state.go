package guide

import "strings"

// statePreamble opens the combined rendering handed to the integrator.
const statePreamble = "Here are the ideas that have come up so far:"

// State maps each drafting stage to its cumulative summary. It is owned by
// the caller (one instance per session); the orchestrator reads it and
// returns an updated copy. Missing keys read as the empty string.
type State map[Stage]string

// NewState returns a state with an empty summary for every drafting stage.
func NewState() State {
	s := make(State, len(PipelineStages))
	for _, stage := range PipelineStages {
		s[stage] = ""
	}
	return s
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for stage, summary := range s {
		out[stage] = summary
	}
	return out
}

// Combined renders the non-blank stage summaries in pipeline order under a
// fixed preamble, one "stage: summary" line per stage.
func (s State) Combined() string {
	var b strings.Builder
	b.WriteString(statePreamble)
	for _, stage := range PipelineStages {
		if summary := s[stage]; summary != "" {
			b.WriteString(string(stage))
			b.WriteString(": ")
			b.WriteString(summary)
			b.WriteString("\n")
		}
	}
	return b.String()
}
