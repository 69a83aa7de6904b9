package guide

import "fmt"

// Stage identifies one step of the proposal pipeline.
type Stage string

const (
	StageObjective      Stage = "objective"
	StageOutcomes       Stage = "outcomes"
	StagePedagogy       Stage = "pedagogy"
	StageDevelopment    Stage = "development"
	StageImplementation Stage = "implementation"
	StageEvaluation     Stage = "evaluation"
	StageIntegrator     Stage = "integrator"
)

// PipelineStages lists the drafting stages in the order the user works
// through them. The integrator is terminal and not part of this list.
var PipelineStages = []Stage{
	StageObjective,
	StageOutcomes,
	StagePedagogy,
	StageDevelopment,
	StageImplementation,
	StageEvaluation,
}

// StageConfig holds the static configuration of one stage. The integrator
// carries only a Persona; every other stage also needs an initial question,
// options and a compaction persona.
type StageConfig struct {
	InitialQuestion string
	Options         []string
	Persona         string
	SummaryPersona  string
}

// Registry is the immutable stage table consumed by the orchestrator.
type Registry struct {
	stages map[Stage]StageConfig
}

// NewRegistry validates the stage table and freezes it. Validation failures
// are startup-time fatal and returned so the caller can refuse to start.
func NewRegistry(stages map[Stage]StageConfig) (*Registry, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("stage registry is empty")
	}
	for stage, cfg := range stages {
		if stage == StageIntegrator {
			if cfg.Persona == "" {
				return nil, fmt.Errorf("stage %q: persona is required", stage)
			}
			if cfg.InitialQuestion != "" {
				return nil, fmt.Errorf("stage %q: must not have an initial question", stage)
			}
			continue
		}
		if cfg.InitialQuestion == "" {
			return nil, fmt.Errorf("stage %q: initial question is required", stage)
		}
		if len(cfg.Options) == 0 {
			return nil, fmt.Errorf("stage %q: at least one option is required", stage)
		}
		if cfg.Persona == "" {
			return nil, fmt.Errorf("stage %q: persona is required", stage)
		}
		if cfg.SummaryPersona == "" {
			return nil, fmt.Errorf("stage %q: summary persona is required", stage)
		}
	}
	copied := make(map[Stage]StageConfig, len(stages))
	for stage, cfg := range stages {
		copied[stage] = cfg
	}
	return &Registry{stages: copied}, nil
}

// Lookup returns the configuration for a stage.
func (r *Registry) Lookup(stage Stage) (StageConfig, bool) {
	cfg, ok := r.stages[stage]
	return cfg, ok
}

// Has reports whether the stage is configured.
func (r *Registry) Has(stage Stage) bool {
	_, ok := r.stages[stage]
	return ok
}
