package guide

import (
	"context"
	"fmt"
	"log"

	"github.com/heihei0314/TLIPHelper/provider"
)

// Compactor folds a new user input into a stage's existing cumulative
// summary, keeping the summary de-duplicated and structurally consistent
// instead of growing by concatenation.
type Compactor interface {
	// Compact never fails: an upstream error degrades to a visible
	// placeholder string so the caller can still show and store something.
	Compact(ctx context.Context, stage Stage, userInput, existing string) string
}

// ModelCompactor implements Compactor with one model call per compaction,
// using the stage's summary persona at temperature zero.
type ModelCompactor struct {
	registry    *Registry
	llm         provider.Provider
	maxTokens   int
	temperature float64
	logger      *log.Logger
}

// NewModelCompactor builds the production compactor.
func NewModelCompactor(registry *Registry, llm provider.Provider, maxTokens int, temperature float64, logger *log.Logger) *ModelCompactor {
	if logger == nil {
		logger = log.New(log.Writer(), "[COMPACT] ", log.LstdFlags)
	}
	return &ModelCompactor{registry: registry, llm: llm, maxTokens: maxTokens, temperature: temperature, logger: logger}
}

func (c *ModelCompactor) Compact(ctx context.Context, stage Stage, userInput, existing string) string {
	cfg, ok := c.registry.Lookup(stage)
	if !ok || cfg.SummaryPersona == "" {
		return existing
	}

	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: cfg.SummaryPersona},
		{Role: provider.RoleAssistant, Content: existing},
		{Role: provider.RoleUser, Content: userInput},
	}
	out, err := c.llm.Generate(ctx, messages, map[string]interface{}{
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	})
	if err != nil {
		c.logger.Printf("summary compaction failed for stage %s: %v", stage, err)
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	return out
}
