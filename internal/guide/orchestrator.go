package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/heihei0314/TLIPHelper/internal/telemetry"
	"github.com/heihei0314/TLIPHelper/provider"
)

// Retriever supplies reference text for a query. A nil Retriever on the
// orchestrator disables retrieval. Failures are absorbed as empty context.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Options tunes the orchestrator. Zero values fall back to the defaults
// noted per field.
type Options struct {
	Timeout     time.Duration // per-Handle deadline for model calls; 0 = none
	MaxAttempts int           // total generation attempts on malformed output; min 1
	Temperature float64       // conversational calls
	MaxTokens   int           // conversational calls
}

// Orchestrator drives one conversation turn: question mode from the
// registry, or generate mode through the model with structured-output
// parsing, bounded retry, and summary compaction.
type Orchestrator struct {
	registry  *Registry
	llm       provider.Provider
	compactor Compactor
	retriever Retriever
	metrics   *telemetry.Metrics
	logger    *log.Logger
	opts      Options
}

// NewOrchestrator wires the conversation engine. retriever and metrics may
// be nil; logger defaults to a prefixed stdlib logger.
func NewOrchestrator(registry *Registry, llm provider.Provider, compactor Compactor, retriever Retriever, metrics *telemetry.Metrics, logger *log.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[GUIDE] ", log.LstdFlags)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1000
	}
	return &Orchestrator{
		registry:  registry,
		llm:       llm,
		compactor: compactor,
		retriever: retriever,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

// stageReply is the JSON contract the conversational personas demand.
type stageReply struct {
	Explanation      string   `json:"explanation"`
	FollowUpQuestion string   `json:"follow_up_question"`
	NewOptions       []string `json:"new_options"`
}

// Handle processes one turn. It never panics past this boundary: every
// failure becomes an error reply, and state is written only on success.
func (o *Orchestrator) Handle(ctx context.Context, stage Stage, userInput string, state State) (Reply, State) {
	cfg, ok := o.registry.Lookup(stage)
	if !ok {
		return o.finish(stage, ErrorReply("Invalid purpose provided."), state)
	}

	if strings.TrimSpace(userInput) == "" && stage != StageIntegrator {
		return o.finish(stage, QuestionReply(cfg.InitialQuestion, cfg.Options), state)
	}

	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	if stage == StageIntegrator {
		reply := o.integrate(ctx, cfg, userInput, state)
		return o.finish(stage, reply, state)
	}

	reply, next := o.converse(ctx, stage, cfg, userInput, state)
	return o.finish(stage, reply, next)
}

func (o *Orchestrator) finish(stage Stage, reply Reply, state State) (Reply, State) {
	o.metrics.ObserveChat(string(stage), string(reply.Type))
	return reply, state
}

// converse runs the per-stage generation branch: one model call with the
// stage persona plus optional reference context, a bounded retry loop for
// malformed output, then compaction of the stage summary.
func (o *Orchestrator) converse(ctx context.Context, stage Stage, cfg StageConfig, userInput string, state State) (Reply, State) {
	system := cfg.Persona
	if refs := o.retrieveContext(ctx, userInput); refs != "" {
		system += "\n\n**Reference Material:** The following excerpts may be relevant. Use them only if they help; ignore them otherwise.\n" + refs
	}

	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: system},
		{Role: provider.RoleAssistant, Content: state[stage]},
		{Role: provider.RoleUser, Content: userInput},
	}
	options := map[string]interface{}{
		"temperature": o.opts.Temperature,
		"max_tokens":  o.opts.MaxTokens,
	}

	var parsed stageReply
	parsedOK := false
	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		out, err := o.generate(ctx, messages, options)
		if err != nil {
			return ErrorReply(fmt.Sprintf("An error occurred during AI processing: %v", err)), state
		}
		if err := json.Unmarshal([]byte(extractFirstJSON(out)), &parsed); err == nil {
			parsedOK = true
			break
		}
		if attempt < o.opts.MaxAttempts {
			o.metrics.ObserveParseRetry()
			o.logger.Printf("malformed model output for stage %s (attempt %d), retrying", stage, attempt)
			// Grow the transcript with a corrective turn; the extra turns
			// are local to this retry loop and discarded after success.
			messages = append(messages,
				provider.Message{Role: provider.RoleAssistant, Content: out},
				provider.Message{Role: provider.RoleUser, Content: "Your previous response was not a valid JSON object. Respond again with ONLY a valid JSON object with the keys 'explanation', 'follow_up_question', and 'new_options'."},
			)
		}
	}
	if !parsedOK {
		return ErrorReply(fmt.Sprintf("Failed to get a valid structured response after %d attempts.", o.opts.MaxAttempts)), state
	}

	if parsed.Explanation == "" {
		parsed.Explanation = "AI did not provide an explanation."
	}
	if parsed.FollowUpQuestion == "" {
		parsed.FollowUpQuestion = "AI did not provide a follow-up question."
	}

	next := state.Clone()
	next[stage] = o.compactor.Compact(ctx, stage, userInput, state[stage])
	return SummaryAndOptionsReply(parsed.Explanation, parsed.FollowUpQuestion, parsed.NewOptions), next
}

// integrate fans out the proposal and reviewer calls concurrently and joins
// them. Either failure fails the whole call; state is never written.
func (o *Orchestrator) integrate(ctx context.Context, cfg StageConfig, userInput string, state State) Reply {
	combined := state.Combined()
	options := map[string]interface{}{
		"temperature": o.opts.Temperature,
		"max_tokens":  o.opts.MaxTokens,
	}

	var (
		wg                     sync.WaitGroup
		proposal, suggestions  string
		proposalErr, reviewErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		proposal, proposalErr = o.generate(ctx, []provider.Message{
			{Role: provider.RoleSystem, Content: cfg.Persona},
			{Role: provider.RoleAssistant, Content: combined},
			{Role: provider.RoleUser, Content: userInput},
		}, options)
	}()
	go func() {
		defer wg.Done()
		suggestions, reviewErr = o.generate(ctx, []provider.Message{
			{Role: provider.RoleSystem, Content: suggestionsPersona},
			{Role: provider.RoleUser, Content: combined},
		}, options)
	}()
	wg.Wait()

	if proposalErr != nil {
		return ErrorReply(fmt.Sprintf("An error occurred during AI processing: %v", proposalErr))
	}
	if reviewErr != nil {
		return ErrorReply(fmt.Sprintf("An error occurred during AI processing: %v", reviewErr))
	}
	return SummaryOnlyReply(proposal + "\n\n## Suggestions from the Reviewer\n\n" + suggestions)
}

func (o *Orchestrator) generate(ctx context.Context, messages []provider.Message, options map[string]interface{}) (string, error) {
	started := time.Now()
	out, err := o.llm.Generate(ctx, messages, options)
	o.metrics.ObserveLLM(time.Since(started).Seconds(), err)
	return out, err
}

func (o *Orchestrator) retrieveContext(ctx context.Context, query string) string {
	if o.retriever == nil {
		return ""
	}
	refs, err := o.retriever.Retrieve(ctx, query)
	if err != nil {
		o.metrics.ObserveRetrievalFailure()
		o.logger.Printf("reference retrieval failed, continuing without context: %v", err)
		return ""
	}
	return refs
}

// extractFirstJSON returns the first balanced top-level JSON object in s,
// or s unchanged if none is found.
func extractFirstJSON(s string) string {
	start := -1
	depth := 0
	for i, ch := range s {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}
