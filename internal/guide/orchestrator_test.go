package guide

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/heihei0314/TLIPHelper/provider"
)

type stubLLM struct {
	mu    sync.Mutex
	calls [][]provider.Message
	fn    func(messages []provider.Message) (string, error)
}

func (s *stubLLM) Generate(_ context.Context, messages []provider.Message, _ map[string]interface{}) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, messages)
	s.mu.Unlock()
	return s.fn(messages)
}

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubCompactor struct {
	fn func(stage Stage, userInput, existing string) string
}

func (s stubCompactor) Compact(_ context.Context, stage Stage, userInput, existing string) string {
	return s.fn(stage, userInput, existing)
}

func fixedCompactor(out string) stubCompactor {
	return stubCompactor{fn: func(Stage, string, string) string { return out }}
}

func newTestOrchestrator(llm *stubLLM, comp Compactor, opts Options) *Orchestrator {
	return NewOrchestrator(DefaultRegistry(), llm, comp, nil, nil, nil, opts)
}

func TestQuestionModeBlankInput(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) {
		return "", fmt.Errorf("model must not be called in question mode")
	}}
	orch := newTestOrchestrator(llm, fixedCompactor(""), Options{})

	state := NewState()
	state[StageObjective] = "existing"
	for _, stage := range PipelineStages {
		reply, next := orch.Handle(context.Background(), stage, "   ", state)
		if reply.Type != ReplyQuestion {
			t.Fatalf("stage %s: expected question reply, got %s", stage, reply.Type)
		}
		cfg, _ := DefaultRegistry().Lookup(stage)
		if reply.Question != cfg.InitialQuestion {
			t.Fatalf("stage %s: wrong question %q", stage, reply.Question)
		}
		if len(reply.Options) != len(cfg.Options) {
			t.Fatalf("stage %s: expected %d options, got %d", stage, len(cfg.Options), len(reply.Options))
		}
		if next[StageObjective] != "existing" {
			t.Fatalf("stage %s: state mutated in question mode", stage)
		}
	}
	if llm.callCount() != 0 {
		t.Fatalf("model called %d times in question mode", llm.callCount())
	}
}

func TestInvalidStage(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) { return "", nil }}
	orch := newTestOrchestrator(llm, fixedCompactor(""), Options{})

	reply, next := orch.Handle(context.Background(), "no_such_stage", "anything", NewState())
	if reply.Type != ReplyError {
		t.Fatalf("expected error reply, got %s", reply.Type)
	}
	if !strings.Contains(reply.Summary, "Invalid purpose") {
		t.Fatalf("unexpected error message: %q", reply.Summary)
	}
	if next[StageObjective] != "" {
		t.Fatalf("state mutated on invalid stage")
	}
}

func TestRoundTrip(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) {
		return `{"explanation":"E","follow_up_question":"F","new_options":["A","B"]}`, nil
	}}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{MaxAttempts: 2})

	state := NewState()
	reply, next := orch.Handle(context.Background(), StageObjective, "improve motivation", state)
	if reply.Type != ReplySummaryAndOptions {
		t.Fatalf("expected summary_and_options, got %s: %s", reply.Type, reply.Summary)
	}
	if reply.Explanation != "E" || reply.FollowUpQuestion != "F" {
		t.Fatalf("fields not carried through: %+v", reply)
	}
	if len(reply.Options) != 2 || reply.Options[0] != "A" || reply.Options[1] != "B" {
		t.Fatalf("options not carried through: %v", reply.Options)
	}
	if next[StageObjective] != "S" {
		t.Fatalf("compacted summary not written: %q", next[StageObjective])
	}
	if state[StageObjective] != "" {
		t.Fatalf("input state mutated in place")
	}
}

func TestMalformedOutputExhaustsRetries(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) {
		return "I will not answer in JSON.", nil
	}}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{MaxAttempts: 2})

	state := NewState()
	state[StagePedagogy] = "prior"
	reply, next := orch.Handle(context.Background(), StagePedagogy, "flipped classroom", state)
	if reply.Type != ReplyError {
		t.Fatalf("expected error reply, got %s", reply.Type)
	}
	if !strings.Contains(reply.Summary, "after 2 attempts") {
		t.Fatalf("unexpected error message: %q", reply.Summary)
	}
	if llm.callCount() != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", llm.callCount())
	}
	if next[StagePedagogy] != "prior" {
		t.Fatalf("state mutated on failure: %q", next[StagePedagogy])
	}
}

func TestRetryAppendsCorrectiveTurn(t *testing.T) {
	llm := &stubLLM{}
	llm.fn = func(messages []provider.Message) (string, error) {
		if llm.callCount() == 1 {
			return "garbage", nil
		}
		last := messages[len(messages)-1]
		if !strings.Contains(last.Content, "valid JSON object") {
			return "", fmt.Errorf("corrective turn missing, got %q", last.Content)
		}
		return `{"explanation":"E","follow_up_question":"F","new_options":["A"]}`, nil
	}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{MaxAttempts: 3})

	reply, _ := orch.Handle(context.Background(), StageOutcomes, "case studies", NewState())
	if reply.Type != ReplySummaryAndOptions {
		t.Fatalf("expected recovery after retry, got %s: %s", reply.Type, reply.Summary)
	}
	if llm.callCount() != 2 {
		t.Fatalf("expected 2 attempts, got %d", llm.callCount())
	}
}

func TestUpstreamFailureLeavesStateUntouched(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) {
		return "", provider.ErrUpstream
	}}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{MaxAttempts: 2})

	state := NewState()
	state[StageEvaluation] = "prior"
	reply, next := orch.Handle(context.Background(), StageEvaluation, "surveys", state)
	if reply.Type != ReplyError {
		t.Fatalf("expected error reply, got %s", reply.Type)
	}
	if !strings.Contains(reply.Summary, "An error occurred during AI processing") {
		t.Fatalf("unexpected error message: %q", reply.Summary)
	}
	if llm.callCount() != 1 {
		t.Fatalf("upstream failures must not be retried, got %d calls", llm.callCount())
	}
	if next[StageEvaluation] != "prior" {
		t.Fatalf("state mutated on upstream failure")
	}
}

func TestIntegratorCombinesProposalAndSuggestions(t *testing.T) {
	llm := &stubLLM{fn: func(messages []provider.Message) (string, error) {
		if strings.Contains(messages[0].Content, "Education Innovation Officer") {
			return "Proposal text", nil
		}
		return "Suggestions text", nil
	}}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{})

	state := NewState()
	state[StageObjective] = "motivate students"
	reply, next := orch.Handle(context.Background(), StageIntegrator, "go", state)
	if reply.Type != ReplySummaryOnly {
		t.Fatalf("expected summary_only, got %s: %s", reply.Type, reply.Summary)
	}
	pi := strings.Index(reply.Summary, "Proposal text")
	si := strings.Index(reply.Summary, "Suggestions text")
	if pi < 0 || si < 0 || pi > si {
		t.Fatalf("proposal and suggestions not combined in order: %q", reply.Summary)
	}
	if llm.callCount() != 2 {
		t.Fatalf("expected 2 fan-out calls, got %d", llm.callCount())
	}
	if next[StageObjective] != "motivate students" {
		t.Fatalf("integrator mutated state")
	}
}

func TestIntegratorBlankInputGenerates(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) {
		return "text", nil
	}}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{})

	reply, _ := orch.Handle(context.Background(), StageIntegrator, "", NewState())
	if reply.Type == ReplyQuestion {
		t.Fatalf("integrator must not enter question mode on blank input")
	}
	if reply.Type != ReplySummaryOnly {
		t.Fatalf("expected summary_only, got %s", reply.Type)
	}
}

func TestIntegratorFanOutFailureFailsWhole(t *testing.T) {
	llm := &stubLLM{fn: func(messages []provider.Message) (string, error) {
		if strings.Contains(messages[0].Content, "Education Innovation Officer") {
			return "Proposal text", nil
		}
		return "", provider.ErrUpstream
	}}
	orch := newTestOrchestrator(llm, fixedCompactor("S"), Options{})

	reply, _ := orch.Handle(context.Background(), StageIntegrator, "go", NewState())
	if reply.Type != ReplyError {
		t.Fatalf("expected error when one fan-out call fails, got %s", reply.Type)
	}
}

func TestSequentialCallsAccumulate(t *testing.T) {
	llm := &stubLLM{fn: func([]provider.Message) (string, error) {
		return `{"explanation":"E","follow_up_question":"F","new_options":[]}`, nil
	}}
	comp := stubCompactor{fn: func(_ Stage, userInput, existing string) string {
		if existing == "" {
			return userInput
		}
		return existing + "; " + userInput
	}}
	orch := newTestOrchestrator(llm, comp, Options{MaxAttempts: 2})

	_, state := orch.Handle(context.Background(), StageObjective, "first idea", NewState())
	_, state = orch.Handle(context.Background(), StageObjective, "second idea", state)
	got := state[StageObjective]
	if !strings.Contains(got, "first idea") || !strings.Contains(got, "second idea") {
		t.Fatalf("summary did not accumulate across turns: %q", got)
	}
}

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"Sure! Here it is:\n```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"no json here", "no json here"},
	}
	for _, c := range cases {
		if got := extractFirstJSON(c.in); got != c.want {
			t.Fatalf("extractFirstJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
