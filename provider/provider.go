package provider

import (
	"context"
	"errors"
)

// Sentinel errors shared by all provider implementations. Callers match
// them with errors.Is to decide how to surface the failure.
var (
	// ErrMissingConfiguration means the provider has no usable credentials
	// or endpoint. It is reported per generation call, not at construction,
	// so flows that never reach the model still work.
	ErrMissingConfiguration = errors.New("provider: missing configuration")

	// ErrUpstream wraps transport and non-2xx failures from the model API.
	ErrUpstream = errors.New("provider: upstream generation failure")
)

// Message is one turn of a chat conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles accepted by the chat completion APIs we target.
const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Provider is the interface every LLM backend must satisfy. Options carry
// per-call overrides such as "temperature" (float64) and "max_tokens" (int);
// implementations fall back to their configured defaults for absent keys.
type Provider interface {
	Generate(ctx context.Context, messages []Message, options map[string]interface{}) (string, error)
}
