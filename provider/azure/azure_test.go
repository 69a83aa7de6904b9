package azure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/heihei0314/TLIPHelper/provider"
)

func TestGenerateMissingConfiguration(t *testing.T) {
	cases := []struct {
		name       string
		endpoint   string
		apiKey     string
		apiVersion string
		deployment string
	}{
		{"all empty", "", "", "", ""},
		{"no key", "https://x.openai.azure.com", "", "2024-02-01", "gpt-4o"},
		{"no api version", "https://x.openai.azure.com", "secret", "", "gpt-4o"},
		{"no deployment", "https://x.openai.azure.com", "secret", "2024-02-01", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(tc.endpoint, tc.apiKey, tc.apiVersion, tc.deployment, 0.5, 1000, time.Second)
			_, err := c.Generate(context.Background(), []provider.Message{{Role: provider.RoleUser, Content: "hi"}}, nil)
			if !errors.Is(err, provider.ErrMissingConfiguration) {
				t.Fatalf("expected ErrMissingConfiguration, got %v", err)
			}
		})
	}
}

func TestGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello there"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "2024-02-01", "gpt-4o", 0.5, 1000, time.Second)
	out, err := c.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleSystem, Content: "be brief"},
		{Role: provider.RoleUser, Content: "hi"},
	}, map[string]interface{}{"temperature": 0.0, "max_tokens": 500})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "hello there" {
		t.Fatalf("unexpected content: %q", out)
	}
	if gotPath != "/openai/deployments/gpt-4o/chat/completions" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api-key header not set")
	}
	if gotReq.Temperature != 0.0 || gotReq.MaxTokens != 500 {
		t.Fatalf("options not applied: temp=%v max=%d", gotReq.Temperature, gotReq.MaxTokens)
	}
}

func TestGenerateUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "2024-02-01", "gpt-4o", 0.5, 1000, time.Second)
	_, err := c.Generate(context.Background(), []provider.Message{{Role: provider.RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, provider.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "2024-02-01", "gpt-4o", 0.5, 1000, time.Second)
	_, err := c.Generate(context.Background(), []provider.Message{{Role: provider.RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, provider.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
