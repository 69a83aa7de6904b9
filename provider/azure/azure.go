package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/heihei0314/TLIPHelper/provider"
)

// Client talks to an Azure OpenAI chat completions deployment.
type Client struct {
	endpoint    string
	apiKey      string
	apiVersion  string
	deployment  string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// request is the chat completions request body. Azure shares the OpenAI
// wire shape; the model is selected by the deployment in the URL.
type request struct {
	Messages    []provider.Message `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates an Azure OpenAI client. Missing credentials are not an
// error here; Generate reports provider.ErrMissingConfiguration instead.
func NewClient(endpoint, apiKey, apiVersion, deployment string, temperature float64, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		endpoint:    endpoint,
		apiKey:      apiKey,
		apiVersion:  apiVersion,
		deployment:  deployment,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Generate implements provider.Provider against the Azure chat completions API.
func (c *Client) Generate(ctx context.Context, messages []provider.Message, options map[string]interface{}) (string, error) {
	if c.endpoint == "" || c.apiKey == "" || c.apiVersion == "" || c.deployment == "" {
		return "", provider.ErrMissingConfiguration
	}

	reqBody := request{
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if v, ok := options["temperature"].(float64); ok {
		reqBody.Temperature = v
	}
	if v, ok := options["max_tokens"].(int); ok {
		reqBody.MaxTokens = v
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.completionsURL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", provider.ErrUpstream, resp.StatusCode, bytes.TrimSpace(body))
	}

	var chatResp response
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", provider.ErrUpstream, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s: %s", provider.ErrUpstream, chatResp.Error.Code, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", provider.ErrUpstream)
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) completionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))
}
