package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Remote is a request/response chat model used by `jpc chat`.
type Remote interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewRemote returns an HTTP remote when an endpoint is configured and an
// echoing stand-in otherwise.
func NewRemote(endpoint, apiKey, model string) Remote {
	if endpoint == "" {
		return EchoRemote{}
	}
	if model == "" {
		model = "default"
	}
	return &HTTPRemote{
		URL:    endpoint,
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{},
	}
}

// EchoRemote answers with the prompt itself.
type EchoRemote struct{}

func (EchoRemote) Generate(_ context.Context, prompt string, _ int) (string, error) {
	return "[no remote configured]\nEchoing prompt:\n" + prompt, nil
}

// HTTPRemote posts {model, prompt, max_tokens} to a single inference endpoint.
type HTTPRemote struct {
	URL    string
	APIKey string
	Model  string
	Client *http.Client
}

type inferenceRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// Generate accepts either {"output": "..."} or a plain-text body.
func (r *HTTPRemote) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(inferenceRequest{Model: r.Model, Prompt: prompt, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending remote inference request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading remote response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("remote error: %s - %s", resp.Status, strings.TrimSpace(string(text)))
	}

	var parsed struct {
		Output *string `json:"output"`
	}
	if err := json.Unmarshal(text, &parsed); err == nil && parsed.Output != nil {
		return *parsed.Output, nil
	}
	return string(text), nil
}
