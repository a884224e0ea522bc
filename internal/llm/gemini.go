package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini streams completions from the Gemini API.
type Gemini struct {
	apiKey string
	model  string

	// BaseURL overrides the API endpoint.
	BaseURL string
}

// NewGemini creates a Gemini backend. An API key is required.
func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required (set api_key, JPC_API_KEY or the jpc keyring entry)")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{apiKey: apiKey, model: model}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

// Stream runs GenerateContentStream; MaxOutputTokens is set from the request
// so the server stops near the budget as well.
func (g *Gemini) Stream(ctx context.Context, req Request, emit func(string) bool) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.BaseURL},
	})
	if err != nil {
		return fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	for resp, err := range client.Models.GenerateContentStream(ctx, model, genai.Text(req.Prompt), cfg) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		if !emit(text) {
			return nil
		}
	}
	return nil
}
