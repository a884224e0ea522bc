// Package llm provides text-generation backends for the planner and the
// remote chat model.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Backend streams generated text.
type Backend interface {
	// Name returns the backend name (e.g., "ollama", "gemini")
	Name() string

	// Stream generates text for req, calling emit for each token in order.
	// Generation stops early, without error, once emit returns false.
	Stream(ctx context.Context, req Request, emit func(token string) bool) error
}

// Request is a single generation call.
type Request struct {
	System    string
	Prompt    string
	Model     string
	MaxTokens int
}

// Collect accumulates tokens from b until the stream ends or maxTokens tokens
// have been accepted. Reaching the budget is not an error.
func Collect(ctx context.Context, b Backend, req Request, maxTokens int) (string, error) {
	var out strings.Builder
	accepted := 0
	err := b.Stream(ctx, req, func(tok string) bool {
		out.WriteString(tok)
		accepted++
		return accepted < maxTokens
	})
	if err != nil {
		return out.String(), fmt.Errorf("%s generation failed: %w", b.Name(), err)
	}
	return out.String(), nil
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Model      string
	APIKey     string
	OllamaURL  string
	GeminiURL  string
	Binary     string
	BinaryArgs []string
	WorkDir    string
}

// New creates the backend named by opts.Backend.
func New(opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "ollama":
		return NewOllama(opts.OllamaURL, opts.Model), nil
	case "gemini":
		g, err := NewGemini(opts.APIKey, opts.Model)
		if err != nil {
			return nil, err
		}
		g.BaseURL = opts.GeminiURL
		return g, nil
	case "command":
		return NewCommand(opts.Binary, opts.BinaryArgs, opts.WorkDir)
	default:
		return nil, fmt.Errorf("unknown backend %q (valid: ollama, gemini, command)", opts.Backend)
	}
}
