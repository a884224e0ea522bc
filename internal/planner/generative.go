package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/jean-pierre/jpc/internal/llm"
	"github.com/jean-pierre/jpc/internal/plan"
	"github.com/jean-pierre/jpc/internal/prompts"
	"github.com/jean-pierre/jpc/internal/snapshot"
)

// DefaultPromptChars bounds the rendered project context.
const DefaultPromptChars = 40_000

// Failure stages reported by Generative.
var (
	ErrBackendInit = errors.New("backend initialization failed")
	ErrGeneration  = errors.New("generation failed")
)

// RecoveryError means generation succeeded but no plan could be recovered
// from its output. Text holds the raw output.
type RecoveryError struct {
	Text string
	Err  error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recovering plan from model output: %v", e.Err)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

// Generative asks a language model for a plan.
type Generative struct {
	// NewBackend is called once per PlanActions; a failure is reported as ErrBackendInit.
	NewBackend func() (llm.Backend, error)
	// Model overrides the backend's default model when set.
	Model string
	// PromptChars bounds the rendered snapshot. Zero selects DefaultPromptChars.
	PromptChars int
	// Root is the workspace whose .jpc/prompts may override the system prompt.
	Root string
}

func (g *Generative) Name() string {
	return "generative"
}

// PlanActions renders the prompt, collects at most maxTokens tokens and
// recovers a plan from the text.
func (g *Generative) PlanActions(ctx context.Context, snap *snapshot.Snapshot, query string, maxTokens int) (*plan.Plan, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	if g.NewBackend == nil {
		return nil, fmt.Errorf("%w: no backend configured", ErrBackendInit)
	}
	backend, err := g.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendInit, err)
	}

	system, err := prompts.GetForWorkspace(g.Root, "planner")
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System:    system,
		Prompt:    g.BuildPrompt(snap, query),
		Model:     g.Model,
		MaxTokens: maxTokens,
	}
	text, err := llm.Collect(ctx, backend, req, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	p, err := plan.Recover(text)
	if err != nil {
		return nil, &RecoveryError{Text: text, Err: err}
	}
	return p, nil
}

// BuildPrompt renders the user request followed by the bounded project context.
func (g *Generative) BuildPrompt(snap *snapshot.Snapshot, query string) string {
	limit := g.PromptChars
	if limit <= 0 {
		limit = DefaultPromptChars
	}
	rendered := ""
	if snap != nil {
		rendered = snapshot.RenderForPrompt(snap, limit)
	}
	return fmt.Sprintf("User request: \n%s\nProject context (truncated):\n%s", query, rendered)
}
