// Package planner turns a user query and a project snapshot into a plan.
//
// A Planner composes two strategies: a model-backed Generative strategy that
// may fail, and a Heuristic strategy that cannot. Every failure of the first
// is handed to the second, so Plan always returns a plan.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/jean-pierre/jpc/internal/plan"
	"github.com/jean-pierre/jpc/internal/snapshot"
)

// DefaultMaxTokens is the token budget used when the caller passes zero.
const DefaultMaxTokens = 2048

// Strategy produces a plan for a query.
type Strategy interface {
	Name() string
	PlanActions(ctx context.Context, snap *snapshot.Snapshot, query string, maxTokens int) (*plan.Plan, error)
}

// ReadmePath is the file the heuristic writes when asked about documentation.
const ReadmePath = "README.md"

// Heuristic inspects only the query text. It never returns an error.
type Heuristic struct{}

func (Heuristic) Name() string {
	return "heuristic"
}

func (h Heuristic) PlanActions(_ context.Context, snap *snapshot.Snapshot, query string, _ int) (*plan.Plan, error) {
	return h.Plan(snap, query), nil
}

// Plan is PlanActions without the error return.
func (Heuristic) Plan(snap *snapshot.Snapshot, query string) *plan.Plan {
	files := 0
	if snap != nil {
		files = len(snap.Files)
	}

	actions := []plan.Action{}
	if strings.Contains(strings.ToLower(query), "readme") {
		actions = append(actions, plan.WriteFile{
			Path:    ReadmePath,
			Content: fmt.Sprintf("# Project\n\nAutomated change requested: %s\n", query),
		})
	}

	return &plan.Plan{
		Description: fmt.Sprintf("Heuristic plan for query: '%s' with %d files in context.", query, files),
		Actions:     actions,
	}
}
