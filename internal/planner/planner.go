package planner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jean-pierre/jpc/internal/plan"
	"github.com/jean-pierre/jpc/internal/snapshot"
)

// Planner tries Primary and falls back to Fallback on any failure.
type Planner struct {
	Primary  Strategy
	Fallback Heuristic
	Logger   *zap.Logger
}

// New creates a Planner around primary. A nil logger discards warnings.
func New(primary Strategy, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{Primary: primary, Logger: logger}
}

// Plan always returns a plan. Degradations are logged at Warn.
func (p *Planner) Plan(ctx context.Context, snap *snapshot.Snapshot, query string, maxTokens int) *plan.Plan {
	log := p.logger()

	if p.Primary == nil {
		log.Warn("no primary planner configured, using heuristic")
		return p.Fallback.Plan(snap, query)
	}

	result, err := p.Primary.PlanActions(ctx, snap, query, maxTokens)
	if err == nil {
		return result
	}

	fallback := p.Fallback.Plan(snap, query)

	var recErr *RecoveryError
	if errors.As(err, &recErr) {
		log.Warn("could not recover plan from model output, using heuristic",
			zap.String("strategy", p.Primary.Name()),
			zap.Int("output_bytes", len(recErr.Text)),
			zap.Error(err))
		fallback.Description = recErr.Text
		return fallback
	}

	log.Warn("planner failed, using heuristic",
		zap.String("strategy", p.Primary.Name()),
		zap.Error(err))
	return fallback
}

func (p *Planner) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
