package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/logging"
	"github.com/fyrsmithlabs/pland/internal/search"
)

// PhaseRunner executes exactly one named phase: it issues the phase's
// searches (governed by the shared budget), builds the phase prompt from
// accumulated context, and invokes the completion gateway.
type PhaseRunner struct {
	searcher Searcher
	complete Completer
	budget   *BudgetTracker

	maxQueries       int
	maxEvidenceBytes int

	logger *logging.Logger
	tracer trace.Tracer
}

// Run executes the phase against the accumulated context and returns its
// result. Search failures degrade to partial evidence; completion failures
// and cancellation abort the phase.
func (r *PhaseRunner) Run(ctx context.Context, phase Phase, pctx *phaseContext) (PhaseResult, error) {
	ctx, span := r.tracer.Start(ctx, "planner.phase",
		trace.WithAttributes(attribute.String("phase", string(phase))))
	defer span.End()

	start := time.Now()

	evidence, searches, err := r.gatherEvidence(ctx, phase, pctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return PhaseResult{}, err
	}

	// Last checkpoint before the completion call.
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return PhaseResult{}, ErrCancelled
	}

	prompt := buildPrompt(phase, pctx, evidence, r.maxEvidenceBytes)
	output, err := r.complete.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return PhaseResult{}, ErrCancelled
		}
		span.SetStatus(codes.Error, err.Error())
		return PhaseResult{}, &PhaseError{Phase: phase, Err: err}
	}

	res := PhaseResult{
		Phase:    phase,
		Output:   output,
		Searches: searches,
		Duration: time.Since(start),
	}

	r.logger.Info(ctx, "phase completed",
		zap.String("phase", string(phase)),
		zap.Int("searches", searches),
		zap.Int("output_bytes", len(output)),
		zap.Duration("duration", res.Duration))
	span.SetAttributes(attribute.Int("searches", searches))

	return res, nil
}

// gatherEvidence runs the phase's candidate queries in order. Each query
// is preceded by a cancellation check and a budget reservation; budget
// exhaustion stops further searches without failing the phase, and a
// failed search is skipped.
func (r *PhaseRunner) gatherEvidence(ctx context.Context, phase Phase, pctx *phaseContext) ([]search.Result, int, error) {
	queries := deriveQueries(phase, pctx, r.maxQueries)

	var evidence []search.Result
	searches := 0

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, 0, ErrCancelled
		}

		if _, err := r.budget.TryReserve(); err != nil {
			r.logger.Debug(ctx, "search budget exhausted",
				zap.String("phase", string(phase)),
				zap.Int("used", r.budget.Used()))
			break
		}

		results, err := r.searcher.Search(ctx, query)
		searches++
		if err != nil {
			// Partial evidence is acceptable; move to the next query.
			r.logger.Warn(ctx, "search failed, continuing",
				zap.String("phase", string(phase)),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		evidence = append(evidence, results...)
	}

	return evidence, searches, nil
}
