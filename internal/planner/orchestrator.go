package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/config"
	"github.com/fyrsmithlabs/pland/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/pland/internal/planner"

// Orchestrator drives the planning pipeline: three phases in fixed order,
// findings threaded forward, a shared search budget, and cooperative
// cancellation at phase and query boundaries. One Orchestrator serves many
// concurrent requests; all per-request state (budget, phase context) is
// created fresh inside CreatePlan.
type Orchestrator struct {
	searcher Searcher
	complete Completer
	cfg      config.PlannerConfig
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTracer overrides the default (global) tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// NewOrchestrator creates a planning orchestrator.
func NewOrchestrator(searcher Searcher, complete Completer, cfg config.PlannerConfig, logger *logging.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		searcher: searcher,
		complete: complete,
		cfg:      cfg,
		logger:   logger.Named("planner"),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreatePlan runs the full pipeline and returns the plan document.
//
// The caller cancels through ctx; a cancelled request returns ErrCancelled
// with no partial document. A completion failure in any phase aborts the
// whole plan as a *PhaseError. Phases never retry at this level.
func (o *Orchestrator) CreatePlan(ctx context.Context, req PlanRequest) (*PlanDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan request: %w", err)
	}

	ctx, span := o.tracer.Start(ctx, "planner.create_plan")
	defer span.End()

	id := uuid.NewString()
	logger := o.logger.With(zap.String("plan_id", id))
	logger.Info(ctx, "planning started",
		zap.Int("messages", len(req.Messages)),
		zap.Int("max_searches", o.cfg.MaxSearches))

	budget := NewBudgetTracker(o.cfg.MaxSearches)
	pctx := newPhaseContext(req)
	runner := &PhaseRunner{
		searcher:         o.searcher,
		complete:         o.complete,
		budget:           budget,
		maxQueries:       o.cfg.MaxQueriesPerPhase,
		maxEvidenceBytes: o.cfg.MaxEvidenceBytes,
		logger:           logger,
		tracer:           o.tracer,
	}

	start := time.Now()
	for _, phase := range AllPhases() {
		if err := ctx.Err(); err != nil {
			logger.Info(ctx, "planning cancelled", zap.String("phase", string(phase)))
			span.SetStatus(codes.Error, "cancelled")
			return nil, ErrCancelled
		}

		res, err := runner.Run(ctx, phase, pctx)
		if err != nil {
			logger.Error(ctx, "planning aborted",
				zap.String("phase", string(phase)),
				zap.Error(err))
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		pctx.append(res)
	}

	doc := &PlanDocument{
		ID:        id,
		Summary:   summarize(pctx.results),
		Phases:    pctx.results,
		CreatedAt: time.Now().UTC(),
	}

	logger.Info(ctx, "planning completed",
		zap.Int("searches_used", budget.Used()),
		zap.Duration("duration", time.Since(start)))
	span.SetAttributes(attribute.Int("searches_used", budget.Used()))

	return doc, nil
}

// summarize builds the deterministic top-level summary from the phase
// results. No extra completion call: it would add unbounded API cost per
// request for a line of metadata.
func summarize(results []PhaseResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s (%d chars, %d searches)", r.Phase, len(r.Output), r.Searches))
	}
	return "plan synthesized from " + strings.Join(parts, ", ")
}
