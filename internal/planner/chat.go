package planner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/logging"
)

// Chat is the single-turn conversational mode: one completion call over
// the whole message history. No phases, no search budget.
type Chat struct {
	complete Completer
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewChat creates a chat orchestrator.
func NewChat(complete Completer, logger *logging.Logger) *Chat {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chat{
		complete: complete,
		logger:   logger.Named("chat"),
		tracer:   otel.Tracer(instrumentationName),
	}
}

// Respond submits the conversation and returns the assistant's reply.
// Cancellation is checked before the completion call; a provider failure
// is wrapped and propagated.
func (c *Chat) Respond(ctx context.Context, req PlanRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid chat request: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "planner.chat")
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return "", ErrCancelled
	}

	start := time.Now()
	out, err := c.complete.Complete(ctx, renderConversation(req.Messages))
	if err != nil {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return "", ErrCancelled
		}
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	c.logger.Info(ctx, "chat turn completed",
		zap.Int("messages", len(req.Messages)),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}
