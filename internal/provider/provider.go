// Package provider wraps the LLM completion capability consumed by the
// planner: submit a prompt, get raw completion text back.
//
// The implementation speaks the OpenAI chat-completions dialect through
// langchaingo, so any compatible endpoint works; the default configuration
// points at DeepSeek.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/config"
	"github.com/fyrsmithlabs/pland/internal/logging"
)

// Error wraps a completion failure. The planner treats these as fatal for
// the phase or chat turn in which they occur.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Gateway is the completion gateway. It enforces a per-call timeout and
// returns raw completion text.
type Gateway struct {
	llm     llms.Model
	name    string
	timeout time.Duration
	logger  *logging.Logger
}

// New creates a Gateway from provider config.
func New(cfg config.ProviderConfig, timeout config.Duration, logger *logging.Logger) (*Gateway, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("provider API key is not set (set DEEPSEEK_API_KEY or provider.api_key)")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey.Value()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	return &Gateway{
		llm:     llm,
		name:    cfg.Model,
		timeout: timeout.Duration(),
		logger:  logger.Named("provider"),
	}, nil
}

// NewWithModel creates a Gateway around an existing model. Used by tests.
func NewWithModel(llm llms.Model, name string, timeout time.Duration, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gateway{llm: llm, name: name, timeout: timeout, logger: logger.Named("provider")}
}

// Complete submits the prompt and returns the completion text.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &Error{Provider: g.name, Err: fmt.Errorf("empty prompt")}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", &Error{Provider: g.name, Err: err}
	}

	g.logger.Debug(ctx, "completion finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("completion_bytes", len(out)),
	)

	return out, nil
}
