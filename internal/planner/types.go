// Package planner implements the planning pipeline: a bounded three-phase
// research-and-synthesis loop over the search and completion gateways, plus
// a single-turn chat mode that shares the completion gateway.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/pland/internal/search"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation handed to an orchestrator.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PlanRequest is the conversation so far. Immutable once handed to an
// orchestrator.
type PlanRequest struct {
	Messages []Message `json:"messages"`
}

// Validate checks the request has something to plan from.
func (r PlanRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}

// LastUserContent returns the content of the most recent user message,
// or "" if there is none. Query derivation keys off it.
func (r PlanRequest) LastUserContent() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Phase identifies one stage of the planning pipeline.
type Phase string

const (
	PhaseFoundationalResearch Phase = "foundational_research"
	PhaseComponentAnalysis    Phase = "component_analysis"
	PhaseSynthesis            Phase = "synthesis"
)

// AllPhases returns the phases in execution order. The order is fixed:
// each phase's prompt depends on all prior phases' output.
func AllPhases() []Phase {
	return []Phase{PhaseFoundationalResearch, PhaseComponentAnalysis, PhaseSynthesis}
}

// PhaseResult is the outcome of one completed phase.
type PhaseResult struct {
	Phase    Phase         `json:"phase"`
	Output   string        `json:"output"`
	Searches int           `json:"searches"`
	Duration time.Duration `json:"duration"`
}

// PlanDocument is the final output of a successful planning request.
// Produced once, immutable thereafter.
type PlanDocument struct {
	ID        string        `json:"id"`
	Summary   string        `json:"summary"`
	Phases    []PhaseResult `json:"phases"`
	CreatedAt time.Time     `json:"created_at"`
}

// Plan returns the synthesized plan text: the output of the final phase.
func (d *PlanDocument) Plan() string {
	if len(d.Phases) == 0 {
		return ""
	}
	return d.Phases[len(d.Phases)-1].Output
}

// Searcher is the web-search capability the planner consumes.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Completer is the LLM completion capability the planner consumes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// phaseContext accumulates state for the lifetime of one planning request:
// prior phases' synthesized text plus the request itself. Owned exclusively
// by the orchestrator, never shared across requests.
type phaseContext struct {
	request PlanRequest
	results []PhaseResult
}

func newPhaseContext(req PlanRequest) *phaseContext {
	return &phaseContext{request: req}
}

func (c *phaseContext) append(res PhaseResult) {
	c.results = append(c.results, res)
}
