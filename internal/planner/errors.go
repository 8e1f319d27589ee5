package planner

import (
	"errors"
	"fmt"
)

// ErrCancelled reports that the caller cancelled the request. It is
// surfaced distinctly from failures so callers can present "stopped"
// rather than "error".
var ErrCancelled = errors.New("cancelled")

// ErrBudgetExhausted is a control signal, not a user-visible failure: the
// search budget for this request is spent, so no further searches are
// issued and phases synthesize from the evidence gathered so far.
var ErrBudgetExhausted = errors.New("search budget exhausted")

// PhaseError reports a fatal failure inside one phase. It aborts the whole
// planning request; no partial plan is returned.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
