// Package session holds the in-memory state of an interactive conversation:
// the accumulated turns and the current mode. State lives for the process
// only; nothing is persisted.
package session

import (
	"sync"

	"github.com/fyrsmithlabs/pland/internal/planner"
)

// Mode selects how the next user turn is handled.
type Mode string

const (
	// ModeChat answers the turn with a single completion.
	ModeChat Mode = "chat"
	// ModePlan runs the full planning pipeline on the turn.
	ModePlan Mode = "plan"
)

// Session is a mutex-guarded conversation. The CLI mutates it while
// orchestrator goroutines read snapshots, so every accessor copies.
type Session struct {
	mu       sync.Mutex
	messages []planner.Message
	mode     Mode
}

// New creates an empty session in chat mode.
func New() *Session {
	return &Session{mode: ModeChat}
}

// Append records one turn.
func (s *Session) Append(role planner.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, planner.Message{Role: role, Content: content})
}

// Request snapshots the conversation as a plan request. The returned slice
// is a copy; later appends do not alias into in-flight requests.
func (s *Session) Request() planner.PlanRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]planner.Message, len(s.messages))
	copy(msgs, s.messages)
	return planner.PlanRequest{Messages: msgs}
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the session's mode.
func (s *Session) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Len reports the number of recorded turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Reset clears the conversation and returns the session to chat mode.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.mode = ModeChat
}
