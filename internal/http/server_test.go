package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/pland/internal/config"
	"github.com/fyrsmithlabs/pland/internal/logging"
	"github.com/fyrsmithlabs/pland/internal/planner"
)

type stubPlanner struct {
	doc   *planner.PlanDocument
	err   error
	calls int
}

func (p *stubPlanner) CreatePlan(ctx context.Context, req planner.PlanRequest) (*planner.PlanDocument, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.doc, nil
}

type stubChatter struct {
	out   string
	err   error
	calls int
}

func (c *stubChatter) Respond(ctx context.Context, req planner.PlanRequest) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.out, nil
}

func setupTestServer(t *testing.T, p Planner, ch Chatter) *Server {
	t.Helper()
	s, err := NewServer(p, ch, logging.NewNop(), config.Default().Server)
	require.NoError(t, err)
	return s
}

func postJSON(s *Server, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func validBody() PlanRequestBody {
	return PlanRequestBody{Messages: []planner.Message{
		{Role: planner.RoleUser, Content: "plan a message broker"},
	}}
}

func TestNewServerValidation(t *testing.T) {
	p := &stubPlanner{}
	ch := &stubChatter{}
	logger := logging.NewNop()
	cfg := config.Default().Server

	_, err := NewServer(nil, ch, logger, cfg)
	assert.ErrorContains(t, err, "planner cannot be nil")

	_, err = NewServer(p, nil, logger, cfg)
	assert.ErrorContains(t, err, "chatter cannot be nil")

	_, err = NewServer(p, ch, nil, cfg)
	assert.ErrorContains(t, err, "logger is required")
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t, &stubPlanner{}, &stubChatter{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleCreatePlan(t *testing.T) {
	t.Run("returns the plan document", func(t *testing.T) {
		p := &stubPlanner{doc: &planner.PlanDocument{
			ID: "p-1",
			Phases: []planner.PhaseResult{
				{Phase: planner.PhaseSynthesis, Output: "the plan"},
			},
		}}
		s := setupTestServer(t, p, &stubChatter{})

		rec := postJSON(s, "/planner/create_plan", validBody())
		assert.Equal(t, http.StatusOK, rec.Code)

		var doc planner.PlanDocument
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "p-1", doc.ID)
		assert.Equal(t, "the plan", doc.Plan())
		assert.Equal(t, 1, p.calls)
	})

	t.Run("rejects empty messages", func(t *testing.T) {
		p := &stubPlanner{}
		s := setupTestServer(t, p, &stubChatter{})

		rec := postJSON(s, "/planner/create_plan", PlanRequestBody{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, p.calls, "invalid requests never reach the orchestrator")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		s := setupTestServer(t, &stubPlanner{}, &stubChatter{})

		req := httptest.NewRequest(http.MethodPost, "/planner/create_plan", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps cancellation to 499", func(t *testing.T) {
		p := &stubPlanner{err: planner.ErrCancelled}
		s := setupTestServer(t, p, &stubChatter{})

		rec := postJSON(s, "/planner/create_plan", validBody())
		assert.Equal(t, StatusClientClosedRequest, rec.Code)
	})

	t.Run("maps phase failure to 502 with the phase name", func(t *testing.T) {
		p := &stubPlanner{err: &planner.PhaseError{
			Phase: planner.PhaseComponentAnalysis,
			Err:   errors.New("provider unavailable"),
		}}
		s := setupTestServer(t, p, &stubChatter{})

		rec := postJSON(s, "/planner/create_plan", validBody())
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "component_analysis")
	})
}

func TestHandleChat(t *testing.T) {
	t.Run("returns the reply", func(t *testing.T) {
		ch := &stubChatter{out: "use a queue"}
		s := setupTestServer(t, &stubPlanner{}, ch)

		rec := postJSON(s, "/planner/chat", validBody())
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "use a queue", resp.Content)
		assert.Equal(t, 1, ch.calls)
	})

	t.Run("maps provider failure to 502", func(t *testing.T) {
		ch := &stubChatter{err: errors.New("chat completion failed: boom")}
		s := setupTestServer(t, &stubPlanner{}, ch)

		rec := postJSON(s, "/planner/chat", validBody())
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("rejects empty messages", func(t *testing.T) {
		ch := &stubChatter{}
		s := setupTestServer(t, &stubPlanner{}, ch)

		rec := postJSON(s, "/planner/chat", PlanRequestBody{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, ch.calls)
	})
}
