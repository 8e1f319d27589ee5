// Package mcp exposes the planner over the Model Context Protocol so that
// MCP-capable agents can call it as a tool. Transport is stdio; tool calls
// run the orchestrators in-process.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/logging"
	"github.com/fyrsmithlabs/pland/internal/planner"
)

// Planner is the planning surface the MCP tools delegate to.
type Planner interface {
	CreatePlan(ctx context.Context, req planner.PlanRequest) (*planner.PlanDocument, error)
}

// Chatter is the chat surface the MCP tools delegate to.
type Chatter interface {
	Respond(ctx context.Context, req planner.PlanRequest) (string, error)
}

// Server is the stdio MCP server.
type Server struct {
	mcpServer *mcpsdk.Server
	planner   Planner
	chatter   Chatter
	logger    *logging.Logger
}

// NewServer creates the MCP server and registers the planner tools.
func NewServer(p Planner, ch Chatter, version string, logger *logging.Logger) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("planner cannot be nil")
	}
	if ch == nil {
		return nil, fmt.Errorf("chatter cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	mcpServer := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "pland",
		Version: version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		planner:   p,
		chatter:   ch,
		logger:    logger.Named("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdin/stdout until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_plan",
		Description: "Produce a multi-phase technical implementation plan for a request. Runs foundational research, component analysis, and synthesis with bounded web searches.",
	}, s.handleCreatePlan)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "chat",
		Description: "Answer a single technical question conversationally, without running the planning pipeline.",
	}, s.handleChat)
}

// CreatePlanParams defines parameters for the create_plan tool.
type CreatePlanParams struct {
	Request string `json:"request" jsonschema:"The technical request to plan for"`
}

// ChatParams defines parameters for the chat tool.
type ChatParams struct {
	Message string `json:"message" jsonschema:"The question or message to answer"`
}

func (s *Server) handleCreatePlan(ctx context.Context, req *mcpsdk.CallToolRequest, params *CreatePlanParams) (*mcpsdk.CallToolResult, any, error) {
	if strings.TrimSpace(params.Request) == "" {
		return nil, nil, fmt.Errorf("request cannot be empty")
	}

	doc, err := s.planner.CreatePlan(ctx, planner.PlanRequest{Messages: []planner.Message{
		{Role: planner.RoleUser, Content: params.Request},
	}})
	if err != nil {
		if errors.Is(err, planner.ErrCancelled) {
			return nil, nil, err
		}
		s.logger.Error(ctx, "create_plan tool failed", zap.Error(err))
		return nil, nil, fmt.Errorf("create plan failed: %w", err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: renderPlan(doc)},
		},
	}, doc, nil
}

func (s *Server) handleChat(ctx context.Context, req *mcpsdk.CallToolRequest, params *ChatParams) (*mcpsdk.CallToolResult, any, error) {
	if strings.TrimSpace(params.Message) == "" {
		return nil, nil, fmt.Errorf("message cannot be empty")
	}

	out, err := s.chatter.Respond(ctx, planner.PlanRequest{Messages: []planner.Message{
		{Role: planner.RoleUser, Content: params.Message},
	}})
	if err != nil {
		if errors.Is(err, planner.ErrCancelled) {
			return nil, nil, err
		}
		s.logger.Error(ctx, "chat tool failed", zap.Error(err))
		return nil, nil, fmt.Errorf("chat failed: %w", err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: out},
		},
	}, nil, nil
}

// renderPlan formats a plan document for tool output: the synthesized plan
// first, then a short provenance trailer.
func renderPlan(doc *planner.PlanDocument) string {
	var sb strings.Builder
	sb.WriteString(doc.Plan())
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "plan %s: %s\n", doc.ID, doc.Summary)
	return sb.String()
}
