// Package http provides the HTTP API for pland.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/config"
	"github.com/fyrsmithlabs/pland/internal/logging"
	"github.com/fyrsmithlabs/pland/internal/planner"
)

// Planner is the planning surface the server delegates to.
type Planner interface {
	CreatePlan(ctx context.Context, req planner.PlanRequest) (*planner.PlanDocument, error)
}

// Chatter is the chat surface the server delegates to.
type Chatter interface {
	Respond(ctx context.Context, req planner.PlanRequest) (string, error)
}

// Server exposes the planner over HTTP.
type Server struct {
	echo    *echo.Echo
	planner Planner
	chatter Chatter
	logger  *logging.Logger
	config  config.ServerConfig
}

// NewServer creates the HTTP server with the standard middleware chain.
func NewServer(p Planner, ch Chatter, logger *logging.Logger, cfg config.ServerConfig) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("planner cannot be nil")
	}
	if ch == nil {
		return nil, fmt.Errorf("chatter cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(NewHTTPMetrics(logger).Middleware())

	s := &Server{
		echo:    e,
		planner: p,
		chatter: ch,
		logger:  logger.Named("http"),
		config:  cfg,
	}
	s.registerRoutes()
	return s, nil
}

func requestLogger(logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	g := s.echo.Group("/planner")
	g.POST("/create_plan", s.handleCreatePlan)
	g.POST("/chat", s.handleChat)
}

// PlanRequestBody is the request body for the planner endpoints.
type PlanRequestBody struct {
	Messages []planner.Message `json:"messages"`
}

// ChatResponse is the response body for POST /planner/chat.
type ChatResponse struct {
	Content string `json:"content"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleCreatePlan runs the full planning pipeline for the posted
// conversation. The request context is the cancellation signal: a client
// that disconnects cancels the pipeline at the next phase boundary.
func (s *Server) handleCreatePlan(c echo.Context) error {
	req, err := bindPlanRequest(c)
	if err != nil {
		return err
	}

	doc, err := s.planner.CreatePlan(c.Request().Context(), req)
	if err != nil {
		return s.mapPlannerError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// handleChat answers a single conversational turn.
func (s *Server) handleChat(c echo.Context) error {
	req, err := bindPlanRequest(c)
	if err != nil {
		return err
	}

	out, err := s.chatter.Respond(c.Request().Context(), req)
	if err != nil {
		return s.mapPlannerError(c, err)
	}
	return c.JSON(http.StatusOK, ChatResponse{Content: out})
}

func bindPlanRequest(c echo.Context) (planner.PlanRequest, error) {
	var body PlanRequestBody
	if err := c.Bind(&body); err != nil {
		return planner.PlanRequest{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req := planner.PlanRequest{Messages: body.Messages}
	if err := req.Validate(); err != nil {
		return planner.PlanRequest{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return req, nil
}

// mapPlannerError translates pipeline errors into HTTP status codes.
// Cancellation almost always means the client went away, so the response
// is best-effort.
func (s *Server) mapPlannerError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	if errors.Is(err, planner.ErrCancelled) {
		s.logger.Info(ctx, "request cancelled",
			zap.String("uri", c.Request().RequestURI))
		return echo.NewHTTPError(StatusClientClosedRequest, "request cancelled")
	}

	var perr *planner.PhaseError
	if errors.As(err, &perr) {
		s.logger.Error(ctx, "planning failed",
			zap.String("phase", string(perr.Phase)),
			zap.Error(perr.Err))
		return echo.NewHTTPError(http.StatusBadGateway,
			fmt.Sprintf("planning failed in phase %s", perr.Phase))
	}

	s.logger.Error(ctx, "request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusBadGateway, "upstream provider failed")
}

// StatusClientClosedRequest is the nginx convention for a client that
// disconnected before the response was ready.
const StatusClientClosedRequest = 499

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
