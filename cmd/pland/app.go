package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pland/internal/config"
	"github.com/fyrsmithlabs/pland/internal/logging"
	"github.com/fyrsmithlabs/pland/internal/planner"
	"github.com/fyrsmithlabs/pland/internal/provider"
	"github.com/fyrsmithlabs/pland/internal/search"
	"github.com/fyrsmithlabs/pland/internal/telemetry"
)

// app wires the full dependency graph: config, logger, telemetry, the two
// gateways, and the orchestrators. Every subcommand builds one.
type app struct {
	cfg          *config.Config
	logger       *logging.Logger
	telemetry    *telemetry.Telemetry
	orchestrator *planner.Orchestrator
	chat         *planner.Chat
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		// Telemetry failures degrade rather than block startup.
		logger.Warn(ctx, "telemetry init failed", zap.Error(err))
	}

	searcher, err := search.New(cfg.Search, cfg.Planner.PerCallTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("init search gateway: %w", err)
	}

	completer, err := provider.New(cfg.Provider, cfg.Planner.PerCallTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("init provider gateway: %w", err)
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		telemetry:    tel,
		orchestrator: planner.NewOrchestrator(searcher, completer, cfg.Planner, logger),
		chat:         planner.NewChat(completer, logger),
	}, nil
}

// Close flushes logs and shuts telemetry down. Safe on a partially
// constructed app.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
