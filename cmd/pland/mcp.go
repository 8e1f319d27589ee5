package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pland/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the planner as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout exposing create_plan and chat tools.
Intended to be launched by an MCP-capable agent, not by hand.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := mcp.NewServer(a.orchestrator, a.chat, version, a.logger)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
}
