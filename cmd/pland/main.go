// Pland is a technical-planning assistant: it turns a natural-language
// request into a multi-phase implementation plan by interleaving bounded
// web research with LLM reasoning, and also answers one-off questions in
// chat mode. It serves an HTTP API, an MCP stdio surface, and one-shot
// CLI invocations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pland",
		Short: "Technical planning assistant",
		Long: `pland produces multi-phase technical implementation plans by combining
bounded web research with LLM reasoning.

Run "pland serve" for the HTTP API, "pland plan" for a one-shot plan,
"pland chat" for an interactive session, or "pland mcp" to serve the
planner as MCP tools over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/pland/config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pland by Fyrsmith Labs\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", gitCommit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	}
}
