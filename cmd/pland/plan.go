package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pland/internal/planner"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan \"request text\"",
		Short: "Produce a plan for a single request",
		Long: `Run the full planning pipeline on one request and print the plan.

Ctrl+C cancels the in-flight plan; no partial plan is printed.

Example:
  pland plan "design a job queue with retry semantics"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			req := planner.PlanRequest{Messages: []planner.Message{
				{Role: planner.RoleUser, Content: strings.Join(args, " ")},
			}}

			doc, err := a.orchestrator.CreatePlan(ctx, req)
			if errors.Is(err, planner.ErrCancelled) {
				cmd.PrintErrln("cancelled")
				return nil
			}
			if err != nil {
				var perr *planner.PhaseError
				if errors.As(err, &perr) {
					return fmt.Errorf("planning failed in phase %s: %w", perr.Phase, perr.Err)
				}
				return err
			}

			cmd.Println(doc.Plan())
			cmd.PrintErrln()
			cmd.PrintErrln(doc.Summary)
			return nil
		},
	}
}
