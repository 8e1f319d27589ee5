package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pland/internal/planner"
	"github.com/fyrsmithlabs/pland/internal/session"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Chat with the planner interactively. Each turn is answered with a
single completion; type /plan to run the full planning pipeline on the
conversation so far. /reset clears the session, /quit exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return chatLoop(cmd, a, os.Stdin)
		},
	}
}

func chatLoop(cmd *cobra.Command, a *app, in io.Reader) error {
	ctx := cmd.Context()
	sess := session.New()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	cmd.Println("pland chat. /plan runs the planner, /reset clears, /quit exits.")

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/reset":
			sess.Reset()
			cmd.Println("session cleared")
			continue
		case line == "/plan":
			sess.SetMode(session.ModePlan)
			cmd.Println("planning on next message (or the conversation so far if non-empty)")
			if sess.Len() > 0 {
				if err := runTurn(cmd, a, sess); err != nil {
					return err
				}
			}
			continue
		}

		sess.Append(planner.RoleUser, line)
		if err := runTurn(cmd, a, sess); err != nil {
			return err
		}
	}
}

// runTurn executes one turn in the session's current mode. Cancellation
// ends the session quietly; provider failures are printed, not fatal.
func runTurn(cmd *cobra.Command, a *app, sess *session.Session) error {
	ctx := cmd.Context()
	req := sess.Request()

	var out string
	var err error
	switch sess.Mode() {
	case session.ModePlan:
		var doc *planner.PlanDocument
		doc, err = a.orchestrator.CreatePlan(ctx, req)
		if err == nil {
			out = doc.Plan()
		}
		sess.SetMode(session.ModeChat)
	default:
		out, err = a.chat.Respond(ctx, req)
	}

	if errors.Is(err, planner.ErrCancelled) {
		cmd.PrintErrln("cancelled")
		return nil
	}
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("error: %v", err))
		return nil
	}

	sess.Append(planner.RoleAssistant, out)
	cmd.Println(out)
	return nil
}
