package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/session"
	"github.com/kingrea/whybot/internal/weights"
	"github.com/kingrea/whybot/internal/workflow"
)

var compareFlag string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan once and print the explanation",
	Long: `Plan lays out the board, asks the planner for a route with the starting
weights and prints the explain panel. With --compare the route becomes the
baseline and a counterfactual is planned with the adjusted weights, printing
the step and cost deltas.`,
	Example: `  whybot plan --layout demo
  whybot plan --layout demo --weights time=1,risk=1 --compare risk=3,time=0.3`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&compareFlag, "compare", "", "weights to apply for a counterfactual run")
}

func runPlan(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	s, err := env.newSession(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	outcome, err := s.Run(cmd.Context(), env.client, workflow.ActionPlan)
	if err != nil {
		return err
	}
	if err := report(out, s, outcome, "Plan"); err != nil {
		return err
	}
	if compareFlag == "" || !outcome.Succeeded() {
		return nil
	}

	next, err := weightsFrom(compareFlag, s.Weights().Weights())
	if err != nil {
		return err
	}
	s.Weights().SetAll(next)
	fmt.Fprintln(out)
	outcome, err = s.Run(cmd.Context(), env.client, workflow.ActionCounterfactual)
	if err != nil {
		return err
	}
	return report(out, s, outcome, "Counterfactual")
}

// report prints the explain panel and any notice for one outcome. A planner
// failure is returned as the command error.
func report(w io.Writer, s *session.Controller, out workflow.Outcome, title string) error {
	if out.Kind == workflow.OutcomeFailed {
		if planner.IsFailure(out.Err) {
			return fmt.Errorf("planner unavailable: %w", out.Err)
		}
		return out.Err
	}
	fmt.Fprintf(w, "== %s (%s)\n", title, s.Weights().Weights())
	if out.Explained() {
		for _, line := range s.Explain().Lines() {
			fmt.Fprintln(w, line)
		}
	}
	if n, ok := s.Notice(); ok {
		fmt.Fprintf(w, "! %s\n", strings.ReplaceAll(n.Text(), "\n", "\n  "))
		s.DismissNotice()
	}
	return nil
}

func weightsFrom(list string, base weights.Vector) (weights.Vector, error) {
	if strings.TrimSpace(list) == "" {
		return base, nil
	}
	return weights.ParseAssignments(list, base)
}
