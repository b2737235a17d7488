package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sasplan/planner/internal/planio"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <task.json> <plan>",
		Short: "Replay a plan against a task and confirm it reaches the goal",
		Long: `validate replays a plan file (as written by "planctl solve") against a
task independently of any search algorithm, failing on the first
inapplicable step or an unsatisfied goal at the end.

Example:
  planctl validate task.json sas_plan`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], args[1])
		},
	}
}

func runValidate(taskPath, planPath string) error {
	t, err := loadTask(taskPath)
	if err != nil {
		return err
	}
	opNames, err := planio.ReadPlan(planPath)
	if err != nil {
		return err
	}

	cost, err := planio.Validate(t, opNames)
	if err != nil {
		var verr *planio.ValidationError
		if errors.As(err, &verr) {
			printError("invalid at step %d (%s): %s\n", verr.Step, verr.OpName, verr.Problem)
			return err
		}
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"valid": true, "cost": cost, "steps": len(opNames)})
	}
	printInfo("Plan valid: cost %d, %d steps\n", cost, len(opNames))
	return nil
}
