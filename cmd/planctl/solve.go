package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sasplan/planner/internal/planio"
	"github.com/sasplan/planner/pkg/engine"
	"github.com/sasplan/planner/pkg/task"
)

var (
	solveDescription string
	solveProfile     string
	solveOutput      string
	solveStatsOut    string
	solveBound       int
	solveMaxTime     time.Duration
)

func init() {
	cmd := newSolveCmd()
	cmd.Flags().StringVar(&solveDescription, "description", "", `search configuration, e.g. "astar(blind())"`)
	cmd.Flags().StringVar(&solveProfile, "profile", "", "profile file:name to load the configuration from instead of --description")
	cmd.Flags().StringVar(&solveOutput, "output", "sas_plan", "base path to write the found plan to (defaults to sas_plan)")
	cmd.Flags().StringVar(&solveStatsOut, "stats-out", "", "path to write the run's search.Statistics as JSON")
	cmd.Flags().IntVar(&solveBound, "bound", 0, "exclusive plan-cost bound (0 means unbounded); overridden by --profile")
	cmd.Flags().DurationVar(&solveMaxTime, "max-time", 0, "wall-clock search budget (0 means unbounded); overridden by --profile")
	rootCmd.AddCommand(cmd)
}

func newSolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <task.json>",
		Short: "Run a configured search to completion against a task",
		Long: `solve parses a task description file, builds the configured search
algorithm, and runs it to completion, reporting the plan and statistics.

Example:
  planctl solve task.json --description "astar(blind())"
  planctl solve task.json --profile profiles.yaml:lama`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(args[0])
		},
	}
}

func runSolve(taskPath string) error {
	t, err := loadTask(taskPath)
	if err != nil {
		return err
	}

	description := solveDescription
	opts := engine.Options{Bound: solveBound, MaxTime: solveMaxTime}
	if solveProfile != "" {
		path, name, ok := strings.Cut(solveProfile, ":")
		if !ok {
			return fmt.Errorf("--profile wants file:name, got %q", solveProfile)
		}
		pf, err := engine.LoadProfiles(path)
		if err != nil {
			return err
		}
		prof, err := pf.Lookup(name)
		if err != nil {
			return err
		}
		description = prof.Description
		opts, err = prof.Options()
		if err != nil {
			return err
		}
	}
	if description == "" {
		return fmt.Errorf("solve needs --description or --profile")
	}

	printVerbose("solving %s with %q\n", taskPath, description)
	run, solveErr := engine.Solve(t, description, opts)

	if solveStatsOut != "" {
		data, err := json.MarshalIndent(run.Stats, "", "  ")
		if err == nil {
			_ = os.WriteFile(solveStatsOut, data, 0o644)
		}
	}

	if solveErr != nil {
		var terr *task.Error
		if errors.As(solveErr, &terr) {
			printError("%s\n", terr.Msg)
			os.Exit(exitCode(terr.Kind))
		}
		return solveErr
	}

	if solveOutput != "" {
		mgr := planio.NewManager(solveOutput)
		path, err := mgr.Save(run.Plan)
		if err != nil {
			return err
		}
		printVerbose("plan written to %s\n", path)
	}

	if jsonOut {
		return printJSON(run)
	}
	printInfo("Solved: cost %d, %d steps\n", run.Cost, len(run.Plan))
	for i, name := range run.Plan {
		printInfo("  %d: %s\n", i, name)
	}
	return nil
}

// exitCode maps a task.ErrKind to the process exit status planctl reports,
// so a caller scripting planctl can distinguish unsolvable from timed-out
// from a genuine internal failure without scraping stderr text.
func exitCode(kind task.ErrKind) int {
	switch kind {
	case task.KindInput:
		return 2
	case task.KindUnsolvable:
		return 10
	case task.KindUnsolvedIncomplete:
		return 11
	case task.KindTimeout:
		return 12
	case task.KindOutOfMemory:
		return 13
	default:
		return 1
	}
}
