package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sasplan/planner/internal/evaluation"
	"github.com/sasplan/planner/internal/openlist"
	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/internal/search"
	"github.com/sasplan/planner/internal/searchspace"
	"github.com/sasplan/planner/internal/succgen"
	"github.com/sasplan/planner/pkg/progress"
	"github.com/sasplan/planner/pkg/task"
)

// Options controls a Solve call beyond what the description string
// itself encodes.
type Options struct {
	CostType     search.CostType
	ReopenClosed bool
	Bound        int
	MaxTime      time.Duration
	Logger       *slog.Logger // nil means slog.Default()

	// Progress, when non-nil, receives periodic Snapshot publications
	// while the search runs (e.g. for cmd/planserve to stream to a
	// browser); the run still returns the usual Run/error on completion.
	// Iterated descriptions publish no snapshots.
	Progress         *progress.Stream
	ProgressInterval time.Duration // defaults to 200ms when Progress is set
}

// runEngine drives eng to completion, either directly or through
// progress.Drive when the caller wants periodic snapshots published.
func runEngine(eng progress.StatEngine, opts Options) search.Result {
	if opts.Progress == nil {
		type runner interface{ Run() search.Result }
		return eng.(runner).Run()
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return progress.Drive(eng, opts.Progress, interval)
}

// Run is what Solve returns: the search outcome translated to a task
// error (nil on success), alongside the plan (operator names, in order)
// and the statistics gathered.
type Run struct {
	Plan  []string
	Cost  int
	Stats search.Statistics
}

// Solve parses description, builds the corresponding search engine over
// t, runs it to completion, and returns the result. err is a *task.Error
// with the matching Kind on anything other than Solved.
func Solve(t *task.Task, description string, opts Options) (Run, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	spec, err := ParseDescription(description)
	if err != nil {
		return Run{}, task.NewInputError("engine: failed to parse description", err)
	}

	reg, err := registry.New(t)
	if err != nil {
		return Run{}, err
	}
	space := searchspace.New(reg)
	gen := succgen.Build(t)

	logger.Info("search starting", "algorithm", spec.Algorithm, "description", description)

	var result search.Result
	if spec.Algorithm == "iterated" {
		phases := make([]search.PhaseFactory, len(spec.Phases))
		for i, phase := range spec.Phases {
			phase := phase
			if _, buildErr := phase.Main.build(t.Goal); buildErr != nil {
				return Run{}, task.NewInputError("engine: failed to build evaluator", buildErr)
			}
			phases[i] = func(bound int) search.Engine {
				phaseOpts := opts
				phaseOpts.Bound = bound
				phaseOpts.Progress = nil // iterated runs publish no progress snapshots
				eng, buildErr := buildPhaseEngine(t, phase, reg, searchspace.New(reg), gen, phaseOpts)
				if buildErr != nil {
					return nil
				}
				return eng
			}
		}
		iter := search.NewIteratedSearch(search.IteratedConfig{
			Phases:          phases,
			PassBound:       true,
			RepeatLast:      true,
			ContinueOnFail:  true,
			ContinueOnSolve: true,
			MaxTime:         opts.MaxTime,
		})
		// IteratedSearch drives whole phases to completion through their
		// own Run; it has no single Step of its own, so opts.Progress
		// receives no snapshots for an iterated description.
		result = iter.Run()
	} else {
		eng, buildErr := buildPhaseEngine(t, spec, reg, space, gen, opts)
		if buildErr != nil {
			return Run{}, buildErr
		}
		result = runEngine(eng, opts)
	}

	run := Run{Cost: result.Cost, Stats: result.Stats}
	if result.Plan != nil {
		run.Plan = make([]string, len(result.Plan))
		for i, opID := range result.Plan {
			run.Plan[i] = t.Operators[opID].Name
		}
	}

	switch result.Outcome {
	case search.Solved:
		logger.Info("search finished", "outcome", "solved", "cost", result.Cost, "expanded", result.Stats.Expanded)
		return run, nil
	case search.Unsolvable:
		logger.Info("search finished", "outcome", "unsolvable")
		return run, task.ErrUnsolvable
	case search.UnsolvedIncomplete:
		logger.Info("search finished", "outcome", "unsolved_incomplete")
		return run, task.ErrUnsolvedIncomplete
	case search.TimedOut:
		logger.Warn("search finished", "outcome", "timed_out")
		return run, task.ErrTimeout
	default:
		logger.Error("search finished", "outcome", "critical_error", "err", result.Err)
		return run, task.NewCriticalError("engine: search aborted", result.Err)
	}
}

// phaseEngine is what buildPhaseEngine returns: every concrete engine
// (EagerBestFirst, LazyBestFirst, EnforcedHillClimbing) satisfies both
// progress.StatEngine (for runEngine) and search.Engine (for use as one
// phase of an iterated search).
type phaseEngine interface {
	Step() bool
	Result() search.Result
	Run() search.Result
}

// lamaAlternation pairs an unrestricted open list with a preferred-only
// one in a two-way AlternationOpenList, the LAMA-style greedy/preferred
// pairing: every successor reaches the unrestricted sublist, but only
// those reached by a preferred operator also reach the pref_only sublist.
// The search engines never call Boost, so the two sublists take turns.
func lamaAlternation[T any]() openlist.OpenList[T] {
	return openlist.NewAlternation[T]([]openlist.OpenList[T]{
		openlist.NewBestFirst[T](),
		openlist.NewBestFirstPrefOnly[T](),
	}, 1000)
}

// buildPhaseEngine builds the one concrete search engine spec names (every
// EngineSpec.Algorithm except "iterated", which Solve handles itself by
// building one phaseEngine per phase). The cost bound comes from
// opts.Bound, which Solve sets per iterated phase from the bound
// IteratedSearch passes in, so later phases can tighten the ceiling.
func buildPhaseEngine(t *task.Task, spec *EngineSpec, reg *registry.Registry, space *searchspace.SearchSpace, gen *succgen.Generator, opts Options) (phaseEngine, error) {
	bound := opts.Bound

	evaluator, err := spec.Main.build(t.Goal)
	if err != nil {
		return nil, task.NewInputError("engine: failed to build evaluator", err)
	}

	switch spec.Algorithm {
	case "astar":
		sum := &evaluation.SumEvaluator{Subs: []evaluation.Evaluator{evaluation.GEvaluator{}, evaluator}}
		return search.NewEagerBestFirst(search.EagerConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:          openlist.NewBestFirst[registry.StateID](),
			Evaluators:    []evaluation.Evaluator{evaluator},
			KeyEvaluators: []evaluation.Evaluator{sum},
			CostType:      opts.CostType, ReopenClosed: true, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "wastar", "eager_wastar":
		weighted := &evaluation.WeightedEvaluator{Sub: evaluator, Weight: spec.Weight}
		sum := &evaluation.SumEvaluator{Subs: []evaluation.Evaluator{evaluation.GEvaluator{}, weighted}}
		return search.NewEagerBestFirst(search.EagerConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:          openlist.NewBestFirst[registry.StateID](),
			Evaluators:    []evaluation.Evaluator{evaluator},
			KeyEvaluators: []evaluation.Evaluator{sum},
			CostType:      opts.CostType, ReopenClosed: true, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "eager":
		return search.NewEagerBestFirst(search.EagerConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:          openlist.NewBestFirst[registry.StateID](),
			Evaluators:    []evaluation.Evaluator{evaluator},
			KeyEvaluators: []evaluation.Evaluator{evaluator},
			CostType:      opts.CostType, ReopenClosed: opts.ReopenClosed, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "eager_greedy":
		return search.NewEagerBestFirst(search.EagerConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:                lamaAlternation[registry.StateID](),
			Evaluators:          []evaluation.Evaluator{evaluator},
			KeyEvaluators:       []evaluation.Evaluator{evaluator, evaluation.PrefEvaluator{}},
			PreferredEvaluators: []evaluation.Evaluator{evaluator},
			CostType:            opts.CostType, ReopenClosed: opts.ReopenClosed, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "lazy":
		return search.NewLazyBestFirst(search.LazyConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:          openlist.NewBestFirst[search.LazyEntry](),
			Evaluators:    []evaluation.Evaluator{evaluator},
			KeyEvaluators: []evaluation.Evaluator{evaluator},
			CostType:      opts.CostType, ReopenClosed: opts.ReopenClosed, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "lazy_greedy":
		return search.NewLazyBestFirst(search.LazyConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:                lamaAlternation[search.LazyEntry](),
			Evaluators:          []evaluation.Evaluator{evaluator},
			KeyEvaluators:       []evaluation.Evaluator{evaluator, evaluation.PrefEvaluator{}},
			PreferredEvaluators: []evaluation.Evaluator{evaluator},
			CostType:            opts.CostType, ReopenClosed: opts.ReopenClosed, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "lazy_wastar":
		weighted := &evaluation.WeightedEvaluator{Sub: evaluator, Weight: spec.Weight}
		sum := &evaluation.SumEvaluator{Subs: []evaluation.Evaluator{evaluation.GEvaluator{}, weighted}}
		return search.NewLazyBestFirst(search.LazyConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			Open:          openlist.NewBestFirst[search.LazyEntry](),
			Evaluators:    []evaluation.Evaluator{evaluator},
			KeyEvaluators: []evaluation.Evaluator{sum},
			CostType:      opts.CostType, ReopenClosed: opts.ReopenClosed, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	case "ehc":
		return search.NewEnforcedHillClimbing(search.EHCConfig{
			Task: t, Registry: reg, Space: space, Generator: gen,
			HEvaluator: evaluator,
			CostType:   opts.CostType, Bound: bound, MaxTime: opts.MaxTime,
		}), nil
	default:
		return nil, task.NewInputError(fmt.Sprintf("engine: unsupported algorithm %q", spec.Algorithm), nil)
	}
}
