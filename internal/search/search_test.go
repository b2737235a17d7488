package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sasplan/planner/internal/evaluation"
	"github.com/sasplan/planner/internal/openlist"
	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/internal/searchspace"
	"github.com/sasplan/planner/internal/succgen"
	"github.com/sasplan/planner/pkg/task"
)

// chainTask builds a single counter variable 0..n-1 with one "inc"
// operator per step (cost 1, precondition a==i, effect a==i+1) and a goal
// of a==n-1: the unique shortest plan has exactly n-1 steps.
func chainTask(t *testing.T, n int) *task.Task {
	t.Helper()
	vars := []task.Variable{{Name: "a", DomainSZ: n}}
	ops := make([]task.Operator, 0, n-1)
	for i := 0; i < n-1; i++ {
		ops = append(ops, task.Operator{
			Name:          "inc",
			Preconditions: []task.Fact{{Var: 0, Value: i}},
			Effects:       []task.EffectCond{{Post: task.Fact{Var: 0, Value: i + 1}}},
			Cost:          1,
		})
	}
	goal := task.Goal{Facts: []task.Fact{{Var: 0, Value: n - 1}}}
	tk, err := task.New(vars, ops, nil, []int{0}, goal)
	require.NoError(t, err)
	return tk
}

// deadEndTask has no path from its initial state to its goal at all.
func deadEndTask(t *testing.T) *task.Task {
	t.Helper()
	vars := []task.Variable{{Name: "a", DomainSZ: 2}}
	goal := task.Goal{Facts: []task.Fact{{Var: 0, Value: 1}}}
	tk, err := task.New(vars, nil, nil, []int{0}, goal)
	require.NoError(t, err)
	return tk
}

type testHarness struct {
	task *task.Task
	reg  *registry.Registry
	sp   *searchspace.SearchSpace
	gen  *succgen.Generator
}

func newHarness(t *testing.T, tk *task.Task) *testHarness {
	t.Helper()
	reg, err := registry.New(tk)
	require.NoError(t, err)
	return &testHarness{task: tk, reg: reg, sp: searchspace.New(reg), gen: succgen.Build(tk)}
}

func astarEvaluators(goal task.Goal) (sum evaluation.Evaluator, g, h evaluation.Evaluator) {
	g = evaluation.GEvaluator{}
	h = evaluation.NewBlindEvaluator(goal)
	return &evaluation.SumEvaluator{Subs: []evaluation.Evaluator{g, h}}, g, h
}

func TestEagerBestFirstFindsShortestPlan(t *testing.T) {
	tk := chainTask(t, 5)
	h := newHarness(t, tk)
	sum, _, heur := astarEvaluators(tk.Goal)

	eng := NewEagerBestFirst(EagerConfig{
		Task:          tk,
		Registry:      h.reg,
		Space:         h.sp,
		Generator:     h.gen,
		Open:          openlist.NewBestFirst[registry.StateID](),
		Evaluators:    []evaluation.Evaluator{heur},
		KeyEvaluators: []evaluation.Evaluator{sum},
		ReopenClosed:  true,
	})
	result := eng.Run()

	require.Equal(t, Solved, result.Outcome)
	require.Equal(t, 4, result.Cost)
	require.Len(t, result.Plan, 4)
	for i, op := range result.Plan {
		require.Equal(t, i, int(op))
	}
}

func TestEagerBestFirstProvesUnsolvable(t *testing.T) {
	tk := deadEndTask(t)
	h := newHarness(t, tk)
	_, _, heur := astarEvaluators(tk.Goal)

	eng := NewEagerBestFirst(EagerConfig{
		Task:          tk,
		Registry:      h.reg,
		Space:         h.sp,
		Generator:     h.gen,
		Open:          openlist.NewBestFirst[registry.StateID](),
		Evaluators:    []evaluation.Evaluator{heur},
		KeyEvaluators: []evaluation.Evaluator{heur},
	})
	result := eng.Run()
	require.Equal(t, Unsolvable, result.Outcome)
}

func TestEagerBestFirstRespectsBound(t *testing.T) {
	tk := chainTask(t, 5)
	h := newHarness(t, tk)
	sum, _, heur := astarEvaluators(tk.Goal)

	eng := NewEagerBestFirst(EagerConfig{
		Task:          tk,
		Registry:      h.reg,
		Space:         h.sp,
		Generator:     h.gen,
		Open:          openlist.NewBestFirst[registry.StateID](),
		Evaluators:    []evaluation.Evaluator{heur},
		KeyEvaluators: []evaluation.Evaluator{sum},
		Bound:         2,
	})
	result := eng.Run()
	require.Equal(t, UnsolvedIncomplete, result.Outcome)
}

func TestLazyBestFirstFindsShortestPlan(t *testing.T) {
	tk := chainTask(t, 5)
	h := newHarness(t, tk)
	sum, _, heur := astarEvaluators(tk.Goal)

	eng := NewLazyBestFirst(LazyConfig{
		Task:          tk,
		Registry:      h.reg,
		Space:         h.sp,
		Generator:     h.gen,
		Open:          openlist.NewBestFirst[LazyEntry](),
		Evaluators:    []evaluation.Evaluator{heur},
		KeyEvaluators: []evaluation.Evaluator{sum},
	})
	result := eng.Run()

	require.Equal(t, Solved, result.Outcome)
	require.Equal(t, 4, result.Cost)
	require.Len(t, result.Plan, 4)
}

// diamondTask builds two operators from the initial state that both reach
// the same intermediate successor (a:=1), so that successor gets a lazy
// open-list entry queued twice before either is ever resolved; a third
// operator then reaches the goal from there, so the search continues past
// the first resolution and must later discard the stale duplicate.
func diamondTask(t *testing.T) *task.Task {
	t.Helper()
	vars := []task.Variable{{Name: "a", DomainSZ: 3}}
	ops := []task.Operator{
		{Name: "viaX", Effects: []task.EffectCond{{Post: task.Fact{Var: 0, Value: 1}}}, Cost: 5},
		{Name: "viaY", Effects: []task.EffectCond{{Post: task.Fact{Var: 0, Value: 1}}}, Cost: 1},
		{Name: "finish", Preconditions: []task.Fact{{Var: 0, Value: 1}}, Effects: []task.EffectCond{{Post: task.Fact{Var: 0, Value: 2}}}, Cost: 1},
	}
	goal := task.Goal{Facts: []task.Fact{{Var: 0, Value: 2}}}
	tk, err := task.New(vars, ops, nil, []int{0}, goal)
	require.NoError(t, err)
	return tk
}

func TestLazyBestFirstDiscardsDuplicateEntries(t *testing.T) {
	tk := diamondTask(t)
	h := newHarness(t, tk)
	sum, _, heur := astarEvaluators(tk.Goal)

	eng := NewLazyBestFirst(LazyConfig{
		Task:          tk,
		Registry:      h.reg,
		Space:         h.sp,
		Generator:     h.gen,
		Open:          openlist.NewBestFirst[LazyEntry](),
		Evaluators:    []evaluation.Evaluator{heur},
		KeyEvaluators: []evaluation.Evaluator{sum},
	})
	result := eng.Run()
	require.Equal(t, Solved, result.Outcome)
	// reached via the first-resolved viaX entry (cost 5), then finish (cost 1)
	require.Equal(t, 6, result.Cost)
	require.Equal(t, []int{0, 2}, result.Plan)
	// the duplicate viaY entry must be discarded once a=1 is closed, not re-expanded
	require.Equal(t, 2, result.Stats.Expanded)
}

func TestEnforcedHillClimbingReachesGoal(t *testing.T) {
	tk := chainTask(t, 4)
	h := newHarness(t, tk)
	heur := evaluation.NewBlindEvaluator(tk.Goal)

	eng := NewEnforcedHillClimbing(EHCConfig{
		Task:       tk,
		Registry:   h.reg,
		Space:      h.sp,
		Generator:  h.gen,
		HEvaluator: heur,
	})
	result := eng.Run()
	require.Equal(t, Solved, result.Outcome)
	require.Equal(t, 3, result.Cost)
}

func TestIteratedSearchKeepsBestAcrossPhases(t *testing.T) {
	tk := chainTask(t, 5)
	h := newHarness(t, tk)
	sum, _, heur := astarEvaluators(tk.Goal)

	// Each phase gets its own SearchSpace (node bookkeeping is per-search)
	// but shares the registry, so later phases reuse canonicalized states.
	factory := func(bound int) Engine {
		return NewEagerBestFirst(EagerConfig{
			Task:          tk,
			Registry:      h.reg,
			Space:         searchspace.New(h.reg),
			Generator:     h.gen,
			Open:          openlist.NewBestFirst[registry.StateID](),
			Evaluators:    []evaluation.Evaluator{heur},
			KeyEvaluators: []evaluation.Evaluator{sum},
			ReopenClosed:  true,
			Bound:         bound,
		})
	}

	it := NewIteratedSearch(IteratedConfig{Phases: []PhaseFactory{factory, factory}})
	result := it.Run()
	require.Equal(t, Solved, result.Outcome)
	require.Equal(t, 4, result.Cost)
	require.NotZero(t, result.Stats.Expanded)
}
