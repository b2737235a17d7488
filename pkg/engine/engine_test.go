package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sasplan/planner/pkg/task"
)

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

func TestParseDescriptionAStarWithSumOfWeightedAndBlind(t *testing.T) {
	spec, err := ParseDescription("astar(sum([weighted(g(),2),blind()]))")
	require.NoError(t, err)
	require.Equal(t, "astar", spec.Algorithm)
	require.Equal(t, "sum", spec.Main.name)
	require.Len(t, spec.Main.args, 2)
	require.Equal(t, "weighted", spec.Main.args[0].name)
	require.Equal(t, "blind", spec.Main.args[1].name)
}

func TestParseDescriptionWeightedAStarCarriesWeight(t *testing.T) {
	spec, err := ParseDescription("wastar(blind(), 3)")
	require.NoError(t, err)
	require.Equal(t, "wastar", spec.Algorithm)
	require.Equal(t, 3, spec.Weight)
}

func TestParseDescriptionRejectsUnknownAlgorithm(t *testing.T) {
	_, err := ParseDescription("dijkstra(blind())")
	require.Error(t, err)
}

func TestParseDescriptionIteratedCarriesPhases(t *testing.T) {
	spec, err := ParseDescription("iterated([lazy_greedy(blind()), wastar(blind(), 2), astar(blind())])")
	require.NoError(t, err)
	require.Equal(t, "iterated", spec.Algorithm)
	require.Len(t, spec.Phases, 3)
	require.Equal(t, "lazy_greedy", spec.Phases[0].Algorithm)
	require.Equal(t, "wastar", spec.Phases[1].Algorithm)
	require.Equal(t, 2, spec.Phases[1].Weight)
	require.Equal(t, "astar", spec.Phases[2].Algorithm)
}

func TestParseDescriptionRejectsNestedIterated(t *testing.T) {
	_, err := ParseDescription("iterated([iterated([astar(blind())])])")
	require.Error(t, err)
}

func TestParseDescriptionRejectsEmptyIterated(t *testing.T) {
	_, err := ParseDescription("iterated([])")
	require.Error(t, err)
}

func TestParseDescriptionRejectsTrailingInput(t *testing.T) {
	_, err := ParseDescription("astar(blind()) garbage")
	require.Error(t, err)
}

func TestSolveAStarFindsShortestPlan(t *testing.T) {
	tk := chainTask(t, 5)
	run, err := Solve(tk, "astar(blind())", Options{})
	require.NoError(t, err)
	require.Equal(t, 4, run.Cost)
	require.Len(t, run.Plan, 4)
}

func TestSolveLazyGreedyFindsAPlan(t *testing.T) {
	tk := chainTask(t, 4)
	run, err := Solve(tk, "lazy_greedy(blind())", Options{})
	require.NoError(t, err)
	require.Equal(t, 3, run.Cost)
}

func TestSolveEagerFindsShortestPlan(t *testing.T) {
	tk := chainTask(t, 5)
	run, err := Solve(tk, "eager(sum([g(),blind()]))", Options{})
	require.NoError(t, err)
	require.Equal(t, 4, run.Cost)
}

func TestSolveLazyFindsAPlan(t *testing.T) {
	tk := chainTask(t, 4)
	run, err := Solve(tk, "lazy(blind())", Options{})
	require.NoError(t, err)
	require.Equal(t, 3, run.Cost)
}

func TestSolveEagerGreedyFindsAPlan(t *testing.T) {
	tk := chainTask(t, 4)
	run, err := Solve(tk, "eager_greedy(blind())", Options{})
	require.NoError(t, err)
	require.Equal(t, 3, run.Cost)
}

func TestSolveLazyWastarFindsShortestPlan(t *testing.T) {
	tk := chainTask(t, 5)
	run, err := Solve(tk, "lazy_wastar(blind(), 2)", Options{})
	require.NoError(t, err)
	require.Equal(t, 4, run.Cost)
}

func TestSolveIteratedKeepsBestAcrossPhases(t *testing.T) {
	tk := chainTask(t, 6)
	run, err := Solve(tk, "iterated([lazy_greedy(blind()), astar(blind())])", Options{})
	require.NoError(t, err)
	require.Equal(t, 5, run.Cost)
	require.Len(t, run.Plan, 5)
}

func TestSolveEHCFindsAPlan(t *testing.T) {
	tk := chainTask(t, 4)
	run, err := Solve(tk, "ehc(blind())", Options{})
	require.NoError(t, err)
	require.Equal(t, 3, run.Cost)
}

func TestSolveReportsUnsolvable(t *testing.T) {
	vars := []task.Variable{{Name: "a", DomainSZ: 2}}
	goal := task.Goal{Facts: []task.Fact{{Var: 0, Value: 1}}}
	tk, err := task.New(vars, nil, nil, []int{0}, goal)
	require.NoError(t, err)

	_, err = Solve(tk, "astar(blind())", Options{})
	require.ErrorIs(t, err, task.ErrUnsolvable)
}

func TestSolveRejectsMalformedDescription(t *testing.T) {
	tk := chainTask(t, 3)
	_, err := Solve(tk, "not a valid description(", Options{})
	require.Error(t, err)
}
