package evaluation

import (
	"reflect"
	"testing"

	"github.com/sasplan/planner/pkg/task"
)

type constInfEvaluator struct {
	reliable bool
}

func (e constInfEvaluator) Compute(*Context) Result {
	return Result{Infinite: true, ReliableDeadEnd: e.reliable}
}
func (e constInfEvaluator) PathDependent() bool { return false }

type preferringEvaluator struct {
	value int
	ops   []task.OperatorID
}

func (e preferringEvaluator) Compute(*Context) Result {
	return Result{Value: e.value, Preferred: e.ops}
}
func (e preferringEvaluator) PathDependent() bool { return false }

func TestContextCachesEvaluatorAcrossCalls(t *testing.T) {
	ctx := NewContext([]int{0, 0}, 3, false)
	calls := 0
	counting := &countingEvaluator{calls: &calls}

	first := ctx.Eval(counting)
	second := ctx.Eval(counting)

	if calls != 1 {
		t.Fatalf("expected Compute to run once, ran %d times", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached results differ: %+v vs %+v", first, second)
	}
}

type countingEvaluator struct {
	calls *int
}

func (e *countingEvaluator) Compute(*Context) Result {
	*e.calls++
	return Result{Value: 7}
}
func (e *countingEvaluator) PathDependent() bool { return false }

func TestGEvaluatorReturnsContextG(t *testing.T) {
	ctx := NewContext(nil, 12, false)
	r := ctx.Eval(GEvaluator{})
	if r.Value != 12 || r.Infinite {
		t.Fatalf("GEvaluator = %+v, want Value=12", r)
	}
}

func TestPrefEvaluatorReflectsContextFlag(t *testing.T) {
	preferred := NewContext(nil, 0, true)
	other := NewContext(nil, 0, false)
	if r := preferred.Eval(PrefEvaluator{}); r.Value != 0 {
		t.Fatalf("preferred context: PrefEvaluator = %+v, want 0", r)
	}
	if r := other.Eval(PrefEvaluator{}); r.Value != 1 {
		t.Fatalf("non-preferred context: PrefEvaluator = %+v, want 1", r)
	}
}

func TestWeightedEvaluatorScalesAndSaturates(t *testing.T) {
	ctx := NewContext(nil, 0, false)
	w := &WeightedEvaluator{Sub: &preferringEvaluator{value: 5}, Weight: 3}
	if r := ctx.Eval(w); r.Value != 15 {
		t.Fatalf("weighted value = %d, want 15", r.Value)
	}

	hugeCtx := NewContext(nil, 0, false)
	huge := &WeightedEvaluator{Sub: &preferringEvaluator{value: Infinity / 2}, Weight: 10}
	if r := hugeCtx.Eval(huge); r.Value != Infinity {
		t.Fatalf("expected saturated value, got %d", r.Value)
	}
}

func TestSumEvaluatorAddsAndUnionsPreferred(t *testing.T) {
	ctx := NewContext(nil, 0, false)
	sum := &SumEvaluator{Subs: []Evaluator{
		&preferringEvaluator{value: 2, ops: []task.OperatorID{1, 2}},
		&preferringEvaluator{value: 3, ops: []task.OperatorID{2, 3}},
	}}
	r := ctx.Eval(sum)
	if r.Value != 5 {
		t.Fatalf("sum value = %d, want 5", r.Value)
	}
	want := []task.OperatorID{1, 2, 3}
	if len(r.Preferred) != len(want) {
		t.Fatalf("preferred = %v, want %v", r.Preferred, want)
	}
	for i, op := range want {
		if r.Preferred[i] != op {
			t.Fatalf("preferred = %v, want %v", r.Preferred, want)
		}
	}
}

func TestSumEvaluatorDeadEndReliability(t *testing.T) {
	ctx1 := NewContext(nil, 0, false)
	sumReliable := &SumEvaluator{Subs: []Evaluator{constInfEvaluator{reliable: true}, &preferringEvaluator{value: 1}}}
	r := ctx1.Eval(sumReliable)
	if !r.Infinite || !r.ReliableDeadEnd {
		t.Fatalf("expected reliable dead end, got %+v", r)
	}

	ctx2 := NewContext(nil, 0, false)
	sumUnreliable := &SumEvaluator{Subs: []Evaluator{constInfEvaluator{reliable: false}, &preferringEvaluator{value: 1}}}
	r2 := ctx2.Eval(sumUnreliable)
	if !r2.Infinite || r2.ReliableDeadEnd {
		t.Fatalf("expected unreliable dead end, got %+v", r2)
	}
}

func TestMaxEvaluatorReportsLargest(t *testing.T) {
	ctx := NewContext(nil, 0, false)
	max := &MaxEvaluator{Subs: []Evaluator{
		&preferringEvaluator{value: 4},
		&preferringEvaluator{value: 9},
		&preferringEvaluator{value: 2},
	}}
	if r := ctx.Eval(max); r.Value != 9 {
		t.Fatalf("max value = %d, want 9", r.Value)
	}
}

func TestConstEvaluatorNeverReliablyDead(t *testing.T) {
	ctx := NewContext(nil, 0, false)
	c := ConstEvaluator{Value: 42}
	r := ctx.Eval(c)
	if r.Value != 42 || r.Infinite || r.ReliableDeadEnd {
		t.Fatalf("ConstEvaluator result = %+v, want Value=42, never dead", r)
	}
}

func goalTask(t *testing.T) task.Goal {
	t.Helper()
	return task.Goal{Facts: []task.Fact{{Var: 0, Value: 1}, {Var: 1, Value: 1}}}
}

func TestBlindEvaluatorZeroAtGoal(t *testing.T) {
	goal := goalTask(t)
	b := NewBlindEvaluator(goal)
	atGoal := NewContext([]int{1, 1}, 0, false)
	notGoal := NewContext([]int{1, 0}, 0, false)
	if r := atGoal.Eval(b); r.Value != 0 {
		t.Fatalf("blind at goal = %d, want 0", r.Value)
	}
	if r := notGoal.Eval(b); r.Value != 1 {
		t.Fatalf("blind away from goal = %d, want 1", r.Value)
	}
}

func TestGoalCountEvaluatorCountsUnsatisfied(t *testing.T) {
	goal := goalTask(t)
	g := NewGoalCountEvaluator(goal)
	ctx := NewContext([]int{1, 0}, 0, false)
	if r := ctx.Eval(g); r.Value != 1 {
		t.Fatalf("goal count = %d, want 1", r.Value)
	}
	atGoal := NewContext([]int{1, 1}, 0, false)
	if r := atGoal.Eval(g); r.Value != 0 {
		t.Fatalf("goal count at goal = %d, want 0", r.Value)
	}
}
