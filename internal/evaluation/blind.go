package evaluation

import "github.com/sasplan/planner/pkg/task"

// BlindEvaluator is the trivial admissible heuristic: 0 at a goal state,
// 1 everywhere else. It carries no information beyond goal-satisfaction,
// and its Infinite verdict never fires, so it contributes nothing to
// pruning; it exists mainly as a baseline or fallback when no richer
// heuristic is configured.
type BlindEvaluator struct {
	Goal task.Goal
}

func NewBlindEvaluator(goal task.Goal) *BlindEvaluator {
	return &BlindEvaluator{Goal: goal}
}

func (b *BlindEvaluator) Compute(ctx *Context) Result {
	if task.GoalSatisfied(b.Goal, ctx.State) {
		return Result{Value: 0}
	}
	return Result{Value: 1}
}

func (b *BlindEvaluator) PathDependent() bool { return false }
