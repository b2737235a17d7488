package evaluation

import "github.com/sasplan/planner/pkg/task"

// GoalCountEvaluator counts the number of goal facts not yet satisfied in
// the current state. It is neither admissible nor consistent, never
// reports Infinite, and its value is exactly 0 only at a goal state.
type GoalCountEvaluator struct {
	Goal task.Goal
}

func NewGoalCountEvaluator(goal task.Goal) *GoalCountEvaluator {
	return &GoalCountEvaluator{Goal: goal}
}

func (g *GoalCountEvaluator) Compute(ctx *Context) Result {
	unsatisfied := 0
	for _, fact := range g.Goal.Facts {
		if ctx.State[fact.Var] != fact.Value {
			unsatisfied++
		}
	}
	return Result{Value: unsatisfied}
}

func (g *GoalCountEvaluator) PathDependent() bool { return false }
