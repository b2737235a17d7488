package planio

import (
	"fmt"

	"github.com/sasplan/planner/pkg/task"
)

// ValidationError describes the first step at which a plan fails to
// replay against a task.
type ValidationError struct {
	Step    int
	OpName  string
	Problem string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan step %d (%s): %s", e.Step, e.OpName, e.Problem)
}

// Validate replays opNames against t from its initial state, applying
// each operator's effects in turn (all axioms to a single fixpoint after
// every step, without the registry's per-layer evaluation) and checking
// applicability at every step
// and goal satisfaction at the end. It does not depend on, or exercise,
// any search algorithm: a plan produced by any means can be checked.
func Validate(t *task.Task, opNames []string) (cost int, err error) {
	byName := make(map[string]*task.Operator, len(t.Operators))
	for i := range t.Operators {
		op := &t.Operators[i]
		byName[op.Name] = op
	}

	state := append([]int(nil), t.Initial...)
	applyAxioms(t, state)

	for i, name := range opNames {
		op, ok := byName[name]
		if !ok {
			return 0, &ValidationError{Step: i, OpName: name, Problem: "no operator with this name"}
		}
		if !task.IsApplicable(op, state) {
			return 0, &ValidationError{Step: i, OpName: name, Problem: "preconditions not satisfied"}
		}
		next := append([]int(nil), state...)
		for _, eff := range op.Effects {
			if conditionsHold(eff.Conditions, state) {
				next[eff.Post.Var] = eff.Post.Value
			}
		}
		applyAxioms(t, next)
		state = next
		cost += op.Cost
	}

	if !task.GoalSatisfied(t.Goal, state) {
		return cost, &ValidationError{Step: len(opNames), OpName: "", Problem: "goal not satisfied after the last step"}
	}
	return cost, nil
}

func conditionsHold(conds []task.Fact, state []int) bool {
	for _, c := range conds {
		if state[c.Var] != c.Value {
			return false
		}
	}
	return true
}

// applyAxioms evaluates every axiom in t to a fixpoint in-place over
// state, ignoring stratification layers: a validator run is a one-off
// check, not a hot path, so the simpler global fixpoint is preferable to
// duplicating the registry's layered evaluator.
func applyAxioms(t *task.Task, state []int) {
	for {
		changed := false
		for i := range t.Axioms {
			ax := &t.Axioms[i]
			for _, eff := range ax.Effects {
				if !conditionsHold(eff.Conditions, state) {
					continue
				}
				if state[eff.Post.Var] != eff.Post.Value {
					state[eff.Post.Var] = eff.Post.Value
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}
