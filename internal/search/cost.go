package search

import "github.com/sasplan/planner/pkg/task"

// CostType selects how an operator's cost is adjusted before it
// contributes to g. RealG always accumulates the operator's unadjusted
// cost, regardless of CostType.
type CostType int

const (
	// CostNormal uses each operator's cost field verbatim.
	CostNormal CostType = iota
	// CostOne treats every operator as unit cost.
	CostOne
	// CostPlusOne adds 1 to every operator's cost, unless the task is
	// already unit-cost (every operator costs exactly 1), in which case
	// it behaves like CostNormal.
	CostPlusOne
)

// IsUnitCostTask reports whether every non-axiom operator in t costs 1.
func IsUnitCostTask(t *task.Task) bool {
	for _, op := range t.Operators {
		if op.Cost != 1 {
			return false
		}
	}
	return true
}

// AdjustedCost returns op's cost under ct, given whether the owning task
// is unit-cost.
func AdjustedCost(op *task.Operator, ct CostType, taskIsUnitCost bool) int {
	switch ct {
	case CostOne:
		return 1
	case CostPlusOne:
		if taskIsUnitCost {
			return op.Cost
		}
		return op.Cost + 1
	default:
		return op.Cost
	}
}
