// Package evaluation implements the evaluator composition layer: a scalar value plus a preferred-operator set, composed from
// simpler evaluators and cached per EvaluationContext so that calling the
// same evaluator twice in one context never re-executes it.
package evaluation

import "github.com/sasplan/planner/pkg/task"

// Infinity marks "no finite cost-to-goal estimate available"; arithmetic
// over Results saturates at this value rather than overflowing.
const Infinity = 1<<31 - 1

// Result is what one Evaluator.Compute call produces: a scalar value (or
// Infinite), a set of recommended operators, and — only meaningful when
// Infinite — whether that INFINITY verdict is a proof of unsolvability
//. Reliability is tracked per
// Result rather than as a single static property on Evaluator, because a
// combining evaluator's per-call reliability can be sharper than its
// worst-case static answer.
type Result struct {
	Value           int
	Infinite        bool
	Preferred       []task.OperatorID
	ReliableDeadEnd bool
}

// Evaluator is the contract every heuristic, composite, or derived scalar
// satisfies. Implementations should be reference types
// (pointers) so that map[Evaluator]Result in Context keys off identity,
// not structural equality.
type Evaluator interface {
	// Compute evaluates this evaluator against ctx's state/g/preferred
	// flag. Callers should go through ctx.Eval, not call this directly,
	// so results are cached per context.
	Compute(ctx *Context) Result

	// PathDependent reports whether this evaluator's value can differ for
	// the same state reached via different paths; if true and the
	// evaluator also implements PathAware, EagerBestFirst delivers
	// NotifyInitialState/NotifyTransition callbacks to it when it is one
	// of the engine's Evaluators. LazyBestFirst and EnforcedHillClimbing
	// deliver neither callback.
	PathDependent() bool
}

// PathAware is implemented by path-dependent evaluators that need to
// observe the sequence of states visited, e.g. to maintain a per-state
// cache keyed by registered state id.
type PathAware interface {
	NotifyInitialState(state []int)
	NotifyTransition(parent []int, op *task.Operator, child []int)
}

func saturatingAdd(a, b int) int {
	if a >= Infinity || b >= Infinity {
		return Infinity
	}
	sum := a + b
	if sum < 0 || sum >= Infinity {
		return Infinity
	}
	return sum
}

func saturatingMul(a, w int) int {
	if a >= Infinity {
		return Infinity
	}
	product := a * w
	if product < 0 || product >= Infinity {
		return Infinity
	}
	return product
}
