package evaluation

import "github.com/sasplan/planner/pkg/task"

// GEvaluator returns the context's g-value directly; it never reports
// Infinite, so its dead-end reliability is moot.
type GEvaluator struct{}

func (GEvaluator) Compute(ctx *Context) Result { return Result{Value: ctx.G} }
func (GEvaluator) PathDependent() bool         { return false }

// PrefEvaluator turns the context's preferred flag into a tie-breaking
// scalar: 0 if the entry under evaluation was reached via a preferred
// operator, 1 otherwise. Used as a sub-evaluator of a lexicographic
// tie-breaking list, never meaningful standalone.
type PrefEvaluator struct{}

func (PrefEvaluator) Compute(ctx *Context) Result {
	if ctx.Preferred {
		return Result{Value: 0}
	}
	return Result{Value: 1}
}
func (PrefEvaluator) PathDependent() bool { return false }

// ConstEvaluator always reports the same value and never a dead end,
// regardless of what that value is; useful as a disabled/no-op heuristic
// slot in a composite.
type ConstEvaluator struct {
	Value int
}

func (c ConstEvaluator) Compute(*Context) Result { return Result{Value: c.Value} }
func (c ConstEvaluator) PathDependent() bool     { return false }

// WeightedEvaluator scales Sub's value by Weight. Reliability passes through unchanged:
// scaling by a positive weight doesn't change whether Infinite implies
// unsolvable.
type WeightedEvaluator struct {
	Sub    Evaluator
	Weight int
}

func (w *WeightedEvaluator) Compute(ctx *Context) Result {
	r := ctx.Eval(w.Sub)
	if r.Infinite {
		return Result{Infinite: true, ReliableDeadEnd: r.ReliableDeadEnd, Preferred: r.Preferred}
	}
	return Result{Value: saturatingMul(r.Value, w.Weight), Preferred: r.Preferred}
}
func (w *WeightedEvaluator) PathDependent() bool { return w.Sub.PathDependent() }

// SumEvaluator adds its subs' values, saturating at Infinity, and unions
// their preferred-operator recommendations. The combined result is a
// reliable dead end only when every sub that reported Infinite also
// reported it reliably: any sub whose Infinite verdict is NOT a proof of
// unsolvability means the sum's Infinite verdict isn't one either.
type SumEvaluator struct {
	Subs []Evaluator
}

func (s *SumEvaluator) Compute(ctx *Context) Result {
	total := 0
	infinite := false
	reliable := true
	var preferred []task.OperatorID
	seen := make(map[task.OperatorID]bool)
	for _, sub := range s.Subs {
		r := ctx.Eval(sub)
		if r.Infinite {
			infinite = true
			if !r.ReliableDeadEnd {
				reliable = false
			}
		} else {
			total = saturatingAdd(total, r.Value)
		}
		for _, op := range r.Preferred {
			if !seen[op] {
				seen[op] = true
				preferred = append(preferred, op)
			}
		}
	}
	if infinite {
		return Result{Infinite: true, ReliableDeadEnd: reliable, Preferred: preferred}
	}
	return Result{Value: total, Preferred: preferred}
}

func (s *SumEvaluator) PathDependent() bool {
	for _, sub := range s.Subs {
		if sub.PathDependent() {
			return true
		}
	}
	return false
}

// MaxEvaluator reports the largest of its subs' values (any Infinite sub
// forces an Infinite result) and unions their preferred operators.
// Reliability combines exactly as SumEvaluator's does.
type MaxEvaluator struct {
	Subs []Evaluator
}

func (m *MaxEvaluator) Compute(ctx *Context) Result {
	max := 0
	any := false
	infinite := false
	reliable := true
	var preferred []task.OperatorID
	seen := make(map[task.OperatorID]bool)
	for _, sub := range m.Subs {
		r := ctx.Eval(sub)
		if r.Infinite {
			infinite = true
			if !r.ReliableDeadEnd {
				reliable = false
			}
		} else if !any || r.Value > max {
			max = r.Value
			any = true
		}
		for _, op := range r.Preferred {
			if !seen[op] {
				seen[op] = true
				preferred = append(preferred, op)
			}
		}
	}
	if infinite {
		return Result{Infinite: true, ReliableDeadEnd: reliable, Preferred: preferred}
	}
	return Result{Value: max, Preferred: preferred}
}

func (m *MaxEvaluator) PathDependent() bool {
	for _, sub := range m.Subs {
		if sub.PathDependent() {
			return true
		}
	}
	return false
}
