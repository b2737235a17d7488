// Package search implements the control loops driving a best-first
// search over a registered state space: eager and lazy best-first,
// enforced hill-climbing, and iterated search over a sequence of
// configurations.
package search

import (
	"time"

	"github.com/sasplan/planner/internal/evaluation"
	"github.com/sasplan/planner/internal/openlist"
	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/internal/searchspace"
	"github.com/sasplan/planner/internal/succgen"
	"github.com/sasplan/planner/internal/timer"
	"github.com/sasplan/planner/pkg/task"
)

// EagerConfig wires one eager best-first run. KeyEvaluators produce the
// open list's sort key tuple, in order; Evaluators are consulted on every
// newly reached state to decide whether it is a (reliable) dead end;
// PreferredEvaluators' recommendations are unioned to mark entries
// preferred. A CostType's adjusted cost feeds g; RealG always uses the
// operator's own cost.
type EagerConfig struct {
	Task      *task.Task
	Registry  *registry.Registry
	Space     *searchspace.SearchSpace
	Generator *succgen.Generator
	Open      openlist.OpenList[registry.StateID]

	Evaluators          []evaluation.Evaluator
	KeyEvaluators       []evaluation.Evaluator
	PreferredEvaluators []evaluation.Evaluator

	CostType               CostType
	ReopenClosed           bool
	UseMultiPathDependence bool
	Bound                  int // exclusive upper bound on cost; <=0 means unbounded
	MaxTime                time.Duration
}

// EagerBestFirst drives eager best-first search (A*, weighted A*, greedy
// all being instances distinguished only by which evaluators feed the
// open list's key).
type EagerBestFirst struct {
	cfg         EagerConfig
	timer       *timer.Countdown
	stats       Statistics
	unitCost    bool
	boundPruned bool
	outcome     Outcome
	plan        []int
	cost        int
	err         error
}

// NewEagerBestFirst builds and initializes an eager search: it evaluates
// the initial state and either opens it or, if a reliable evaluator
// already proves the task unsolvable, resolves immediately.
func NewEagerBestFirst(cfg EagerConfig) *EagerBestFirst {
	e := &EagerBestFirst{
		cfg:      cfg,
		timer:    timer.New(cfg.MaxTime),
		unitCost: IsUnitCostTask(cfg.Task),
		outcome:  Running,
	}

	initID := cfg.Registry.InitialState()
	initNode := cfg.Space.GetNode(initID)
	ctx := evaluation.NewContext(cfg.Registry.Lookup(initID).Values(), 0, false)
	for _, ev := range cfg.Evaluators {
		if pa, ok := ev.(evaluation.PathAware); ok && ev.PathDependent() {
			pa.NotifyInitialState(ctx.State)
		}
	}
	e.stats.Evaluated++

	if infinite, reliable := e.evaluateAll(ctx); infinite && reliable {
		e.stats.DeadEnds++
		e.outcome = Unsolvable
		return e
	}

	initNode, _ = initNode.OpenInitial()
	cfg.Open.Insert(e.key(ctx), initID)
	return e
}

// evaluateAll runs every configured evaluator over ctx and combines their
// verdicts the way SumEvaluator/MaxEvaluator do: infinite if any is,
// reliable only if every infinite verdict came from a reliable evaluator.
func (e *EagerBestFirst) evaluateAll(ctx *evaluation.Context) (infinite, reliable bool) {
	reliable = true
	for _, ev := range e.cfg.Evaluators {
		r := ctx.Eval(ev)
		e.stats.Evaluations++
		if r.Infinite {
			infinite = true
			if !r.ReliableDeadEnd {
				reliable = false
			}
		}
	}
	return infinite, reliable
}

func (e *EagerBestFirst) key(ctx *evaluation.Context) []int {
	key := make([]int, len(e.cfg.KeyEvaluators))
	for i, ev := range e.cfg.KeyEvaluators {
		r := ctx.Eval(ev)
		if r.Infinite {
			key[i] = evaluation.Infinity
		} else {
			key[i] = r.Value
		}
	}
	return key
}

func (e *EagerBestFirst) preferredSet(ctx *evaluation.Context) map[task.OperatorID]bool {
	set := make(map[task.OperatorID]bool)
	for _, ev := range e.cfg.PreferredEvaluators {
		r := ctx.Eval(ev)
		for _, op := range r.Preferred {
			set[op] = true
		}
	}
	return set
}

func (e *EagerBestFirst) fetchNext() (registry.StateID, searchspace.Node, bool) {
	for {
		id, ok := e.cfg.Open.RemoveMin()
		if !ok {
			return 0, searchspace.Node{}, false
		}
		node := e.cfg.Space.GetNode(id)
		if node.IsClosed() || node.IsDeadEnd() {
			continue
		}
		if e.cfg.UseMultiPathDependence && node.HDirty() {
			state := e.cfg.Registry.Lookup(id).Values()
			ctx := evaluation.NewContext(state, node.G(), false)
			node = node.SetHDirty(false)
			e.cfg.Open.Insert(e.key(ctx), id)
			continue
		}
		return id, node, true
	}
}

// Step performs one expansion, returning true once the engine has
// terminated (Outcome != Running).
func (e *EagerBestFirst) Step() bool {
	if e.outcome != Running {
		return true
	}
	if e.timer.Expired() {
		e.outcome = TimedOut
		return true
	}

	id, node, ok := e.fetchNext()
	if !ok {
		if e.boundPruned {
			e.outcome = UnsolvedIncomplete
		} else {
			e.outcome = Unsolvable
		}
		return true
	}

	state := e.cfg.Registry.Lookup(id).Values()
	if task.GoalSatisfied(e.cfg.Task.Goal, state) {
		e.plan = e.cfg.Space.TracePlan(id)
		e.cost = node.G()
		e.outcome = Solved
		return true
	}

	node, _ = node.Close()
	e.stats.Expanded++

	var ops []task.OperatorID
	ops = e.cfg.Generator.Generate(state, ops)

	srcCtx := evaluation.NewContext(state, node.G(), false)
	preferred := e.preferredSet(srcCtx)

	for _, opID := range ops {
		op := &e.cfg.Task.Operators[opID]
		if e.cfg.Bound > 0 && node.RealG()+op.Cost >= e.cfg.Bound {
			e.boundPruned = true
			continue
		}

		childID, err := e.cfg.Registry.Successor(id, op)
		if err != nil {
			e.outcome = Critical
			e.err = err
			return true
		}
		e.notifyTransition(state, op, e.cfg.Registry.Lookup(childID).Values())

		childNode := e.cfg.Space.GetNode(childID)
		if childNode.IsDeadEnd() {
			continue
		}

		cost := AdjustedCost(op, e.cfg.CostType, e.unitCost)
		newG := node.G() + cost

		if childNode.IsNew() {
			e.stats.Generated++
			childState := e.cfg.Registry.Lookup(childID).Values()
			childCtx := evaluation.NewContext(childState, newG, preferred[opID])
			e.stats.Evaluated++
			if infinite, reliable := e.evaluateAll(childCtx); infinite && reliable {
				childNode.MarkDeadEnd()
				e.stats.DeadEnds++
				continue
			}
			childNode, _ = childNode.Open(node, int(opID), cost, op.Cost)
			e.cfg.Open.Insert(e.key(childCtx), childID)
			continue
		}

		if newG < childNode.G() {
			if childNode.IsClosed() {
				if e.cfg.ReopenClosed {
					childNode, _ = childNode.Reopen(node, int(opID), cost, op.Cost)
					e.stats.Reopened++
					childState := e.cfg.Registry.Lookup(childID).Values()
					childCtx := evaluation.NewContext(childState, newG, preferred[opID])
					e.cfg.Open.Insert(e.key(childCtx), childID)
				} else {
					childNode.UpdateParent(node, int(opID), cost, op.Cost)
				}
			} else {
				childNode.UpdateParent(node, int(opID), cost, op.Cost)
				childState := e.cfg.Registry.Lookup(childID).Values()
				childCtx := evaluation.NewContext(childState, newG, preferred[opID])
				e.cfg.Open.Insert(e.key(childCtx), childID)
			}
		}
	}

	return false
}

func (e *EagerBestFirst) notifyTransition(parent []int, op *task.Operator, child []int) {
	for _, ev := range e.cfg.Evaluators {
		if !ev.PathDependent() {
			continue
		}
		if pa, ok := ev.(evaluation.PathAware); ok {
			pa.NotifyTransition(parent, op, child)
		}
	}
}

// Stats returns the statistics accumulated so far, safe to poll between
// Step calls while driving the engine manually (e.g. to stream progress).
func (e *EagerBestFirst) Stats() Statistics { return e.stats }

// Outcome reports the engine's current terminal verdict, or Running if
// it has not yet terminated.
func (e *EagerBestFirst) Outcome() Outcome { return e.outcome }

// Result reports the engine's outcome so far, safe to call between Step
// calls while driving it manually: Plan/Cost are zero value until
// Outcome is Solved.
func (e *EagerBestFirst) Result() Result {
	return Result{Outcome: e.outcome, Plan: e.plan, Cost: e.cost, Stats: e.stats, Err: e.err}
}

// Run steps the engine to completion (Solved, Unsolvable,
// UnsolvedIncomplete, or TimedOut) and returns the final Result.
func (e *EagerBestFirst) Run() Result {
	start := time.Now()
	for !e.Step() {
	}
	e.stats.WallTime = time.Since(start)
	return Result{Outcome: e.outcome, Plan: e.plan, Cost: e.cost, Stats: e.stats, Err: e.err}
}
