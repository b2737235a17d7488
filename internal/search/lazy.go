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

// noOperator marks a LazyEntry whose state is the initial state itself,
// reached by no operator.
const noOperator = task.OperatorID(-1)

// LazyEntry is a queued (predecessor, operator) edge: the successor state
// is not computed, registered, or evaluated until this entry is popped.
type LazyEntry struct {
	predecessor registry.StateID
	op          task.OperatorID
}

// LazyConfig mirrors EagerConfig, but Open queues edges instead of
// committed states: that's what makes this search lazy rather than eager.
type LazyConfig struct {
	Task      *task.Task
	Registry  *registry.Registry
	Space     *searchspace.SearchSpace
	Generator *succgen.Generator
	Open      openlist.OpenList[LazyEntry]

	Evaluators          []evaluation.Evaluator
	KeyEvaluators       []evaluation.Evaluator
	PreferredEvaluators []evaluation.Evaluator

	CostType     CostType
	ReopenClosed bool
	Bound        int
	MaxTime      time.Duration
}

// LazyBestFirst drives lazy best-first search: entries are queued using
// the predecessor's evaluation (cheap, approximate), and the successor is
// only materialized, registered, and properly evaluated when its entry is
// popped.
type LazyBestFirst struct {
	cfg         LazyConfig
	timer       *timer.Countdown
	stats       Statistics
	unitCost    bool
	boundPruned bool
	outcome     Outcome
	plan        []int
	cost        int
	err         error
}

// NewLazyBestFirst seeds the open list with the initial state's own entry
// (predecessor = initial state, op = noOperator) and returns an engine
// ready to Step/Run.
func NewLazyBestFirst(cfg LazyConfig) *LazyBestFirst {
	l := &LazyBestFirst{cfg: cfg, timer: timer.New(cfg.MaxTime), unitCost: IsUnitCostTask(cfg.Task), outcome: Running}
	initID := cfg.Registry.InitialState()
	ctx := evaluation.NewContext(cfg.Registry.Lookup(initID).Values(), 0, false)
	key := l.key(ctx)
	cfg.Open.Insert(key, LazyEntry{predecessor: initID, op: noOperator})
	return l
}

func (l *LazyBestFirst) evaluateAll(ctx *evaluation.Context) (infinite, reliable bool) {
	reliable = true
	for _, ev := range l.cfg.Evaluators {
		r := ctx.Eval(ev)
		l.stats.Evaluations++
		if r.Infinite {
			infinite = true
			if !r.ReliableDeadEnd {
				reliable = false
			}
		}
	}
	return infinite, reliable
}

func (l *LazyBestFirst) key(ctx *evaluation.Context) []int {
	key := make([]int, len(l.cfg.KeyEvaluators))
	for i, ev := range l.cfg.KeyEvaluators {
		r := ctx.Eval(ev)
		if r.Infinite {
			key[i] = evaluation.Infinity
		} else {
			key[i] = r.Value
		}
	}
	return key
}

func (l *LazyBestFirst) preferredSet(ctx *evaluation.Context) map[task.OperatorID]bool {
	set := make(map[task.OperatorID]bool)
	for _, ev := range l.cfg.PreferredEvaluators {
		r := ctx.Eval(ev)
		for _, op := range r.Preferred {
			set[op] = true
		}
	}
	return set
}

// resolve materializes the state an entry refers to, opening it (and
// evaluating it for the first time) if it is new. ok is false when the
// entry turned out to be a duplicate of an already closed or dead-end
// state and should simply be discarded.
func (l *LazyBestFirst) resolve(e LazyEntry) (registry.StateID, searchspace.Node, bool) {
	var stateID registry.StateID
	var predNode searchspace.Node
	var cost, opCost int

	if e.op == noOperator {
		stateID = e.predecessor
	} else {
		predNode = l.cfg.Space.GetNode(e.predecessor)
		op := &l.cfg.Task.Operators[e.op]
		var err error
		stateID, err = l.cfg.Registry.Successor(e.predecessor, op)
		if err != nil {
			l.outcome = Critical
			l.err = err
			return 0, searchspace.Node{}, false
		}
		cost = AdjustedCost(op, l.cfg.CostType, l.unitCost)
		opCost = op.Cost
	}

	node := l.cfg.Space.GetNode(stateID)
	if node.IsClosed() || node.IsDeadEnd() {
		return 0, searchspace.Node{}, false
	}
	if node.IsOpen() {
		return stateID, node, true
	}

	// NEW: materialize, evaluate for the first time, and open it now.
	state := l.cfg.Registry.Lookup(stateID).Values()
	g := 0
	if e.op != noOperator {
		g = predNode.G() + cost
	}
	l.stats.Evaluated++
	preferred := false
	ctx := evaluation.NewContext(state, g, preferred)
	if infinite, reliable := l.evaluateAll(ctx); infinite && reliable {
		node.MarkDeadEnd()
		l.stats.DeadEnds++
		return 0, searchspace.Node{}, false
	}
	if e.op == noOperator {
		node, _ = node.OpenInitial()
	} else {
		node, _ = node.Open(predNode, int(e.op), cost, opCost)
	}
	l.stats.Generated++
	return stateID, node, true
}

// Step performs one pop-resolve-expand cycle, returning true once the
// engine has terminated.
func (l *LazyBestFirst) Step() bool {
	if l.outcome != Running {
		return true
	}
	if l.timer.Expired() {
		l.outcome = TimedOut
		return true
	}

	var id registry.StateID
	var node searchspace.Node
	for {
		entry, ok := l.cfg.Open.RemoveMin()
		if !ok {
			if l.outcome == Critical {
				return true
			}
			if l.boundPruned {
				l.outcome = UnsolvedIncomplete
			} else {
				l.outcome = Unsolvable
			}
			return true
		}
		var resolved bool
		id, node, resolved = l.resolve(entry)
		if l.outcome == Critical {
			return true
		}
		if resolved {
			break
		}
	}

	state := l.cfg.Registry.Lookup(id).Values()
	if task.GoalSatisfied(l.cfg.Task.Goal, state) {
		l.plan = l.cfg.Space.TracePlan(id)
		l.cost = node.G()
		l.outcome = Solved
		return true
	}

	node, _ = node.Close()
	l.stats.Expanded++

	var ops []task.OperatorID
	ops = l.cfg.Generator.Generate(state, ops)
	preferred := l.preferredSet(evaluation.NewContext(state, node.G(), false))

	for _, opID := range ops {
		op := &l.cfg.Task.Operators[opID]
		if l.cfg.Bound > 0 && node.RealG()+op.Cost >= l.cfg.Bound {
			l.boundPruned = true
			continue
		}
		// A fresh context per op (rather than one shared srcCtx) so
		// preferred[opID] actually reaches any PrefEvaluator in
		// KeyEvaluators: the parent state/g are unchanged, only the
		// preferred flag differs per successor edge.
		opCtx := evaluation.NewContext(state, node.G(), preferred[opID])
		l.cfg.Open.Insert(l.key(opCtx), LazyEntry{predecessor: id, op: opID})
	}

	return false
}

// Stats returns the statistics accumulated so far, safe to poll between
// Step calls while driving the engine manually (e.g. to stream progress).
func (l *LazyBestFirst) Stats() Statistics { return l.stats }

// Outcome reports the engine's current terminal verdict, or Running if
// it has not yet terminated.
func (l *LazyBestFirst) Outcome() Outcome { return l.outcome }

// Result reports the engine's outcome so far, safe to call between Step
// calls while driving it manually: Plan/Cost are zero value until
// Outcome is Solved.
func (l *LazyBestFirst) Result() Result {
	return Result{Outcome: l.outcome, Plan: l.plan, Cost: l.cost, Stats: l.stats, Err: l.err}
}

// Run steps the engine to completion and returns the final Result.
func (l *LazyBestFirst) Run() Result {
	start := time.Now()
	for !l.Step() {
	}
	l.stats.WallTime = time.Since(start)
	return Result{Outcome: l.outcome, Plan: l.plan, Cost: l.cost, Stats: l.stats, Err: l.err}
}
