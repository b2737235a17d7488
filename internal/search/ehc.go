package search

import (
	"time"

	"github.com/sasplan/planner/internal/evaluation"
	"github.com/sasplan/planner/internal/registry"
	"github.com/sasplan/planner/internal/searchspace"
	"github.com/sasplan/planner/internal/succgen"
	"github.com/sasplan/planner/internal/timer"
	"github.com/sasplan/planner/pkg/task"
)

// PreferredMode controls how enforced hill-climbing's plateau probe uses
// preferred-operator recommendations.
type PreferredMode int

const (
	// PreferredNone explores successors in generator order.
	PreferredNone PreferredMode = iota
	// PreferredOrder explores preferred operators first, then the rest.
	PreferredOrder
	// PreferredRestrict explores only preferred operators (falling back
	// to generator order when none are recommended).
	PreferredRestrict
)

// EHCConfig wires one enforced hill-climbing run.
type EHCConfig struct {
	Task      *task.Task
	Registry  *registry.Registry
	Space     *searchspace.SearchSpace
	Generator *succgen.Generator

	HEvaluator          evaluation.Evaluator
	PreferredEvaluators []evaluation.Evaluator
	PreferredMode       PreferredMode

	CostType CostType
	Bound    int
	MaxTime  time.Duration
}

// EnforcedHillClimbing drives a greedy local search that, on reaching a
// plateau (no immediate successor improves h), performs a breadth-first
// probe outward until a strictly better state is found.
type EnforcedHillClimbing struct {
	cfg         EHCConfig
	timer       *timer.Countdown
	stats       Statistics
	unitCost    bool
	boundPruned bool
	outcome     Outcome
	plan        []int
	cost        int
	err         error

	currentID registry.StateID
	currentH  int
	phases    int
}

// NewEnforcedHillClimbing seeds the probe at the task's initial state.
func NewEnforcedHillClimbing(cfg EHCConfig) *EnforcedHillClimbing {
	e := &EnforcedHillClimbing{cfg: cfg, timer: timer.New(cfg.MaxTime), unitCost: IsUnitCostTask(cfg.Task), outcome: Running}
	initID := cfg.Registry.InitialState()
	initNode := cfg.Space.GetNode(initID)
	state := cfg.Registry.Lookup(initID).Values()
	ctx := evaluation.NewContext(state, 0, false)
	r := ctx.Eval(cfg.HEvaluator)
	e.stats.Evaluated++
	e.stats.Evaluations++
	if r.Infinite && r.ReliableDeadEnd {
		e.stats.DeadEnds++
		e.outcome = Unsolvable
		return e
	}
	initNode, _ = initNode.OpenInitial()
	_ = initNode
	e.currentID = initID
	if r.Infinite {
		e.currentH = evaluation.Infinity
	} else {
		e.currentH = r.Value
	}
	return e
}

func (e *EnforcedHillClimbing) preferredOps(state []int, g int, ops []task.OperatorID) []task.OperatorID {
	if e.cfg.PreferredMode == PreferredNone || len(e.cfg.PreferredEvaluators) == 0 {
		return ops
	}
	ctx := evaluation.NewContext(state, g, false)
	preferred := make(map[task.OperatorID]bool)
	for _, ev := range e.cfg.PreferredEvaluators {
		for _, op := range ctx.Eval(ev).Preferred {
			preferred[op] = true
		}
	}
	var first, rest []task.OperatorID
	for _, op := range ops {
		if preferred[op] {
			first = append(first, op)
		} else {
			rest = append(rest, op)
		}
	}
	if e.cfg.PreferredMode == PreferredRestrict {
		if len(first) > 0 {
			return first
		}
		return ops
	}
	return append(first, rest...)
}

// Step runs one BFS plateau probe: it either finds a strictly better
// state (becoming the new current) or exhausts the probe and fails.
func (e *EnforcedHillClimbing) Step() bool {
	if e.outcome != Running {
		return true
	}
	if e.timer.Expired() {
		e.outcome = TimedOut
		return true
	}

	startState := e.cfg.Registry.Lookup(e.currentID).Values()
	if task.GoalSatisfied(e.cfg.Task.Goal, startState) {
		e.plan = e.cfg.Space.TracePlan(e.currentID)
		e.cost = e.cfg.Space.GetNode(e.currentID).G()
		e.outcome = Solved
		return true
	}

	visited := map[registry.StateID]bool{e.currentID: true}
	queue := []registry.StateID{e.currentID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node := e.cfg.Space.GetNode(id)
		state := e.cfg.Registry.Lookup(id).Values()
		var ops []task.OperatorID
		ops = e.cfg.Generator.Generate(state, ops)
		ops = e.preferredOps(state, node.G(), ops)
		e.stats.Expanded++

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
			if visited[childID] {
				continue
			}
			visited[childID] = true

			childNode := e.cfg.Space.GetNode(childID)
			if childNode.IsDeadEnd() {
				continue
			}
			cost := AdjustedCost(op, e.cfg.CostType, e.unitCost)
			if !childNode.IsNew() {
				continue
			}

			childState := e.cfg.Registry.Lookup(childID).Values()
			g := node.G() + cost
			ctx := evaluation.NewContext(childState, g, false)
			r := ctx.Eval(e.cfg.HEvaluator)
			e.stats.Evaluated++
			e.stats.Evaluations++
			if r.Infinite && r.ReliableDeadEnd {
				childNode.MarkDeadEnd()
				e.stats.DeadEnds++
				continue
			}
			childNode, _ = childNode.Open(node, int(opID), cost, op.Cost)
			e.stats.Generated++

			if !r.Infinite && r.Value < e.currentH {
				e.currentID = childID
				e.currentH = r.Value
				e.phases++
				return false
			}
			queue = append(queue, childID)
		}
	}

	if e.boundPruned {
		e.outcome = UnsolvedIncomplete
	} else {
		e.outcome = Unsolvable
	}
	return true
}

// Stats returns the statistics accumulated so far, safe to poll between
// Step calls while driving the engine manually (e.g. to stream progress).
func (e *EnforcedHillClimbing) Stats() Statistics { return e.stats }

// Outcome reports the engine's current terminal verdict, or Running if
// it has not yet terminated.
func (e *EnforcedHillClimbing) Outcome() Outcome { return e.outcome }

// Result reports the engine's outcome so far, safe to call between Step
// calls while driving it manually: Plan/Cost are zero value until
// Outcome is Solved.
func (e *EnforcedHillClimbing) Result() Result {
	return Result{Outcome: e.outcome, Plan: e.plan, Cost: e.cost, Stats: e.stats, Err: e.err}
}

// Run steps the engine to completion and returns the final Result.
func (e *EnforcedHillClimbing) Run() Result {
	start := time.Now()
	for !e.Step() {
	}
	e.stats.WallTime = time.Since(start)
	return Result{Outcome: e.outcome, Plan: e.plan, Cost: e.cost, Stats: e.stats, Err: e.err}
}
