package search

import "time"

// Engine is the common surface EagerBestFirst, LazyBestFirst, and
// EnforcedHillClimbing all satisfy, letting iterated search drive any of
// them as one phase.
type Engine interface {
	Step() bool
	Run() Result
}

// PhaseFactory builds the engine for one iterated-search phase. bound is
// the cost ceiling to apply (from IteratedConfig.PassBound), or <=0 for
// unbounded; factories that don't take a Bound field simply ignore it.
type PhaseFactory func(bound int) Engine

// IteratedConfig wires a sequence of search-engine phases run one after
// another. Each factory decides what its engine runs over; pkg/engine's
// factories share one registry across phases and give every phase a
// fresh search space.
type IteratedConfig struct {
	Phases []PhaseFactory

	// PassBound feeds the best plan cost found so far as the next phase's
	// bound, so a later phase can only ever find a strictly cheaper plan.
	PassBound bool
	// RepeatLast reruns the final phase's factory repeatedly (each time
	// with the latest bound, if PassBound) until MaxTime elapses or a
	// repeat fails to improve on the previous best.
	RepeatLast bool
	// ContinueOnFail runs the next phase even when a phase ends
	// unsolved; when false, the first unsolved phase ends the run.
	ContinueOnFail bool
	// ContinueOnSolve runs the next phase even after a phase finds a
	// plan; when false, the run stops at the first solution.
	ContinueOnSolve bool

	MaxTime time.Duration
}

// IteratedSearch runs IteratedConfig.Phases in order, keeping the best
// (lowest-cost) plan seen and aggregating statistics across phases.
type IteratedSearch struct {
	cfg         IteratedConfig
	deadline    time.Time
	hasDeadline bool

	best       Result
	haveResult bool
	stats      Statistics
	phaseIdx   int
}

// NewIteratedSearch prepares (but does not run) an iterated search over
// cfg's phase sequence.
func NewIteratedSearch(cfg IteratedConfig) *IteratedSearch {
	s := &IteratedSearch{cfg: cfg}
	if cfg.MaxTime > 0 {
		s.deadline = time.Now().Add(cfg.MaxTime)
		s.hasDeadline = true
	}
	s.best.Outcome = Unsolvable
	return s
}

func (s *IteratedSearch) timeUp() bool {
	return s.hasDeadline && !time.Now().Before(s.deadline)
}

func (s *IteratedSearch) bound() int {
	if !s.cfg.PassBound || !s.haveResult || s.best.Outcome != Solved {
		return 0
	}
	return s.best.Cost
}

// runPhase executes factory to completion, folding its statistics and,
// if its plan strictly improves on the best seen, its plan/cost too.
// improved reports whether the best plan changed.
func (s *IteratedSearch) runPhase(factory PhaseFactory) (r Result, improved bool) {
	engine := factory(s.bound())
	r = engine.Run()
	s.stats.Add(r.Stats)
	if r.Outcome == Solved && (!s.haveResult || s.best.Outcome != Solved || r.Cost < s.best.Cost) {
		s.best = r
		s.best.Stats = s.stats
		s.haveResult = true
		improved = true
	}
	return r, improved
}

// Run drives every configured phase to completion and returns the best
// plan found, with cumulative statistics across all phases run.
func (s *IteratedSearch) Run() Result {
	for i, factory := range s.cfg.Phases {
		s.phaseIdx = i
		if s.timeUp() {
			break
		}
		r, _ := s.runPhase(factory)
		if r.Outcome != Solved && !s.cfg.ContinueOnFail {
			break
		}
		if r.Outcome == Solved && !s.cfg.ContinueOnSolve {
			break
		}
	}

	if s.cfg.RepeatLast && len(s.cfg.Phases) > 0 {
		last := s.cfg.Phases[len(s.cfg.Phases)-1]
		for !s.timeUp() {
			_, improved := s.runPhase(last)
			if !improved {
				break
			}
		}
	}

	s.best.Stats = s.stats
	if !s.haveResult {
		if s.timeUp() {
			s.best.Outcome = TimedOut
		}
		return s.best
	}
	return s.best
}
