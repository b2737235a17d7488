package progress

import (
	"time"

	"github.com/sasplan/planner/internal/search"
)

// StatEngine is satisfied by every concrete search engine (EagerBestFirst,
// LazyBestFirst, EnforcedHillClimbing): it can be stepped one expansion at
// a time and polled for its running result in between steps.
type StatEngine interface {
	Step() bool
	Result() search.Result
}

// Drive steps eng to completion, publishing a Snapshot to stream at most
// once per interval, plus a final snapshot once the engine terminates.
// It returns the same Result a plain eng.Run() call would, letting a
// caller watch progress without giving up the final plan.
func Drive(eng StatEngine, stream *Stream, interval time.Duration) search.Result {
	start := time.Now()
	last := start
	for {
		done := eng.Step()
		now := time.Now()
		r := eng.Result()
		if done || now.Sub(last) >= interval {
			last = now
			stream.Publish(Snapshot{Stats: r.Stats, Outcome: r.Outcome.String(), Published: now})
		}
		if done {
			r.Stats.WallTime = now.Sub(start)
			return r
		}
	}
}
