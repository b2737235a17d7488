package progress

import (
	"testing"
	"time"

	"github.com/sasplan/planner/internal/search"
)

func TestSubscribeReceivesPublishedSnapshot(t *testing.T) {
	s := NewStream()
	sub, unsubscribe := s.Subscribe()
	defer unsubscribe()

	want := Snapshot{Stats: search.Statistics{Expanded: 3}, Outcome: "solved"}
	s.Publish(want)

	select {
	case got := <-sub:
		if got.Stats.Expanded != 3 || got.Outcome != "solved" {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published snapshot")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	s := NewStream()
	sub, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for i := 0; i < 100; i++ {
		s.Publish(Snapshot{Stats: search.Statistics{Expanded: i}})
	}
	if len(sub) == 0 {
		t.Fatal("expected at least one snapshot buffered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := NewStream()
	sub, unsubscribe := s.Subscribe()
	unsubscribe()

	_, ok := <-sub
	if ok {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestCloseClosesAllSubscribers(t *testing.T) {
	s := NewStream()
	sub1, _ := s.Subscribe()
	sub2, _ := s.Subscribe()
	s.Close()

	for _, ch := range []<-chan Snapshot{sub1, sub2} {
		if _, ok := <-ch; ok {
			t.Fatal("expected channel to be closed after Close")
		}
	}
}

type fakeEngine struct {
	steps int
	max   int
}

func (f *fakeEngine) Step() bool {
	f.steps++
	return f.steps >= f.max
}

func (f *fakeEngine) Result() search.Result {
	outcome := search.Running
	if f.steps >= f.max {
		outcome = search.Solved
	}
	return search.Result{Outcome: outcome, Stats: search.Statistics{Expanded: f.steps}}
}

func TestDriveReturnsFinalResultAndPublishesAtLeastOnce(t *testing.T) {
	s := NewStream()
	sub, unsubscribe := s.Subscribe()
	defer unsubscribe()

	eng := &fakeEngine{max: 5}
	result := Drive(eng, s, time.Nanosecond)

	if result.Outcome != search.Solved {
		t.Fatalf("outcome = %v, want Solved", result.Outcome)
	}
	if result.Stats.Expanded != 5 {
		t.Fatalf("expanded = %d, want 5", result.Stats.Expanded)
	}
	select {
	case <-sub:
	default:
		t.Fatal("expected at least one snapshot published during Drive")
	}
}
