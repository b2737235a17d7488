// Package progress streams live search statistics snapshots from a
// running engine to any number of subscribers (e.g. a websocket server),
// the same "push idempotent view-model updates" pattern a training
// visualizer uses to stream value-function snapshots to a browser.
package progress

import (
	"sync"
	"time"

	"github.com/sasplan/planner/internal/search"
)

// Snapshot is one point-in-time view of a running search, timestamped at
// publication.
type Snapshot struct {
	Stats     search.Statistics `json:"stats"`
	Outcome   string            `json:"outcome"`
	Published time.Time         `json:"published"`
}

// Stream fans a single sequence of Snapshot publications out to any
// number of subscribers, each on its own buffered channel so one slow
// reader can't block another or the publisher.
type Stream struct {
	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

// NewStream returns an empty Stream ready for Subscribe/Publish.
func NewStream() *Stream {
	return &Stream{subs: make(map[chan Snapshot]struct{})}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function the caller must call when done listening.
func (s *Stream) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Publish sends snap to every current subscriber. A subscriber whose
// buffer is full has the snapshot dropped rather than blocking the
// search loop that's publishing.
func (s *Stream) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Close unsubscribes and closes every subscriber channel; Publish after
// Close is a silent no-op.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		close(ch)
	}
	s.subs = make(map[chan Snapshot]struct{})
}
