package timer

import (
	"testing"
	"time"
)

func TestUnboundedNeverExpires(t *testing.T) {
	c := New(0)
	time.Sleep(2 * time.Millisecond)
	if c.Expired() {
		t.Fatalf("unbounded countdown reported expired")
	}
	if c.Remaining() != -1 {
		t.Fatalf("Remaining() = %v, want -1 for unbounded", c.Remaining())
	}
}

func TestBoundedExpiresAfterDuration(t *testing.T) {
	c := New(5 * time.Millisecond)
	if c.Expired() {
		t.Fatalf("expired immediately after starting")
	}
	time.Sleep(10 * time.Millisecond)
	if !c.Expired() {
		t.Fatalf("expected countdown to have expired")
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %v, want 0 once expired", c.Remaining())
	}
}
