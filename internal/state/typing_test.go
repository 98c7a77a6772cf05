package state

import (
	"testing"
	"time"
)

func TestTypingSetExpiry(t *testing.T) {
	ts := NewTypingSet()
	now := baseTime
	ts.Note("c1", "u1", now)
	ts.Note("c1", "u2", now.Add(4*time.Second))

	active := ts.Active("c1", now.Add(6*time.Second))
	if len(active) != 1 || active[0] != "u2" {
		t.Fatalf("expected only u2 active, got %v", active)
	}
}

func TestTypingSetClearOnMessage(t *testing.T) {
	ts := NewTypingSet()
	ts.Note("c1", "u1", baseTime)
	ts.Clear("c1", "u1")
	if active := ts.Active("c1", baseTime); len(active) != 0 {
		t.Fatalf("expected cleared set, got %v", active)
	}
}

func TestTypingSetSortedStable(t *testing.T) {
	ts := NewTypingSet()
	ts.Note("c1", "zed", baseTime)
	ts.Note("c1", "amy", baseTime)

	active := ts.Active("c1", baseTime)
	if len(active) != 2 || active[0] != "amy" || active[1] != "zed" {
		t.Fatalf("expected sorted IDs, got %v", active)
	}
}

func TestTypingSetChannelScoped(t *testing.T) {
	ts := NewTypingSet()
	ts.Note("c1", "u1", baseTime)
	if active := ts.Active("c2", baseTime); len(active) != 0 {
		t.Fatalf("expected no typers in other channel, got %v", active)
	}
}
