package ui

import (
	"testing"

	"github.com/10jschen/matterhorn/internal/names"
)

func testIndex() *names.Index {
	idx := names.NewIndex()
	idx.AddChannel("general", "ch-general")
	idx.AddChannel("engineering", "ch-eng")
	idx.AddChannel("random", "ch-random")
	idx.AddUser("andy", "u-andy")
	idx.AddUser("diane", "u-diane")
	return idx
}

func TestComputeMatchesRanksPrefixFirst(t *testing.T) {
	set := computeMatches(testIndex(), "gen")
	if len(set.Channels) != 1 {
		t.Fatalf("expected 1 channel match, got %d", len(set.Channels))
	}
	if set.Channels[0].Name != "general" || set.Channels[0].Kind != MatchPrefix {
		t.Fatalf("expected prefix match on general, got %+v", set.Channels[0])
	}
	if len(set.Users) != 0 {
		t.Fatalf("expected no user matches, got %d", len(set.Users))
	}
}

func TestComputeMatchesInfixSpansCategories(t *testing.T) {
	set := computeMatches(testIndex(), "an")
	// "random" contains "an"; "andy" starts with it; "diane" contains it.
	if len(set.Channels) != 1 || set.Channels[0].Name != "random" {
		t.Fatalf("expected random as channel match, got %+v", set.Channels)
	}
	if len(set.Users) != 2 {
		t.Fatalf("expected 2 user matches, got %+v", set.Users)
	}
	if set.Users[0].Name != "andy" || set.Users[0].Kind != MatchPrefix {
		t.Fatalf("expected andy ranked first as prefix, got %+v", set.Users[0])
	}
	if set.Users[1].Name != "diane" || set.Users[1].Kind != MatchInfix {
		t.Fatalf("expected diane ranked second as infix, got %+v", set.Users[1])
	}
}

func TestComputeMatchesSigilRestrictsNamespace(t *testing.T) {
	set := computeMatches(testIndex(), "@an")
	if len(set.Channels) != 0 {
		t.Fatalf("user sigil must exclude channels, got %+v", set.Channels)
	}
	if len(set.Users) != 2 {
		t.Fatalf("expected 2 user matches, got %+v", set.Users)
	}
	set = computeMatches(testIndex(), "~an")
	if len(set.Users) != 0 {
		t.Fatalf("channel sigil must exclude users, got %+v", set.Users)
	}
}

func TestCommitTargetSoleCandidate(t *testing.T) {
	set := computeMatches(testIndex(), "gen")
	match, isChannel, ok := commitTarget(set, "gen")
	if !ok || !isChannel {
		t.Fatalf("expected channel commit, got ok=%v isChannel=%v", ok, isChannel)
	}
	if match.ID != "ch-general" {
		t.Fatalf("expected ch-general, got %s", match.ID)
	}
}

func TestCommitTargetAmbiguousIsNoop(t *testing.T) {
	set := computeMatches(testIndex(), "an")
	if _, _, ok := commitTarget(set, "an"); ok {
		t.Fatalf("ambiguous input must not commit")
	}
}

func TestCommitTargetExactMatchAmongSeveral(t *testing.T) {
	idx := testIndex()
	idx.AddUser("gen", "u-gen")
	// "gen" now matches the channel "general" by prefix and the user "gen"
	// exactly; the exact match wins.
	set := computeMatches(idx, "gen")
	if set.Total() < 2 {
		t.Fatalf("expected several matches, got %d", set.Total())
	}
	match, isChannel, ok := commitTarget(set, "gen")
	if !ok || isChannel {
		t.Fatalf("expected user commit, got ok=%v isChannel=%v", ok, isChannel)
	}
	if match.ID != "u-gen" {
		t.Fatalf("expected u-gen, got %s", match.ID)
	}
}
