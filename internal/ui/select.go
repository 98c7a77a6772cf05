package ui

import (
	"sort"
	"strings"

	"github.com/10jschen/matterhorn/internal/names"
)

// MatchKind ranks how a candidate name matched the typed input. Lower is
// better: a prefix match beats an infix match beats a suffix match.
type MatchKind int

const (
	MatchPrefix MatchKind = iota
	MatchInfix
	MatchSuffix
)

// Match is one ranked candidate in the channel-select mode.
type Match struct {
	Name string
	ID   string
	Kind MatchKind
}

// MatchSet holds at most one ranked list per category.
type MatchSet struct {
	Channels []Match
	Users    []Match
}

// Total counts candidates across both categories.
func (s MatchSet) Total() int {
	return len(s.Channels) + len(s.Users)
}

// classifyMatch scores a candidate name against input, case-insensitively.
func classifyMatch(name, input string) (MatchKind, bool) {
	ln := strings.ToLower(name)
	li := strings.ToLower(input)
	switch {
	case strings.HasPrefix(ln, li):
		return MatchPrefix, true
	case strings.HasSuffix(ln, li):
		return MatchSuffix, true
	case strings.Contains(ln, li):
		return MatchInfix, true
	default:
		return 0, false
	}
}

// computeMatches recomputes the match set for the current input. A leading
// sigil restricts matching to one namespace.
func computeMatches(idx *names.Index, input string) MatchSet {
	var set MatchSet
	query := strings.TrimSpace(names.StripSigil(input))
	if query == "" {
		return set
	}
	if !names.HasUserSigil(input) {
		set.Channels = rankNames(idx.ChannelNames(), query, func(name string) (string, bool) {
			return idx.ChannelID(name)
		})
	}
	if !names.HasChannelSigil(input) {
		set.Users = rankNames(idx.UserNames(), query, func(name string) (string, bool) {
			return idx.UserID(name)
		})
	}
	return set
}

func rankNames(candidates []string, query string, lookup func(string) (string, bool)) []Match {
	var matches []Match
	for _, name := range candidates {
		kind, ok := classifyMatch(name, query)
		if !ok {
			continue
		}
		id, ok := lookup(name)
		if !ok {
			continue
		}
		matches = append(matches, Match{Name: name, ID: id, Kind: kind})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Kind != matches[j].Kind {
			return matches[i].Kind < matches[j].Kind
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// commitTarget decides what Enter selects: the sole candidate across both
// categories, or the sole exact-name match among several substring matches.
// Anything else is ambiguous and Enter is a no-op. The second return
// distinguishes the category (true for channel).
func commitTarget(set MatchSet, input string) (Match, bool, bool) {
	if set.Total() == 1 {
		if len(set.Channels) == 1 {
			return set.Channels[0], true, true
		}
		return set.Users[0], false, true
	}
	query := strings.TrimSpace(names.StripSigil(input))
	var exact []Match
	var exactChannel []bool
	for _, m := range set.Channels {
		if strings.EqualFold(m.Name, query) {
			exact = append(exact, m)
			exactChannel = append(exactChannel, true)
		}
	}
	for _, m := range set.Users {
		if strings.EqualFold(m.Name, query) {
			exact = append(exact, m)
			exactChannel = append(exactChannel, false)
		}
	}
	if len(exact) == 1 {
		return exact[0], exactChannel[0], true
	}
	return Match{}, false, false
}
