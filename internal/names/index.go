// Package names maintains the bidirectional mapping between human-readable
// channel/user names and server IDs, plus the sorted name lists the UI
// renders and matches against.
package names

import (
	"sort"
	"strings"
)

// Sigils force a lookup into one namespace when they prefix free text.
const (
	ChannelSigil = '~'
	UserSigil    = '@'
)

// Match is a successful name resolution.
type Match struct {
	Name string
	ID   string
}

// Resolution holds at most one match per category. Names are unique within
// a category, so exact lookup can never produce more.
type Resolution struct {
	Channel *Match
	User    *Match
}

// Index is the name-resolution table. It is owned by the application state
// and only mutated from the event loop; it needs no locking.
type Index struct {
	channelNames []string
	userNames    []string
	channels     map[string]string
	users        map[string]string
}

func NewIndex() *Index {
	return &Index{
		channels: make(map[string]string),
		users:    make(map[string]string),
	}
}

// RebuildChannels replaces the channel table wholesale, as done on login or
// full refresh.
func (i *Index) RebuildChannels(byName map[string]string) {
	i.channels = make(map[string]string, len(byName))
	i.channelNames = i.channelNames[:0]
	for name, id := range byName {
		i.channels[name] = id
		i.channelNames = append(i.channelNames, name)
	}
	sort.Strings(i.channelNames)
}

// RebuildUsers replaces the user table wholesale.
func (i *Index) RebuildUsers(byName map[string]string) {
	i.users = make(map[string]string, len(byName))
	i.userNames = i.userNames[:0]
	for name, id := range byName {
		i.users[name] = id
		i.userNames = append(i.userNames, name)
	}
	sort.Strings(i.userNames)
}

// AddChannel inserts or overwrites a channel mapping, keeping the name list
// sorted. Re-inserting an existing name is idempotent apart from the ID
// superseding the previous one.
func (i *Index) AddChannel(name, id string) {
	if name == "" {
		return
	}
	if _, exists := i.channels[name]; !exists {
		i.channelNames = insertSorted(i.channelNames, name)
	}
	i.channels[name] = id
}

// AddUser inserts or overwrites a user mapping.
func (i *Index) AddUser(name, id string) {
	if name == "" {
		return
	}
	if _, exists := i.users[name]; !exists {
		i.userNames = insertSorted(i.userNames, name)
	}
	i.users[name] = id
}

// RemoveChannel drops a channel mapping and its name-list entry. Removing an
// unknown name is a no-op.
func (i *Index) RemoveChannel(name string) {
	if _, exists := i.channels[name]; !exists {
		return
	}
	delete(i.channels, name)
	i.channelNames = removeSorted(i.channelNames, name)
}

// RemoveUser drops a user mapping and its name-list entry.
func (i *Index) RemoveUser(name string) {
	if _, exists := i.users[name]; !exists {
		return
	}
	delete(i.users, name)
	i.userNames = removeSorted(i.userNames, name)
}

// Resolve looks up free text. A leading sigil restricts the search to one
// namespace; otherwise both are consulted. Lookups never fail; unmatched
// categories are simply nil.
func (i *Index) Resolve(text string) Resolution {
	var res Resolution
	if text == "" {
		return res
	}
	runes := []rune(text)
	switch runes[0] {
	case ChannelSigil:
		res.Channel = i.lookupChannel(string(runes[1:]))
	case UserSigil:
		res.User = i.lookupUser(string(runes[1:]))
	default:
		res.Channel = i.lookupChannel(text)
		res.User = i.lookupUser(text)
	}
	return res
}

func (i *Index) lookupChannel(name string) *Match {
	if id, ok := i.channels[name]; ok {
		return &Match{Name: name, ID: id}
	}
	return nil
}

func (i *Index) lookupUser(name string) *Match {
	if id, ok := i.users[name]; ok {
		return &Match{Name: name, ID: id}
	}
	return nil
}

// ChannelNames returns the sorted channel names. The slice is a copy.
func (i *Index) ChannelNames() []string {
	return cloneStrings(i.channelNames)
}

// UserNames returns the sorted user names. The slice is a copy.
func (i *Index) UserNames() []string {
	return cloneStrings(i.userNames)
}

// ChannelID reports the ID mapped to a channel name.
func (i *Index) ChannelID(name string) (string, bool) {
	id, ok := i.channels[name]
	return id, ok
}

// UserID reports the ID mapped to a username.
func (i *Index) UserID(name string) (string, bool) {
	id, ok := i.users[name]
	return id, ok
}

// StripSigil removes a leading namespace sigil, if any.
func StripSigil(text string) string {
	runes := []rune(text)
	if len(runes) > 0 && (runes[0] == ChannelSigil || runes[0] == UserSigil) {
		return string(runes[1:])
	}
	return text
}

// HasChannelSigil reports whether text is forced into the channel namespace.
func HasChannelSigil(text string) bool {
	return strings.HasPrefix(text, string(ChannelSigil))
}

// HasUserSigil reports whether text is forced into the user namespace.
func HasUserSigil(text string) bool {
	return strings.HasPrefix(text, string(UserSigil))
}

func insertSorted(list []string, name string) []string {
	idx := sort.SearchStrings(list, name)
	list = append(list, "")
	copy(list[idx+1:], list[idx:])
	list[idx] = name
	return list
}

func removeSorted(list []string, name string) []string {
	idx := sort.SearchStrings(list, name)
	if idx >= len(list) || list[idx] != name {
		return list
	}
	return append(list[:idx], list[idx+1:]...)
}

func cloneStrings(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	dup := make([]string, len(list))
	copy(dup, list)
	return dup
}
