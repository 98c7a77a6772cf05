// Package state owns the mutable application state. The UI event loop is
// the single writer and performs every mutation through the accessor
// methods here. The one exception is TypingSet, which carries its own lock
// because timers feed it too.
package state

import (
	"sort"
	"strings"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/names"
)

// AppState aggregates everything the client knows: session, name index,
// channels, users, the post-to-channel index, input history, and the typing
// set. Derived views (unread, sorted user lists, highlight sets) are
// recomputed from these authoritative maps and never stored separately.
type AppState struct {
	Session chat.Session

	nameIndex *names.Index
	channels  map[chat.ChannelID]*Channel
	order     []chat.ChannelID
	focus     int

	users     map[chat.UserID]*User
	postIndex map[chat.PostID]chat.ChannelID

	History *History
	Typing  *TypingSet

	// Joinable is the most recent fetch of channels the user could join,
	// backing the join-channel mode.
	Joinable []chat.Channel

	// Timezone is the local zone name, kept current by a poller.
	Timezone string
}

func NewAppState(session chat.Session) *AppState {
	return &AppState{
		Session:   session,
		nameIndex: names.NewIndex(),
		channels:  make(map[chat.ChannelID]*Channel),
		users:     make(map[chat.UserID]*User),
		postIndex: make(map[chat.PostID]chat.ChannelID),
		History:   NewHistory(),
		Typing:    NewTypingSet(),
	}
}

// Names exposes the name-resolution index.
func (st *AppState) Names() *names.Index {
	return st.nameIndex
}

// --- channels ---

// SetChannels replaces the channel set from a full fetch. Channels seen for
// the first time are created Unloaded; already-loaded contents survive;
// channels absent from the fetch are pruned. The name index is rebuilt
// wholesale.
func (st *AppState) SetChannels(channels []chat.Channel, members []chat.ChannelMember) {
	viewed := make(map[chat.ChannelID]time.Time, len(members))
	for _, m := range members {
		viewed[m.ChannelID] = m.LastViewedAt
	}
	seen := make(map[chat.ChannelID]struct{}, len(channels))
	for _, ch := range channels {
		seen[ch.ID] = struct{}{}
		existing, ok := st.channels[ch.ID]
		if !ok {
			existing = NewChannel(ch)
			st.channels[ch.ID] = existing
		} else {
			existing.Info.Header = ch.Header
			if ch.LastPostAt.After(existing.Info.LastUpdated) {
				existing.Info.LastUpdated = ch.LastPostAt
			}
		}
		if ch.Type == chat.ChannelDirect {
			existing.Info.DMUser = dmCounterpart(ch.Name, st.Session.UserID)
		}
		if at, ok := viewed[ch.ID]; ok && at.After(existing.Info.LastViewed) {
			existing.Info.LastViewed = at
			if existing.NewCutoff.Before(at) {
				existing.NewCutoff = at
			}
		}
	}
	for id, ch := range st.channels {
		if _, ok := seen[id]; !ok {
			st.dropChannel(id, ch)
		}
	}
	st.rebuildOrder()
	st.rebuildChannelNames()
}

// AddChannel ingests a single channel discovered after the initial load
// (invite, direct-added, join).
func (st *AppState) AddChannel(ch chat.Channel) *Channel {
	existing, ok := st.channels[ch.ID]
	if !ok {
		existing = NewChannel(ch)
		st.channels[ch.ID] = existing
	}
	if ch.Type == chat.ChannelDirect {
		existing.Info.DMUser = dmCounterpart(ch.Name, st.Session.UserID)
	}
	if ch.Type != chat.ChannelDirect && ch.Type != chat.ChannelGroup {
		st.nameIndex.AddChannel(existing.Info.Name, string(ch.ID))
	}
	st.rebuildOrder()
	return existing
}

// RemoveChannel drops a channel on deletion or removal-from-channel.
func (st *AppState) RemoveChannel(id chat.ChannelID) bool {
	ch, ok := st.channels[id]
	if !ok {
		return false
	}
	st.dropChannel(id, ch)
	st.rebuildOrder()
	return true
}

func (st *AppState) dropChannel(id chat.ChannelID, ch *Channel) {
	for _, post := range ch.Posts {
		delete(st.postIndex, post.ID)
	}
	if ch.Info.Type != chat.ChannelDirect && ch.Info.Type != chat.ChannelGroup {
		st.nameIndex.RemoveChannel(ch.Info.Name)
	}
	delete(st.channels, id)
}

// Channel looks up channel state by ID.
func (st *AppState) Channel(id chat.ChannelID) (*Channel, bool) {
	ch, ok := st.channels[id]
	return ch, ok
}

// ChannelByName resolves a channel by its indexed name.
func (st *AppState) ChannelByName(name string) (*Channel, bool) {
	id, ok := st.nameIndex.ChannelID(name)
	if !ok {
		return nil, false
	}
	return st.Channel(chat.ChannelID(id))
}

// ChannelIDs returns the ordered channel list.
func (st *AppState) ChannelIDs() []chat.ChannelID {
	dup := make([]chat.ChannelID, len(st.order))
	copy(dup, st.order)
	return dup
}

// FocusedChannel returns the channel under the focus pointer.
func (st *AppState) FocusedChannel() (*Channel, bool) {
	if st.focus < 0 || st.focus >= len(st.order) {
		return nil, false
	}
	return st.Channel(st.order[st.focus])
}

// Focus moves the focus pointer to the given channel.
func (st *AppState) Focus(id chat.ChannelID) bool {
	for i, candidate := range st.order {
		if candidate == id {
			st.focus = i
			return true
		}
	}
	return false
}

// FocusNext advances the focus pointer, wrapping at the end.
func (st *AppState) FocusNext() {
	if len(st.order) == 0 {
		return
	}
	st.focus = (st.focus + 1) % len(st.order)
}

// FocusPrev moves the focus pointer backwards, wrapping at the start.
func (st *AppState) FocusPrev() {
	if len(st.order) == 0 {
		return
	}
	st.focus = (st.focus - 1 + len(st.order)) % len(st.order)
}

// rebuildOrder recomputes the ordered channel list: open and private
// channels alphabetically, then group and direct channels alphabetically by
// display name. The focus pointer follows its channel when possible.
func (st *AppState) rebuildOrder() {
	var focused chat.ChannelID
	if st.focus >= 0 && st.focus < len(st.order) {
		focused = st.order[st.focus]
	}
	st.order = st.order[:0]
	for id := range st.channels {
		st.order = append(st.order, id)
	}
	sort.Slice(st.order, func(i, j int) bool {
		a, b := st.channels[st.order[i]], st.channels[st.order[j]]
		aDM := a.Info.Type == chat.ChannelDirect || a.Info.Type == chat.ChannelGroup
		bDM := b.Info.Type == chat.ChannelDirect || b.Info.Type == chat.ChannelGroup
		if aDM != bDM {
			return !aDM
		}
		an, bn := st.channelLabel(a), st.channelLabel(b)
		if an != bn {
			return an < bn
		}
		return a.Info.ID < b.Info.ID
	})
	st.focus = 0
	if focused != "" {
		st.Focus(focused)
	}
}

func (st *AppState) rebuildChannelNames() {
	byName := make(map[string]string, len(st.channels))
	for id, ch := range st.channels {
		if ch.Info.Type == chat.ChannelDirect || ch.Info.Type == chat.ChannelGroup {
			continue
		}
		byName[ch.Info.Name] = string(id)
	}
	st.nameIndex.RebuildChannels(byName)
}

// channelLabel is the name shown in the channel list; direct channels show
// the counterpart's username once known.
func (st *AppState) channelLabel(ch *Channel) string {
	if ch.Info.Type == chat.ChannelDirect && ch.Info.DMUser != "" {
		if u, ok := st.users[ch.Info.DMUser]; ok {
			return u.Name
		}
	}
	return ch.Info.Name
}

// ChannelLabel exposes channelLabel for rendering.
func (st *AppState) ChannelLabel(ch *Channel) string {
	return st.channelLabel(ch)
}

// dmCounterpart extracts the other participant from a direct channel's
// server name ("<idA>__<idB>").
func dmCounterpart(name string, self chat.UserID) chat.UserID {
	parts := strings.SplitN(name, "__", 2)
	if len(parts) != 2 {
		return ""
	}
	if chat.UserID(parts[0]) == self {
		return chat.UserID(parts[1])
	}
	return chat.UserID(parts[0])
}

// --- users ---

// SetUsers ingests a full user fetch. Users are created on first sight and
// updated in place afterwards; the username index is rebuilt wholesale.
func (st *AppState) SetUsers(records []chat.User) {
	for _, rec := range records {
		if existing, ok := st.users[rec.ID]; ok {
			existing.update(rec)
		} else {
			st.users[rec.ID] = newUser(rec)
		}
	}
	byName := make(map[string]string, len(st.users))
	for id, u := range st.users {
		byName[u.Name] = string(id)
	}
	st.nameIndex.RebuildUsers(byName)
}

// UpsertUser ingests a single user record.
func (st *AppState) UpsertUser(rec chat.User) *User {
	existing, ok := st.users[rec.ID]
	if ok {
		if existing.Name != rec.Username {
			st.nameIndex.RemoveUser(existing.Name)
		}
		existing.update(rec)
	} else {
		existing = newUser(rec)
		st.users[rec.ID] = existing
	}
	st.nameIndex.AddUser(existing.Name, string(rec.ID))
	return existing
}

// User looks up a user by ID.
func (st *AppState) User(id chat.UserID) (*User, bool) {
	u, ok := st.users[id]
	return u, ok
}

// UserByName resolves a user by username.
func (st *AppState) UserByName(name string) (*User, bool) {
	id, ok := st.nameIndex.UserID(name)
	if !ok {
		return nil, false
	}
	return st.User(chat.UserID(id))
}

// SetUserStatus applies a presence change. Unknown IDs are dropped.
func (st *AppState) SetUserStatus(id chat.UserID, status chat.UserStatus) bool {
	u, ok := st.users[id]
	if !ok {
		return false
	}
	u.Status = status
	return true
}

// MarkUserDeleted flags an account deleted without removing it.
func (st *AppState) MarkUserDeleted(id chat.UserID) bool {
	u, ok := st.users[id]
	if !ok {
		return false
	}
	u.Deleted = true
	st.nameIndex.RemoveUser(u.Name)
	return true
}

// SortedUsers returns the user-list view: users with unread DMs first, then
// the rest; within each partition non-offline users sort before offline,
// alphabetically inside each group. Deleted users are excluded.
func (st *AppState) SortedUsers() []*User {
	unreadDM := make(map[chat.UserID]bool)
	for _, ch := range st.channels {
		if ch.Info.Type == chat.ChannelDirect && ch.Info.DMUser != "" && ch.HasUnread() {
			unreadDM[ch.Info.DMUser] = true
		}
	}
	users := make([]*User, 0, len(st.users))
	for _, u := range st.users {
		if u.Deleted {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if unreadDM[a.ID] != unreadDM[b.ID] {
			return unreadDM[a.ID]
		}
		aOff := a.Status == chat.StatusOffline
		bOff := b.Status == chat.StatusOffline
		if aOff != bOff {
			return !aOff
		}
		return a.Name < b.Name
	})
	return users
}

// --- posts ---

// AddPost ingests a new post. Posts for unknown channels are dropped.
func (st *AppState) AddPost(post chat.Post) bool {
	ch, ok := st.channels[post.ChannelID]
	if !ok {
		return false
	}
	ch.AddPost(post)
	if ch.Info.Load == Loaded {
		st.postIndex[post.ID] = post.ChannelID
	}
	st.Typing.Clear(post.ChannelID, post.UserID)
	return true
}

// EditPost applies a post edit. Unknown posts are dropped.
func (st *AppState) EditPost(post chat.Post) bool {
	id, ok := st.postIndex[post.ID]
	if !ok {
		return false
	}
	ch, ok := st.channels[id]
	if !ok {
		return false
	}
	return ch.UpdatePost(post)
}

// DeletePost marks a post deleted. Unknown posts are dropped.
func (st *AppState) DeletePost(postID chat.PostID) bool {
	id, ok := st.postIndex[postID]
	if !ok {
		return false
	}
	ch, ok := st.channels[id]
	if !ok {
		return false
	}
	return ch.DeletePost(postID)
}

// SetChannelPosts installs fetched contents for a channel and indexes them.
func (st *AppState) SetChannelPosts(id chat.ChannelID, posts []chat.Post) bool {
	ch, ok := st.channels[id]
	if !ok {
		return false
	}
	for _, old := range ch.Posts {
		delete(st.postIndex, old.ID)
	}
	ch.SetPosts(posts)
	for _, post := range ch.Posts {
		st.postIndex[post.ID] = id
	}
	return true
}

// PostChannel reports which channel holds a post.
func (st *AppState) PostChannel(id chat.PostID) (chat.ChannelID, bool) {
	ch, ok := st.postIndex[id]
	return ch, ok
}

// AddReaction routes a reaction to its post. Unknown posts are dropped.
func (st *AppState) AddReaction(r chat.Reaction) bool {
	id, ok := st.postIndex[r.PostID]
	if !ok {
		return false
	}
	if ch, ok := st.channels[id]; ok {
		return ch.AddReaction(r)
	}
	return false
}

// RemoveReaction removes a reaction from its post.
func (st *AppState) RemoveReaction(r chat.Reaction) bool {
	id, ok := st.postIndex[r.PostID]
	if !ok {
		return false
	}
	if ch, ok := st.channels[id]; ok {
		return ch.RemoveReaction(r)
	}
	return false
}

// --- derived views ---

// HighlightSet returns every known username and channel name, used to drive
// text highlighting. It is recomputed from the authoritative maps each call
// so it can never drift.
func (st *AppState) HighlightSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range st.nameIndex.ChannelNames() {
		set[name] = struct{}{}
	}
	for _, name := range st.nameIndex.UserNames() {
		set[name] = struct{}{}
	}
	return set
}

// SetJoinable stores the latest joinable-channel fetch, excluding channels
// the user is already in.
func (st *AppState) SetJoinable(channels []chat.Channel) {
	st.Joinable = st.Joinable[:0]
	for _, ch := range channels {
		if _, member := st.channels[ch.ID]; member {
			continue
		}
		st.Joinable = append(st.Joinable, ch)
	}
	sort.Slice(st.Joinable, func(i, j int) bool {
		return st.Joinable[i].Name < st.Joinable[j].Name
	})
}

// UnreadCount reports how many channels currently have unread messages.
func (st *AppState) UnreadCount() int {
	count := 0
	for _, ch := range st.channels {
		if ch.HasUnread() {
			count++
		}
	}
	return count
}
