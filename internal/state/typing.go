package state

import (
	"sort"
	"sync"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
)

// typingTTL is how long a typing notification stays visible without renewal.
const typingTTL = 5 * time.Second

// TypingSet tracks who is typing in which channel. Unlike the rest of the
// application state it is updated from both the event loop and timer
// callbacks, so it carries its own lock.
type TypingSet struct {
	mu      sync.Mutex
	entries map[chat.ChannelID]map[chat.UserID]time.Time
}

func NewTypingSet() *TypingSet {
	return &TypingSet{entries: make(map[chat.ChannelID]map[chat.UserID]time.Time)}
}

// Note records a typing notification observed at now.
func (t *TypingSet) Note(channel chat.ChannelID, user chat.UserID, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	users := t.entries[channel]
	if users == nil {
		users = make(map[chat.UserID]time.Time)
		t.entries[channel] = users
	}
	users[user] = now
}

// Clear drops a user's typing entry, e.g. when their message arrives.
func (t *TypingSet) Clear(channel chat.ChannelID, user chat.UserID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if users := t.entries[channel]; users != nil {
		delete(users, user)
	}
}

// Active returns the IDs of users still typing in the channel as of now,
// sorted for stable rendering. Expired entries are evicted on the way.
func (t *TypingSet) Active(channel chat.ChannelID, now time.Time) []chat.UserID {
	t.mu.Lock()
	defer t.mu.Unlock()
	users := t.entries[channel]
	if len(users) == 0 {
		return nil
	}
	ids := make([]chat.UserID, 0, len(users))
	for id, seen := range users {
		if now.Sub(seen) > typingTTL {
			delete(users, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
