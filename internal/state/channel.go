package state

import (
	"sort"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
)

// LoadState tracks how much of a channel's history the client holds.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// ChannelInfo is the metadata slice of a channel, kept even while contents
// are unloaded.
type ChannelInfo struct {
	ID          chat.ChannelID
	Name        string
	DisplayName string
	Header      string
	Type        chat.ChannelType
	LastViewed  time.Time
	LastUpdated time.Time
	Load        LoadState
	// DMUser is the counterpart for direct channels, empty otherwise.
	DMUser chat.UserID
}

// Channel is a channel as the client tracks it: info plus an ordered message
// sequence once loaded. NewCutoff marks the oldest instant still considered
// "new" since the user last viewed the channel; unread computation for
// loaded channels depends on it, not on raw timestamp comparison.
type Channel struct {
	Info      ChannelInfo
	Posts     []chat.Post
	NewCutoff time.Time
}

// NewChannel creates channel state from a server-side channel record.
func NewChannel(ch chat.Channel) *Channel {
	name := ch.DisplayName
	if name == "" {
		name = ch.Name
	}
	return &Channel{
		Info: ChannelInfo{
			ID:          ch.ID,
			Name:        name,
			Header:      ch.Header,
			Type:        ch.Type,
			LastUpdated: ch.LastPostAt,
			Load:        Unloaded,
		},
	}
}

// HasUnread reports whether the channel has messages the user has not seen.
// Unloaded channels fall back to the timestamp comparison; loaded channels
// consult the messages after the new-message cutoff, which can be empty even
// when LastUpdated exceeds LastViewed (deletions shrink the set).
func (c *Channel) HasUnread() bool {
	if c.Info.Load != Loaded {
		return c.Info.LastUpdated.After(c.Info.LastViewed)
	}
	for i := len(c.Posts) - 1; i >= 0; i-- {
		post := c.Posts[i]
		if !post.CreateAt.After(c.NewCutoff) {
			break
		}
		if !post.Deleted {
			return true
		}
	}
	return false
}

// MarkViewed moves the view pointer and the new-message cutoff past
// everything currently held.
func (c *Channel) MarkViewed(now time.Time) {
	c.Info.LastViewed = now
	cutoff := now
	if n := len(c.Posts); n > 0 && c.Posts[n-1].CreateAt.After(cutoff) {
		cutoff = c.Posts[n-1].CreateAt
	}
	c.NewCutoff = cutoff
}

// SetPosts replaces the channel contents after a load, ordered by creation
// time, and flips the load state to Loaded.
func (c *Channel) SetPosts(posts []chat.Post) {
	c.Posts = make([]chat.Post, len(posts))
	copy(c.Posts, posts)
	sort.SliceStable(c.Posts, func(i, j int) bool {
		return c.Posts[i].CreateAt.Before(c.Posts[j].CreateAt)
	})
	c.Info.Load = Loaded
}

// AddPost appends a post, keeping creation order, and bumps LastUpdated.
// Re-delivery of a known post ID updates it in place.
func (c *Channel) AddPost(post chat.Post) {
	if post.CreateAt.After(c.Info.LastUpdated) {
		c.Info.LastUpdated = post.CreateAt
	}
	if c.Info.Load != Loaded {
		return
	}
	for i := range c.Posts {
		if c.Posts[i].ID == post.ID {
			c.Posts[i] = post
			return
		}
	}
	idx := sort.Search(len(c.Posts), func(i int) bool {
		return c.Posts[i].CreateAt.After(post.CreateAt)
	})
	c.Posts = append(c.Posts, chat.Post{})
	copy(c.Posts[idx+1:], c.Posts[idx:])
	c.Posts[idx] = post
}

// UpdatePost replaces the body of a known post. Unknown IDs are dropped.
func (c *Channel) UpdatePost(post chat.Post) bool {
	for i := range c.Posts {
		if c.Posts[i].ID == post.ID {
			reactions := c.Posts[i].Reactions
			c.Posts[i] = post
			if post.Reactions == nil {
				c.Posts[i].Reactions = reactions
			}
			return true
		}
	}
	return false
}

// DeletePost marks a post deleted, retaining its slot so cursors stay
// valid.
func (c *Channel) DeletePost(id chat.PostID) bool {
	for i := range c.Posts {
		if c.Posts[i].ID == id {
			c.Posts[i].Deleted = true
			c.Posts[i].Message = ""
			return true
		}
	}
	return false
}

// Post looks up a post by ID.
func (c *Channel) Post(id chat.PostID) (chat.Post, bool) {
	for i := range c.Posts {
		if c.Posts[i].ID == id {
			return c.Posts[i], true
		}
	}
	return chat.Post{}, false
}

// AddReaction attaches a reaction to its post, ignoring duplicates.
func (c *Channel) AddReaction(r chat.Reaction) bool {
	for i := range c.Posts {
		if c.Posts[i].ID != r.PostID {
			continue
		}
		for _, existing := range c.Posts[i].Reactions {
			if existing.UserID == r.UserID && existing.EmojiName == r.EmojiName {
				return true
			}
		}
		c.Posts[i].Reactions = append(c.Posts[i].Reactions, r)
		return true
	}
	return false
}

// RemoveReaction detaches a reaction from its post.
func (c *Channel) RemoveReaction(r chat.Reaction) bool {
	for i := range c.Posts {
		if c.Posts[i].ID != r.PostID {
			continue
		}
		reactions := c.Posts[i].Reactions
		for j, existing := range reactions {
			if existing.UserID == r.UserID && existing.EmojiName == r.EmojiName {
				c.Posts[i].Reactions = append(reactions[:j], reactions[j+1:]...)
				return true
			}
		}
		return false
	}
	return false
}
