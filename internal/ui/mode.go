package ui

import (
	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/state"
)

// Mode is the single currently active top-level UI task. Exactly one mode is
// live at a time; each variant carries its own working data so no state from
// an inactive mode can leak into the current one.
type Mode interface {
	modeTag() string
}

// Main is the typical between-tasks mode: composing into the focused
// channel.
type Main struct{}

// ShowHelp displays a help topic.
type ShowHelp struct {
	Topic string
}

// ChannelSelect is the incremental channel/user switcher.
type ChannelSelect struct {
	Input   string
	Matches MatchSet
}

// UrlSelect picks a URL from the focused channel's loaded messages.
type UrlSelect struct {
	URLs   []string
	Cursor int
}

// LeaveChannelConfirm asks before leaving the focused channel.
type LeaveChannelConfirm struct {
	Channel chat.ChannelID
}

// DeleteChannelConfirm asks before deleting the focused channel.
type DeleteChannelConfirm struct {
	Channel chat.ChannelID
}

// JoinChannel lists joinable channels; Loading is true until the async
// fetch lands.
type JoinChannel struct {
	Loading  bool
	Channels []chat.Channel
	Filter   string
	Cursor   int
}

// ChannelScroll pages through the focused channel's history.
type ChannelScroll struct {
	Offset int
}

// MessageSelect moves a selection cursor over loaded messages.
type MessageSelect struct {
	Selected chat.PostID
}

// MessageSelectDeleteConfirm asks before deleting the selected message. It
// is reachable only from MessageSelect and returns there on cancel.
type MessageSelectDeleteConfirm struct {
	Selected chat.PostID
}

// PostListOverlay is a read-only overlay over a post list, e.g. mentions.
type PostListOverlay struct {
	Title  string
	Posts  []chat.Post
	Cursor int
}

// UserListOverlay browses the sorted user list.
type UserListOverlay struct {
	Users  []*state.User
	Cursor int
}

// ViewMessage shows a single message in full.
type ViewMessage struct {
	Post chat.Post
}

func (Main) modeTag() string                       { return "main" }
func (ShowHelp) modeTag() string                   { return "help" }
func (ChannelSelect) modeTag() string              { return "channel-select" }
func (UrlSelect) modeTag() string                  { return "url-select" }
func (LeaveChannelConfirm) modeTag() string        { return "leave-channel-confirm" }
func (DeleteChannelConfirm) modeTag() string       { return "delete-channel-confirm" }
func (JoinChannel) modeTag() string                { return "join-channel" }
func (ChannelScroll) modeTag() string              { return "channel-scroll" }
func (MessageSelect) modeTag() string              { return "message-select" }
func (MessageSelectDeleteConfirm) modeTag() string { return "message-select-delete-confirm" }
func (PostListOverlay) modeTag() string            { return "post-list" }
func (UserListOverlay) modeTag() string            { return "user-list" }
func (ViewMessage) modeTag() string                { return "view-message" }
