package chat

import "time"

// Identifier types for the remote server's entities. They are opaque strings
// assigned by the server; the client never parses them.
type (
	ChannelID string
	UserID    string
	PostID    string
	TeamID    string
)

// ChannelType distinguishes the channel namespaces the server exposes.
type ChannelType string

const (
	ChannelOpen    ChannelType = "O"
	ChannelPrivate ChannelType = "P"
	ChannelDirect  ChannelType = "D"
	ChannelGroup   ChannelType = "G"
)

// UserStatus is the presence state reported by the server.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusAway    UserStatus = "away"
	StatusDND     UserStatus = "dnd"
	StatusOffline UserStatus = "offline"
)

// Channel is the server's view of a channel, as returned by channel fetches.
type Channel struct {
	ID          ChannelID   `json:"id"`
	TeamID      TeamID      `json:"team_id"`
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Header      string      `json:"header"`
	Type        ChannelType `json:"type"`
	LastPostAt  time.Time   `json:"last_post_at"`
	DeleteAt    time.Time   `json:"delete_at"`
}

// ChannelMember carries per-user channel metadata such as the last time the
// user viewed the channel.
type ChannelMember struct {
	ChannelID    ChannelID `json:"channel_id"`
	UserID       UserID    `json:"user_id"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// User is the server's view of an account.
type User struct {
	ID        UserID     `json:"id"`
	Username  string     `json:"username"`
	Nickname  string     `json:"nickname"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Status    UserStatus `json:"status"`
	Deleted   bool       `json:"deleted"`
}

// Post is a single message in a channel.
type Post struct {
	ID        PostID     `json:"id"`
	ChannelID ChannelID  `json:"channel_id"`
	UserID    UserID     `json:"user_id"`
	Message   string     `json:"message"`
	CreateAt  time.Time  `json:"create_at"`
	UpdateAt  time.Time  `json:"update_at"`
	Deleted   bool       `json:"deleted"`
	Pending   bool       `json:"-"`
	Reactions []Reaction `json:"reactions,omitempty"`
}

// Reaction is an emoji reaction attached to a post.
type Reaction struct {
	UserID    UserID `json:"user_id"`
	PostID    PostID `json:"post_id"`
	EmojiName string `json:"emoji_name"`
}

// Preference is a single server-side user preference entry.
type Preference struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// Session identifies the authenticated user and team after login.
type Session struct {
	UserID   UserID
	Username string
	TeamID   TeamID
	TeamName string
	Token    string
}
