package chat

import (
	"context"
	"errors"
	"fmt"
)

// Client is the narrow port onto the remote chat server. All methods perform
// blocking I/O and are only ever called from the background work queue,
// never from the UI event loop.
type Client interface {
	SendMessage(ctx context.Context, channel ChannelID, message string) (Post, error)
	FetchChannels(ctx context.Context) ([]Channel, []ChannelMember, error)
	FetchUsers(ctx context.Context) ([]User, error)
	FetchPosts(ctx context.Context, channel ChannelID) ([]Post, error)
	FetchJoinable(ctx context.Context) ([]Channel, error)
	JoinChannel(ctx context.Context, channel ChannelID) (Channel, error)
	CreateDirect(ctx context.Context, user UserID) (Channel, error)
	LeaveChannel(ctx context.Context, channel ChannelID) error
	DeleteChannel(ctx context.Context, channel ChannelID) error
	DeletePost(ctx context.Context, post PostID) error
	AddReaction(ctx context.Context, post PostID, emoji string) error
	SendTyping(ctx context.Context, channel ChannelID) error
	MarkViewed(ctx context.Context, channel ChannelID) error
}

// ConnKind classifies startup connection failures so the login loop can
// phrase its retry prompt.
type ConnKind int

const (
	ConnResolve ConnKind = iota
	ConnRefused
	ConnLogin
	ConnAuth
)

// ConnError is a startup-time connection failure. Runtime errors never use
// this type; they flow through the work queue as plain errors.
type ConnError struct {
	Kind ConnKind
	Err  error
}

func (e *ConnError) Error() string {
	switch e.Kind {
	case ConnResolve:
		return fmt.Sprintf("could not resolve server: %v", e.Err)
	case ConnRefused:
		return fmt.Sprintf("could not connect to server: %v", e.Err)
	case ConnLogin:
		return fmt.Sprintf("login failed: %v", e.Err)
	default:
		return fmt.Sprintf("authentication error: %v", e.Err)
	}
}

func (e *ConnError) Unwrap() error { return e.Err }

// Retryable reports whether re-entering credentials could help. Resolve and
// refused failures depend on the server config, not the credentials, but the
// login loop retries all of them; only the prompt wording differs.
func (e *ConnError) Retryable() bool {
	return e.Kind == ConnLogin || e.Kind == ConnAuth
}

// AsConnError unwraps err into a *ConnError when possible.
func AsConnError(err error) (*ConnError, bool) {
	var ce *ConnError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ErrNoTeam is returned by login when the account belongs to no team. This
// is one of the few unrecoverable startup failures.
var ErrNoTeam = errors.New("user is not a member of any team")
