package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/10jschen/matterhorn/internal/chat"
)

// FakeClient is a scripted chat.Client for tests. Responses are set up
// front; every call is recorded. The zero value answers everything with
// empty results.
type FakeClient struct {
	mu    sync.Mutex
	calls []string

	Channels []chat.Channel
	Members  []chat.ChannelMember
	Users    []chat.User
	Posts    map[chat.ChannelID][]chat.Post
	Joinable []chat.Channel

	// Err, when set, is returned by every call.
	Err error
}

// Calls returns the method names invoked so far, in order.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeClient) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *FakeClient) SendMessage(ctx context.Context, channel chat.ChannelID, message string) (chat.Post, error) {
	f.record("SendMessage(%s,%q)", channel, message)
	if f.Err != nil {
		return chat.Post{}, f.Err
	}
	return chat.Post{ID: chat.PostID("sent-" + message), ChannelID: channel, Message: message}, nil
}

func (f *FakeClient) FetchChannels(ctx context.Context) ([]chat.Channel, []chat.ChannelMember, error) {
	f.record("FetchChannels")
	if f.Err != nil {
		return nil, nil, f.Err
	}
	return f.Channels, f.Members, nil
}

func (f *FakeClient) FetchUsers(ctx context.Context) ([]chat.User, error) {
	f.record("FetchUsers")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Users, nil
}

func (f *FakeClient) FetchPosts(ctx context.Context, channel chat.ChannelID) ([]chat.Post, error) {
	f.record("FetchPosts(%s)", channel)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Posts[channel], nil
}

func (f *FakeClient) FetchJoinable(ctx context.Context) ([]chat.Channel, error) {
	f.record("FetchJoinable")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Joinable, nil
}

func (f *FakeClient) JoinChannel(ctx context.Context, channel chat.ChannelID) (chat.Channel, error) {
	f.record("JoinChannel(%s)", channel)
	if f.Err != nil {
		return chat.Channel{}, f.Err
	}
	for _, ch := range f.Joinable {
		if ch.ID == channel {
			return ch, nil
		}
	}
	return chat.Channel{ID: channel, Type: chat.ChannelOpen}, nil
}

func (f *FakeClient) CreateDirect(ctx context.Context, user chat.UserID) (chat.Channel, error) {
	f.record("CreateDirect(%s)", user)
	if f.Err != nil {
		return chat.Channel{}, f.Err
	}
	return chat.Channel{
		ID:   chat.ChannelID("dm-" + user),
		Name: "self__" + string(user),
		Type: chat.ChannelDirect,
	}, nil
}

func (f *FakeClient) LeaveChannel(ctx context.Context, channel chat.ChannelID) error {
	f.record("LeaveChannel(%s)", channel)
	return f.Err
}

func (f *FakeClient) DeleteChannel(ctx context.Context, channel chat.ChannelID) error {
	f.record("DeleteChannel(%s)", channel)
	return f.Err
}

func (f *FakeClient) DeletePost(ctx context.Context, post chat.PostID) error {
	f.record("DeletePost(%s)", post)
	return f.Err
}

func (f *FakeClient) AddReaction(ctx context.Context, post chat.PostID, emoji string) error {
	f.record("AddReaction(%s,%s)", post, emoji)
	return f.Err
}

func (f *FakeClient) SendTyping(ctx context.Context, channel chat.ChannelID) error {
	f.record("SendTyping(%s)", channel)
	return f.Err
}

func (f *FakeClient) MarkViewed(ctx context.Context, channel chat.ChannelID) error {
	f.record("MarkViewed(%s)", channel)
	return f.Err
}
