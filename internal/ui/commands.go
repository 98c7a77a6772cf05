package ui

import (
	"context"
	"fmt"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/10jschen/matterhorn/internal/worker"
	"github.com/google/uuid"
)

// Operation names. The dispatcher keys mode follow-ups and failure
// fallbacks off these.
const (
	opRefreshChannels = "refresh-channels"
	opRefreshUsers    = "refresh-users"
	opLoadChannel     = "load-channel"
	opSendMessage     = "send-message"
	opFetchJoinable   = "fetch-joinable"
	opJoinChannel     = "join-channel"
	opLeaveChannel    = "leave-channel"
	opDeleteChannel   = "delete-channel"
	opDeletePost      = "delete-post"
	opAddReaction     = "add-reaction"
	opSendTyping      = "send-typing"
	opMarkViewed      = "mark-viewed"
	opCreateDirect    = "create-direct"
)

// Each op builder captures the client call to make and returns the pure
// state transition to run back on the event loop. The worker never touches
// the state itself.

func (m *Model) opRefreshChannels() worker.Op {
	client := m.client
	return worker.Op{Name: opRefreshChannels, Run: func(ctx context.Context) (worker.Apply, error) {
		channels, members, err := client.FetchChannels(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch channels: %w", err)
		}
		return func(st *state.AppState) {
			st.SetChannels(channels, members)
		}, nil
	}}
}

func (m *Model) opRefreshUsers() worker.Op {
	client := m.client
	return worker.Op{Name: opRefreshUsers, Run: func(ctx context.Context) (worker.Apply, error) {
		users, err := client.FetchUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch users: %w", err)
		}
		return func(st *state.AppState) {
			st.SetUsers(users)
		}, nil
	}}
}

func (m *Model) opLoadChannel(id chat.ChannelID) worker.Op {
	client := m.client
	now := m.now
	return worker.Op{Name: opLoadChannel, Run: func(ctx context.Context) (worker.Apply, error) {
		posts, err := client.FetchPosts(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load channel %s: %w", id, err)
		}
		return func(st *state.AppState) {
			if !st.SetChannelPosts(id, posts) {
				return
			}
			if ch, ok := st.Channel(id); ok {
				ch.MarkViewed(now())
			}
		}, nil
	}}
}

func (m *Model) opSendMessage(id chat.ChannelID, message string) worker.Op {
	client := m.client
	pendingID := chat.PostID(uuid.NewString())
	return worker.Op{Name: opSendMessage, Run: func(ctx context.Context) (worker.Apply, error) {
		post, err := client.SendMessage(ctx, id, message)
		if err != nil {
			return nil, fmt.Errorf("send to %s: %w", id, err)
		}
		if post.ID == "" {
			post.ID = pendingID
			post.Pending = true
		}
		return func(st *state.AppState) {
			st.AddPost(post)
		}, nil
	}}
}

func (m *Model) opFetchJoinable() worker.Op {
	client := m.client
	return worker.Op{Name: opFetchJoinable, Run: func(ctx context.Context) (worker.Apply, error) {
		channels, err := client.FetchJoinable(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch joinable channels: %w", err)
		}
		return func(st *state.AppState) {
			st.SetJoinable(channels)
		}, nil
	}}
}

func (m *Model) opJoinChannel(id chat.ChannelID) worker.Op {
	client := m.client
	return worker.Op{Name: opJoinChannel, Run: func(ctx context.Context) (worker.Apply, error) {
		joined, err := client.JoinChannel(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("join channel: %w", err)
		}
		return func(st *state.AppState) {
			ch := st.AddChannel(joined)
			st.Focus(ch.Info.ID)
		}, nil
	}}
}

func (m *Model) opCreateDirect(user chat.UserID) worker.Op {
	client := m.client
	return worker.Op{Name: opCreateDirect, Run: func(ctx context.Context) (worker.Apply, error) {
		created, err := client.CreateDirect(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("open direct channel: %w", err)
		}
		return func(st *state.AppState) {
			ch := st.AddChannel(created)
			st.Focus(ch.Info.ID)
		}, nil
	}}
}

func (m *Model) opLeaveChannel(id chat.ChannelID) worker.Op {
	client := m.client
	return worker.Op{Name: opLeaveChannel, Run: func(ctx context.Context) (worker.Apply, error) {
		if err := client.LeaveChannel(ctx, id); err != nil {
			return nil, fmt.Errorf("leave channel: %w", err)
		}
		return func(st *state.AppState) {
			st.RemoveChannel(id)
		}, nil
	}}
}

func (m *Model) opDeleteChannel(id chat.ChannelID) worker.Op {
	client := m.client
	return worker.Op{Name: opDeleteChannel, Run: func(ctx context.Context) (worker.Apply, error) {
		if err := client.DeleteChannel(ctx, id); err != nil {
			return nil, fmt.Errorf("delete channel: %w", err)
		}
		return func(st *state.AppState) {
			st.RemoveChannel(id)
		}, nil
	}}
}

func (m *Model) opDeletePost(id chat.PostID) worker.Op {
	client := m.client
	return worker.Op{Name: opDeletePost, Run: func(ctx context.Context) (worker.Apply, error) {
		if err := client.DeletePost(ctx, id); err != nil {
			return nil, fmt.Errorf("delete message: %w", err)
		}
		return func(st *state.AppState) {
			st.DeletePost(id)
		}, nil
	}}
}

func (m *Model) opAddReaction(id chat.PostID, emoji string) worker.Op {
	client := m.client
	return worker.Op{Name: opAddReaction, Run: func(ctx context.Context) (worker.Apply, error) {
		if err := client.AddReaction(ctx, id, emoji); err != nil {
			return nil, fmt.Errorf("add reaction: %w", err)
		}
		// The reaction lands via the websocket echo; nothing to apply.
		return nil, nil
	}}
}

func (m *Model) opSendTyping(id chat.ChannelID) worker.Op {
	client := m.client
	return worker.Op{Name: opSendTyping, Run: func(ctx context.Context) (worker.Apply, error) {
		// Best effort: a lost typing notification is invisible.
		_ = client.SendTyping(ctx, id)
		return nil, nil
	}}
}

func (m *Model) opMarkViewed(id chat.ChannelID) worker.Op {
	client := m.client
	return worker.Op{Name: opMarkViewed, Run: func(ctx context.Context) (worker.Apply, error) {
		if err := client.MarkViewed(ctx, id); err != nil {
			return nil, fmt.Errorf("mark viewed: %w", err)
		}
		return nil, nil
	}}
}
