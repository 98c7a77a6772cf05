package ui

import (
	"fmt"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/logging/events"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/10jschen/matterhorn/internal/worker"
)

// applySocketEvent translates websocket pushes into state mutations. These
// are handled unconditionally, whatever dialog is open. Events referencing
// unknown IDs are dropped silently; the explicit ignore list already
// filtered event types this client never acts on.
func (m *Model) applySocketEvent(evt chat.Event) {
	events.Socket.Event(chat.EventName(evt))
	switch e := evt.(type) {
	case chat.ConnectedEvent:
		events.Socket.Connected()
		m.connected = true
		m.errMsg = ""
		// A (re)connect invalidates everything fetched so far.
		m.enqueue(m.opRefreshChannels())
		m.enqueue(m.opRefreshUsers())
	case chat.DisconnectedEvent:
		events.Socket.Disconnected(e.Err)
		m.connected = false
		if e.Err != nil {
			m.errMsg = fmt.Sprintf("connection lost: %v", e.Err)
		}
	case chat.PostedEvent:
		if !m.st.AddPost(e.Post) {
			events.Socket.Dropped("posted", "unknown channel")
			return
		}
		m.markViewedIfFocused(e.Post.ChannelID)
	case chat.PostEditedEvent:
		if !m.st.EditPost(e.Post) {
			events.Socket.Dropped("post_edited", "unknown post")
		}
	case chat.PostDeletedEvent:
		if !m.st.DeletePost(e.Post.ID) {
			events.Socket.Dropped("post_deleted", "unknown post")
		}
	case chat.ChannelDeletedEvent:
		m.removeChannel(e.ChannelID)
	case chat.ChannelViewedEvent:
		if ch, ok := m.st.Channel(e.ChannelID); ok {
			ch.MarkViewed(m.now())
		}
	case chat.DirectAddedEvent, chat.ChannelCreatedEvent:
		// Membership may have changed under us; refetch.
		m.enqueue(m.opRefreshChannels())
	case chat.UserAddedEvent:
		if e.UserID == m.st.Session.UserID {
			m.enqueue(m.opRefreshChannels())
		}
	case chat.UserRemovedEvent:
		if e.UserID == m.st.Session.UserID {
			m.removeChannel(e.ChannelID)
		}
	case chat.NewUserEvent:
		m.enqueue(m.opRefreshUsers())
	case chat.UserUpdatedEvent:
		m.st.UpsertUser(e.User)
	case chat.StatusChangeEvent:
		if !m.st.SetUserStatus(e.UserID, e.Status) {
			events.Socket.Dropped("status_change", "unknown user")
		}
	case chat.TypingEvent:
		if _, ok := m.st.Channel(e.ChannelID); !ok {
			events.Socket.Dropped("typing", "unknown channel")
			return
		}
		m.st.Typing.Note(e.ChannelID, e.UserID, m.now())
	case chat.ReactionAddedEvent:
		if !m.st.AddReaction(e.Reaction) {
			events.Socket.Dropped("reaction_added", "unknown post")
		}
	case chat.ReactionRemovedEvent:
		if !m.st.RemoveReaction(e.Reaction) {
			events.Socket.Dropped("reaction_removed", "unknown post")
		}
	case chat.PreferenceChangedEvent:
		// Tracked server-side only; nothing to fold in yet.
	}
}

// removeChannel drops a channel and resets any mode that was anchored to it.
func (m *Model) removeChannel(id chat.ChannelID) {
	focused, hadFocus := m.st.FocusedChannel()
	if !m.st.RemoveChannel(id) {
		events.Socket.Dropped("channel_deleted", "unknown channel")
		return
	}
	if hadFocus && focused.Info.ID == id {
		m.setMode(Main{})
		m.compose = compose{histIdx: -1}
		m.ensureFocusedLoaded()
	}
}

// applyQueueEvent folds work-queue signals back into the model. Done events
// carry the state transition produced off-loop; it runs here, on the loop.
func (m *Model) applyQueueEvent(evt worker.Event) {
	switch e := evt.(type) {
	case worker.Busy:
		events.Queue.Busy(e.Depth)
		m.busyDepth = e.Depth
	case worker.Idle:
		events.Queue.Idle()
		m.busyDepth = 0
	case worker.Done:
		events.Queue.Completed(e.Name)
		if e.Apply != nil {
			e.Apply(m.st)
		}
		m.afterOp(e.Name)
	case worker.Failed:
		events.Queue.Failed(e.Name, e.Err)
		m.displayError(e.Err)
		m.failedOp(e.Name)
	}
}

// afterOp runs mode follow-ups once a completion has been applied.
func (m *Model) afterOp(name string) {
	switch name {
	case opFetchJoinable:
		if join, ok := m.mode.(JoinChannel); ok && join.Loading {
			m.setMode(JoinChannel{Channels: m.st.Joinable})
		}
	case opJoinChannel, opCreateDirect, opRefreshChannels:
		m.ensureFocusedLoaded()
	}
}

// failedOp falls a mode back to Main when the async operation backing it
// failed, so no mode is ever left stuck on data that will not arrive.
func (m *Model) failedOp(name string) {
	switch name {
	case opFetchJoinable:
		if _, ok := m.mode.(JoinChannel); ok {
			m.setMode(Main{})
		}
	case opLoadChannel:
		if ch, ok := m.st.FocusedChannel(); ok && ch.Info.Load == state.Loading {
			ch.Info.Load = state.Unloaded
		}
	}
}

// markViewedIfFocused keeps the focused channel read as messages arrive.
func (m *Model) markViewedIfFocused(id chat.ChannelID) {
	ch, ok := m.st.FocusedChannel()
	if !ok || ch.Info.ID != id {
		return
	}
	if _, isMain := m.mode.(Main); !isMain {
		return
	}
	ch.MarkViewed(m.now())
	m.enqueue(m.opMarkViewed(id))
}

// ensureFocusedLoaded kicks off a contents fetch for the focused channel if
// it has none yet.
func (m *Model) ensureFocusedLoaded() {
	ch, ok := m.st.FocusedChannel()
	if !ok || ch.Info.Load != state.Unloaded {
		return
	}
	ch.Info.Load = state.Loading
	m.enqueue(m.opLoadChannel(ch.Info.ID))
}

func (m *Model) enqueue(op worker.Op) {
	if m.queue == nil {
		return
	}
	events.Queue.Enqueued(op.Name, m.queue.Depth())
	m.queue.Enqueue(op)
}
