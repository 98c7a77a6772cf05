package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/logging/events"
)

type dumpChannel struct {
	ID      chat.ChannelID   `json:"id"`
	Label   string           `json:"label"`
	Type    chat.ChannelType `json:"type"`
	Load    string           `json:"load"`
	Posts   int              `json:"posts"`
	Unread  bool             `json:"unread"`
	Focused bool             `json:"focused"`
}

type dumpSnapshot struct {
	Time      time.Time     `json:"time"`
	Mode      string        `json:"mode"`
	Username  string        `json:"username"`
	Team      string        `json:"team"`
	Connected bool          `json:"connected"`
	BusyDepth int           `json:"busy_depth"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Timezone  string        `json:"timezone"`
	Compose   string        `json:"compose"`
	Channels  []dumpChannel `json:"channels"`
}

// dumpState writes a diagnostic snapshot of the model and its render
// metadata to the configured dump path.
func (m *Model) dumpState() {
	snap := dumpSnapshot{
		Time:      m.now(),
		Mode:      m.mode.modeTag(),
		Username:  m.st.Session.Username,
		Team:      m.st.Session.TeamName,
		Connected: m.connected,
		BusyDepth: m.busyDepth,
		Width:     m.width,
		Height:    m.height,
		Timezone:  m.st.Timezone,
		Compose:   string(m.compose.text),
	}
	focused, hasFocus := m.st.FocusedChannel()
	for _, id := range m.st.ChannelIDs() {
		ch, ok := m.st.Channel(id)
		if !ok {
			continue
		}
		snap.Channels = append(snap.Channels, dumpChannel{
			ID:      ch.Info.ID,
			Label:   m.st.ChannelLabel(ch),
			Type:    ch.Info.Type,
			Load:    ch.Info.Load.String(),
			Posts:   len(ch.Posts),
			Unread:  ch.HasUnread(),
			Focused: hasFocus && focused.Info.ID == ch.Info.ID,
		})
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		m.displayError(fmt.Errorf("dump state: %w", err))
		return
	}
	if err := os.WriteFile(m.dumpPath, data, 0o600); err != nil {
		m.displayError(fmt.Errorf("dump state: %w", err))
		return
	}
	events.UI.StateDump(m.dumpPath)
	m.errMsg = "state dumped to " + m.dumpPath
}
