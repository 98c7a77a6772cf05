package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/10jschen/matterhorn/internal/chat"
)

// historyLimit caps retained lines per channel.
const historyLimit = 100

// History holds recently submitted input lines per channel, most recent
// first. Re-submitting a line moves it to the front rather than storing a
// duplicate; comparison is case-sensitive.
type History struct {
	entries map[chat.ChannelID][]string
}

func NewHistory() *History {
	return &History{entries: make(map[chat.ChannelID][]string)}
}

// Add records a submitted line at the most-recent position.
func (h *History) Add(channel chat.ChannelID, line string) {
	if line == "" {
		return
	}
	existing := h.entries[channel]
	updated := make([]string, 0, len(existing)+1)
	updated = append(updated, line)
	for _, entry := range existing {
		if entry == line {
			continue
		}
		updated = append(updated, entry)
	}
	if len(updated) > historyLimit {
		updated = updated[:historyLimit]
	}
	h.entries[channel] = updated
}

// At returns the entry at idx, where 0 is the most recent.
func (h *History) At(channel chat.ChannelID, idx int) (string, bool) {
	entries := h.entries[channel]
	if idx < 0 || idx >= len(entries) {
		return "", false
	}
	return entries[idx], true
}

// Len reports how many lines are retained for the channel.
func (h *History) Len(channel chat.ChannelID) int {
	return len(h.entries[channel])
}

// Save writes the history as a JSON object keyed by channel ID, readable
// only by the owner.
func (h *History) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	raw := make(map[string][]string, len(h.entries))
	for channel, lines := range h.entries {
		if len(lines) == 0 {
			continue
		}
		raw[string(channel)] = lines
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// LoadHistory reads a previously saved history file. A missing file yields
// an empty history, not an error.
func LoadHistory(path string) (*History, error) {
	h := NewHistory()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	raw := make(map[string][]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	for channel, lines := range raw {
		if len(lines) > historyLimit {
			lines = lines[:historyLimit]
		}
		h.entries[chat.ChannelID(channel)] = lines
	}
	return h, nil
}
